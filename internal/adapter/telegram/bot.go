// Package telegram adapts the Telegram Bot API to the bot's transport
// port and drives the inbound update loop.
package telegram

import (
	"context"
	"fmt"
	"log"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/meryload/loadbot/internal/domain"
)

const convertButtonText = "🎵 Download as MP3"

// Handler receives classified inbound events from the update loop.
type Handler interface {
	HandleLink(chatID int64, rawURL string)
	HandleCallback(chatID int64, payload string)
}

// Bot wraps the Telegram Bot API client. It implements domain.Transport
// for outbound sends and runs the long-poll loop for inbound updates.
type Bot struct {
	api     *tgbotapi.BotAPI
	users   domain.UserRepository
	handler Handler
}

// New connects to the Telegram Bot API with the given token.
func New(token string, users domain.UserRepository) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("telegram: connect: %w", err)
	}
	return &Bot{api: api, users: users}, nil
}

// SetHandler wires the inbound event handler. Must be called before Run.
func (b *Bot) SetHandler(h Handler) {
	b.handler = h
}

// Username returns the bot's own username.
func (b *Bot) Username() string {
	return b.api.Self.UserName
}

// Run consumes updates until the context is cancelled.
func (b *Bot) Run(ctx context.Context) {
	cfg := tgbotapi.NewUpdate(0)
	cfg.Timeout = 30
	updates := b.api.GetUpdatesChan(cfg)

	log.Printf("telegram: logged in as @%s", b.Username())

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			b.handleUpdate(ctx, update)
		}
	}
}

func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	switch {
	case update.CallbackQuery != nil:
		b.handleCallback(update.CallbackQuery)
	case update.Message != nil && update.Message.IsCommand():
		b.handleCommand(ctx, update.Message)
	case update.Message != nil && update.Message.Text != "":
		b.handler.HandleLink(update.Message.Chat.ID, update.Message.Text)
	}
}

func (b *Bot) handleCallback(cb *tgbotapi.CallbackQuery) {
	// Stop the button spinner whatever happens next.
	if _, err := b.api.Request(tgbotapi.NewCallback(cb.ID, "")); err != nil {
		log.Printf("telegram: answer callback: %v", err)
	}
	if cb.Message == nil {
		return
	}
	b.handler.HandleCallback(cb.Message.Chat.ID, cb.Data)
}

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	switch msg.Command() {
	case "start":
		b.handleStart(ctx, msg)
	case "stats":
		b.handleStats(ctx, msg)
	default:
		// Unknown commands are ignored, matching plain chat noise.
	}
}

func (b *Bot) handleStart(ctx context.Context, msg *tgbotapi.Message) {
	if msg.From == nil {
		return
	}
	created, err := b.users.EnsureUser(ctx, domain.User{
		UserID:    msg.From.ID,
		FirstName: msg.From.FirstName,
		LastName:  msg.From.LastName,
		ChatID:    msg.Chat.ID,
	})
	if err != nil {
		log.Printf("telegram: ensure user %d: %v", msg.From.ID, err)
	}

	fullName := msg.From.FirstName
	if msg.From.LastName != "" {
		fullName += " " + msg.From.LastName
	}

	var text string
	if created {
		text = "I am a bot that can download videos from TikTok, Instagram and YouTube.\n\n" +
			"Send a link to the video you want to download 😊"
	} else {
		text = fmt.Sprintf("Hi, %s! Welcome back! 😎", fullName)
	}
	if err := b.SendText(msg.Chat.ID, text); err != nil {
		log.Printf("telegram: send greeting: %v", err)
	}
}

func (b *Bot) handleStats(ctx context.Context, msg *tgbotapi.Message) {
	count, err := b.users.CountUsers(ctx)
	if err != nil {
		log.Printf("telegram: count users: %v", err)
		return
	}
	if err := b.SendText(msg.Chat.ID, fmt.Sprintf("👥 %d users", count)); err != nil {
		log.Printf("telegram: send stats: %v", err)
	}
}
