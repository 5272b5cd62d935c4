package telegram

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// SendText sends a plain text message.
func (b *Bot) SendText(chatID int64, text string) error {
	_, err := b.api.Send(tgbotapi.NewMessage(chatID, text))
	if err != nil {
		return fmt.Errorf("telegram: send message: %w", err)
	}
	return nil
}

// SendVideo uploads a local video file. A non-empty callbackData attaches
// a single convert-to-MP3 button carrying that payload.
func (b *Bot) SendVideo(chatID int64, path, caption, callbackData string) error {
	video := tgbotapi.NewVideo(chatID, tgbotapi.FilePath(path))
	video.Caption = caption
	if callbackData != "" {
		video.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
			tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData(convertButtonText, callbackData),
			),
		)
	}
	if _, err := b.api.Send(video); err != nil {
		return fmt.Errorf("telegram: send video: %w", err)
	}
	return nil
}

// SendPhotoSet uploads the carousel as one media group, preserving order.
func (b *Bot) SendPhotoSet(chatID int64, paths []string, caption string) error {
	media := make([]interface{}, 0, len(paths))
	for i, path := range paths {
		photo := tgbotapi.NewInputMediaPhoto(tgbotapi.FilePath(path))
		// Telegram shows a media group's caption from its first item.
		if i == 0 {
			photo.Caption = caption
		}
		media = append(media, photo)
	}
	if _, err := b.api.SendMediaGroup(tgbotapi.NewMediaGroup(chatID, media)); err != nil {
		return fmt.Errorf("telegram: send media group: %w", err)
	}
	return nil
}

// SendAudio uploads a local audio file; caption doubles as the track
// title when set.
func (b *Bot) SendAudio(chatID int64, path, caption string) error {
	audio := tgbotapi.NewAudio(chatID, tgbotapi.FilePath(path))
	audio.Caption = caption
	audio.Title = caption
	if _, err := b.api.Send(audio); err != nil {
		return fmt.Errorf("telegram: send audio: %w", err)
	}
	return nil
}
