package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/meryload/loadbot/internal/adapter/fetcher"
	"github.com/meryload/loadbot/internal/adapter/ffmpeg"
	"github.com/meryload/loadbot/internal/adapter/sqlite"
	"github.com/meryload/loadbot/internal/adapter/telegram"
	"github.com/meryload/loadbot/internal/artifact"
	"github.com/meryload/loadbot/internal/config"
	"github.com/meryload/loadbot/internal/dispatch"
	"github.com/meryload/loadbot/internal/token"
)

func main() {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	log.Printf("starting loadbot")
	log.Printf("database: %s", cfg.DBPath)
	log.Printf("scratch dir: %s", cfg.ScratchDir)

	// Initialize SQLite user repository
	repo, err := sqlite.New(cfg.DBPath)
	if err != nil {
		log.Fatalf("failed to initialize database: %v", err)
	}
	defer repo.Close()

	// Initialize artifact store
	store, err := artifact.NewStore(cfg.ScratchDir)
	if err != nil {
		log.Fatalf("failed to initialize artifact store: %v", err)
	}

	// Initialize token registry
	tokens := token.New(cfg.TokenCapacity, cfg.TokenTTL)

	// Initialize fetch backends
	transcoder := ffmpeg.New()
	registry := fetcher.NewRegistry()
	registry.Register(fetcher.NewYouTubeFetcher(store, transcoder))
	registry.Register(fetcher.NewTikTokFetcher(store, cfg.TikTokAPI))
	registry.Register(fetcher.NewInstagramFetcher(store, cfg.InstagramAPIBase(), cfg.RapidAPIKey, cfg.RapidAPIHost))

	// Initialize Telegram transport
	bot, err := telegram.New(cfg.BotToken, repo)
	if err != nil {
		log.Fatalf("failed to connect to Telegram: %v", err)
	}

	// Initialize dispatcher
	dispatcher := dispatch.New(registry, tokens, store, transcoder, bot, cfg.Workers, cfg.JobTimeout)
	bot.SetHandler(dispatcher)

	// Graceful shutdown setup
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		log.Printf("received signal %v, shutting down", sig)
		cancel()
	}()

	// Run the update loop until cancelled
	bot.Run(ctx)

	// Let in-flight fetch jobs finish before closing the database
	log.Println("waiting for in-flight jobs")
	dispatcher.Wait()

	log.Println("shutdown complete")
}
