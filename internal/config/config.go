package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Config holds application configuration.
type Config struct {
	BotToken     string
	RapidAPIKey  string
	RapidAPIHost string

	DBPath     string
	ScratchDir string

	TikTokAPI    string // extraction API base; empty selects the public endpoint
	InstagramAPI string // scraper API base; empty derives from RapidAPIHost

	Workers       int
	JobTimeout    time.Duration
	TokenCapacity int
	TokenTTL      time.Duration
}

// fileConfig mirrors the optional TOML config file; pointer fields
// distinguish "absent" from zero.
type fileConfig struct {
	BotToken      *string   `toml:"bot_token"`
	RapidAPIKey   *string   `toml:"rapidapi_key"`
	RapidAPIHost  *string   `toml:"rapidapi_host"`
	DBPath        *string   `toml:"db_path"`
	ScratchDir    *string   `toml:"scratch_dir"`
	TikTokAPI     *string   `toml:"tiktok_api"`
	InstagramAPI  *string   `toml:"instagram_api"`
	Workers       *int      `toml:"workers"`
	JobTimeout    *duration `toml:"job_timeout"`
	TokenCapacity *int      `toml:"token_capacity"`
	TokenTTL      *duration `toml:"token_ttl"`
}

// duration lets TOML carry values like "10m".
type duration time.Duration

func (d *duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = duration(parsed)
	return nil
}

// cacheDir returns the XDG cache base.
func cacheDir() string {
	if dir := os.Getenv("XDG_CACHE_HOME"); dir != "" {
		return dir
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".cache")
}

// DefaultDBPath returns the default database path.
func DefaultDBPath() string {
	return filepath.Join(cacheDir(), "loadbot", "bot.db")
}

// DefaultScratchDir returns the default scratch directory.
func DefaultScratchDir() string {
	return filepath.Join(cacheDir(), "loadbot", "scratch")
}

// Defaults returns a Config with every non-credential field defaulted.
func Defaults() *Config {
	return &Config{
		DBPath:        DefaultDBPath(),
		ScratchDir:    DefaultScratchDir(),
		Workers:       4,
		JobTimeout:    10 * time.Minute,
		TokenCapacity: 1000,
		TokenTTL:      time.Hour,
	}
}

// Load builds the configuration: .env preload, optional TOML file from
// the -config flag, flags, then environment overrides.
func Load() *Config {
	// Credentials usually live in a .env next to the binary, like the
	// bot has always been deployed. Absence is fine.
	_ = godotenv.Load()

	cfg := Defaults()
	var configPath string
	flag.StringVar(&configPath, "config", "", "TOML config file")
	flag.StringVar(&cfg.DBPath, "db", cfg.DBPath, "SQLite database path")
	flag.StringVar(&cfg.ScratchDir, "scratch-dir", cfg.ScratchDir, "Scratch directory for downloads")
	flag.IntVar(&cfg.Workers, "workers", cfg.Workers, "Maximum concurrent fetch jobs")
	flag.DurationVar(&cfg.JobTimeout, "job-timeout", cfg.JobTimeout, "Per-job timeout")
	flag.Parse()

	if configPath != "" {
		if err := cfg.applyFile(configPath); err != nil {
			fmt.Fprintf(os.Stderr, "config: %v\n", err)
			os.Exit(1)
		}
	}

	cfg.applyEnv()
	return cfg
}

// applyFile overlays fields present in the TOML file.
func (c *Config) applyFile(path string) error {
	var fc fileConfig
	if _, err := toml.DecodeFile(path, &fc); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}

	if fc.BotToken != nil {
		c.BotToken = *fc.BotToken
	}
	if fc.RapidAPIKey != nil {
		c.RapidAPIKey = *fc.RapidAPIKey
	}
	if fc.RapidAPIHost != nil {
		c.RapidAPIHost = *fc.RapidAPIHost
	}
	if fc.DBPath != nil {
		c.DBPath = *fc.DBPath
	}
	if fc.ScratchDir != nil {
		c.ScratchDir = *fc.ScratchDir
	}
	if fc.TikTokAPI != nil {
		c.TikTokAPI = *fc.TikTokAPI
	}
	if fc.InstagramAPI != nil {
		c.InstagramAPI = *fc.InstagramAPI
	}
	if fc.Workers != nil {
		c.Workers = *fc.Workers
	}
	if fc.JobTimeout != nil {
		c.JobTimeout = time.Duration(*fc.JobTimeout)
	}
	if fc.TokenCapacity != nil {
		c.TokenCapacity = *fc.TokenCapacity
	}
	if fc.TokenTTL != nil {
		c.TokenTTL = time.Duration(*fc.TokenTTL)
	}
	return nil
}

// applyEnv overlays environment variables.
func (c *Config) applyEnv() {
	if v := os.Getenv("BOT_TOKEN"); v != "" {
		c.BotToken = v
	}
	if v := os.Getenv("RAPIDAPI_KEY"); v != "" {
		c.RapidAPIKey = v
	}
	if v := os.Getenv("RAPIDAPI_HOST"); v != "" {
		c.RapidAPIHost = v
	}
	if v := os.Getenv("LOADBOT_DB"); v != "" {
		c.DBPath = v
	}
	if v := os.Getenv("LOADBOT_SCRATCH_DIR"); v != "" {
		c.ScratchDir = v
	}
	if v := os.Getenv("LOADBOT_TIKTOK_API"); v != "" {
		c.TikTokAPI = v
	}
	if v := os.Getenv("LOADBOT_INSTAGRAM_API"); v != "" {
		c.InstagramAPI = v
	}
	if v := os.Getenv("LOADBOT_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Workers = n
		}
	}
	if v := os.Getenv("LOADBOT_JOB_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.JobTimeout = d
		}
	}
	if v := os.Getenv("LOADBOT_TOKEN_CAPACITY"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.TokenCapacity = n
		}
	}
	if v := os.Getenv("LOADBOT_TOKEN_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.TokenTTL = d
		}
	}
}

// InstagramAPIBase returns the scraper base URL, deriving it from the
// RapidAPI host unless overridden.
func (c *Config) InstagramAPIBase() string {
	if c.InstagramAPI != "" {
		return c.InstagramAPI
	}
	return "https://" + c.RapidAPIHost
}

// Validate checks required fields.
func (c *Config) Validate() error {
	if c.BotToken == "" {
		return errors.New("bot token is required (BOT_TOKEN)")
	}
	if c.Workers < 1 {
		return errors.New("workers must be at least 1")
	}
	if c.TokenCapacity < 1 {
		return errors.New("token capacity must be at least 1")
	}
	return nil
}
