package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefaults(t *testing.T) {
	cfg := Defaults()

	if cfg.Workers != 4 {
		t.Errorf("Workers = %d, want 4", cfg.Workers)
	}
	if cfg.JobTimeout != 10*time.Minute {
		t.Errorf("JobTimeout = %v, want 10m", cfg.JobTimeout)
	}
	if cfg.TokenCapacity != 1000 {
		t.Errorf("TokenCapacity = %d, want 1000", cfg.TokenCapacity)
	}
	if cfg.TokenTTL != time.Hour {
		t.Errorf("TokenTTL = %v, want 1h", cfg.TokenTTL)
	}
	if !strings.Contains(cfg.DBPath, "loadbot") {
		t.Errorf("DBPath = %q, want a loadbot cache path", cfg.DBPath)
	}
}

func TestDefaultPaths_XDG(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "/tmp/cache")

	if got, want := DefaultDBPath(), "/tmp/cache/loadbot/bot.db"; got != want {
		t.Errorf("DefaultDBPath() = %q, want %q", got, want)
	}
	if got, want := DefaultScratchDir(), "/tmp/cache/loadbot/scratch"; got != want {
		t.Errorf("DefaultScratchDir() = %q, want %q", got, want)
	}
}

func TestApplyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
bot_token = "123:abc"
rapidapi_key = "key"
rapidapi_host = "scraper.example.com"
scratch_dir = "/data/scratch"
workers = 8
job_timeout = "5m"
token_ttl = "30m"
token_capacity = 50
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	cfg := Defaults()
	if err := cfg.applyFile(path); err != nil {
		t.Fatalf("applyFile() error = %v", err)
	}

	if cfg.BotToken != "123:abc" {
		t.Errorf("BotToken = %q, want %q", cfg.BotToken, "123:abc")
	}
	if cfg.ScratchDir != "/data/scratch" {
		t.Errorf("ScratchDir = %q, want %q", cfg.ScratchDir, "/data/scratch")
	}
	if cfg.Workers != 8 {
		t.Errorf("Workers = %d, want 8", cfg.Workers)
	}
	if cfg.JobTimeout != 5*time.Minute {
		t.Errorf("JobTimeout = %v, want 5m", cfg.JobTimeout)
	}
	if cfg.TokenTTL != 30*time.Minute {
		t.Errorf("TokenTTL = %v, want 30m", cfg.TokenTTL)
	}
	if cfg.TokenCapacity != 50 {
		t.Errorf("TokenCapacity = %d, want 50", cfg.TokenCapacity)
	}
	// Fields absent from the file keep their defaults.
	if cfg.DBPath != DefaultDBPath() {
		t.Errorf("DBPath = %q, want default", cfg.DBPath)
	}
}

func TestApplyFile_PartialKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(`workers = 2`), 0644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	cfg := Defaults()
	if err := cfg.applyFile(path); err != nil {
		t.Fatalf("applyFile() error = %v", err)
	}
	if cfg.Workers != 2 {
		t.Errorf("Workers = %d, want 2", cfg.Workers)
	}
	if cfg.JobTimeout != 10*time.Minute {
		t.Errorf("JobTimeout = %v, want default 10m", cfg.JobTimeout)
	}
}

func TestApplyFile_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(`workers = "many"`), 0644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	cfg := Defaults()
	if err := cfg.applyFile(path); err == nil {
		t.Error("applyFile() error = nil, want decode failure")
	}
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("BOT_TOKEN", "env-token")
	t.Setenv("RAPIDAPI_KEY", "env-key")
	t.Setenv("RAPIDAPI_HOST", "env-host")
	t.Setenv("LOADBOT_WORKERS", "12")
	t.Setenv("LOADBOT_SCRATCH_DIR", "/env/scratch")
	t.Setenv("LOADBOT_JOB_TIMEOUT", "3m")
	t.Setenv("LOADBOT_TOKEN_CAPACITY", "25")
	t.Setenv("LOADBOT_TOKEN_TTL", "15m")

	cfg := Defaults()
	cfg.applyEnv()

	if cfg.BotToken != "env-token" {
		t.Errorf("BotToken = %q, want %q", cfg.BotToken, "env-token")
	}
	if cfg.RapidAPIKey != "env-key" {
		t.Errorf("RapidAPIKey = %q, want %q", cfg.RapidAPIKey, "env-key")
	}
	if cfg.Workers != 12 {
		t.Errorf("Workers = %d, want 12", cfg.Workers)
	}
	if cfg.ScratchDir != "/env/scratch" {
		t.Errorf("ScratchDir = %q, want %q", cfg.ScratchDir, "/env/scratch")
	}
	if cfg.JobTimeout != 3*time.Minute {
		t.Errorf("JobTimeout = %v, want 3m", cfg.JobTimeout)
	}
	if cfg.TokenCapacity != 25 {
		t.Errorf("TokenCapacity = %d, want 25", cfg.TokenCapacity)
	}
	if cfg.TokenTTL != 15*time.Minute {
		t.Errorf("TokenTTL = %v, want 15m", cfg.TokenTTL)
	}
}

func TestApplyEnv_IgnoresUnparsable(t *testing.T) {
	t.Setenv("LOADBOT_WORKERS", "many")
	t.Setenv("LOADBOT_JOB_TIMEOUT", "soon")

	cfg := Defaults()
	cfg.applyEnv()

	if cfg.Workers != 4 {
		t.Errorf("Workers = %d, want default 4", cfg.Workers)
	}
	if cfg.JobTimeout != 10*time.Minute {
		t.Errorf("JobTimeout = %v, want default 10m", cfg.JobTimeout)
	}
}

func TestInstagramAPIBase(t *testing.T) {
	cfg := Defaults()
	cfg.RapidAPIHost = "scraper.p.rapidapi.com"
	if got, want := cfg.InstagramAPIBase(), "https://scraper.p.rapidapi.com"; got != want {
		t.Errorf("InstagramAPIBase() = %q, want %q", got, want)
	}

	cfg.InstagramAPI = "http://127.0.0.1:9999"
	if got := cfg.InstagramAPIBase(); got != "http://127.0.0.1:9999" {
		t.Errorf("InstagramAPIBase() = %q, want the override", got)
	}
}

func TestValidate(t *testing.T) {
	cfg := Defaults()
	if err := cfg.Validate(); err == nil {
		t.Error("Validate() error = nil, want missing-token failure")
	}

	cfg.BotToken = "123:abc"
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}

	cfg.Workers = 0
	if err := cfg.Validate(); err == nil {
		t.Error("Validate() error = nil, want workers failure")
	}

	cfg.Workers = 4
	cfg.TokenCapacity = 0
	if err := cfg.Validate(); err == nil {
		t.Error("Validate() error = nil, want token capacity failure")
	}
}
