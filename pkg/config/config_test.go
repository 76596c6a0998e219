package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	if config.RateLimit.Threshold != 5 {
		t.Errorf("Expected default threshold to be 5, got %d", config.RateLimit.Threshold)
	}

	if config.RateLimit.Cooldown != 15*time.Minute {
		t.Errorf("Expected default cooldown to be 15m, got %s", config.RateLimit.Cooldown)
	}

	if config.Output.Format != "raw" {
		t.Errorf("Expected default format to be raw, got %s", config.Output.Format)
	}

	if !reflect.DeepEqual(config.Output.Columns, []string{"id"}) {
		t.Errorf("Expected default columns to be [id], got %v", config.Output.Columns)
	}

	if config.Output.Destination != "stdout" {
		t.Errorf("Expected default destination to be stdout, got %s", config.Output.Destination)
	}

	if err := config.Validate(); err != nil {
		t.Errorf("Expected default config to be valid, got %v", err)
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("TWEETCRAWL_CONSUMER_KEY", "env-consumer-key")
	t.Setenv("TWEETCRAWL_CONSUMER_SECRET", "env-consumer-secret")
	t.Setenv("TWEETCRAWL_ACCESS_TOKEN", "env-access-token")
	t.Setenv("TWEETCRAWL_ACCESS_SECRET", "env-access-secret")
	t.Setenv("TWEETCRAWL_RATE_LIMIT_THRESHOLD", "10")
	t.Setenv("TWEETCRAWL_COOLDOWN", "1m")
	t.Setenv("TWEETCRAWL_COLUMNS", "id,full_text user.screen_name")
	t.Setenv("TWEETCRAWL_LOG_LEVEL", "debug")

	config := DefaultConfig()
	if err := config.LoadFromEnv(); err != nil {
		t.Fatalf("Failed to load from environment: %v", err)
	}

	if config.Twitter.ConsumerKey != "env-consumer-key" {
		t.Errorf("Expected consumer key to be env-consumer-key, got %s", config.Twitter.ConsumerKey)
	}

	if !config.Twitter.HasCredentials() {
		t.Error("Expected credentials to be complete")
	}

	if config.RateLimit.Threshold != 10 {
		t.Errorf("Expected threshold to be 10, got %d", config.RateLimit.Threshold)
	}

	if config.RateLimit.Cooldown != time.Minute {
		t.Errorf("Expected cooldown to be 1m, got %s", config.RateLimit.Cooldown)
	}

	want := []string{"id", "full_text", "user.screen_name"}
	if !reflect.DeepEqual(config.Output.Columns, want) {
		t.Errorf("Expected columns %v, got %v", want, config.Output.Columns)
	}

	if config.Logging.Level != "debug" {
		t.Errorf("Expected log level to be debug, got %s", config.Logging.Level)
	}
}

func TestLoadFromEnvInvalidNumber(t *testing.T) {
	t.Setenv("TWEETCRAWL_RATE_LIMIT_THRESHOLD", "five")

	config := DefaultConfig()
	if err := config.LoadFromEnv(); err == nil {
		t.Error("Expected error for non-numeric threshold")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(c *Config)
		wantError bool
	}{
		{
			name:      "defaults",
			mutate:    func(c *Config) {},
			wantError: false,
		},
		{
			name:      "tsv format",
			mutate:    func(c *Config) { c.Output.Format = "TSV" },
			wantError: false,
		},
		{
			name:      "unknown format",
			mutate:    func(c *Config) { c.Output.Format = "xml" },
			wantError: true,
		},
		{
			name:      "no columns",
			mutate:    func(c *Config) { c.Output.Columns = nil },
			wantError: true,
		},
		{
			name:      "negative threshold",
			mutate:    func(c *Config) { c.RateLimit.Threshold = -1 },
			wantError: true,
		},
		{
			name:      "zero cooldown",
			mutate:    func(c *Config) { c.RateLimit.Cooldown = 0 },
			wantError: true,
		},
		{
			name:      "invalid log level",
			mutate:    func(c *Config) { c.Logging.Level = "invalid" },
			wantError: true,
		},
		{
			name:      "zero page size",
			mutate:    func(c *Config) { c.Twitter.PageSize = 0 },
			wantError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := DefaultConfig()
			tt.mutate(config)
			err := config.Validate()
			if (err != nil) != tt.wantError {
				t.Errorf("Validate() error = %v, wantError %v", err, tt.wantError)
			}
		})
	}
}

func TestValidateCredentials(t *testing.T) {
	tw := TwitterConfig{ConsumerKey: "key"}
	if err := tw.ValidateCredentials(); err == nil {
		t.Error("Expected error for partial OAuth credentials")
	}

	tw = TwitterConfig{BearerToken: "bearer"}
	if err := tw.ValidateCredentials(); err != nil {
		t.Errorf("Expected bearer token to be sufficient, got %v", err)
	}
}

func TestMergeCommandLineFlags(t *testing.T) {
	config := DefaultConfig()

	flags := map[string]interface{}{
		"format":    "tsv",
		"columns":   []string{"id", "full_text"},
		"output":    "/tmp/tweets.tsv",
		"log-level": "error",
		"threshold": 2,
		"cooldown":  time.Second,
	}

	config.MergeCommandLineFlags(flags)

	if config.Output.Format != "tsv" {
		t.Errorf("Expected format to be tsv, got %s", config.Output.Format)
	}

	if !reflect.DeepEqual(config.Output.Columns, []string{"id", "full_text"}) {
		t.Errorf("Expected columns [id full_text], got %v", config.Output.Columns)
	}

	if config.Output.Destination != "/tmp/tweets.tsv" {
		t.Errorf("Expected destination to be /tmp/tweets.tsv, got %s", config.Output.Destination)
	}

	if config.Logging.Level != "error" {
		t.Errorf("Expected log level to be error, got %s", config.Logging.Level)
	}

	if config.RateLimit.Threshold != 2 {
		t.Errorf("Expected threshold to be 2, got %d", config.RateLimit.Threshold)
	}

	if config.RateLimit.Cooldown != time.Second {
		t.Errorf("Expected cooldown to be 1s, got %s", config.RateLimit.Cooldown)
	}
}

func TestMergeCommandLineFlagsKeepsUnsetValues(t *testing.T) {
	config := DefaultConfig()
	config.MergeCommandLineFlags(map[string]interface{}{})

	if !reflect.DeepEqual(config, DefaultConfig()) {
		t.Error("Expected empty flag map to leave config unchanged")
	}
}

func TestSaveAndLoadFromFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "nested", "config.yaml")

	config := DefaultConfig()
	config.Twitter.BearerToken = "save-test-bearer"
	config.RateLimit.Cooldown = 90 * time.Second
	config.Output.Columns = []string{"id_str", "full_text"}

	if err := config.Save(configPath); err != nil {
		t.Fatalf("Failed to save config: %v", err)
	}

	info, err := os.Stat(configPath)
	if err != nil {
		t.Fatalf("Expected config file to exist: %v", err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("Expected config file mode 0600, got %v", info.Mode().Perm())
	}

	loaded := DefaultConfig()
	if err := loaded.LoadFromFile(configPath); err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if loaded.Twitter.BearerToken != "save-test-bearer" {
		t.Errorf("Expected bearer token save-test-bearer, got %s", loaded.Twitter.BearerToken)
	}

	if loaded.RateLimit.Cooldown != 90*time.Second {
		t.Errorf("Expected cooldown 1m30s, got %s", loaded.RateLimit.Cooldown)
	}

	if !reflect.DeepEqual(loaded.Output.Columns, []string{"id_str", "full_text"}) {
		t.Errorf("Expected columns [id_str full_text], got %v", loaded.Output.Columns)
	}
}

func TestLoadPrecedence(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv("HOME", tmpDir)

	configPath := filepath.Join(tmpDir, "config.yaml")
	content := []byte("output:\n  format: tsv\n  destination: from-file.tsv\nrate_limit:\n  threshold: 3\n  cooldown: 2m\n")
	if err := os.WriteFile(configPath, content, 0600); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}

	t.Setenv("TWEETCRAWL_OUTPUT", "from-env.tsv")

	config, err := Load(configPath, map[string]interface{}{"threshold": 7})
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if config.Output.Format != "tsv" {
		t.Errorf("Expected file format tsv, got %s", config.Output.Format)
	}
	if config.Output.Destination != "from-env.tsv" {
		t.Errorf("Expected env to override file destination, got %s", config.Output.Destination)
	}
	if config.RateLimit.Threshold != 7 {
		t.Errorf("Expected flag to override threshold, got %d", config.RateLimit.Threshold)
	}
	if config.RateLimit.Cooldown != 2*time.Minute {
		t.Errorf("Expected file cooldown 2m, got %s", config.RateLimit.Cooldown)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml"), nil); err == nil {
		t.Error("Expected error for explicit missing config file")
	}
}
