package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const envPrefix = "TWEETCRAWL_"

// Config holds all configuration options for the crawler
type Config struct {
	// Twitter API credentials and client settings
	Twitter TwitterConfig `yaml:"twitter" json:"twitter"`

	// Quota guard configuration
	RateLimit RateLimitConfig `yaml:"rate_limit" json:"rate_limit"`

	// Output settings
	Output OutputConfig `yaml:"output" json:"output"`

	// Logging configuration
	Logging LoggingConfig `yaml:"logging" json:"logging"`
}

// TwitterConfig holds API credentials and HTTP client settings
type TwitterConfig struct {
	ConsumerKey    string        `yaml:"consumer_key" json:"consumer_key"`
	ConsumerSecret string        `yaml:"consumer_secret" json:"consumer_secret"`
	AccessToken    string        `yaml:"access_token" json:"access_token"`
	AccessSecret   string        `yaml:"access_secret" json:"access_secret"`
	BearerToken    string        `yaml:"bearer_token" json:"bearer_token"`
	BaseURL        string        `yaml:"base_url" json:"base_url"`
	Timeout        time.Duration `yaml:"timeout" json:"timeout"`
	PageSize       int           `yaml:"page_size" json:"page_size"`
}

// RateLimitConfig controls the pre-emptive quota guard and the cooldown
// used after a rate-limit failure
type RateLimitConfig struct {
	Threshold int           `yaml:"threshold" json:"threshold"`
	Cooldown  time.Duration `yaml:"cooldown" json:"cooldown"`
}

// OutputConfig holds output encoding and destination
type OutputConfig struct {
	Format      string   `yaml:"format" json:"format"`
	Columns     []string `yaml:"columns" json:"columns"`
	Destination string   `yaml:"destination" json:"destination"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level string `yaml:"level" json:"level"`
	File  string `yaml:"file" json:"file"`
}

// DefaultConfig returns a Config instance with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Twitter: TwitterConfig{
			BaseURL:  "https://api.twitter.com/1.1",
			Timeout:  30 * time.Second,
			PageSize: 200,
		},
		RateLimit: RateLimitConfig{
			Threshold: 5,
			Cooldown:  15 * time.Minute,
		},
		Output: OutputConfig{
			Format:      "raw",
			Columns:     []string{"id"},
			Destination: "stdout",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// LoadFromEnv loads configuration from environment variables
func (c *Config) LoadFromEnv() error {
	strs := map[string]*string{
		"CONSUMER_KEY":    &c.Twitter.ConsumerKey,
		"CONSUMER_SECRET": &c.Twitter.ConsumerSecret,
		"ACCESS_TOKEN":    &c.Twitter.AccessToken,
		"ACCESS_SECRET":   &c.Twitter.AccessSecret,
		"BEARER_TOKEN":    &c.Twitter.BearerToken,
		"BASE_URL":        &c.Twitter.BaseURL,
		"FORMAT":          &c.Output.Format,
		"OUTPUT":          &c.Output.Destination,
		"LOG_LEVEL":       &c.Logging.Level,
		"LOG_FILE":        &c.Logging.File,
	}
	for name, dst := range strs {
		if v := os.Getenv(envPrefix + name); v != "" {
			*dst = v
		}
	}

	if v := os.Getenv(envPrefix + "COLUMNS"); v != "" {
		c.Output.Columns = splitList(v)
	}

	if v := os.Getenv(envPrefix + "RATE_LIMIT_THRESHOLD"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %sRATE_LIMIT_THRESHOLD: %w", envPrefix, err)
		}
		c.RateLimit.Threshold = n
	}
	if v := os.Getenv(envPrefix + "COOLDOWN"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid %sCOOLDOWN: %w", envPrefix, err)
		}
		c.RateLimit.Cooldown = d
	}
	if v := os.Getenv(envPrefix + "PAGE_SIZE"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %sPAGE_SIZE: %w", envPrefix, err)
		}
		c.Twitter.PageSize = n
	}

	return nil
}

// LoadFromFile loads configuration from a YAML file
func (c *Config) LoadFromFile(path string) error {
	// If path is empty, try default locations
	if path == "" {
		path = FindConfigFile()
		if path == "" {
			return nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	return nil
}

// FindConfigFile searches for a config file in standard locations
func FindConfigFile() string {
	home := os.Getenv("HOME")
	locations := []string{
		".tweetcrawl.yaml",
		".tweetcrawl.yml",
		filepath.Join(home, ".config", "tweetcrawl", "config.yaml"),
		filepath.Join(home, ".config", "tweetcrawl", "config.yml"),
		filepath.Join(home, ".tweetcrawl.yaml"),
		filepath.Join(home, ".tweetcrawl.yml"),
	}

	for _, loc := range locations {
		if _, err := os.Stat(loc); err == nil {
			return loc
		}
	}

	return ""
}

// DefaultConfigPath is where `config init` writes when no path is given
func DefaultConfigPath() string {
	return filepath.Join(os.Getenv("HOME"), ".config", "tweetcrawl", "config.yaml")
}

// HasCredentials reports whether enough credentials are present to sign
// requests, either OAuth 1.0a user context or an app-only bearer token.
func (t *TwitterConfig) HasCredentials() bool {
	if t.BearerToken != "" {
		return true
	}
	return t.ConsumerKey != "" && t.ConsumerSecret != "" &&
		t.AccessToken != "" && t.AccessSecret != ""
}

// ValidateCredentials reports which credentials are missing
func (t *TwitterConfig) ValidateCredentials() error {
	if t.HasCredentials() {
		return nil
	}

	var errs []error
	if t.ConsumerKey == "" {
		errs = append(errs, errors.New("consumer key is required"))
	}
	if t.ConsumerSecret == "" {
		errs = append(errs, errors.New("consumer secret is required"))
	}
	if t.AccessToken == "" {
		errs = append(errs, errors.New("access token is required"))
	}
	if t.AccessSecret == "" {
		errs = append(errs, errors.New("access secret is required"))
	}
	return fmt.Errorf("missing Twitter credentials (or set a bearer token): %w", errors.Join(errs...))
}

// Validate checks if the configuration is valid. Credentials are checked
// separately because they may come from the credential store.
func (c *Config) Validate() error {
	var errs []error

	if c.Twitter.BaseURL == "" {
		errs = append(errs, errors.New("twitter base URL is required"))
	}
	if c.Twitter.Timeout <= 0 {
		errs = append(errs, errors.New("twitter timeout must be positive"))
	}
	if c.Twitter.PageSize <= 0 {
		errs = append(errs, errors.New("page size must be positive"))
	}

	if c.RateLimit.Threshold < 0 {
		errs = append(errs, errors.New("rate limit threshold cannot be negative"))
	}
	if c.RateLimit.Cooldown <= 0 {
		errs = append(errs, errors.New("cooldown must be positive"))
	}

	validFormats := map[string]bool{"raw": true, "tsv": true, "columnar": true}
	if !validFormats[strings.ToLower(strings.TrimSpace(c.Output.Format))] {
		errs = append(errs, fmt.Errorf("invalid output format: %q", c.Output.Format))
	}
	if len(c.Output.Columns) == 0 {
		errs = append(errs, errors.New("at least one output column is required"))
	}
	if c.Output.Destination == "" {
		errs = append(errs, errors.New("output destination is required"))
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true, "disabled": true,
	}
	if !validLogLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, fmt.Errorf("invalid log level: %q", c.Logging.Level))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}

// Save saves the configuration to a file
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// MergeCommandLineFlags merges command line flags into the configuration.
// Only keys present in the map override the loaded values.
func (c *Config) MergeCommandLineFlags(flags map[string]interface{}) {
	if format, ok := flags["format"].(string); ok && format != "" {
		c.Output.Format = format
	}
	if columns, ok := flags["columns"].([]string); ok && len(columns) > 0 {
		c.Output.Columns = columns
	}
	if output, ok := flags["output"].(string); ok && output != "" {
		c.Output.Destination = output
	}
	if logLevel, ok := flags["log-level"].(string); ok && logLevel != "" {
		c.Logging.Level = logLevel
	}
	if threshold, ok := flags["threshold"].(int); ok && threshold >= 0 {
		c.RateLimit.Threshold = threshold
	}
	if cooldown, ok := flags["cooldown"].(time.Duration); ok && cooldown > 0 {
		c.RateLimit.Cooldown = cooldown
	}
	if pageSize, ok := flags["page-size"].(int); ok && pageSize > 0 {
		c.Twitter.PageSize = pageSize
	}
}

// Load loads configuration from all sources with proper precedence
// Precedence order: Command line flags > Environment variables > .env file > Config file > Defaults
func Load(configPath string, flags map[string]interface{}) (*Config, error) {
	// Missing .env files are not an error
	_ = godotenv.Load(".env")
	_ = godotenv.Load(filepath.Join(os.Getenv("HOME"), ".tweetcrawl.env"))

	config := DefaultConfig()

	if err := config.LoadFromFile(configPath); err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}

	if err := config.LoadFromEnv(); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	config.MergeCommandLineFlags(flags)

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

func splitList(v string) []string {
	return strings.FieldsFunc(v, func(r rune) bool { return r == ',' || r == ' ' })
}
