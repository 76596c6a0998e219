package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
	"tweetcrawl/pkg/auth"
	"tweetcrawl/pkg/config"
	"tweetcrawl/pkg/ui"
)

const exampleConfig = `# tweetcrawl configuration file
#
# Every value can also be set with a TWEETCRAWL_ environment variable,
# for example TWEETCRAWL_BEARER_TOKEN or TWEETCRAWL_FORMAT.

# API credentials. Prefer 'tweetcrawl auth login', which keeps them
# out of plain files.
twitter:
  consumer_key: ""
  consumer_secret: ""
  access_token: ""
  access_secret: ""
  # App-only access instead of the four values above
  bearer_token: ""
  base_url: "https://api.twitter.com/1.1"
  timeout: 30s
  # Tweets per page; search pages are capped at 100
  page_size: 200

# Pause for cooldown when fewer than threshold calls remain.
# Rate-limit failures also wait for cooldown before retrying.
rate_limit:
  threshold: 5
  cooldown: 15m

output:
  # raw (one JSON object per line) or tsv
  format: "raw"
  # tsv columns; dotted names reach nested fields
  columns: ["id"]
  # stdout or a file path
  destination: "stdout"

logging:
  # debug, info, warn, error
  level: "info"
  # Optional JSON log file
  file: ""
`

func newConfigCmd(g *globalOptions) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage configuration files",
		Long: `Manage tweetcrawl configuration files.

Configuration can be loaded from:
  - Command line flags (highest priority)
  - Environment variables (TWEETCRAWL_*)
  - .env files
  - Configuration file
  - Default values (lowest priority)`,
	}

	var force, plain bool
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Create an example configuration file",
		Long: `Create an example configuration file with all available options.

The file is written to $HOME/.config/tweetcrawl/config.yaml unless a
different path is given with --config.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigInit(cmd, g, force, plain)
		},
	}
	initCmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")
	initCmd.Flags().BoolVar(&plain, "plain", false, "write the defaults without comments")

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		Long: `Show the configuration after merging every source.

Credentials are masked.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigShow(cmd, g)
		},
	}

	validateCmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigValidate(cmd, g)
		},
	}

	configCmd.AddCommand(initCmd, showCmd, validateCmd)
	return configCmd
}

func runConfigInit(cmd *cobra.Command, g *globalOptions, force, plain bool) error {
	path := g.configFile
	if path == "" {
		path = config.DefaultConfigPath()
	}

	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("configuration file already exists: %s (use --force to overwrite)", path)
	}

	if plain {
		if err := config.DefaultConfig().Save(path); err != nil {
			return err
		}
	} else {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
		if err := os.WriteFile(path, []byte(exampleConfig), 0600); err != nil {
			return fmt.Errorf("failed to create configuration file: %w", err)
		}
	}

	ui.PrintSuccess("Configuration file created: " + path)
	fmt.Fprintln(cmd.OutOrStdout(), "\nNext steps:")
	fmt.Fprintln(cmd.OutOrStdout(), "1. Run 'tweetcrawl auth login' to store API credentials")
	fmt.Fprintln(cmd.OutOrStdout(), "2. Run 'tweetcrawl config validate' to check the configuration")
	fmt.Fprintln(cmd.OutOrStdout(), "3. Start with 'tweetcrawl crawl -t timeline <screen_name>'")
	return nil
}

func runConfigShow(cmd *cobra.Command, g *globalOptions) error {
	cfg, err := loadConfig(g, nil)
	if err != nil {
		return err
	}

	display := *cfg
	masked := auth.SanitizeAccount(&auth.Account{
		ConsumerKey:    cfg.Twitter.ConsumerKey,
		ConsumerSecret: cfg.Twitter.ConsumerSecret,
		AccessToken:    cfg.Twitter.AccessToken,
		AccessSecret:   cfg.Twitter.AccessSecret,
		BearerToken:    cfg.Twitter.BearerToken,
	})
	display.Twitter.ConsumerKey = masked.ConsumerKey
	display.Twitter.ConsumerSecret = masked.ConsumerSecret
	display.Twitter.AccessToken = masked.AccessToken
	display.Twitter.AccessSecret = masked.AccessSecret
	display.Twitter.BearerToken = masked.BearerToken

	data, err := yaml.Marshal(&display)
	if err != nil {
		return fmt.Errorf("failed to format configuration: %w", err)
	}

	fmt.Fprint(cmd.OutOrStdout(), string(data))
	return nil
}

func runConfigValidate(cmd *cobra.Command, g *globalOptions) error {
	path := g.configFile
	if path == "" {
		path = config.FindConfigFile()
	}
	if path != "" {
		ui.PrintInfo("Validating configuration", path)
	}

	opts := *g
	opts.configFile = path
	cfg, err := loadConfig(&opts, nil)
	if err != nil {
		return err
	}

	if err := cfg.Twitter.ValidateCredentials(); err != nil {
		var joined interface{ Unwrap() []error }
		ui.PrintWarning("No complete credentials in configuration; stored accounts will be used")
		if errors.As(err, &joined) {
			for _, e := range joined.Unwrap() {
				ui.PrintWarning("  - " + e.Error())
			}
		}
	}

	if cfg.Logging.File != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.Logging.File), 0755); err != nil {
			return fmt.Errorf("cannot create log directory: %w", err)
		}
	}

	ui.PrintSuccess("Configuration is valid")
	t := table.NewWriter()
	t.SetOutputMirror(cmd.OutOrStdout())
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"Setting", "Value"})
	t.AppendRows([]table.Row{
		{"Base URL", cfg.Twitter.BaseURL},
		{"Page size", cfg.Twitter.PageSize},
		{"Quota threshold", cfg.RateLimit.Threshold},
		{"Cooldown", cfg.RateLimit.Cooldown.String()},
		{"Output", fmt.Sprintf("%s to %s", cfg.Output.Format, cfg.Output.Destination)},
		{"Log level", cfg.Logging.Level},
	})
	t.Render()
	return nil
}
