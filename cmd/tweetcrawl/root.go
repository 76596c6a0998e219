package main

import (
	"context"
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
	"tweetcrawl/pkg/auth"
	"tweetcrawl/pkg/config"
	"tweetcrawl/pkg/logger"
	"tweetcrawl/pkg/ui"
)

var (
	// Version information
	version   = "1.0.0"
	gitCommit = "unknown"
	buildDate = "unknown"
)

// newCredentialManager is replaced in tests to keep the system keychain out
var newCredentialManager = auth.NewManager

// globalOptions holds the persistent flags shared by every command
type globalOptions struct {
	configFile string
	logLevel   string
	quiet      bool
	verbose    bool
}

// newRootCmd builds the command tree. The root command crawls when given
// arguments, as `tweetcrawl -t timeline jack`.
func newRootCmd() *cobra.Command {
	g := &globalOptions{}
	crawl := &crawlOptions{}

	rootCmd := &cobra.Command{
		Use:   "tweetcrawl [flags] PARAM...",
		Short: "Collect tweets from user timelines or search results",
		Long: `tweetcrawl pages through the Twitter REST API and writes every tweet it finds.

Features:
  - Timeline crawls for one or more screen names
  - Search crawls for a query
  - Pauses for the rate-limit window instead of failing
  - Raw JSON lines or tab-separated columns
  - Credentials kept in the system keychain or an encrypted file`,
		Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, gitCommit, buildDate),
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			ui.SetQuietMode(g.quiet)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 && crawl.mode == "" {
				return cmd.Help()
			}
			return runCrawl(cmd, g, crawl, args)
		},
	}

	rootCmd.PersistentFlags().StringVar(&g.configFile, "config", "", "config file (default is $HOME/.config/tweetcrawl/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&g.logLevel, "log-level", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVarP(&g.quiet, "quiet", "q", false, "suppress all notices except errors")
	rootCmd.PersistentFlags().BoolVarP(&g.verbose, "verbose", "v", false, "log every request and page")

	bindCrawlFlags(rootCmd, crawl)

	rootCmd.AddCommand(newCrawlCmd(g))
	rootCmd.AddCommand(newAuthCmd())
	rootCmd.AddCommand(newConfigCmd(g))
	rootCmd.AddCommand(newVersionCmd())

	rootCmd.SetVersionTemplate(versionText())
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	return rootCmd
}

// Execute runs the command line and returns the process exit status
func Execute(ctx context.Context, args []string) int {
	rootCmd := newRootCmd()
	rootCmd.SetArgs(args)

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		logger.WithError(err).Debug("Command failed")
		ui.PrintError("Error", err)
		return 1
	}
	return 0
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprint(cmd.OutOrStdout(), versionText())
		},
	}
}

func versionText() string {
	return fmt.Sprintf("tweetcrawl %s (commit: %s, built: %s)\nGo Version: %s\nOS/Arch: %s/%s\n",
		version, gitCommit, buildDate, runtime.Version(), runtime.GOOS, runtime.GOARCH)
}

// loadConfig loads configuration with flags applied and sets up logging
func loadConfig(g *globalOptions, flags map[string]interface{}) (*config.Config, error) {
	if flags == nil {
		flags = make(map[string]interface{})
	}
	switch {
	case g.logLevel != "":
		flags["log-level"] = g.logLevel
	case g.verbose:
		flags["log-level"] = "debug"
	case g.quiet:
		flags["log-level"] = "error"
	}

	cfg, err := config.Load(g.configFile, flags)
	if err != nil {
		return nil, err
	}

	if err := logger.Initialize(&cfg.Logging); err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return cfg, nil
}
