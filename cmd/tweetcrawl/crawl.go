package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"tweetcrawl/pkg/auth"
	"tweetcrawl/pkg/config"
	"tweetcrawl/pkg/logger"
	"tweetcrawl/pkg/output"
	"tweetcrawl/pkg/paginator"
	"tweetcrawl/pkg/ratelimit"
	"tweetcrawl/pkg/storage"
	"tweetcrawl/pkg/twitter"
	"tweetcrawl/pkg/ui"
)

// crawlOptions holds the crawl flags
type crawlOptions struct {
	mode      string
	format    string
	columns   []string
	output    string
	account   string
	threshold int
	cooldown  time.Duration
	pageSize  int
}

func newCrawlCmd(g *globalOptions) *cobra.Command {
	o := &crawlOptions{}

	cmd := &cobra.Command{
		Use:   "crawl --type <timeline|search|streaming> PARAM...",
		Short: "Collect tweets for screen names or a search query",
		Long: `Collect every tweet reachable for the given parameters.

  timeline   PARAM... are screen names, crawled one after another
  search     PARAM... are joined with spaces into one query
  streaming  accepted but not supported; writes nothing

When the remaining API quota drops below the threshold the crawl pauses for
the cooldown (15 minutes by default) and continues. Rate-limit failures are
waited out the same way and never abort a crawl.`,
		Example: `  # Everything on two timelines, as raw JSON lines
  tweetcrawl crawl -t timeline jack biz

  # Search results as id and text columns
  tweetcrawl crawl -t search -f tsv -c id,full_text,user.screen_name golang

  # Write to a file instead of stdout
  tweetcrawl crawl -t timeline jack -o jack.jsonl`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCrawl(cmd, g, o, args)
		},
	}

	bindCrawlFlags(cmd, o)
	_ = cmd.MarkFlagRequired("type")

	return cmd
}

func bindCrawlFlags(cmd *cobra.Command, o *crawlOptions) {
	cmd.Flags().StringVarP(&o.mode, "type", "t", "", "crawl type: timeline, search or streaming")
	cmd.Flags().StringVarP(&o.format, "format", "f", "", "output format: raw or tsv (default raw)")
	cmd.Flags().StringSliceVarP(&o.columns, "columns", "c", nil, "tsv columns, dotted for nested fields (default id)")
	cmd.Flags().StringVarP(&o.output, "output", "o", "", "output file, or stdout (default stdout)")
	cmd.Flags().StringVarP(&o.account, "account", "a", "", "use a specific stored account")
	cmd.Flags().IntVar(&o.threshold, "threshold", 0, "pause when fewer API calls remain (default 5)")
	cmd.Flags().DurationVar(&o.cooldown, "cooldown", 0, "pause length after hitting the limit (default 15m)")
	cmd.Flags().IntVar(&o.pageSize, "page-size", 0, "tweets requested per page (default 200)")
}

// flags returns only the values set on the command line
func (o *crawlOptions) flags(cmd *cobra.Command) map[string]interface{} {
	values := map[string]interface{}{
		"format":    o.format,
		"columns":   o.columns,
		"output":    o.output,
		"threshold": o.threshold,
		"cooldown":  o.cooldown,
		"page-size": o.pageSize,
	}
	flags := make(map[string]interface{})
	for name, v := range values {
		if cmd.Flags().Changed(name) {
			flags[name] = v
		}
	}
	return flags
}

func runCrawl(cmd *cobra.Command, g *globalOptions, o *crawlOptions, args []string) error {
	if o.mode == "" {
		return errors.New(`required flag "type" not set`)
	}
	mode, err := paginator.ParseMode(o.mode)
	if err != nil {
		return err
	}

	cfg, err := loadConfig(g, o.flags(cmd))
	if err != nil {
		return err
	}
	log := logger.GetLogger()

	format, err := output.ParseFormat(cfg.Output.Format)
	if err != nil {
		return err
	}

	// Streaming never touches the API, so it needs no credentials.
	var client paginator.Fetcher
	if mode != paginator.ModeStreaming {
		if err := resolveCredentials(&cfg.Twitter, o.account); err != nil {
			return err
		}
		c, err := twitter.NewClient(&cfg.Twitter, log)
		if err != nil {
			return err
		}
		client = c
	}

	tracker := ui.NewStatusTracker()
	collector := paginator.New(client, paginator.Options{
		Guard: ratelimit.Guard{
			Threshold: cfg.RateLimit.Threshold,
			Cooldown:  cfg.RateLimit.Cooldown,
		},
		Logger: log,
		OnPage: func(_ paginator.Mode, _ string, _, items int) {
			tracker.AddPage(items)
		},
		OnCooldown: func(endpoint twitter.Endpoint, reason string, d time.Duration) {
			tracker.AddCooldown(d)
			ui.PrintWarning(ui.CooldownNotice(endpoint.Path, reason, d, time.Now()))
		},
	})

	log.WithFields(map[string]interface{}{
		"mode":   mode.String(),
		"params": args,
		"format": string(format),
	}).Info("Crawl started")

	tweets, err := collector.Collect(cmd.Context(), paginator.Request{Mode: mode, Params: args})
	if err != nil {
		log.WithError(err).WithField("collected", len(tweets)).Error("Crawl failed")
		return fmt.Errorf("crawl failed after %d tweets: %w", len(tweets), err)
	}

	text, err := output.Render(tweets, format, cfg.Output.Columns)
	if err != nil {
		return err
	}

	w := storage.NewWriterTo(cfg.Output.Destination, cmd.OutOrStdout())
	if err := w.Write(text); err != nil {
		return err
	}

	log.WithField("tweets", len(tweets)).Info("Crawl finished")
	ui.PrintInfo("Collected", tracker.Summary())
	if !w.IsStdout() {
		ui.PrintSuccess("Output written to " + w.Destination())
	}
	return nil
}

// resolveCredentials fills cfg from the credential store unless the config
// or environment already carries a full set
func resolveCredentials(cfg *config.TwitterConfig, account string) error {
	if account == "" && cfg.HasCredentials() {
		return nil
	}

	manager, err := newCredentialManager()
	if err != nil {
		return fmt.Errorf("failed to initialize credential manager: %w", err)
	}

	var acct *auth.Account
	if account != "" {
		acct, err = manager.Retrieve(account)
	} else {
		acct, err = manager.RetrieveDefault()
	}
	if err != nil {
		return fmt.Errorf("%w\nrun 'tweetcrawl auth login' to store credentials", err)
	}

	acct.ApplyTo(cfg)
	logger.WithField("account", acct.Name).Info("Using stored credentials")
	return cfg.ValidateCredentials()
}
