package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/nao1215/philowalk/internal/config"
	"github.com/nao1215/philowalk/internal/crawler"
	"github.com/nao1215/philowalk/internal/database"
	"github.com/nao1215/philowalk/internal/model"
	"github.com/nao1215/philowalk/internal/report"
	"github.com/nao1215/philowalk/internal/tor"
	"github.com/nao1215/philowalk/internal/walk"
	"github.com/spf13/cobra"
)

// flagKeys maps walk flags to the configuration file keys they override.
var flagKeys = map[string]string{
	"base-url":   config.KeyBaseURL,
	"user-agent": config.KeyUserAgent,
	"delay":      config.KeyStepDelay,
	"max-steps":  config.KeyMaxSteps,
	"timeout":    config.KeyTimeout,
}

// NewWalkCmd creates the walk command.
func NewWalkCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "walk [topic...]",
		Short: "Walk from a topic to Philosophy by following first links",
		Long: `Walk fetches the Wikipedia article for a starting topic, follows the first
link of its main text that is not inside parentheses or italics, and repeats
until it reaches the article "Philosophy".

Every article on the way is printed. When the walk runs into a missing
article, a non-article page, or an article without a usable link, it prints
a notice and starts over with the next topic. Without arguments the topics
are read from standard input; with arguments they are used in order.

Examples:
  # Prompt for a starting topic
  philowalk walk

  # Start from a topic, falling back to the next one on failure
  philowalk walk "Ice cream" Tea

  # Walk several topics concurrently, each on its own
  philowalk walk -b 4 Tea Coffee Bread Salt

  # Give up an attempt after 50 links and write a Markdown report
  philowalk walk -n 50 -m -o report.md "Ice cream"

  # Route requests through an embedded Tor daemon
  philowalk walk --tor Tea

  # Use a running Tor proxy instead
  philowalk walk --external-tor 127.0.0.1:9150 Tea`,
		Args: cobra.ArbitraryArgs,
		RunE: runWalkCmd,
	}

	// Walk behavior flags
	cmd.Flags().StringP("base-url", "u", config.DefaultBaseURL,
		"Article path prefix the topic is appended to")
	cmd.Flags().DurationP("timeout", "t", config.DefaultTimeout,
		"Timeout for each request")
	cmd.Flags().IntP("max-steps", "n", config.DefaultMaxSteps,
		"Give up an attempt after this many links (0 = no limit)")
	cmd.Flags().DurationP("delay", "D", config.DefaultStepDelay,
		"Pause between article fetches")
	cmd.Flags().StringP("user-agent", "A", config.DefaultUserAgent,
		"User-Agent header sent with every request")

	// Batch flags
	cmd.Flags().IntP("batch", "b", 0,
		"Walk every topic independently with this many concurrent walks (0 = off)")

	// Configuration file
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .philowalk in current or home directory)")

	// Report flags
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON report (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown report (mutually exclusive with --json)")
	cmd.Flags().StringP("output", "o", "",
		"Write report to specified file path (creates directories if needed)")

	// History and cache flags
	cmd.Flags().Bool("no-db", false,
		"Do not record the walk in the history database")
	cmd.Flags().String("db-dir", config.XDGDataDir(),
		"Directory of the history database")
	cmd.Flags().Duration("cache-ttl", 0,
		"Reuse first links fetched within this duration (0 = no cache)")

	// Tor flags
	cmd.Flags().Bool("tor", false,
		"Route requests through an embedded Tor daemon")
	cmd.Flags().StringP("external-tor", "e", "",
		"Route requests through the Tor proxy at this address (e.g., 127.0.0.1:9150)")
	cmd.Flags().DurationP("tor-timeout", "T", config.DefaultTorStartupTimeout,
		"Timeout for embedded Tor startup")

	return cmd
}

// runWalkCmd executes the walk command.
func runWalkCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := setupLogger(cmd, cfg.Verbose)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return runWalk(ctx, cmd, cfg, logger)
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// buildConfig creates a Config from defaults, the configuration file and
// cobra command flags, in increasing order of precedence.
func buildConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()
	flags := cmd.Flags()

	var err error
	if cfg.BaseURL, err = flags.GetString("base-url"); err != nil {
		return nil, err
	}
	if cfg.Timeout, err = flags.GetDuration("timeout"); err != nil {
		return nil, err
	}
	if cfg.MaxSteps, err = flags.GetInt("max-steps"); err != nil {
		return nil, err
	}
	if cfg.StepDelay, err = flags.GetDuration("delay"); err != nil {
		return nil, err
	}
	if cfg.UserAgent, err = flags.GetString("user-agent"); err != nil {
		return nil, err
	}
	if cfg.BatchSize, err = flags.GetInt("batch"); err != nil {
		return nil, err
	}
	if cfg.ConfigFilePath, err = flags.GetString("config"); err != nil {
		return nil, err
	}
	if cfg.JSONReport, err = flags.GetBool("json"); err != nil {
		return nil, err
	}
	if cfg.MarkdownReport, err = flags.GetBool("markdown"); err != nil {
		return nil, err
	}
	if cfg.ReportFile, err = flags.GetString("output"); err != nil {
		return nil, err
	}
	if cfg.DBDir, err = flags.GetString("db-dir"); err != nil {
		return nil, err
	}
	if cfg.CacheTTL, err = flags.GetDuration("cache-ttl"); err != nil {
		return nil, err
	}
	if cfg.TorStartupTimeout, err = flags.GetDuration("tor-timeout"); err != nil {
		return nil, err
	}

	noDB, err := flags.GetBool("no-db")
	if err != nil {
		return nil, err
	}
	cfg.SaveToDB = !noDB

	if cfg.UseTor, err = flags.GetBool("tor"); err != nil {
		return nil, err
	}
	externalTor, err := flags.GetString("external-tor")
	if err != nil {
		return nil, err
	}
	if externalTor != "" {
		cfg.UseTor = true
		cfg.UseExternalTor = true
		cfg.TorProxyAddress = externalTor
	}

	cfg.Verbose = getVerboseFlag(cmd)
	cfg.Topics = args

	// If user explicitly specified a config file path, error if not found.
	// If no path specified, silently keep the defaults if no file found.
	configPath := config.FindConfigFile(cfg.ConfigFilePath)
	switch {
	case configPath != "":
		file, err := config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
		file.Apply(cfg, pinnedKeys(cmd)...)
	case cfg.ConfigFilePath != "":
		return nil, fmt.Errorf("%w: %s", config.ErrConfigNotFound, cfg.ConfigFilePath)
	}

	return cfg, nil
}

// pinnedKeys returns the configuration keys set explicitly on the command line.
func pinnedKeys(cmd *cobra.Command) []string {
	var keys []string
	for flag, key := range flagKeys {
		if cmd.Flags().Changed(flag) {
			keys = append(keys, key)
		}
	}
	return keys
}

// runWalk executes the walk.
func runWalk(ctx context.Context, cmd *cobra.Command, cfg *config.Config, logger *slog.Logger) error {
	logger.Info("starting walk",
		"topics", cfg.Topics,
		"base_url", cfg.BaseURL,
		"batch_size", cfg.BatchSize,
		"max_steps", cfg.MaxSteps,
		"use_tor", cfg.UseTor,
		"save_to_db", cfg.SaveToDB,
	)

	// Open database connection if history or cache needs it
	var db *database.WalkDB
	if cfg.SaveToDB || cfg.CacheTTL > 0 {
		var err error
		db, err = database.Open(cfg.DBDir, database.DefaultOptions())
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer db.Close()
		logger.Debug("database opened", "path", db.Path())
	}

	// With --no-db the database serves only the link cache.
	historyDB := db
	if !cfg.SaveToDB {
		historyDB = nil
	}

	client, closeClient, err := newHTTPClient(ctx, cmd, cfg, logger)
	if err != nil {
		return err
	}
	defer closeClient()

	fetcher := crawler.NewHTTPFetcher(client,
		crawler.WithBaseURL(cfg.BaseURL),
		crawler.WithUserAgent(cfg.UserAgent),
		crawler.WithMaxBodySize(cfg.MaxBodySize),
		crawler.WithHeaders(cfg.Headers),
		crawler.WithCookie(cfg.Cookie),
		crawler.WithFetcherLogger(logger),
	)

	// Keep stdout clean for a machine-readable report.
	progressOut := cmd.OutOrStdout()
	if (cfg.JSONReport || cfg.MarkdownReport) && cfg.ReportFile == "" {
		progressOut = cmd.ErrOrStderr()
	}
	printer := report.NewProgressPrinter(progressOut, report.WithProgressVerbose(cfg.Verbose))

	newEngine := func(topic string, source walk.TopicSource) *walk.Engine {
		var observer walk.Observer = printer
		if topic != "" {
			observer = printer.ForTopic(topic)
		}
		opts := []walk.Option{
			walk.WithLogger(logger),
			walk.WithObserver(observer),
			walk.WithMaxSteps(cfg.MaxSteps),
			walk.WithStepDelay(cfg.StepDelay),
		}
		if db != nil && cfg.CacheTTL > 0 {
			opts = append(opts, walk.WithLinkCache(db.LinkCache(cfg.CacheTTL)))
		}
		return walk.NewEngine(fetcher, source, opts...)
	}

	out, closeOut, err := openReportOutput(cmd, cfg)
	if err != nil {
		return err
	}
	defer closeOut()
	writer := newReportWriter(cfg, out)

	if cfg.BatchSize > 0 && len(cfg.Topics) > 0 {
		return runBatchWalk(ctx, cmd, cfg, newEngine, writer, historyDB, logger)
	}

	var source walk.TopicSource
	if len(cfg.Topics) > 0 {
		source = walk.NewListSource(cfg.Topics...)
	} else {
		source = walk.NewPromptSource(cmd.InOrStdin(), progressOut)
	}

	walkReport, err := newEngine("", source).Run(ctx)
	finishWalk(ctx, writer, historyDB, walkReport, logger)

	switch {
	case err == nil:
		return nil
	case errors.Is(err, walk.ErrNoMoreTopics):
		logger.Debug("no more starting topics")
		return nil
	case ctx.Err() != nil:
		logger.Info("walk interrupted")
		return nil
	default:
		return err
	}
}

// runBatchWalk walks every topic independently using BatchRunner.
func runBatchWalk(
	ctx context.Context,
	cmd *cobra.Command,
	cfg *config.Config,
	newEngine walk.EngineFactory,
	writer report.Writer,
	db *database.WalkDB,
	logger *slog.Logger,
) error {
	logger.Info("starting batch walk",
		"topics", len(cfg.Topics),
		"concurrency", cfg.BatchSize,
	)
	startTime := time.Now()

	runner := walk.NewBatchRunner(newEngine,
		walk.WithConcurrency(cfg.BatchSize),
		walk.WithBatchLogger(logger),
	)

	// JSON output is a single array written once every walk has finished.
	jsonWriter, collect := writer.(*report.FullJSONWriter)
	if collect {
		writer = nil
	}

	var (
		mu      sync.Mutex
		reached int
		reports = make([]*model.WalkReport, len(cfg.Topics))
	)
	err := runner.RunWithCallback(ctx, cfg.Topics, func(walkReport *model.WalkReport, index int) {
		mu.Lock()
		defer mu.Unlock()

		if walkReport.Reached {
			reached++
		}
		reports[index] = walkReport
		finishWalk(ctx, writer, db, walkReport, logger)
	})

	if collect {
		finished := make([]*model.WalkReport, 0, len(reports))
		for _, r := range reports {
			if r != nil && len(r.Attempts) > 0 {
				finished = append(finished, r)
			}
		}
		if _, werr := jsonWriter.WriteAll(finished); werr != nil {
			logger.Error("report failed", "error", werr)
		}
	}

	elapsed := time.Since(startTime)
	fmt.Fprintf(cmd.ErrOrStderr(), "\n%d of %d topics reached Philosophy in %s\n",
		reached, len(cfg.Topics), elapsed.Round(time.Millisecond))

	if err != nil && ctx.Err() != nil {
		logger.Info("batch walk interrupted")
		return nil
	}
	return err
}

// finishWalk writes the report and saves it to the database.
// Reports without attempts are dropped.
func finishWalk(ctx context.Context, writer report.Writer, db *database.WalkDB, walkReport *model.WalkReport, logger *slog.Logger) {
	if len(walkReport.Attempts) == 0 {
		return
	}

	if writer != nil {
		if _, err := writer.Write(walkReport); err != nil {
			logger.Error("report failed", "topic", walkReport.StartTopic(), "error", err)
		}
	}

	if err := saveWalkReport(ctx, db, walkReport, logger); err != nil {
		logger.Error("failed to save walk", "topic", walkReport.StartTopic(), "error", err)
	}
}

// saveWalkReport saves the walk report to the database if enabled.
// If db is nil, this function is a no-op.
func saveWalkReport(ctx context.Context, db *database.WalkDB, walkReport *model.WalkReport, logger *slog.Logger) error {
	if db == nil {
		return nil
	}

	// An interrupted walk is still recorded.
	if ctx.Err() != nil {
		ctx = context.WithoutCancel(ctx)
	}

	id, err := db.SaveWalk(ctx, walkReport)
	if err != nil {
		return fmt.Errorf("failed to save walk report: %w", err)
	}

	logger.Debug("walk saved to database", "id", id, "topic", walkReport.StartTopic())
	return nil
}

// newHTTPClient returns the HTTP client for article fetches: direct, or
// through Tor when cfg.UseTor is set. The returned func releases the client.
func newHTTPClient(ctx context.Context, cmd *cobra.Command, cfg *config.Config, logger *slog.Logger) (*http.Client, func(), error) {
	if !cfg.UseTor {
		return crawler.NewHTTPClient(cfg.Timeout), func() {}, nil
	}

	if !cfg.UseExternalTor {
		fmt.Fprintln(cmd.ErrOrStderr(), "Starting embedded Tor daemon...")
		fmt.Fprintf(cmd.ErrOrStderr(), "This may take 1-3 minutes while Tor bootstraps and connects to the network.\n\n")
	}

	session, err := tor.Connect(ctx, cfg, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to Tor: %w", err)
	}
	logger.Info("routing requests through Tor", "proxy", session.ProxyAddress())

	return session.HTTPClient(), func() {
		if err := session.Close(); err != nil {
			logger.Error("failed to stop embedded Tor", "error", err)
		}
	}, nil
}

// openReportOutput returns the destination of the final report: the report
// file, or stdout. The returned func closes it.
func openReportOutput(cmd *cobra.Command, cfg *config.Config) (io.Writer, func(), error) {
	if cfg.ReportFile == "" {
		return cmd.OutOrStdout(), func() {}, nil
	}

	// Create directories if they don't exist
	dir := filepath.Dir(cfg.ReportFile)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, nil, fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	f, err := os.OpenFile(cfg.ReportFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create output file: %w", err)
	}
	return f, func() { _ = f.Close() }, nil
}

// newReportWriter returns the writer for the final report, or nil when the
// progress lines are all the user asked for.
func newReportWriter(cfg *config.Config, out io.Writer) report.Writer {
	switch {
	case cfg.JSONReport:
		return report.NewFullJSONWriter(out, getVersion(), report.WithPrettyPrint())
	case cfg.MarkdownReport:
		return report.NewMarkdownWriter(out)
	case cfg.ReportFile != "":
		return report.NewSimpleWriter(out, report.WithVerbose(cfg.Verbose))
	default:
		return nil
	}
}
