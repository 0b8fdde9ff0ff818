package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/deepfetch/deepfetch/internal/config"
	"github.com/deepfetch/deepfetch/internal/crawl"
	"github.com/deepfetch/deepfetch/internal/database"
	"github.com/deepfetch/deepfetch/internal/extract"
	"github.com/deepfetch/deepfetch/internal/fetch"
	"github.com/deepfetch/deepfetch/internal/log"
	"github.com/deepfetch/deepfetch/internal/model"
	"github.com/deepfetch/deepfetch/internal/report"
	"github.com/deepfetch/deepfetch/internal/search"
)

// NewSearchCmd creates the search command.
func NewSearchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Run a deep-search crawl for a query",
		Long: `Search runs a bounded deep-search crawl.

The query is sent to the search engine, the top results are fetched and
mined for prose content, and relevant internal links on each result are
followed one level deep. All extracted text is consolidated into a single
digest with source attribution.

Examples:
  # Default crawl: 5 results, depth 1, 3 links per site
  deepfetch search "municipal budget report 2025"

  # Search results only, no link expansion
  deepfetch search --depth 0 "golang errgroup"

  # Wider crawl with parallel result visits
  deepfetch search -n 10 --concurrency 4 "open data portal"

  # Spanish-language search
  deepfetch search -l es "sucursales banco pichincha"

  # Output JSON instead of the text report
  deepfetch search --json "site outage postmortem"

Configuration file (.deepfetch.yaml) example:
  sites:
    example.com:
      cookie: "session_id=abc123"
      headers:
        Authorization: "Bearer token"
      maxPagesPerSite: 5
      ignorePatterns:
        - "/login"`,
		Args: cobra.ExactArgs(1),
		RunE: runSearchCmd,
	}

	// Crawl shape flags
	cmd.Flags().IntP("max-results", "n", config.DefaultMaxResults,
		"Number of search results to visit")
	cmd.Flags().IntP("depth", "d", config.DefaultMaxDepth,
		"Link-following depth: 0 visits results only, 1 follows internal links")
	cmd.Flags().IntP("max-pages", "p", config.DefaultMaxPagesPerSite,
		"Maximum internal links followed per search result")
	cmd.Flags().IntP("concurrency", "b", config.DefaultConcurrency,
		"Number of search results visited in parallel")

	// Network flags
	cmd.Flags().DurationP("timeout", "t", config.DefaultFetchTimeout,
		"Fetch timeout for each page")
	cmd.Flags().StringP("language", "l", config.DefaultLanguage,
		"BCP 47 language tag for the search engine region")
	cmd.Flags().String("user-agent", config.DefaultUserAgent,
		"User-Agent header sent with every request")

	// Configuration file
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .deepfetch.yaml in current or home directory)")

	// Report flags
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON report (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown report (mutually exclusive with --json)")
	cmd.Flags().StringP("output", "o", "",
		"Write report to specified file path (creates directories if needed)")
	cmd.Flags().Bool("no-save", false,
		"Do not record the result in the local history database")

	return cmd
}

// runSearchCmd executes the search command.
func runSearchCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	// Set up structured logging
	logger := log.NewLogger(os.Stderr, cfg.Verbose)
	slog.SetDefault(logger)

	// Set up context with signal handling for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("received shutdown signal, cancelling...")
		cancel()
	}()

	return runSearch(ctx, cfg, strings.TrimSpace(args[0]), logger)
}

// buildConfig creates a Config from cobra command flags.
func buildConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.NewConfig()

	var err error

	cfg.MaxResults, err = cmd.Flags().GetInt("max-results")
	if err != nil {
		return nil, err
	}

	cfg.MaxDepth, err = cmd.Flags().GetInt("depth")
	if err != nil {
		return nil, err
	}

	cfg.MaxPagesPerSite, err = cmd.Flags().GetInt("max-pages")
	if err != nil {
		return nil, err
	}

	cfg.Concurrency, err = cmd.Flags().GetInt("concurrency")
	if err != nil {
		return nil, err
	}

	cfg.FetchTimeout, err = cmd.Flags().GetDuration("timeout")
	if err != nil {
		return nil, err
	}

	cfg.Language, err = cmd.Flags().GetString("language")
	if err != nil {
		return nil, err
	}

	cfg.UserAgent, err = cmd.Flags().GetString("user-agent")
	if err != nil {
		return nil, err
	}

	cfg.ConfigFilePath, err = cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}

	// Load site-specific configurations from config file.
	// If user explicitly specified a config file path, error if not found.
	// If no path specified, silently use empty config if no file found.
	explicitConfigPath := cfg.ConfigFilePath != ""
	configPath := config.FindConfigFile(cfg.ConfigFilePath)

	if configPath != "" {
		cfg.SiteConfigs, err = config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	} else if explicitConfigPath {
		return nil, fmt.Errorf("configuration file not found: %s", cfg.ConfigFilePath)
	} else {
		cfg.SiteConfigs = &config.File{
			Sites: make(map[string]config.SiteConfig),
		}
	}

	cfg.JSONReport, err = cmd.Flags().GetBool("json")
	if err != nil {
		return nil, err
	}

	cfg.MarkdownReport, err = cmd.Flags().GetBool("markdown")
	if err != nil {
		return nil, err
	}

	cfg.ReportFile, err = cmd.Flags().GetString("output")
	if err != nil {
		return nil, err
	}

	noSave, err := cmd.Flags().GetBool("no-save")
	if err != nil {
		return nil, err
	}

	cfg.Verbose = getVerboseFlag(cmd)

	// Save to the history database unless opted out, using the XDG data
	// directory.
	cfg.SaveToDB = !noSave
	cfg.DBDir = config.XDGDataDir()

	return cfg, nil
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

// runSearch executes the deep-search crawl.
func runSearch(ctx context.Context, cfg *config.Config, query string, logger *slog.Logger) error {
	if query == "" {
		return errors.New("empty query (provide a search query as the argument)")
	}

	logger.Info("starting deep search",
		"query", query,
		"maxResults", cfg.MaxResults,
		"maxDepth", cfg.MaxDepth,
		"concurrency", cfg.Concurrency,
	)

	// Open database connection if saving is enabled
	var db *database.HistoryDB
	if cfg.SaveToDB {
		var err error
		db, err = database.Open(cfg.DBDir)
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer db.Close()
		logger.Info("history database opened", "dir", cfg.DBDir)
	}

	searcher := search.NewDuckDuckGoClient(
		search.WithUserAgent(cfg.UserAgent),
		search.WithLogger(logger),
	)

	fetcher := fetch.New(
		fetch.WithTimeout(cfg.FetchTimeout),
		fetch.WithUserAgent(cfg.UserAgent),
		fetch.WithMaxBodySize(cfg.MaxBodySize),
		fetch.WithLogger(logger),
	)

	extractor := extract.New(extract.WithLogger(logger))

	controller := crawl.New(searcher, fetcher, extractor,
		crawl.WithFetchTimeout(cfg.FetchTimeout),
		crawl.WithConcurrency(cfg.Concurrency),
		crawl.WithSiteConfigs(cfg.SiteConfigs),
		crawl.WithLogger(logger),
	)

	result, err := controller.DeepSearch(ctx, crawl.Request{
		Query:           query,
		MaxResults:      cfg.MaxResults,
		MaxDepth:        cfg.MaxDepth,
		MaxPagesPerSite: cfg.MaxPagesPerSite,
		Language:        cfg.Language,
	})
	if err != nil {
		return err
	}

	if err := outputCrawlReport(cfg, result); err != nil {
		return err
	}

	return saveCrawlResult(ctx, db, result, logger)
}

// outputCrawlReport outputs the crawl result in the requested format.
func outputCrawlReport(cfg *config.Config, result *model.CrawlResult) error {
	output, cleanup, err := openReportOutput(cfg.ReportFile)
	if err != nil {
		return err
	}
	defer cleanup()

	writer := newReportWriter(cfg, output)
	_, err = writer.WriteCrawl(result)
	return err
}

// newReportWriter selects the report writer for the configured format.
func newReportWriter(cfg *config.Config, output *os.File) report.Writer {
	if cfg.JSONReport {
		return report.NewFullJSONWriter(output, getVersion(), report.WithPrettyPrint())
	}
	if cfg.MarkdownReport {
		return report.NewMarkdownWriter(output)
	}
	return report.NewSimpleWriter(output, report.WithVerbose(cfg.Verbose))
}

// openReportOutput opens the report destination. It returns stdout when no
// file path is configured. The cleanup function closes a file destination
// and is a no-op for stdout.
func openReportOutput(path string) (*os.File, func(), error) {
	if path == "" {
		return os.Stdout, func() {}, nil
	}

	// Create directories if they don't exist
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, nil, fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	// Reports are written with owner-only permissions since crawled
	// content may be sensitive.
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create output file: %w", err)
	}
	return f, func() { f.Close() }, nil
}

// saveCrawlResult saves the crawl result to the history database if enabled.
// If db is nil, this function is a no-op.
func saveCrawlResult(ctx context.Context, db *database.HistoryDB, result *model.CrawlResult, logger *slog.Logger) error {
	if db == nil {
		return nil
	}

	id, err := db.SaveResult(ctx, result)
	if err != nil {
		return fmt.Errorf("failed to save crawl result: %w", err)
	}

	logger.Info("crawl result saved to history", "id", id, "query", result.Query)
	return nil
}
