package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/deepfetch/deepfetch/internal/config"
	"github.com/deepfetch/deepfetch/internal/extract"
	"github.com/deepfetch/deepfetch/internal/fetch"
	"github.com/deepfetch/deepfetch/internal/log"
)

// NewExtractCmd creates the extract command.
func NewExtractCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "extract <url>",
		Short: "Fetch a single page and mine its content",
		Long: `Extract fetches one page and mines structured content from it:
visible text blocks, tables, classified download links, and JSON data
embedded in script tags (store locators, map markers, API endpoints).

JSON responses are passed through without HTML processing.

Examples:
  # Static fetch and extraction
  deepfetch extract https://example.com/locations

  # Render with a headless browser first (JavaScript-built pages)
  deepfetch extract --render https://example.com/store-finder

  # JSON output for downstream tooling
  deepfetch extract --json https://example.com/data.json`,
		Args: cobra.ExactArgs(1),
		RunE: runExtractCmd,
	}

	cmd.Flags().Bool("render", false,
		"Render the page with a headless browser before extraction")
	cmd.Flags().DurationP("timeout", "t", config.DefaultFetchTimeout,
		"Fetch timeout")
	cmd.Flags().Duration("settle", config.DefaultRenderSettle,
		"Settle delay after load on the rendering path")
	cmd.Flags().String("user-agent", config.DefaultUserAgent,
		"User-Agent header sent with the request")
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .deepfetch.yaml in current or home directory)")
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON report (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown report (mutually exclusive with --json)")
	cmd.Flags().StringP("output", "o", "",
		"Write report to specified file path (creates directories if needed)")

	return cmd
}

// runExtractCmd executes the extract command.
func runExtractCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildExtractConfig(cmd)
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := log.NewLogger(os.Stderr, cfg.Verbose)
	slog.SetDefault(logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("received shutdown signal, cancelling...")
		cancel()
	}()

	return runExtract(ctx, cfg, args[0], logger)
}

// buildExtractConfig creates a Config from extract command flags.
func buildExtractConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.NewConfig()

	var err error

	cfg.Render, err = cmd.Flags().GetBool("render")
	if err != nil {
		return nil, err
	}

	cfg.FetchTimeout, err = cmd.Flags().GetDuration("timeout")
	if err != nil {
		return nil, err
	}

	cfg.RenderSettle, err = cmd.Flags().GetDuration("settle")
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

	cfg.Verbose = getVerboseFlag(cmd)

	return cfg, nil
}

// runExtract fetches and mines a single page.
func runExtract(ctx context.Context, cfg *config.Config, pageURL string, logger *slog.Logger) error {
	parsed, err := url.Parse(pageURL)
	if err != nil || parsed.Hostname() == "" {
		return fmt.Errorf("invalid URL: %s", pageURL)
	}

	logger.Info("extracting page",
		"url", pageURL,
		"render", cfg.Render,
	)

	source, cleanup := buildSource(cfg, parsed.Hostname(), logger)
	defer cleanup()

	service := extract.NewService(source, extract.New(extract.WithLogger(logger)), cfg.Render)

	page, err := service.ExtractPage(ctx, pageURL)
	if err != nil {
		return err
	}

	output, closeOutput, err := openReportOutput(cfg.ReportFile)
	if err != nil {
		return err
	}
	defer closeOutput()

	writer := newReportWriter(cfg, output)
	_, err = writer.WritePage(page)
	return err
}

// buildSource creates the page source for extraction: a headless-browser
// renderer when --render is set, a static HTTP fetcher otherwise. Site
// overrides from the config file apply to the static path only.
func buildSource(cfg *config.Config, host string, logger *slog.Logger) (fetch.Source, func()) {
	if cfg.Render {
		renderer := fetch.NewRenderer(
			fetch.WithRenderTimeout(cfg.FetchTimeout),
			fetch.WithSettleDelay(cfg.RenderSettle),
			fetch.WithRendererLogger(logger),
		)
		return renderer, func() { renderer.Close() }
	}

	opts := []fetch.Option{
		fetch.WithTimeout(cfg.FetchTimeout),
		fetch.WithUserAgent(cfg.UserAgent),
		fetch.WithMaxBodySize(cfg.MaxBodySize),
		fetch.WithLogger(logger),
	}

	site := cfg.SiteConfigs.GetSiteConfig(host)
	if site.Cookie != "" {
		opts = append(opts, fetch.WithCookie(site.Cookie))
	}
	if len(site.Headers) > 0 {
		opts = append(opts, fetch.WithHeaders(site.Headers))
	}

	return fetch.New(opts...), func() {}
}
