package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/deepfetch/deepfetch/internal/config"
	"github.com/deepfetch/deepfetch/internal/database"
	"github.com/deepfetch/deepfetch/internal/log"
	"github.com/deepfetch/deepfetch/internal/report"
)

// NewHistoryCmd creates the history command.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history [id]",
		Short: "List or show past deep-search results",
		Long: `History lists deep-search crawls recorded in the local database.

Without arguments it prints the most recent searches. With an ID it
replays the full stored result.

Examples:
  # List the 20 most recent searches
  deepfetch history

  # List the 50 most recent searches
  deepfetch history --limit 50

  # Show the stored result for search 12
  deepfetch history 12

  # Replay a stored result as JSON
  deepfetch history 12 --json`,
		Args: cobra.MaximumNArgs(1),
		RunE: runHistoryCmd,
	}

	cmd.Flags().Int("limit", 20, "Maximum number of entries to list")
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON report (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown report (mutually exclusive with --json)")

	return cmd
}

// runHistoryCmd executes the history command.
func runHistoryCmd(cmd *cobra.Command, args []string) error {
	limit, err := cmd.Flags().GetInt("limit")
	if err != nil {
		return err
	}

	jsonOut, err := cmd.Flags().GetBool("json")
	if err != nil {
		return err
	}

	markdownOut, err := cmd.Flags().GetBool("markdown")
	if err != nil {
		return err
	}
	if jsonOut && markdownOut {
		return config.ErrConflictingReportFormats
	}

	logger := log.NewLogger(os.Stderr, getVerboseFlag(cmd))
	slog.SetDefault(logger)

	db, err := database.Open(config.XDGDataDir())
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	ctx := context.Background()

	if len(args) == 0 {
		return listHistory(ctx, cmd, db, limit)
	}

	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid history ID: %s", args[0])
	}

	return showHistoryEntry(ctx, cmd, db, id, jsonOut, markdownOut)
}

// listHistory prints recent searches as an aligned table.
func listHistory(ctx context.Context, cmd *cobra.Command, db *database.HistoryDB, limit int) error {
	entries, err := db.ListRecent(ctx, limit)
	if err != nil {
		return fmt.Errorf("failed to list history: %w", err)
	}

	out := cmd.OutOrStdout()

	if len(entries) == 0 {
		fmt.Fprintln(out, "No searches recorded yet.")
		return nil
	}

	fmt.Fprintf(out, "%-5s %-20s %-6s %-10s %s\n", "ID", "DATE", "PAGES", "CHARS", "QUERY")
	fmt.Fprintln(out, strings.Repeat("-", 70))
	for _, entry := range entries {
		fmt.Fprintf(out, "%-5d %-20s %-6d %-10d %s\n",
			entry.ID,
			entry.Timestamp.Format(time.DateTime),
			entry.PagesVisited,
			entry.ContentExtracted,
			entry.Query,
		)
	}

	return nil
}

// showHistoryEntry replays one stored result.
func showHistoryEntry(ctx context.Context, cmd *cobra.Command, db *database.HistoryDB, id int64, jsonOut, markdownOut bool) error {
	result, err := db.GetResult(ctx, id)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return fmt.Errorf("no history entry with ID %d", id)
		}
		return fmt.Errorf("failed to load history entry: %w", err)
	}

	out := cmd.OutOrStdout()

	var writer report.Writer
	switch {
	case jsonOut:
		writer = report.NewJSONWriter(out, report.WithPrettyPrint())
	case markdownOut:
		writer = report.NewMarkdownWriter(out)
	default:
		writer = report.NewSimpleWriter(out)
	}

	_, err = writer.WriteCrawl(result)
	return err
}
