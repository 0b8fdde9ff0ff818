package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/deepfetch/deepfetch/internal/model"
)

// ErrNotFound is returned when a requested history entry does not exist.
var ErrNotFound = errors.New("history entry not found")

// HistoryDB stores completed deep-search results in SQLite.
type HistoryDB struct {
	db     *sql.DB
	dbPath string
}

// Open opens or creates the history database under dbDir. The directory
// is created if needed.
func Open(dbDir string) (*HistoryDB, error) {
	if err := os.MkdirAll(dbDir, 0750); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	dbPath := filepath.Join(dbDir, "deepfetch.db")

	db, err := sql.Open("sqlite", dbPath+"?mode=rwc")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// SQLite supports a single writer; keep the pool at one connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	hdb := &HistoryDB{db: db, dbPath: dbPath}

	if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}

	if err := hdb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create tables: %w", err)
	}

	return hdb, nil
}

// Close closes the database connection.
func (h *HistoryDB) Close() error {
	return h.db.Close()
}

// createTables creates the schema if it doesn't exist.
func (h *HistoryDB) createTables() error {
	schema := `
	-- Searches store one row per completed deep-search request.
	CREATE TABLE IF NOT EXISTS searches (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		query TEXT NOT NULL,
		timestamp DATETIME DEFAULT CURRENT_TIMESTAMP,
		pages_visited INTEGER NOT NULL,
		content_extracted INTEGER NOT NULL,
		elapsed_ms INTEGER NOT NULL,
		digest TEXT NOT NULL,
		result_json TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_searches_query ON searches(query);
	CREATE INDEX IF NOT EXISTS idx_searches_timestamp ON searches(timestamp);
	`

	_, err := h.db.ExecContext(context.Background(), schema)
	return err
}

// Entry is one stored deep-search result.
type Entry struct {
	ID               int64
	Query            string
	Timestamp        time.Time
	PagesVisited     int
	ContentExtracted int
	Elapsed          time.Duration
	Digest           string
}

// SaveResult stores a completed crawl result and returns its row ID.
func (h *HistoryDB) SaveResult(ctx context.Context, result *model.CrawlResult) (int64, error) {
	resultJSON, err := json.Marshal(result)
	if err != nil {
		return 0, fmt.Errorf("serialize crawl result: %w", err)
	}

	query := `
	INSERT INTO searches (query, pages_visited, content_extracted, elapsed_ms, digest, result_json)
	VALUES (?, ?, ?, ?, ?, ?)
	`

	res, err := h.db.ExecContext(ctx, query,
		result.Query,
		result.TotalPagesVisited,
		result.TotalContentExtracted,
		result.ElapsedTime.Milliseconds(),
		result.ConsolidatedText,
		string(resultJSON),
	)
	if err != nil {
		return 0, fmt.Errorf("insert search result: %w", err)
	}

	return res.LastInsertId()
}

// ListRecent returns the most recent entries, newest first, without the
// full page dump.
func (h *HistoryDB) ListRecent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 20
	}

	query := `
	SELECT id, query, timestamp, pages_visited, content_extracted, elapsed_ms, digest
	FROM searches
	ORDER BY timestamp DESC, id DESC
	LIMIT ?
	`

	rows, err := h.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("list search history: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var ts string
		var elapsedMs int64
		if err := rows.Scan(&e.ID, &e.Query, &ts, &e.PagesVisited, &e.ContentExtracted, &elapsedMs, &e.Digest); err != nil {
			return nil, fmt.Errorf("scan history row: %w", err)
		}
		e.Timestamp = parseTimestamp(ts)
		e.Elapsed = time.Duration(elapsedMs) * time.Millisecond
		entries = append(entries, e)
	}

	return entries, rows.Err()
}

// GetResult retrieves a stored crawl result by row ID.
func (h *HistoryDB) GetResult(ctx context.Context, id int64) (*model.CrawlResult, error) {
	var resultJSON string
	err := h.db.QueryRowContext(ctx,
		`SELECT result_json FROM searches WHERE id = ?`, id,
	).Scan(&resultJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get search result: %w", err)
	}

	var result model.CrawlResult
	if err := json.Unmarshal([]byte(resultJSON), &result); err != nil {
		return nil, fmt.Errorf("deserialize crawl result: %w", err)
	}

	return &result, nil
}

// parseTimestamp handles the formats SQLite emits for DATETIME columns.
func parseTimestamp(ts string) time.Time {
	for _, layout := range []string{
		"2006-01-02 15:04:05",
		time.RFC3339,
		"2006-01-02T15:04:05Z",
	} {
		if t, err := time.Parse(layout, ts); err == nil {
			return t
		}
	}
	return time.Time{}
}
