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

	"github.com/nao1215/philowalk/internal/model"
)

// FileName is the database file name inside the database directory.
const FileName = "philowalk.db"

// WalkDB provides SQLite-based storage for walk history and the link cache.
type WalkDB struct {
	db     *sql.DB
	dbPath string
}

// Options configures WalkDB behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging. Batch walks read and write
	// the link cache from several goroutines.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates a WalkDB in dbDir.
// If CreateIfNotExists is false and the database doesn't exist, an error is returned.
func Open(dbDir string, opts Options) (*WalkDB, error) {
	dbPath := filepath.Join(dbDir, FileName)

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("database not found at %s (use CreateIfNotExists option to create)", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else {
		if err := os.MkdirAll(dbDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// mode=rw refuses to create a missing file, mode=rwc allows it.
	dsn := dbPath + "?mode=rw"
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(1) // SQLite only supports one writer
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	wdb := &WalkDB{
		db:     db,
		dbPath: dbPath,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := wdb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return wdb, nil
}

// Path returns the database file path.
func (wdb *WalkDB) Path() string {
	return wdb.dbPath
}

// Close closes the database connection.
func (wdb *WalkDB) Close() error {
	return wdb.db.Close()
}

// createTables creates the database schema if it doesn't exist.
func (wdb *WalkDB) createTables() error {
	schema := `
	-- One row per run of the walk engine
	CREATE TABLE IF NOT EXISTS walks (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		started_at TEXT NOT NULL,
		finished_at TEXT NOT NULL,
		start_topic TEXT NOT NULL,
		reached INTEGER NOT NULL DEFAULT 0,
		total_steps INTEGER NOT NULL DEFAULT 0,
		final_title TEXT,
		attempts INTEGER NOT NULL DEFAULT 0,
		report_json TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_walks_started ON walks(started_at);

	-- Every article visited, for title statistics
	CREATE TABLE IF NOT EXISTS hops (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		walk_id INTEGER NOT NULL REFERENCES walks(id) ON DELETE CASCADE,
		attempt INTEGER NOT NULL,
		idx INTEGER NOT NULL,
		topic TEXT NOT NULL,
		title TEXT NOT NULL,
		next_topic TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_hops_walk ON hops(walk_id);
	CREATE INDEX IF NOT EXISTS idx_hops_title ON hops(title);

	-- Link cache: the resolved title and first link per topic
	CREATE TABLE IF NOT EXISTS links (
		topic TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		next_topic TEXT NOT NULL,
		fetched_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	`

	_, err := wdb.db.ExecContext(context.Background(), schema)
	return err
}

// SaveWalk stores a finished report and its hops, and sets report.ID.
func (wdb *WalkDB) SaveWalk(ctx context.Context, report *model.WalkReport) (int64, error) {
	reportJSON, err := json.Marshal(report)
	if err != nil {
		return 0, fmt.Errorf("failed to serialize report: %w", err)
	}

	tx, err := wdb.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }() //nolint:errcheck // no-op after Commit

	result, err := tx.ExecContext(ctx, `
	INSERT INTO walks (started_at, finished_at, start_topic, reached, total_steps, final_title, attempts, report_json)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`,
		formatTimestamp(report.StartedAt),
		formatTimestamp(report.FinishedAt),
		report.StartTopic(),
		report.Reached,
		report.TotalSteps,
		report.FinalTitle,
		len(report.Attempts),
		string(reportJSON),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to save walk: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read walk id: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
	INSERT INTO hops (walk_id, attempt, idx, topic, title, next_topic)
	VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare hop insert: %w", err)
	}
	defer stmt.Close()

	for attemptNo, attempt := range report.Attempts {
		for _, hop := range attempt.Hops {
			if _, err := stmt.ExecContext(ctx, id, attemptNo, hop.Index, hop.Topic, hop.Title, hop.Next); err != nil {
				return 0, fmt.Errorf("failed to save hop: %w", err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit walk: %w", err)
	}

	report.ID = id
	return id, nil
}

// GetWalk retrieves a stored report by id. It returns nil, nil when no
// walk has that id.
func (wdb *WalkDB) GetWalk(ctx context.Context, id int64) (*model.WalkReport, error) {
	var reportJSON string
	err := wdb.db.QueryRowContext(ctx, `SELECT report_json FROM walks WHERE id = ?`, id).Scan(&reportJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get walk: %w", err)
	}

	var report model.WalkReport
	if err := json.Unmarshal([]byte(reportJSON), &report); err != nil {
		return nil, fmt.Errorf("failed to parse report: %w", err)
	}
	report.ID = id

	return &report, nil
}

// WalkSummary contains summary information about a stored walk.
// It is used for listing history without loading full reports.
type WalkSummary struct {
	ID         int64     `json:"id"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	StartTopic string    `json:"start_topic"`
	Reached    bool      `json:"reached"`
	TotalSteps int       `json:"total_steps"`
	FinalTitle string    `json:"final_title,omitempty"`
	Attempts   int       `json:"attempts"`
}

// ListWalks returns the most recent walks first. limit <= 0 returns all.
func (wdb *WalkDB) ListWalks(ctx context.Context, limit int) ([]WalkSummary, error) {
	if limit <= 0 {
		limit = -1 // SQLite: no limit
	}

	rows, err := wdb.db.QueryContext(ctx, `
	SELECT id, started_at, finished_at, start_topic, reached, total_steps, COALESCE(final_title, ''), attempts
	FROM walks
	ORDER BY id DESC
	LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list walks: %w", err)
	}
	defer rows.Close()

	var results []WalkSummary
	for rows.Next() {
		var s WalkSummary
		var started, finished string

		if err := rows.Scan(&s.ID, &started, &finished, &s.StartTopic, &s.Reached, &s.TotalSteps, &s.FinalTitle, &s.Attempts); err != nil {
			return nil, fmt.Errorf("failed to scan walk: %w", err)
		}
		s.StartedAt = parseTimestamp(started)
		s.FinishedAt = parseTimestamp(finished)

		results = append(results, s)
	}

	return results, rows.Err()
}

// TitleCount is the number of times an article was visited across all
// stored walks.
type TitleCount struct {
	Title  string `json:"title"`
	Visits int    `json:"visits"`
}

// TitleFrequency returns the most visited titles, most frequent first.
// Ties are ordered by title.
func (wdb *WalkDB) TitleFrequency(ctx context.Context, limit int) ([]TitleCount, error) {
	if limit <= 0 {
		limit = -1
	}

	rows, err := wdb.db.QueryContext(ctx, `
	SELECT title, COUNT(*) AS visits
	FROM hops
	GROUP BY title
	ORDER BY visits DESC, title ASC
	LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to count titles: %w", err)
	}
	defer rows.Close()

	var results []TitleCount
	for rows.Next() {
		var tc TitleCount
		if err := rows.Scan(&tc.Title, &tc.Visits); err != nil {
			return nil, fmt.Errorf("failed to scan title count: %w", err)
		}
		results = append(results, tc)
	}

	return results, rows.Err()
}

// formatTimestamp renders t in UTC for storage.
func formatTimestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// timestampFormats contains the timestamp formats that SQLite may return.
// The order matters: more specific formats should come first.
var timestampFormats = []string{
	time.RFC3339Nano,          // Written by formatTimestamp
	"2006-01-02 15:04:05",     // SQLite default datetime format
	"2006-01-02T15:04:05Z",    // ISO 8601 with Z suffix
	"2006-01-02T15:04:05",     // ISO 8601 without timezone
	"2006-01-02 15:04:05.999", // SQLite with milliseconds
}

// parseTimestamp attempts to parse a timestamp string using multiple formats.
// If parsing fails with all formats, returns zero time.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
