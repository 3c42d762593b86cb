package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/nao1215/pagegate/internal/model"
)

// FileName is the name of the database file inside the database directory.
const FileName = "pagegate.db"

// ErrRunNotFound is returned when a run id does not exist.
var ErrRunNotFound = errors.New("run not found")

// RunDB provides SQLite-based storage for filter runs and their decisions.
type RunDB struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// Options configures RunDB behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging for better concurrent performance.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates a RunDB in dbDir.
// If CreateIfNotExists is false and the database doesn't exist, an error is returned.
func Open(dbDir string, opts Options) (*RunDB, error) {
	dbPath := filepath.Join(dbDir, FileName)

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("database not found at %s (use CreateIfNotExists option to create)", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else if err := os.MkdirAll(dbDir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
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

	// SQLite only supports one writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	rdb := &RunDB{
		db:     db,
		dbPath: dbPath,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := rdb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return rdb, nil
}

// Path returns the database file path.
func (rdb *RunDB) Path() string {
	return rdb.dbPath
}

// Close closes the database connection.
func (rdb *RunDB) Close() error {
	return rdb.db.Close()
}

// createTables creates the database schema if it doesn't exist.
func (rdb *RunDB) createTables() error {
	schema := `
	-- One row per filter run; report_json is filled in when the run finishes
	CREATE TABLE IF NOT EXISTS runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		manifest TEXT NOT NULL,
		started_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		finished_at DATETIME,
		accepted INTEGER DEFAULT 0,
		rejected INTEGER DEFAULT 0,
		links INTEGER DEFAULT 0,
		report_json TEXT
	);

	-- Every admission decision of a run
	CREATE TABLE IF NOT EXISTS decisions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id INTEGER NOT NULL REFERENCES runs(id),
		url TEXT NOT NULL,
		canonical TEXT,
		accepted INTEGER NOT NULL,
		reason TEXT NOT NULL,
		words INTEGER,
		bytes INTEGER,
		fingerprint TEXT,
		distance INTEGER,
		links_json TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_decisions_run ON decisions(run_id);
	CREATE INDEX IF NOT EXISTS idx_decisions_canonical ON decisions(canonical);
	CREATE INDEX IF NOT EXISTS idx_decisions_reason ON decisions(reason);
	`

	_, err := rdb.db.ExecContext(context.Background(), schema)
	return err
}

// BeginRun records the start of a run over manifest and returns its id.
func (rdb *RunDB) BeginRun(ctx context.Context, manifest string) (int64, error) {
	result, err := rdb.db.ExecContext(ctx, `INSERT INTO runs (manifest) VALUES (?)`, manifest)
	if err != nil {
		return 0, fmt.Errorf("failed to begin run: %w", err)
	}
	return result.LastInsertId()
}

// RecordDecisions stores decisions of a run in one transaction.
func (rdb *RunDB) RecordDecisions(ctx context.Context, runID int64, decisions []model.Decision) (err error) {
	tx, err := rdb.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	stmt, err := tx.PrepareContext(ctx, `
	INSERT INTO decisions (run_id, url, canonical, accepted, reason, words, bytes, fingerprint, distance, links_json)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare decision insert: %w", err)
	}
	defer stmt.Close()

	for _, d := range decisions {
		linksJSON, err := json.Marshal(d.Links)
		if err != nil {
			return fmt.Errorf("failed to serialize links: %w", err)
		}
		if _, err := stmt.ExecContext(ctx,
			runID,
			d.URL,
			d.Canonical,
			d.Accepted,
			d.Reason.String(),
			d.Words,
			d.Bytes,
			fmt.Sprintf("%016x", d.Fingerprint),
			d.Distance,
			string(linksJSON),
		); err != nil {
			return fmt.Errorf("failed to record decision for %s: %w", d.URL, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit decisions: %w", err)
	}
	return nil
}

// FinishRun stores the final report of a run.
func (rdb *RunDB) FinishRun(ctx context.Context, runID int64, report *model.Report) error {
	reportJSON, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to serialize report: %w", err)
	}

	result, err := rdb.db.ExecContext(ctx, `
	UPDATE runs
	SET finished_at = ?, accepted = ?, rejected = ?, links = ?, report_json = ?
	WHERE id = ?
	`,
		report.FinishedAt.UTC().Format(time.RFC3339Nano),
		report.Accepted,
		report.Rejected,
		report.Links,
		string(reportJSON),
		runID,
	)
	if err != nil {
		return fmt.Errorf("failed to finish run: %w", err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: %d", ErrRunNotFound, runID)
	}
	return nil
}

// RunMetadata contains summary information about a run.
// This is used for listing runs without loading the full report.
type RunMetadata struct {
	// ID is the unique identifier of the run in the database.
	ID int64 `json:"id"`

	// Manifest is the manifest file the run read.
	Manifest string `json:"manifest"`

	// StartedAt is when the run began.
	StartedAt time.Time `json:"started_at"`

	// FinishedAt is zero for runs that never finished.
	FinishedAt time.Time `json:"finished_at"`

	// Accepted, Rejected and Links are the run's final counters.
	Accepted int `json:"accepted"`
	Rejected int `json:"rejected"`
	Links    int `json:"links"`
}

// Finished reports whether the run completed.
func (m RunMetadata) Finished() bool {
	return !m.FinishedAt.IsZero()
}

// ListRuns returns all runs, newest first.
func (rdb *RunDB) ListRuns(ctx context.Context) ([]RunMetadata, error) {
	rows, err := rdb.db.QueryContext(ctx, `
	SELECT id, manifest, started_at, finished_at, accepted, rejected, links
	FROM runs
	ORDER BY id DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []RunMetadata
	for rows.Next() {
		var meta RunMetadata
		var started string
		var finished sql.NullString
		if err := rows.Scan(&meta.ID, &meta.Manifest, &started, &finished, &meta.Accepted, &meta.Rejected, &meta.Links); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		meta.StartedAt = parseTimestamp(started)
		if finished.Valid {
			meta.FinishedAt = parseTimestamp(finished.String)
		}
		runs = append(runs, meta)
	}

	return runs, rows.Err()
}

// GetRunReport retrieves the final report of a run.
// It returns ErrRunNotFound for unknown ids and for runs that never finished.
func (rdb *RunDB) GetRunReport(ctx context.Context, runID int64) (*model.Report, error) {
	var reportJSON sql.NullString
	err := rdb.db.QueryRowContext(ctx, `SELECT report_json FROM runs WHERE id = ?`, runID).Scan(&reportJSON)
	if errors.Is(err, sql.ErrNoRows) || (err == nil && !reportJSON.Valid) {
		return nil, fmt.Errorf("%w: %d", ErrRunNotFound, runID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run report: %w", err)
	}

	var report model.Report
	if err := json.Unmarshal([]byte(reportJSON.String), &report); err != nil {
		return nil, fmt.Errorf("failed to parse report: %w", err)
	}
	return &report, nil
}

// GetDecisions returns the decisions of a run in insertion order.
func (rdb *RunDB) GetDecisions(ctx context.Context, runID int64) ([]model.Decision, error) {
	rows, err := rdb.db.QueryContext(ctx, `
	SELECT url, canonical, accepted, reason, words, bytes, fingerprint, distance, links_json
	FROM decisions
	WHERE run_id = ?
	ORDER BY id
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to get decisions: %w", err)
	}
	defer rows.Close()

	var decisions []model.Decision
	for rows.Next() {
		var d model.Decision
		var canonical, fingerprint, linksJSON sql.NullString
		var reason string
		if err := rows.Scan(&d.URL, &canonical, &d.Accepted, &reason, &d.Words, &d.Bytes, &fingerprint, &d.Distance, &linksJSON); err != nil {
			return nil, fmt.Errorf("failed to scan decision: %w", err)
		}
		d.Canonical = canonical.String
		if d.Reason, err = model.ParseReason(reason); err != nil {
			return nil, err
		}
		if fingerprint.Valid {
			if d.Fingerprint, err = strconv.ParseUint(fingerprint.String, 16, 64); err != nil {
				return nil, fmt.Errorf("failed to parse fingerprint: %w", err)
			}
		}
		d.Links = []string{}
		if linksJSON.Valid && linksJSON.String != "" {
			if err := json.Unmarshal([]byte(linksJSON.String), &d.Links); err != nil {
				return nil, fmt.Errorf("failed to parse links: %w", err)
			}
		}
		decisions = append(decisions, d)
	}

	return decisions, rows.Err()
}

// timestampFormats contains the timestamp formats that SQLite may return.
// The order matters: more specific formats should come first.
var timestampFormats = []string{
	"2006-01-02 15:04:05",     // SQLite default datetime format
	"2006-01-02T15:04:05Z",    // ISO 8601 with Z suffix
	"2006-01-02T15:04:05",     // ISO 8601 without timezone
	time.RFC3339,              // Full RFC3339 format
	time.RFC3339Nano,          // RFC3339 with nanoseconds
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
