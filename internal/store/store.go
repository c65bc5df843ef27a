package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/osintlab/personscan/internal/model"
)

// ErrNotFound is returned when no document exists for a main report ID.
var ErrNotFound = errors.New("report not found")

// Store provides SQLite-based storage for subject report documents.
//
// Design decision: one JSON document per subject rather than one row
// per snapshot. The read path always wants the whole subject history,
// and the document layout matches the export formats directly.
type Store struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string

	// locks serializes appends per main report ID. A global lock would
	// also be correct but would stall unrelated subjects behind each
	// other's read-modify-write cycles.
	locks keyedMutex
}

// Options configures Store behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging for better concurrent performance.
	EnableWAL bool
}

// DefaultOptions returns the default store options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates a Store at the specified directory.
func Open(dbDir string, opts Options) (*Store, error) {
	dbPath := filepath.Join(dbDir, "personscan.db")

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

	// modernc.org/sqlite connection string: mode=rw prevents creating
	// new files, mode=rwc allows creation.
	var dsn string
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	} else {
		dsn = dbPath + "?mode=rw"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	s := &Store{
		db:     db,
		dbPath: dbPath,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := s.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// createTables creates the database schema if it doesn't exist.
func (s *Store) createTables() error {
	schema := `
	-- Subjects store one JSON document per main report ID.
	CREATE TABLE IF NOT EXISTS subjects (
		main_id TEXT PRIMARY KEY,
		subject_name TEXT,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		last_updated DATETIME DEFAULT CURRENT_TIMESTAMP,
		report_count INTEGER NOT NULL DEFAULT 0,
		doc TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_subjects_updated ON subjects(last_updated);
	`

	_, err := s.db.ExecContext(context.Background(), schema)
	return err
}

// Append adds one query snapshot to the subject's document, creating
// the document if it does not exist yet. Existing snapshots are never
// overwritten: two concurrent appends against the same subject both
// end up in the document.
func (s *Store) Append(ctx context.Context, mainID, subID string, report *model.RawCompositeReport) error {
	unlock := s.locks.lock(mainID)
	defer unlock()

	now := time.Now().UTC()

	record, err := s.get(ctx, mainID)
	switch {
	case errors.Is(err, ErrNotFound):
		record = &model.MainRecord{
			MainID:    mainID,
			CreatedAt: now,
			Reports:   make(map[string]*model.RawCompositeReport),
		}
	case err != nil:
		return err
	}

	record.Reports[subID] = report
	record.LastUpdated = now

	doc, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to serialize document: %w", err)
	}

	query := `
	INSERT INTO subjects (main_id, subject_name, created_at, last_updated, report_count, doc)
	VALUES (?, ?, ?, ?, ?, ?)
	ON CONFLICT(main_id) DO UPDATE SET
		subject_name = excluded.subject_name,
		last_updated = excluded.last_updated,
		report_count = excluded.report_count,
		doc = excluded.doc
	`

	_, err = s.db.ExecContext(ctx, query,
		mainID,
		report.PersonalInfo.Name,
		record.CreatedAt.Format(time.RFC3339Nano),
		record.LastUpdated.Format(time.RFC3339Nano),
		record.ReportCount(),
		string(doc),
	)
	if err != nil {
		return fmt.Errorf("failed to save document: %w", err)
	}

	return nil
}

// Get retrieves the subject document for a main report ID.
// Returns ErrNotFound when no document exists.
func (s *Store) Get(ctx context.Context, mainID string) (*model.MainRecord, error) {
	return s.get(ctx, mainID)
}

func (s *Store) get(ctx context.Context, mainID string) (*model.MainRecord, error) {
	query := `SELECT doc FROM subjects WHERE main_id = ?`

	var doc string
	err := s.db.QueryRowContext(ctx, query, mainID).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, mainID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get document: %w", err)
	}

	var record model.MainRecord
	if err := json.Unmarshal([]byte(doc), &record); err != nil {
		return nil, fmt.Errorf("failed to parse document: %w", err)
	}

	return &record, nil
}

// Subject is a listing entry describing one stored document without
// loading the document itself.
type Subject struct {
	// MainID is the subject's main report ID.
	MainID string `json:"main_id"`

	// Name is the subject name from the most recent snapshot.
	Name string `json:"name,omitempty"`

	// CreatedAt is when the document was first created.
	CreatedAt time.Time `json:"created_at"`

	// LastUpdated is when a snapshot was last appended.
	LastUpdated time.Time `json:"last_updated"`

	// ReportCount is the number of snapshots in the document.
	ReportCount int `json:"report_count"`
}

// List returns stored subjects ordered by most recently updated first.
func (s *Store) List(ctx context.Context, limit, offset int) ([]Subject, error) {
	query := `
	SELECT main_id, subject_name, created_at, last_updated, report_count
	FROM subjects
	ORDER BY last_updated DESC
	LIMIT ? OFFSET ?
	`

	rows, err := s.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list subjects: %w", err)
	}
	defer rows.Close()

	var results []Subject
	for rows.Next() {
		var sub Subject
		var name sql.NullString
		var createdAt, lastUpdated string

		if err := rows.Scan(&sub.MainID, &name, &createdAt, &lastUpdated, &sub.ReportCount); err != nil {
			return nil, fmt.Errorf("failed to scan subject: %w", err)
		}

		sub.Name = name.String
		sub.CreatedAt = parseTimestamp(createdAt)
		sub.LastUpdated = parseTimestamp(lastUpdated)
		results = append(results, sub)
	}

	return results, rows.Err()
}

// Count returns the total number of stored subjects.
func (s *Store) Count(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM subjects`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count subjects: %w", err)
	}
	return count, nil
}

// Delete removes the subject document for a main report ID.
// Returns ErrNotFound when no document exists.
func (s *Store) Delete(ctx context.Context, mainID string) error {
	unlock := s.locks.lock(mainID)
	defer unlock()

	result, err := s.db.ExecContext(ctx, `DELETE FROM subjects WHERE main_id = ?`, mainID)
	if err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, mainID)
	}

	return nil
}

// keyedMutex provides one mutex per key with reference counting so
// idle entries do not accumulate.
type keyedMutex struct {
	mu      sync.Mutex
	entries map[string]*keyedMutexEntry
}

type keyedMutexEntry struct {
	mu   sync.Mutex
	refs int
}

// lock acquires the mutex for key and returns its unlock function.
func (k *keyedMutex) lock(key string) func() {
	k.mu.Lock()
	if k.entries == nil {
		k.entries = make(map[string]*keyedMutexEntry)
	}
	entry, ok := k.entries[key]
	if !ok {
		entry = &keyedMutexEntry{}
		k.entries[key] = entry
	}
	entry.refs++
	k.mu.Unlock()

	entry.mu.Lock()

	return func() {
		entry.mu.Unlock()

		k.mu.Lock()
		entry.refs--
		if entry.refs == 0 {
			delete(k.entries, key)
		}
		k.mu.Unlock()
	}
}

// timestampFormats contains the timestamp formats that SQLite may return.
// The order matters: more specific formats should come first.
var timestampFormats = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",     // SQLite default datetime format
	"2006-01-02T15:04:05",     // ISO 8601 without timezone
	"2006-01-02 15:04:05.999", // SQLite with milliseconds
}

// parseTimestamp attempts to parse a timestamp string using multiple
// formats. SQLite may return timestamps in different formats depending
// on configuration. If parsing fails with all formats, returns zero time.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
