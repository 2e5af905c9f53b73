package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver
)

// FileName is the database file name inside the store directory.
const FileName = "lingoscan.db"

// Origin values record which endpoint analyzed a page.
const (
	OriginCount = "count"
	OriginCrawl = "crawl"
)

// PageStore provides SQLite-based storage for analyzed pages.
type PageStore struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// Options configures PageStore behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates a PageStore in dbDir.
func Open(dbDir string, opts Options) (*PageStore, error) {
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

	// mode=rw refuses to create a missing file; mode=rwc creates it.
	dsn := dbPath + "?mode=rw"
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite allows a single writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	store := &PageStore{
		db:     db,
		dbPath: dbPath,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := store.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return store, nil
}

// Path returns the database file path.
func (s *PageStore) Path() string {
	return s.dbPath
}

// Close closes the database connection.
func (s *PageStore) Close() error {
	return s.db.Close()
}

// createTables creates the database schema if it doesn't exist.
func (s *PageStore) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS pages (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		url TEXT NOT NULL,
		origin TEXT NOT NULL,
		title TEXT,
		count INTEGER DEFAULT 0,
		count_type TEXT,
		language_group TEXT,
		error TEXT,
		content_hash TEXT,
		timestamp DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_pages_url ON pages(url);
	CREATE INDEX IF NOT EXISTS idx_pages_timestamp ON pages(timestamp);
	`

	_, err := s.db.ExecContext(context.Background(), schema)
	return err
}

// PageRecord represents a stored page analysis.
type PageRecord struct {
	ID            int64     `json:"id"`
	URL           string    `json:"url"`
	Origin        string    `json:"origin"`
	Title         string    `json:"title,omitempty"`
	Count         int       `json:"count"`
	CountType     string    `json:"type,omitempty"`
	LanguageGroup string    `json:"language_group,omitempty"`
	Error         string    `json:"error,omitempty"`
	ContentHash   string    `json:"content_hash,omitempty"`
	Timestamp     time.Time `json:"timestamp"`
}

// InsertPage stores a page record and returns its ID.
func (s *PageStore) InsertPage(ctx context.Context, rec *PageRecord) (int64, error) {
	query := `
	INSERT INTO pages (url, origin, title, count, count_type, language_group, error, content_hash)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := s.db.ExecContext(ctx, query,
		rec.URL, rec.Origin, rec.Title, rec.Count, rec.CountType,
		rec.LanguageGroup, rec.Error, rec.ContentHash,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert page record: %w", err)
	}
	return result.LastInsertId()
}

// RecentPages returns up to limit records, newest first. A non-empty url
// restricts the result to that URL.
func (s *PageStore) RecentPages(ctx context.Context, url string, limit int) ([]PageRecord, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `
	SELECT id, url, origin, title, count, count_type, language_group, error, content_hash, timestamp
	FROM pages
	WHERE (? = '' OR url = ?)
	ORDER BY id DESC
	LIMIT ?
	`

	rows, err := s.db.QueryContext(ctx, query, url, url, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query pages: %w", err)
	}
	defer rows.Close()

	records := make([]PageRecord, 0)
	for rows.Next() {
		var rec PageRecord
		var title, countType, group, errMsg, hash sql.NullString
		var timestamp string
		if err := rows.Scan(&rec.ID, &rec.URL, &rec.Origin, &title, &rec.Count,
			&countType, &group, &errMsg, &hash, &timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan page record: %w", err)
		}
		rec.Title = title.String
		rec.CountType = countType.String
		rec.LanguageGroup = group.String
		rec.Error = errMsg.String
		rec.ContentHash = hash.String
		rec.Timestamp = parseTimestamp(timestamp)
		records = append(records, rec)
	}

	return records, rows.Err()
}

// timestampFormats contains the timestamp formats that SQLite may return.
// The order matters: more specific formats should come first.
var timestampFormats = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05Z",
	"2006-01-02T15:04:05",
	time.RFC3339,
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999",
}

// parseTimestamp parses a SQLite timestamp, returning zero time when no
// format matches.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
