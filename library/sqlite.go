package library

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver
)

// DatabaseFileName is the SQLite catalog inside the data directory.
const DatabaseFileName = "readmate.db"

// SQLiteCatalog stores records in a SQLite database. List-valued fields are
// kept as JSON columns.
type SQLiteCatalog struct {
	db   *sql.DB
	path string
}

// OpenSQLiteCatalog opens or creates the catalog database in dir.
func OpenSQLiteCatalog(dir string) (*SQLiteCatalog, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}
	path := filepath.Join(dir, DatabaseFileName)

	db, err := sql.Open("sqlite", path+"?mode=rwc")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// One connection serializes appends.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	c := &SQLiteCatalog{db: db, path: path}
	if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}
	if err := c.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}
	return c, nil
}

// Close closes the database connection.
func (c *SQLiteCatalog) Close() error {
	return c.db.Close()
}

// Path returns the database file path.
func (c *SQLiteCatalog) Path() string {
	return c.path
}

func (c *SQLiteCatalog) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS records (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		id TEXT NOT NULL UNIQUE,
		title TEXT NOT NULL,
		author TEXT NOT NULL,
		file_name TEXT NOT NULL,
		file_type TEXT NOT NULL,
		bookmarks TEXT NOT NULL DEFAULT '[]',
		reading_progress REAL NOT NULL DEFAULT 0,
		total_pages INTEGER NOT NULL DEFAULT 0,
		folder_id TEXT,
		annotations TEXT NOT NULL DEFAULT '[]',
		added_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_records_title ON records(title);
	`
	_, err := c.db.ExecContext(context.Background(), schema)
	return err
}

// Append inserts one record.
func (c *SQLiteCatalog) Append(ctx context.Context, record Record) error {
	if err := record.Validate(); err != nil {
		return err
	}
	record = normalize(record)

	bookmarks, err := json.Marshal(record.Bookmarks)
	if err != nil {
		return fmt.Errorf("failed to serialize bookmarks: %w", err)
	}
	annotations, err := json.Marshal(record.Annotations)
	if err != nil {
		return fmt.Errorf("failed to serialize annotations: %w", err)
	}
	var folder sql.NullString
	if record.FolderID != nil {
		folder = sql.NullString{String: *record.FolderID, Valid: true}
	}

	query := `
	INSERT INTO records (id, title, author, file_name, file_type, bookmarks, reading_progress, total_pages, folder_id, annotations)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err = c.db.ExecContext(ctx, query,
		record.ID, record.Title, record.Author, record.FileName, string(record.FileType),
		string(bookmarks), record.ReadingProgress, record.TotalPages, folder, string(annotations))
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return fmt.Errorf("%w: %s", ErrDuplicateID, record.ID)
		}
		return fmt.Errorf("failed to insert record: %w", err)
	}
	return nil
}

// Load returns every record in insertion order.
func (c *SQLiteCatalog) Load(ctx context.Context) ([]Record, error) {
	rows, err := c.db.QueryContext(ctx, `
	SELECT id, title, author, file_name, file_type, bookmarks, reading_progress, total_pages, folder_id, annotations
	FROM records ORDER BY seq
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query records: %w", err)
	}
	defer rows.Close()

	records := []Record{}
	for rows.Next() {
		var (
			r                      Record
			fileType               string
			bookmarks, annotations string
			folder                 sql.NullString
		)
		if err := rows.Scan(&r.ID, &r.Title, &r.Author, &r.FileName, &fileType,
			&bookmarks, &r.ReadingProgress, &r.TotalPages, &folder, &annotations); err != nil {
			return nil, fmt.Errorf("failed to scan record: %w", err)
		}
		r.FileType = FileType(fileType)
		if folder.Valid {
			r.FolderID = &folder.String
		}
		if err := json.Unmarshal([]byte(bookmarks), &r.Bookmarks); err != nil {
			return nil, fmt.Errorf("record %s: failed to decode bookmarks: %w", r.ID, err)
		}
		if err := json.Unmarshal([]byte(annotations), &r.Annotations); err != nil {
			return nil, fmt.Errorf("record %s: failed to decode annotations: %w", r.ID, err)
		}
		records = append(records, normalize(r))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read records: %w", err)
	}
	return records, nil
}
