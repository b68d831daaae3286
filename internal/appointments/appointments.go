// Package appointments holds the gateway's small metadata database:
// appointment records served on the public surface and the tag entries
// recorded for tagged uploads.
package appointments

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"log/slog"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed migrations
var migrationsFS embed.FS

// Appointment is one scheduled appointment row.
type Appointment struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
}

// Store is a sqlite-backed metadata store. It is safe for concurrent use.
type Store struct {
	db *sql.DB
}

// initSchema applies all SQL files in the embedded migrations in
// lexicographical order.
func initSchema(ctx context.Context, db *sql.DB) error {
	return fs.WalkDir(migrationsFS, "migrations", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}

		content, readError := migrationsFS.ReadFile(path)
		if readError != nil {
			return fmt.Errorf("error reading SQL file: %w", readError)
		}

		slog.Info("Running migration", "path", path)
		_, execError := db.ExecContext(ctx, string(content))
		return execError
	})
}

// Open opens (creating if necessary) the metadata database at dbPath and
// applies the schema.
func Open(ctx context.Context, dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	if err := initSchema(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// ListAppointments returns all appointments ordered by id.
func (s *Store) ListAppointments(ctx context.Context) ([]Appointment, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, title FROM appointments ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query appointments: %w", err)
	}
	defer rows.Close()

	appointments := make([]Appointment, 0)
	for rows.Next() {
		var a Appointment
		if err := rows.Scan(&a.ID, &a.Title); err != nil {
			return nil, fmt.Errorf("scan appointment: %w", err)
		}
		appointments = append(appointments, a)
	}

	return appointments, rows.Err()
}

// AddAppointment inserts a new appointment and returns its id.
func (s *Store) AddAppointment(ctx context.Context, title string) (int64, error) {
	res, err := s.db.ExecContext(ctx, `INSERT INTO appointments(title) VALUES(?)`, title)
	if err != nil {
		return 0, fmt.Errorf("insert appointment: %w", err)
	}
	return res.LastInsertId()
}

// RecordUploadTag persists one tag entry for an uploaded file. Tags are a
// metadata side-channel and have no effect on stored objects.
func (s *Store) RecordUploadTag(ctx context.Context, bucket string, filename string, tag string) error {
	now := time.Now().UTC()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO upload_tags(bucket, filename, tag, uploaded_at) VALUES(?, ?, ?, ?)`,
		bucket, filename, tag, now,
	)
	if err != nil {
		return fmt.Errorf("insert upload tag: %w", err)
	}
	return nil
}

// UploadTags returns the tags recorded for (bucket, filename), most recent
// first.
func (s *Store) UploadTags(ctx context.Context, bucket string, filename string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT tag FROM upload_tags WHERE bucket = ? AND filename = ? ORDER BY uploaded_at DESC, id DESC`,
		bucket, filename,
	)
	if err != nil {
		return nil, fmt.Errorf("query upload tags: %w", err)
	}
	defer rows.Close()

	tags := make([]string, 0)
	for rows.Next() {
		var tag string
		if err := rows.Scan(&tag); err != nil {
			return nil, fmt.Errorf("scan upload tag: %w", err)
		}
		tags = append(tags, tag)
	}

	return tags, rows.Err()
}
