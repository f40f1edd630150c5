package store

import (
	"context"
	"database/sql"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// DB wraps sql.DB for Postgres using pgx.
type DB struct {
	Client *sql.DB
}

// NewDB creates a Postgres connection pool with sane defaults.
func NewDB(connString string) (*DB, error) {
	db, err := sql.Open("pgx", connString)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)
	return &DB{Client: db}, db.PingContext(context.Background())
}

// Close closes the underlying connection pool.
func (d *DB) Close() error {
	if d == nil || d.Client == nil {
		return nil
	}
	return d.Client.Close()
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS admin (
		id BIGSERIAL PRIMARY KEY,
		name TEXT NOT NULL,
		username TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS pending_enrollments (
		token TEXT PRIMARY KEY,
		face_image BYTEA,
		face_encoding BYTEA,
		created_at_utc TIMESTAMPTZ NOT NULL DEFAULT now(),
		created_at_display TEXT
	)`,
	`CREATE TABLE IF NOT EXISTS students (
		id BIGSERIAL PRIMARY KEY,
		student_id TEXT NOT NULL UNIQUE,
		name TEXT NOT NULL,
		face_encoding BYTEA,
		created_at_utc TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS attendance_logs (
		id BIGSERIAL PRIMARY KEY,
		student_id BIGINT REFERENCES students(id) ON DELETE CASCADE,
		type TEXT NOT NULL,
		created_at_utc TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_attendance_logs_created ON attendance_logs (created_at_utc)`,
}

// Migrate creates the tables when they do not exist yet.
func (d *DB) Migrate(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := d.Client.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
