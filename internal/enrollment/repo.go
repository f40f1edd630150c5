package enrollment

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Repository persists pending enrollments in Postgres.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a repo.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Create stores a new pending enrollment and returns its token.
func (r *Repository) Create(ctx context.Context, faceImage, faceEncoding []byte, display string) (string, error) {
	token := uuid.NewString()
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO pending_enrollments (token, face_image, face_encoding, created_at_utc, created_at_display)
		VALUES ($1, $2, $3, $4, $5)
	`, token, faceImage, faceEncoding, time.Now().UTC(), display)
	if err != nil {
		return "", fmt.Errorf("create pending enrollment: %w", err)
	}
	return token, nil
}

// Fetch validates a token for the enrollment form. An expired token is
// deleted on this read path, so a later fetch reports NotFound.
func (r *Repository) Fetch(ctx context.Context, token string, now time.Time) error {
	row := r.db.QueryRowContext(ctx,
		`SELECT created_at_utc FROM pending_enrollments WHERE token = $1`, token)
	var createdAt time.Time
	if err := row.Scan(&createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}
	if expired(createdAt, now) {
		if _, err := r.Delete(ctx, token); err != nil {
			return err
		}
		return ErrExpired
	}
	return nil
}

// Consume atomically deletes the token, upserts the student and appends a
// check-in log in one transaction. The conditional DELETE ... RETURNING is the
// race guard: of two concurrent consumers the loser scans zero rows and
// observes NotFound. A validation failure rolls everything back, leaving the
// token alive; expiry commits only the delete.
func (r *Repository) Consume(ctx context.Context, token, name, studentCode string, now time.Time) (Result, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return Result{}, err
	}
	defer tx.Rollback()

	var (
		encoding  []byte
		createdAt time.Time
	)
	err = tx.QueryRowContext(ctx, `
		DELETE FROM pending_enrollments WHERE token = $1
		RETURNING face_encoding, created_at_utc
	`, token).Scan(&encoding, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Result{}, ErrNotFound
	}
	if err != nil {
		return Result{}, err
	}

	if expired(createdAt, now) {
		if err := tx.Commit(); err != nil {
			return Result{}, err
		}
		return Result{}, ErrExpired
	}

	name, studentCode, ok := normalizeSubmission(name, studentCode)
	if !ok {
		return Result{}, ErrValidation
	}

	res := Result{StudentCode: studentCode, Name: name}
	err = tx.QueryRowContext(ctx, `
		INSERT INTO students (student_id, name, face_encoding, created_at_utc)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (student_id) DO UPDATE SET
			name = EXCLUDED.name,
			face_encoding = EXCLUDED.face_encoding
		RETURNING id, (xmax = 0)
	`, studentCode, name, encoding, now.UTC()).Scan(&res.StudentID, &res.Created)
	if err != nil {
		return Result{}, fmt.Errorf("upsert student: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO attendance_logs (student_id, type, created_at_utc)
		VALUES ($1, $2, $3)
	`, res.StudentID, "check_in", now.UTC())
	if err != nil {
		return Result{}, fmt.Errorf("append check-in log: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return Result{}, err
	}
	return res, nil
}

// FaceImage returns the stored image blob for a pending enrollment.
func (r *Repository) FaceImage(ctx context.Context, token string) ([]byte, error) {
	var img []byte
	err := r.db.QueryRowContext(ctx,
		`SELECT face_image FROM pending_enrollments WHERE token = $1`, token).Scan(&img)
	if errors.Is(err, sql.ErrNoRows) || (err == nil && len(img) == 0) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return img, nil
}

// ListRecent returns the newest pending enrollments for the dashboard panel.
func (r *Repository) ListRecent(ctx context.Context, limit int) ([]Pending, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT token, created_at_utc, created_at_display
		FROM pending_enrollments
		ORDER BY created_at_utc DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var pendings []Pending
	for rows.Next() {
		var (
			p       Pending
			display sql.NullString
		)
		if err := rows.Scan(&p.Token, &p.CreatedAt, &display); err != nil {
			return nil, err
		}
		p.CreatedAt = p.CreatedAt.UTC()
		p.CreatedAtDisplay = display.String
		pendings = append(pendings, p)
	}
	return pendings, rows.Err()
}

// Delete removes one pending enrollment and reports whether a row existed.
func (r *Repository) Delete(ctx context.Context, token string) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM pending_enrollments WHERE token = $1`, token)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// DeleteAll removes every pending enrollment and returns the count.
func (r *Repository) DeleteAll(ctx context.Context) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM pending_enrollments`)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// DeleteMany removes the listed tokens in one batched statement. Best effort:
// unknown tokens are skipped, not reported.
func (r *Repository) DeleteMany(ctx context.Context, tokens []string) (int64, error) {
	if len(tokens) == 0 {
		return 0, nil
	}
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM pending_enrollments WHERE token = ANY($1)`, tokens)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
