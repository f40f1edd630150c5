package attendance

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// Log types form a closed set; anything else is rejected at the boundary.
const (
	TypeCheckIn  = "check_in"
	TypeCheckOut = "check_out"
)

// ErrUnknownStudent means a check-in referenced a student code that is not enrolled.
var ErrUnknownStudent = errors.New("unknown student")

// ValidType reports whether t is an accepted log type.
func ValidType(t string) bool {
	return t == TypeCheckIn || t == TypeCheckOut
}

// Row is one attendance log joined with its student, annotated with the
// display-timezone date and time. Student fields are null when the log
// reference dangles.
type Row struct {
	ID          int64
	Type        string
	CreatedAt   time.Time
	StudentCode sql.NullString
	StudentName sql.NullString
	DateLocal   string
	TimeLocal   string
}

// Student is the dashboard's view of an enrolled student.
type Student struct {
	ID          int64
	StudentCode string
	Name        string
}

// Repository reads and writes attendance data in Postgres.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a repo.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// List returns logs matching the filters. limit <= 0 returns the full result
// set (export); the dashboard passes DashboardLimit.
func (r *Repository) List(ctx context.Context, f Filters, limit int) ([]Row, error) {
	query, args := buildQuery(f, limit)
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []Row
	for rows.Next() {
		var row Row
		if err := rows.Scan(&row.ID, &row.Type, &row.CreatedAt,
			&row.StudentCode, &row.StudentName, &row.DateLocal, &row.TimeLocal); err != nil {
			return nil, err
		}
		row.CreatedAt = row.CreatedAt.UTC()
		res = append(res, row)
	}
	return res, rows.Err()
}

// Insert appends one log row for an enrolled student identified by code.
func (r *Repository) Insert(ctx context.Context, studentCode, typ string, at time.Time) (int64, error) {
	var studentID int64
	err := r.db.QueryRowContext(ctx,
		`SELECT id FROM students WHERE student_id = $1`, studentCode).Scan(&studentID)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrUnknownStudent
	}
	if err != nil {
		return 0, err
	}
	var id int64
	err = r.db.QueryRowContext(ctx, `
		INSERT INTO attendance_logs (student_id, type, created_at_utc)
		VALUES ($1, $2, $3)
		RETURNING id
	`, studentID, typ, at.UTC()).Scan(&id)
	return id, err
}

// Students returns all students ordered by name, for the filter dropdown.
func (r *Repository) Students(ctx context.Context) ([]Student, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, student_id, name FROM students ORDER BY name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var students []Student
	for rows.Next() {
		var s Student
		if err := rows.Scan(&s.ID, &s.StudentCode, &s.Name); err != nil {
			return nil, err
		}
		students = append(students, s)
	}
	return students, rows.Err()
}

// DeleteStudent removes one student and reports whether a row existed.
// Logs cascade at the schema level.
func (r *Repository) DeleteStudent(ctx context.Context, id int64) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM students WHERE id = $1`, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}
