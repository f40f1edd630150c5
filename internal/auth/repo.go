package auth

import (
	"context"
	"database/sql"
	"errors"
)

// Admin is an administrator account. Accounts are created out of band; there
// is no self-registration route.
type Admin struct {
	ID           int64
	Name         string
	Username     string
	PasswordHash string
}

// ErrInvalidCredentials is deliberately generic: callers must not learn
// whether the username or the password was wrong.
var ErrInvalidCredentials = errors.New("invalid username/password")

// Repository reads admin accounts from Postgres.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a repo.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Authenticate verifies the credentials and returns the matching admin.
func (r *Repository) Authenticate(ctx context.Context, username, password string) (Admin, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, name, username, password_hash FROM admin WHERE username = $1`, username)
	var a Admin
	err := row.Scan(&a.ID, &a.Name, &a.Username, &a.PasswordHash)
	if errors.Is(err, sql.ErrNoRows) {
		return Admin{}, ErrInvalidCredentials
	}
	if err != nil {
		return Admin{}, err
	}
	if !CheckPassword(a.PasswordHash, password) {
		return Admin{}, ErrInvalidCredentials
	}
	return a, nil
}

// Seed creates the admin account if the username is not taken yet. Used for
// bootstrap deployments where no account exists.
func (r *Repository) Seed(ctx context.Context, name, username, password string) error {
	hash, err := HashPassword(password)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO admin (name, username, password_hash)
		VALUES ($1, $2, $3)
		ON CONFLICT (username) DO NOTHING
	`, name, username, hash)
	return err
}
