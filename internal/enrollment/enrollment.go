package enrollment

import (
	"errors"
	"strings"
	"time"
)

// A pending enrollment is valid for ten minutes plus a one-minute grace
// window; past that it is purged on first touch.
const (
	tokenValidity = 10 * time.Minute
	graceWindow   = time.Minute
)

var (
	// ErrNotFound means no pending enrollment exists for the token.
	ErrNotFound = errors.New("enrollment token not found")
	// ErrExpired means the token outlived its validity window and was purged.
	ErrExpired = errors.New("enrollment token expired")
	// ErrValidation means the submitted form fields were incomplete.
	ErrValidation = errors.New("name and student id are required")
)

// Pending is a token-addressed enrollment awaiting confirmation.
type Pending struct {
	Token            string
	FaceImage        []byte
	FaceEncoding     []byte
	CreatedAt        time.Time
	CreatedAtDisplay string
}

// Result describes a successful token consumption.
type Result struct {
	StudentID   int64
	StudentCode string
	Name        string
	Created     bool // false when an existing student was re-enrolled
}

// expired reports whether a token created at createdAt is past its window.
// Stored timestamps without zone information are treated as UTC.
func expired(createdAt, now time.Time) bool {
	return now.UTC().Sub(createdAt.UTC()) > tokenValidity+graceWindow
}

// normalizeSubmission trims the form fields and reports whether both survive.
func normalizeSubmission(name, studentCode string) (string, string, bool) {
	name = strings.TrimSpace(name)
	studentCode = strings.TrimSpace(studentCode)
	return name, studentCode, name != "" && studentCode != ""
}
