// Package access holds the domain types of the post-login authorization gate.
package access

import (
	"errors"
	"net/mail"
	"strings"
	"time"

	domainauth "github.com/target/gatekeeper/internal/domain/auth"
)

// HomePath is the only redirect target the gate ever issues.
const HomePath = "/"

// DefaultExemptPaths are the public pages of the application.
var DefaultExemptPaths = []string{"/", "/sign-in", "/sign-up", "/privacy", "/terms"}

// Record is the per-user authorization document, keyed by primary email.
// Records are created lazily with Authorized=false; only an administrator flips the flag.
type Record struct {
	Email      string    `json:"email"`
	Authorized bool      `json:"authorized"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Outcome is the result of a single gate evaluation.
type Outcome string

const (
	// OutcomeSkipped means there was no session identity; nothing was read or written.
	OutcomeSkipped Outcome = "skipped"
	// OutcomeCreated means no record existed; one was created unauthorized and the user sent home.
	OutcomeCreated Outcome = "created"
	// OutcomeDenied means the record exists but is not authorized; the user was sent home.
	OutcomeDenied Outcome = "denied"
	// OutcomeAllowed means the record is authorized; the page renders.
	OutcomeAllowed Outcome = "allowed"
	// OutcomeFailedOpen means the store failed; the error was logged and the page renders.
	OutcomeFailedOpen Outcome = "failed_open"
)

// Redirects reports whether the outcome sends the user to HomePath.
func (o Outcome) Redirects() bool {
	return o == OutcomeCreated || o == OutcomeDenied
}

// Identity is the part of a signed-in session the gate inspects.
type Identity struct {
	SessionID string
	Email     string
}

// IdentityFromSession returns the gate identity for a session, or nil when there is none.
func IdentityFromSession(s *domainauth.Session) *Identity {
	if s == nil || s.ID == "" {
		return nil
	}
	return &Identity{SessionID: s.ID, Email: s.Email}
}

// KeyFunc derives a record key from an email address.
type KeyFunc func(email string) string

// RawKey keys records by the email exactly as reported, minus surrounding whitespace.
func RawKey(email string) string {
	return strings.TrimSpace(email)
}

// LowercaseKey keys records by the trimmed, lowercased email.
func LowercaseKey(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// KeyFuncFor picks the key derivation for the lowercase setting.
func KeyFuncFor(lowercase bool) KeyFunc {
	if lowercase {
		return LowercaseKey
	}
	return RawKey
}

// ErrInvalidEmail is returned when an administrator supplies something that is not an address.
var ErrInvalidEmail = errors.New("invalid email address")

// ValidateEmail checks that s is a bare email address (no display name).
func ValidateEmail(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return ErrInvalidEmail
	}
	addr, err := mail.ParseAddress(s)
	if err != nil || addr.Address != s {
		return ErrInvalidEmail
	}
	return nil
}
