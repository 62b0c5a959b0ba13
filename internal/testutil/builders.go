package testutil

import (
	"time"

	domainaccess "github.com/target/gatekeeper/internal/domain/access"
	domainauth "github.com/target/gatekeeper/internal/domain/auth"
)

// RecordBuilder provides a fluent interface for building authorization records in tests.
type RecordBuilder struct {
	rec domainaccess.Record
}

// NewRecord starts an unauthorized record for email stamped with TestTime.
func NewRecord(email string) *RecordBuilder {
	now := TestTime()
	return &RecordBuilder{rec: domainaccess.Record{Email: email, CreatedAt: now, UpdatedAt: now}}
}

// Authorized sets the authorized flag.
func (b *RecordBuilder) Authorized(v bool) *RecordBuilder {
	b.rec.Authorized = v
	return b
}

// At overrides both timestamps.
func (b *RecordBuilder) At(t time.Time) *RecordBuilder {
	b.rec.CreatedAt = t
	b.rec.UpdatedAt = t
	return b
}

// Build returns the record.
func (b *RecordBuilder) Build() domainaccess.Record {
	return b.rec
}

// SessionBuilder provides a fluent interface for building sessions in tests.
type SessionBuilder struct {
	sess domainauth.Session
}

// NewSession starts a user-role session for email that expires in an hour.
func NewSession(id, email string) *SessionBuilder {
	return &SessionBuilder{sess: domainauth.Session{
		ID:        id,
		UserID:    "user-" + id,
		Email:     email,
		Role:      domainauth.RoleUser,
		ExpiresAt: time.Now().Add(time.Hour),
	}}
}

// WithRole sets the session role.
func (b *SessionBuilder) WithRole(r domainauth.Role) *SessionBuilder {
	b.sess.Role = r
	return b
}

// Expired moves the expiry into the past.
func (b *SessionBuilder) Expired() *SessionBuilder {
	b.sess.ExpiresAt = time.Now().Add(-time.Minute)
	return b
}

// Build returns the session.
func (b *SessionBuilder) Build() domainauth.Session {
	return b.sess
}
