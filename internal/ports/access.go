package ports

import (
	"context"

	domainaccess "github.com/target/gatekeeper/internal/domain/access"
)

// RecordStore is the remote document store holding one authorization record per email.
type RecordStore interface {
	// Get returns the record stored at key. A missing record is reported as found=false with a nil error.
	Get(ctx context.Context, key string) (rec domainaccess.Record, found bool, err error)

	// Put creates or overwrites the record stored at key.
	Put(ctx context.Context, key string, rec domainaccess.Record) error

	// List returns up to limit records ordered by key.
	List(ctx context.Context, limit int) ([]domainaccess.Record, error)
}

// Navigator changes the page the signed-in user is looking at.
type Navigator interface {
	Navigate(ctx context.Context, path string) error
}

// PendingRedirectStore parks redirects decided outside of a request until the session's next request.
type PendingRedirectStore interface {
	Set(ctx context.Context, sessionID, path string) error
	// Take returns and removes the pending redirect for a session.
	Take(ctx context.Context, sessionID string) (path string, ok bool, err error)
	Clear(ctx context.Context, sessionID string) error
}
