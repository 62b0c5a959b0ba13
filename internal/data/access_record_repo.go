package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/target/gatekeeper/internal/data/pgxutil"
	domainaccess "github.com/target/gatekeeper/internal/domain/access"
)

const (
	accessRecordColumns = `email, authorized, created_at, updated_at`

	upsertAccessRecordSQL = `
		INSERT INTO access_records (` + accessRecordColumns + `)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (email) DO UPDATE
		SET authorized = EXCLUDED.authorized,
		    created_at = EXCLUDED.created_at,
		    updated_at = EXCLUDED.updated_at`
)

type accessRecordRow struct {
	Email      string    `db:"email"`
	Authorized bool      `db:"authorized"`
	CreatedAt  time.Time `db:"created_at"`
	UpdatedAt  time.Time `db:"updated_at"`
}

func (r accessRecordRow) record() domainaccess.Record {
	return domainaccess.Record{
		Email:      r.Email,
		Authorized: r.Authorized,
		CreatedAt:  r.CreatedAt.UTC(),
		UpdatedAt:  r.UpdatedAt.UTC(),
	}
}

// AccessRecordRepo stores authorization records in the access_records table.
type AccessRecordRepo struct {
	DB *sql.DB
}

// NewAccessRecordRepo creates a new AccessRecordRepo.
func NewAccessRecordRepo(db *sql.DB) *AccessRecordRepo {
	return &AccessRecordRepo{DB: db}
}

// Get returns the record for key; found is false when no row exists.
func (r *AccessRecordRepo) Get(ctx context.Context, key string) (domainaccess.Record, bool, error) {
	row, err := pgxutil.CollectOne[accessRecordRow](ctx, r.DB,
		`SELECT `+accessRecordColumns+` FROM access_records WHERE email = $1`, key)
	if errors.Is(err, pgx.ErrNoRows) {
		return domainaccess.Record{}, false, nil
	}
	if err != nil {
		return domainaccess.Record{}, false, fmt.Errorf("get access record: %w", err)
	}
	return row.record(), true, nil
}

// Put inserts or replaces the record for key.
func (r *AccessRecordRepo) Put(ctx context.Context, key string, rec domainaccess.Record) error {
	_, err := r.DB.ExecContext(ctx, upsertAccessRecordSQL,
		key, rec.Authorized, rec.CreatedAt.UTC(), rec.UpdatedAt.UTC())
	if err != nil {
		return fmt.Errorf("put access record: %w", err)
	}
	return nil
}

// List returns up to limit records ordered by email.
func (r *AccessRecordRepo) List(ctx context.Context, limit int) ([]domainaccess.Record, error) {
	if limit <= 0 {
		return []domainaccess.Record{}, nil
	}
	rows, err := pgxutil.CollectAll[accessRecordRow](ctx, r.DB,
		`SELECT `+accessRecordColumns+` FROM access_records ORDER BY email LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("list access records: %w", err)
	}
	out := make([]domainaccess.Record, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.record())
	}
	return out, nil
}
