package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	domainaccess "github.com/target/gatekeeper/internal/domain/access"
	apperrors "github.com/target/gatekeeper/internal/errors"
	"github.com/target/gatekeeper/internal/ports"
)

const (
	defaultAccessListLimit = 50
	maxAccessListLimit     = 500
)

// VerdictInvalidator drops cached gate verdicts for an email.
type VerdictInvalidator interface {
	ForgetEmail(email string) int
}

// AccessServiceOptions groups dependencies for AccessService.
type AccessServiceOptions struct {
	Records  ports.RecordStore
	Key      domainaccess.KeyFunc
	Verdicts VerdictInvalidator
	Logger   *slog.Logger
	Now      func() time.Time
}

// AccessService administers authorization records. The gate never calls it;
// it is the only path that sets Authorized=true.
type AccessService struct {
	records  ports.RecordStore
	key      domainaccess.KeyFunc
	verdicts VerdictInvalidator
	logger   *slog.Logger
	now      func() time.Time
}

// NewAccessService constructs a new AccessService.
func NewAccessService(opts AccessServiceOptions) *AccessService {
	s := &AccessService{
		records:  opts.Records,
		key:      opts.Key,
		verdicts: opts.Verdicts,
		logger:   opts.Logger,
		now:      opts.Now,
	}
	if s.key == nil {
		s.key = domainaccess.RawKey
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// Get returns the record for email.
func (s *AccessService) Get(ctx context.Context, email string) (*domainaccess.Record, error) {
	key, err := s.keyFor(email)
	if err != nil {
		return nil, err
	}
	rec, found, err := s.records.Get(ctx, key)
	if err != nil {
		return nil, apperrors.MapDBError(err)
	}
	if !found {
		return nil, apperrors.NotFoundf("no authorization record for %s", key)
	}
	return &rec, nil
}

// List returns up to limit records. Non-positive limits use the default page size.
func (s *AccessService) List(ctx context.Context, limit int) ([]domainaccess.Record, error) {
	switch {
	case limit <= 0:
		limit = defaultAccessListLimit
	case limit > maxAccessListLimit:
		limit = maxAccessListLimit
	}
	recs, err := s.records.List(ctx, limit)
	if err != nil {
		return nil, apperrors.MapDBError(err)
	}
	return recs, nil
}

// Grant marks email as authorized, creating the record when needed.
func (s *AccessService) Grant(ctx context.Context, email string) (*domainaccess.Record, error) {
	return s.setAuthorized(ctx, email, true)
}

// Revoke marks email as not authorized, creating the record when needed.
func (s *AccessService) Revoke(ctx context.Context, email string) (*domainaccess.Record, error) {
	return s.setAuthorized(ctx, email, false)
}

func (s *AccessService) setAuthorized(ctx context.Context, email string, authorized bool) (*domainaccess.Record, error) {
	key, err := s.keyFor(email)
	if err != nil {
		return nil, err
	}

	existing, found, err := s.records.Get(ctx, key)
	if err != nil {
		return nil, apperrors.MapDBError(err)
	}

	now := s.now().UTC()
	rec := domainaccess.Record{Email: key, Authorized: authorized, CreatedAt: now, UpdatedAt: now}
	if found {
		rec.CreatedAt = existing.CreatedAt
	}

	if putErr := s.records.Put(ctx, key, rec); putErr != nil {
		return nil, apperrors.MapDBError(putErr)
	}

	dropped := 0
	if s.verdicts != nil {
		dropped = s.verdicts.ForgetEmail(key)
	}
	s.logger.InfoContext(ctx, "authorization record updated",
		"key", key,
		"authorized", authorized,
		"created", !found,
		"verdicts_dropped", dropped,
	)
	return &rec, nil
}

func (s *AccessService) keyFor(email string) (string, error) {
	if err := domainaccess.ValidateEmail(email); err != nil {
		return "", apperrors.ValidationField("email", err.Error())
	}
	return s.key(strings.TrimSpace(email)), nil
}
