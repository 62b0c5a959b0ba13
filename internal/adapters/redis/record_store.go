package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	domainaccess "github.com/target/gatekeeper/internal/domain/access"
)

const (
	fieldAuthorized = "authorized"
	fieldCreatedAt  = "created_at"
	fieldUpdatedAt  = "updated_at"
)

// RecordStore keeps each authorization record in a hash at "access:<collection>:<key>".
// A sorted set at "access:<collection>:index" holds every key so List can page in key order.
type RecordStore struct {
	client redis.UniversalClient
	keys   keyspace
}

// NewRecordStore creates a Redis record store for the named collection.
func NewRecordStore(client redis.UniversalClient, collection string) *RecordStore {
	return &RecordStore{client: client, keys: keyspace("access:" + collection)}
}

func (s *RecordStore) Get(ctx context.Context, key string) (domainaccess.Record, bool, error) {
	vals, err := s.client.HGetAll(ctx, s.keys.key("rec", key)).Result()
	if err != nil {
		return domainaccess.Record{}, false, fmt.Errorf("redis get record: %w", err)
	}
	if len(vals) == 0 {
		return domainaccess.Record{}, false, nil
	}
	rec, err := decodeRecord(key, vals)
	if err != nil {
		return domainaccess.Record{}, false, err
	}
	return rec, true, nil
}

func (s *RecordStore) Put(ctx context.Context, key string, rec domainaccess.Record) error {
	_, err := s.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.HSet(ctx, s.keys.key("rec", key),
			fieldAuthorized, strconv.FormatBool(rec.Authorized),
			fieldCreatedAt, rec.CreatedAt.UTC().Format(time.RFC3339Nano),
			fieldUpdatedAt, rec.UpdatedAt.UTC().Format(time.RFC3339Nano),
		)
		p.ZAdd(ctx, s.keys.key("index"), redis.Z{Member: key})
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis put record: %w", err)
	}
	return nil
}

func (s *RecordStore) List(ctx context.Context, limit int) ([]domainaccess.Record, error) {
	if limit <= 0 {
		return []domainaccess.Record{}, nil
	}
	keys, err := s.client.ZRange(ctx, s.keys.key("index"), 0, int64(limit-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("redis list records: %w", err)
	}

	cmds := make([]*redis.MapStringStringCmd, len(keys))
	_, err = s.client.Pipelined(ctx, func(p redis.Pipeliner) error {
		for i, k := range keys {
			cmds[i] = p.HGetAll(ctx, s.keys.key("rec", k))
		}
		return nil
	})
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("redis list records: %w", err)
	}

	out := make([]domainaccess.Record, 0, len(keys))
	for i, cmd := range cmds {
		vals := cmd.Val()
		if len(vals) == 0 {
			continue
		}
		rec, decErr := decodeRecord(keys[i], vals)
		if decErr != nil {
			return nil, decErr
		}
		out = append(out, rec)
	}
	return out, nil
}

func decodeRecord(key string, vals map[string]string) (domainaccess.Record, error) {
	rec := domainaccess.Record{Email: key}
	var err error
	if rec.Authorized, err = strconv.ParseBool(vals[fieldAuthorized]); err != nil {
		return rec, fmt.Errorf("decode record %s: %s: %w", key, fieldAuthorized, err)
	}
	if rec.CreatedAt, err = parseTime(vals[fieldCreatedAt]); err != nil {
		return rec, fmt.Errorf("decode record %s: %s: %w", key, fieldCreatedAt, err)
	}
	if rec.UpdatedAt, err = parseTime(vals[fieldUpdatedAt]); err != nil {
		return rec, fmt.Errorf("decode record %s: %s: %w", key, fieldUpdatedAt, err)
	}
	return rec, nil
}

func parseTime(v string) (time.Time, error) {
	if v == "" {
		return time.Time{}, nil
	}
	return time.Parse(time.RFC3339Nano, v)
}
