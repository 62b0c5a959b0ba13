package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainaccess "github.com/target/gatekeeper/internal/domain/access"
)

// SingleResult is the part of *mongo.SingleResult the store reads.
type SingleResult interface {
	Decode(v any) error
}

// Cursor is the part of *mongo.Cursor the store reads.
type Cursor interface {
	All(ctx context.Context, results any) error
	Close(ctx context.Context) error
}

// Collection is the part of *mongo.Collection the store uses.
type Collection interface {
	FindOne(ctx context.Context, filter any, opts ...*options.FindOneOptions) SingleResult
	ReplaceOne(ctx context.Context, filter, replacement any, opts ...*options.ReplaceOptions) (*mongo.UpdateResult, error)
	Find(ctx context.Context, filter any, opts ...*options.FindOptions) (Cursor, error)
}

type collection struct {
	*mongo.Collection
}

func (c collection) FindOne(ctx context.Context, filter any, opts ...*options.FindOneOptions) SingleResult {
	return c.Collection.FindOne(ctx, filter, opts...)
}

func (c collection) Find(ctx context.Context, filter any, opts ...*options.FindOptions) (Cursor, error) {
	cur, err := c.Collection.Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	return cur, nil
}

// WrapCollection adapts a driver collection to Collection.
func WrapCollection(c *mongo.Collection) Collection {
	return collection{Collection: c}
}

// recordDoc is the stored shape; the record key is the document _id.
type recordDoc struct {
	ID         string    `bson:"_id"`
	Authorized bool      `bson:"authorized"`
	CreatedAt  time.Time `bson:"created_at"`
	UpdatedAt  time.Time `bson:"updated_at"`
}

func (d recordDoc) record() domainaccess.Record {
	return domainaccess.Record{
		Email:      d.ID,
		Authorized: d.Authorized,
		CreatedAt:  d.CreatedAt.UTC(),
		UpdatedAt:  d.UpdatedAt.UTC(),
	}
}

// RecordStore implements ports.RecordStore on a MongoDB collection.
type RecordStore struct {
	coll Collection
}

// NewRecordStore returns a store backed by the named collection of db.
func NewRecordStore(db *mongo.Database, name string) *RecordStore {
	return &RecordStore{coll: WrapCollection(db.Collection(name))}
}

// NewRecordStoreWithCollection returns a store backed by coll.
func NewRecordStoreWithCollection(coll Collection) *RecordStore {
	return &RecordStore{coll: coll}
}

func (s *RecordStore) Get(ctx context.Context, key string) (domainaccess.Record, bool, error) {
	var doc recordDoc
	err := s.coll.FindOne(ctx, bson.M{"_id": key}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return domainaccess.Record{}, false, nil
	}
	if err != nil {
		return domainaccess.Record{}, false, fmt.Errorf("mongo find record: %w", err)
	}
	return doc.record(), true, nil
}

func (s *RecordStore) Put(ctx context.Context, key string, rec domainaccess.Record) error {
	doc := recordDoc{
		ID:         key,
		Authorized: rec.Authorized,
		CreatedAt:  rec.CreatedAt.UTC(),
		UpdatedAt:  rec.UpdatedAt.UTC(),
	}
	opts := options.Replace().SetUpsert(true)
	if _, err := s.coll.ReplaceOne(ctx, bson.M{"_id": key}, doc, opts); err != nil {
		return fmt.Errorf("mongo upsert record: %w", err)
	}
	return nil
}

func (s *RecordStore) List(ctx context.Context, limit int) ([]domainaccess.Record, error) {
	if limit <= 0 {
		return []domainaccess.Record{}, nil
	}
	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}).SetLimit(int64(limit))
	cur, err := s.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("mongo list records: %w", err)
	}
	defer func() { _ = cur.Close(ctx) }()

	docs := make([]recordDoc, 0, limit)
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("mongo decode records: %w", err)
	}
	out := make([]domainaccess.Record, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.record())
	}
	return out, nil
}
