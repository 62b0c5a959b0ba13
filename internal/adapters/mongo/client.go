// Package mongo stores authorization records as MongoDB documents keyed by email.
package mongo

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// ConnectOptions configures Connect.
type ConnectOptions struct {
	URI         string
	Database    string
	MaxPoolSize uint64
	Timeout     time.Duration
	Logger      *slog.Logger
}

// DB holds the MongoDB client and the application database.
type DB struct {
	Client   *mongo.Client
	Database *mongo.Database
}

// Connect dials MongoDB and verifies the primary is reachable.
func Connect(ctx context.Context, opts ConnectOptions) (*DB, error) {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	clientOpts := options.Client().
		ApplyURI(opts.URI).
		SetServerSelectionTimeout(timeout)
	if opts.MaxPoolSize > 0 {
		clientOpts.SetMaxPoolSize(opts.MaxPoolSize)
	}

	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return nil, fmt.Errorf("connect mongodb: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongodb: %w", err)
	}

	if opts.Logger != nil {
		opts.Logger.Info("connected to mongodb", "database", opts.Database)
	}
	return &DB{Client: client, Database: client.Database(opts.Database)}, nil
}

// Ping checks the primary is reachable.
func (d *DB) Ping(ctx context.Context) error {
	return d.Client.Ping(ctx, readpref.Primary())
}

// Close disconnects the client.
func (d *DB) Close(ctx context.Context) error {
	return d.Client.Disconnect(ctx)
}
