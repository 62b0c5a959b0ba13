package errors

import (
	"context"
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
)

// MapDBError maps record store errors to AppError instances.
// It understands the three remote backends:
// - context timeouts/cancellations → Timeout/Canceled
// - pgx.ErrNoRows, mongo.ErrNoDocuments, redis.Nil → NotFound
// - PostgreSQL constraint violations → Conflict/Validation, other server errors → Internal
// - MongoDB duplicate keys → Conflict, network/timeout failures → Unavailable/Timeout
//
// If the error is not a recognized store error, it returns the original error.
func MapDBError(err error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return Wrap(err, ErrCodeTimeout, "Request timed out. Please try again.")
	case errors.Is(err, context.Canceled):
		return Wrap(err, ErrCodeCanceled, "Request was canceled.")
	case errors.Is(err, pgx.ErrNoRows), errors.Is(err, mongo.ErrNoDocuments), errors.Is(err, redis.Nil):
		return Wrap(err, ErrCodeNotFound, "Resource not found")
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return mapPgError(pgErr)
	}

	return mapMongoError(err)
}

func mapPgError(pgErr *pgconn.PgError) error {
	switch pgErr.Code {
	case pgerrcode.UniqueViolation:
		e := Wrap(pgErr, ErrCodeConflict, "This record already exists.")
		e.Field = pgErr.ColumnName
		return e
	case pgerrcode.NotNullViolation, pgerrcode.CheckViolation:
		e := Wrap(pgErr, ErrCodeValidation, "Invalid data. Please check your input.")
		e.Field = pgErr.ColumnName
		return e
	case pgerrcode.AdminShutdown, pgerrcode.CannotConnectNow, pgerrcode.TooManyConnections:
		return Wrap(pgErr, ErrCodeUnavailable, "The record store is unavailable.")
	default:
		return Wrap(pgErr, ErrCodeInternal, "A database error occurred. Please try again.")
	}
}

func mapMongoError(err error) error {
	switch {
	case mongo.IsDuplicateKeyError(err):
		return Wrap(err, ErrCodeConflict, "This record already exists.")
	case mongo.IsTimeout(err):
		return Wrap(err, ErrCodeTimeout, "Request timed out. Please try again.")
	case mongo.IsNetworkError(err):
		return Wrap(err, ErrCodeUnavailable, "The record store is unavailable.")
	default:
		return err
	}
}
