package store

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Sentinel errors for the storage contracts. Callers match with errors.Is; the
// original driver error stays in the chain for logging.
var (
	ErrNotFound             = errors.New("not found")
	ErrReferentialIntegrity = errors.New("referential integrity violation")
	ErrUniquenessViolation  = errors.New("uniqueness violation")
	ErrDimensionMismatch    = errors.New("embedding dimension mismatch")
	ErrTimeout              = errors.New("operation deadline exceeded")
)

const (
	pgForeignKeyViolation = "23503"
	pgUniqueViolation     = "23505"
	pgDataException       = "22000"
)

// MapError classifies a driver error into the storage error taxonomy. Errors
// that do not match any known class pass through unchanged.
func MapError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return errors.Join(ErrTimeout, err)
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return errors.Join(ErrNotFound, err)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgForeignKeyViolation:
			return errors.Join(ErrReferentialIntegrity, err)
		case pgUniqueViolation:
			return errors.Join(ErrUniquenessViolation, err)
		case pgDataException:
			// pgvector reports a vector length mismatch as a data exception.
			return errors.Join(ErrDimensionMismatch, err)
		}
	}

	return err
}
