package store

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapError_Nil(t *testing.T) {
	assert.NoError(t, MapError(nil))
}

func TestMapError_ForeignKeyViolation(t *testing.T) {
	err := MapError(&pgconn.PgError{Code: "23503", Message: "violates foreign key constraint"})
	assert.ErrorIs(t, err, ErrReferentialIntegrity)
}

func TestMapError_UniqueViolation(t *testing.T) {
	err := MapError(&pgconn.PgError{Code: "23505", Message: "duplicate key value"})
	assert.ErrorIs(t, err, ErrUniquenessViolation)
}

func TestMapError_DimensionMismatch(t *testing.T) {
	err := MapError(&pgconn.PgError{Code: "22000", Message: "expected 1536 dimensions, not 1535"})
	assert.ErrorIs(t, err, ErrDimensionMismatch)
}

func TestMapError_NoRows(t *testing.T) {
	err := MapError(pgx.ErrNoRows)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMapError_DeadlineExceeded(t *testing.T) {
	err := MapError(fmt.Errorf("query: %w", context.DeadlineExceeded))
	assert.ErrorIs(t, err, ErrTimeout)
}

func TestMapError_WrappedPgError(t *testing.T) {
	inner := &pgconn.PgError{Code: "23503"}
	err := MapError(fmt.Errorf("insert chunk: %w", inner))
	require.ErrorIs(t, err, ErrReferentialIntegrity)

	// the driver error stays in the chain
	var pgErr *pgconn.PgError
	assert.True(t, errors.As(err, &pgErr))
}

func TestMapError_UnknownPassesThrough(t *testing.T) {
	unknown := errors.New("connection refused")
	err := MapError(unknown)
	assert.Equal(t, unknown, err)
	assert.NotErrorIs(t, err, ErrNotFound)
	assert.NotErrorIs(t, err, ErrTimeout)
}
