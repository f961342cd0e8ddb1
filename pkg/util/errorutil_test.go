package util

import (
	"errors"
	"net/http"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToDomainErrorPassesThrough(t *testing.T) {
	original := NewValidationError("bad input", map[string]any{"field": "reason"})

	mapped := ToDomainError(original)
	assert.Equal(t, "VALIDATION_FAILED", mapped.Code)
	assert.Equal(t, http.StatusBadRequest, mapped.HTTPStatus)
	assert.Equal(t, "reason", mapped.Details["field"])
}

func TestToDomainErrorMapsNoRows(t *testing.T) {
	mapped := ToDomainError(pgx.ErrNoRows)
	assert.Equal(t, "NOT_FOUND", mapped.Code)
	assert.Equal(t, http.StatusNotFound, mapped.HTTPStatus)
}

func TestToDomainErrorWrapsUnknownErrors(t *testing.T) {
	cause := errors.New("boom")
	mapped := ToDomainError(cause)
	assert.Equal(t, "INTERNAL_ERROR", mapped.Code)
	assert.Equal(t, http.StatusInternalServerError, mapped.HTTPStatus)
	assert.ErrorIs(t, mapped, cause)
}

func TestToDomainErrorNil(t *testing.T) {
	assert.Nil(t, ToDomainError(nil))
}

func TestConflictUsesBadRequest(t *testing.T) {
	mapped := ToDomainError(NewConflict("duplicate", nil))
	assert.Equal(t, "CONFLICT", mapped.Code)
	assert.Equal(t, http.StatusBadRequest, mapped.HTTPStatus)
}

func TestInvalidTokenMessageIsUniform(t *testing.T) {
	mapped := ToDomainError(NewInvalidToken())
	assert.Equal(t, "INVALID_TOKEN", mapped.Code)
	assert.Equal(t, http.StatusBadRequest, mapped.HTTPStatus)
	assert.Equal(t, "invalid or expired invitation token", mapped.Message)
}

func TestDomainErrorUnwrap(t *testing.T) {
	cause := errors.New("smtp down")
	err := NewEmailDeliveryError(cause)

	var domainErr *DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, domainErr.Error(), "smtp down")
}
