package errors

import (
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorIsMatchesByCode(t *testing.T) {
	clone := Clone(ErrRunInProgress, "a routine run for 2024-2025 is already in progress")
	wrapped := fmt.Errorf("generate: %w", clone)

	assert.True(t, errors.Is(wrapped, ErrRunInProgress))
	assert.False(t, errors.Is(wrapped, ErrConflict))
	assert.Equal(t, "a routine run for 2024-2025 is already in progress", FromError(wrapped).Message)
}

func TestWrapKeepsCause(t *testing.T) {
	err := Wrap(sql.ErrNoRows, ErrNotFound.Code, ErrNotFound.Status, "routine session not found")
	assert.True(t, errors.Is(err, sql.ErrNoRows))
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.Contains(t, err.Error(), "no rows")
}

func TestFromErrorDefaultsToInternal(t *testing.T) {
	err := FromError(errors.New("boom"))
	assert.Equal(t, ErrInternal.Code, err.Code)
	assert.Equal(t, http.StatusInternalServerError, err.Status)
	assert.Nil(t, FromError(nil))
}

func TestValidationCollectsFieldErrors(t *testing.T) {
	type payload struct {
		AcademicYear string `validate:"required"`
		DailyLimit   int    `validate:"omitempty,min=1,max=9"`
	}
	verr := validator.New().Struct(payload{DailyLimit: 12})
	require.Error(t, verr)

	err := Validation(verr, "invalid routine generation payload")
	assert.Equal(t, ErrValidation.Code, err.Code)
	assert.Equal(t, http.StatusBadRequest, err.Status)
	require.Len(t, err.Details, 2)
	assert.Equal(t, FieldError{Field: "payload.AcademicYear", Rule: "required"}, err.Details[0])
	assert.Equal(t, FieldError{Field: "payload.DailyLimit", Rule: "max", Param: "9"}, err.Details[1])

	plain := Validation(errors.New("duplicate preference for Saturday slot 1"), "duplicate preference for Saturday slot 1")
	assert.Empty(t, plain.Details)
}
