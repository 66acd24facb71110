package httputil

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/SpyBeast07/lms-system/pkg/errors"
	"github.com/SpyBeast07/lms-system/pkg/validator"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func decodeBody(t *testing.T, rr *httptest.ResponseRecorder) Response {
	t.Helper()
	var resp Response
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	return resp
}

func TestWriteJSON(t *testing.T) {
	rr := httptest.NewRecorder()
	WriteJSON(rr, http.StatusCreated, Response{Data: map[string]string{"id": "x1"}})

	assert.Equal(t, http.StatusCreated, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))

	resp := decodeBody(t, rr)
	assert.Nil(t, resp.Error)
	assert.Equal(t, map[string]any{"id": "x1"}, resp.Data)
}

func TestWriteError_AppError(t *testing.T) {
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/x", nil)

	WriteError(rr, req, apperrors.Forbidden("not your school"), testLogger())

	assert.Equal(t, http.StatusForbidden, rr.Code)
	resp := decodeBody(t, rr)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "FORBIDDEN", resp.Error.Code)
	assert.Equal(t, "not your school", resp.Error.Message)
}

func TestWriteError_WrappedAppError(t *testing.T) {
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/x", nil)

	wrapped := fmt.Errorf("resolve request: %w", apperrors.NotFound("course", "c1"))
	WriteError(rr, req, wrapped, testLogger())

	assert.Equal(t, http.StatusNotFound, rr.Code)
	resp := decodeBody(t, rr)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "NOT_FOUND", resp.Error.Code)
}

func TestWriteError_BareSentinel(t *testing.T) {
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/x", nil)

	WriteError(rr, req, apperrors.ErrAlreadyExists, testLogger())

	assert.Equal(t, http.StatusConflict, rr.Code)
	resp := decodeBody(t, rr)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "ALREADY_EXISTS", resp.Error.Code)
}

func TestWriteError_UnknownErrorIsInternal(t *testing.T) {
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/x", nil)

	WriteError(rr, req, errors.New("pg timeout"), testLogger())

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	resp := decodeBody(t, rr)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "INTERNAL_ERROR", resp.Error.Code)
	// Internals are never leaked to the client.
	assert.NotContains(t, resp.Error.Message, "pg timeout")
}

func TestWriteValidationError_FieldErrors(t *testing.T) {
	type payload struct {
		Email string `validate:"required,email"`
	}
	err := validator.Validate(payload{})
	require.Error(t, err)

	rr := httptest.NewRecorder()
	WriteValidationError(rr, err)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	resp := decodeBody(t, rr)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "VALIDATION_ERROR", resp.Error.Code)
	assert.Contains(t, resp.Error.Fields, "Email")
}

func TestWriteValidationError_PlainError(t *testing.T) {
	rr := httptest.NewRecorder()
	WriteValidationError(rr, errors.New("unexpected EOF"))

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	resp := decodeBody(t, rr)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "INVALID_INPUT", resp.Error.Code)
}

func TestNewPaginatedResponse(t *testing.T) {
	resp := NewPaginatedResponse([]int{1, 2, 3}, 45, 2, 20)

	assert.Equal(t, 45, resp.TotalCount)
	assert.Equal(t, 3, resp.TotalPages)
	assert.True(t, resp.HasNext)
}

func TestNewPaginatedResponse_NilData(t *testing.T) {
	resp := NewPaginatedResponse[string](nil, 0, 1, 20)

	assert.NotNil(t, resp.Data)
	assert.Empty(t, resp.Data)
	assert.False(t, resp.HasNext)
}

func TestParseUUID_Valid(t *testing.T) {
	rr := httptest.NewRecorder()
	id, ok := ParseUUID(rr, "550e8400-e29b-41d4-a716-446655440000")

	assert.True(t, ok)
	assert.Equal(t, "550e8400-e29b-41d4-a716-446655440000", id.String())
}

func TestParseUUID_Invalid(t *testing.T) {
	rr := httptest.NewRecorder()
	_, ok := ParseUUID(rr, "not-a-uuid")

	assert.False(t, ok)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	resp := decodeBody(t, rr)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "INVALID_PARAMETER", resp.Error.Code)
}
