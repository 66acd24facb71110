package validator

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type loginPayload struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

func TestValidate_Valid(t *testing.T) {
	err := Validate(loginPayload{Email: "a@b.com", Password: "long-enough"})
	assert.NoError(t, err)
}

func TestValidate_MissingRequired(t *testing.T) {
	err := Validate(loginPayload{})
	require.Error(t, err)

	var valErr *ValidationError
	require.True(t, errors.As(err, &valErr))

	fields := valErr.Fields()
	assert.Contains(t, fields, "Email")
	assert.Contains(t, fields, "Password")
	assert.Equal(t, "is required", fields["Email"])
}

func TestValidate_BadEmail(t *testing.T) {
	err := Validate(loginPayload{Email: "not-an-email", Password: "long-enough"})
	require.Error(t, err)

	var valErr *ValidationError
	require.True(t, errors.As(err, &valErr))
	assert.Equal(t, "must be a valid email address", valErr.Fields()["Email"])
}

func TestValidate_MinLength(t *testing.T) {
	err := Validate(loginPayload{Email: "a@b.com", Password: "short"})
	require.Error(t, err)

	var valErr *ValidationError
	require.True(t, errors.As(err, &valErr))
	assert.Contains(t, valErr.Fields()["Password"], "at least 8")
	assert.Contains(t, valErr.Error(), "Password")
}

func TestDecodeAndValidate_Valid(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/login",
		strings.NewReader(`{"email":"a@b.com","password":"long-enough"}`))

	var dst loginPayload
	err := DecodeAndValidate(req, &dst)
	require.NoError(t, err)
	assert.Equal(t, "a@b.com", dst.Email)
}

func TestDecodeAndValidate_MalformedJSON(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(`{not json`))

	var dst loginPayload
	err := DecodeAndValidate(req, &dst)
	require.Error(t, err)

	var valErr *ValidationError
	assert.False(t, errors.As(err, &valErr), "decode failures are not field errors")
}

func TestDecodeAndValidate_InvalidBody(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/login",
		strings.NewReader(`{"email":"nope","password":""}`))

	var dst loginPayload
	err := DecodeAndValidate(req, &dst)
	require.Error(t, err)

	var valErr *ValidationError
	assert.True(t, errors.As(err, &valErr))
}
