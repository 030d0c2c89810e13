package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/fitbalance/fitbalance-backend/pkg/apperrors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteError_StatusMapping(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
	}{
		{"not found", apperrors.NotFound("meal plan not found"), http.StatusNotFound},
		{"validation", apperrors.Validation("invalid fields", nil), http.StatusUnprocessableEntity},
		{"generation", apperrors.Generation("model unavailable", nil), http.StatusBadGateway},
		{"auth", apperrors.Auth(apperrors.AuthInvalidCredentials), http.StatusUnauthorized},
		{"persistence", apperrors.Persistence("insert failed", nil), http.StatusInternalServerError},
		{"untyped", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			writeError(rec, tc.err)
			assert.Equal(t, tc.status, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
		})
	}
}

func TestWriteError_ValidationFieldsInBody(t *testing.T) {
	rec := httptest.NewRecorder()
	writeError(rec, apperrors.Validation("invalid profile fields", map[string]string{
		"age":  "must be between 10 and 120",
		"name": "must be at least 2 letters",
	}))

	var body errorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, string(apperrors.CodeValidation), body.Code)
	assert.Len(t, body.Fields, 2)
	assert.Contains(t, body.Fields, "age")
}

func TestWriteError_AuthCodeInBody(t *testing.T) {
	rec := httptest.NewRecorder()
	writeError(rec, apperrors.Auth(apperrors.AuthEmailInUse))

	var body errorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, string(apperrors.AuthEmailInUse), body.AuthCode)
	assert.Equal(t, apperrors.AuthMessage(apperrors.AuthEmailInUse), body.Error)
}
