package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gochi-demo/user-rest-api/internal/apperr"
	"github.com/gochi-demo/user-rest-api/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteServiceError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		status   int
		category string
		message  string
	}{
		{"validation", apperr.Validation("Age is required"), http.StatusBadRequest, ErrBadRequest, "Age is required"},
		{"duplicate", apperr.Duplicate(errors.New("23505")), http.StatusBadRequest, ErrBadRequest, "Email already exists"},
		{"not found", apperr.NotFound(), http.StatusNotFound, ErrNotFound, "User not found"},
		{"storage", apperr.Storage(errors.New("conn reset"), "Error fetching user"), http.StatusInternalServerError, ErrServerError, "Error fetching user: conn reset"},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, ErrServerError, "boom"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			writeServiceError(rr, httptest.NewRequest(http.MethodGet, "/", nil), tt.err)

			assert.Equal(t, tt.status, rr.Code)
			var env Envelope
			require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &env))
			assert.False(t, env.Success)
			assert.Equal(t, tt.category, env.Error)
			assert.Equal(t, tt.message, env.Message)
		})
	}
}

func TestDecodeFields(t *testing.T) {
	decode := func(contentType, body string) (models.Fields, error) {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
		if contentType != "" {
			req.Header.Set("Content-Type", contentType)
		}
		return decodeFields(httptest.NewRecorder(), req)
	}

	f, err := decode("application/json", `{"name":"Ann","age":30.5,"extra":true}`)
	require.NoError(t, err)
	assert.Equal(t, models.Fields{"name": "Ann", "age": json.Number("30.5")}, f)

	f, err = decode("", "")
	require.NoError(t, err)
	assert.Empty(t, f)

	f, err = decode("text/plain", "hello")
	require.NoError(t, err)
	assert.Empty(t, f)

	f, err = decode("application/x-www-form-urlencoded", "name=Ann&age=20")
	require.NoError(t, err)
	assert.Equal(t, models.Fields{"name": "Ann", "age": "20"}, f)

	for _, body := range []string{`[1,2]`, `"x"`, `{"name":`, `null`} {
		_, err = decode("application/json", body)
		assert.ErrorIs(t, err, errInvalidBody, body)
	}

	_, err = decode("application/json", `{"name":"`+strings.Repeat("a", maxBodyBytes)+`"}`)
	assert.ErrorIs(t, err, errInvalidBody)
}
