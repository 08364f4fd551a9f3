package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"

	"github.com/gochi-demo/user-rest-api/internal/apperr"
	"github.com/gochi-demo/user-rest-api/internal/models"
	"github.com/rs/zerolog/log"
)

const (
	ErrBadRequest  = "Bad Request"
	ErrNotFound    = "Not Found"
	ErrServerError = "Server Error"
)

const maxBodyBytes = 100 << 10

const msgInvalidBody = "Invalid JSON body"

var errInvalidBody = errors.New("invalid request body")

// Envelope is the JSON wrapper around every response.
type Envelope struct {
	Success bool   `json:"success"`
	Count   *int   `json:"count,omitempty"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
	Data    any    `json:"data,omitempty"`
}

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("failed to write response")
	}
}

func WriteError(w http.ResponseWriter, status int, category, message string) {
	WriteJSON(w, status, Envelope{Success: false, Error: category, Message: message})
}

func writeList(w http.ResponseWriter, users []models.User) {
	n := len(users)
	WriteJSON(w, http.StatusOK, Envelope{Success: true, Count: &n, Data: users})
}

// writeServiceError maps a service failure to its status code. Unknown and
// storage failures are logged and reported as 500.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch apperr.KindOf(err) {
	case apperr.KindValidation, apperr.KindDuplicate:
		WriteError(w, http.StatusBadRequest, ErrBadRequest, apperr.Message(err))
	case apperr.KindNotFound:
		WriteError(w, http.StatusNotFound, ErrNotFound, apperr.Message(err))
	default:
		log.Ctx(r.Context()).Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
		WriteError(w, http.StatusInternalServerError, ErrServerError, err.Error())
	}
}

// decodeFields reads the user attributes from a JSON or form-encoded body.
// Other content types yield no fields.
func decodeFields(w http.ResponseWriter, r *http.Request) (models.Fields, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	mediaType := "application/json"
	if ct := r.Header.Get("Content-Type"); ct != "" {
		mt, _, err := mime.ParseMediaType(ct)
		if err != nil {
			return nil, errInvalidBody
		}
		mediaType = mt
	}

	switch mediaType {
	case "application/x-www-form-urlencoded":
		if err := r.ParseForm(); err != nil {
			return nil, errInvalidBody
		}
		return models.FieldsFromForm(r.PostForm), nil
	case "application/json":
		var body any
		dec := json.NewDecoder(r.Body)
		dec.UseNumber()
		if err := dec.Decode(&body); err != nil {
			if errors.Is(err, io.EOF) {
				return models.Fields{}, nil
			}
			return nil, errInvalidBody
		}
		obj, ok := body.(map[string]any)
		if !ok {
			return nil, errInvalidBody
		}
		return models.FieldsFromJSON(obj), nil
	default:
		return models.Fields{}, nil
	}
}
