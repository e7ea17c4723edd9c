package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/lojf/campreg/internal/camps"
	"github.com/lojf/campreg/internal/report"
	"github.com/lojf/campreg/internal/services"
)

var errText = map[string]string{
	"no_session":   "no active session; sign in with POST /api/session",
	"admin_only":   "this action requires an admin account",
	"read_only":    "this instance mirrors a remote store and is read-only",
	"bad_body":     "request body is not valid JSON",
	"no_camp":      "no camp selected",
	"bad_format":   "format must be xlsx or csv",
	"unknown_user": "user account not found",
}

type errorBody struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErrorMsg(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorBody{Error: msg})
}

// statusFor maps domain errors onto HTTP status codes.
func statusFor(err error) int {
	var ve *services.ValidationError
	switch {
	case errors.As(err, &ve), errors.Is(err, report.ErrInvalidCriteria):
		return http.StatusBadRequest
	case errors.Is(err, services.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, camps.ErrCampNotVisible):
		return http.StatusForbidden
	case errors.Is(err, camps.ErrNoPrincipal):
		return http.StatusUnauthorized
	case errors.Is(err, camps.ErrSelectionLocked), errors.Is(err, camps.ErrStale), errors.Is(err, report.ErrStale):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// writeError renders err with its message verbatim.
func writeError(w http.ResponseWriter, err error) {
	body := errorBody{Error: err.Error()}
	var ve *services.ValidationError
	if errors.As(err, &ve) {
		body.Field = ve.Field
	}
	writeJSON(w, statusFor(err), body)
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(v); err != nil {
		return &services.ValidationError{Field: "body", Message: errText["bad_body"]}
	}
	return nil
}
