package api

import (
	"errors"
	"net/http"

	"github.com/goccy/go-json"

	"example.com/fitness/internal/domain"
	"example.com/fitness/internal/logging"
	"example.com/fitness/internal/validation"
)

const maxBodyBytes = 1 << 20

func writeError(w http.ResponseWriter, status int, code, detail string) {
	writeJSON(w, status, map[string]string{
		"type":   code,
		"detail": detail,
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// decodeBody parses the JSON body into dst and runs its validate tags. It
// writes the error response itself and reports whether decoding succeeded.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "unable to parse body")
		return false
	}
	if err := validation.Struct(dst); err != nil {
		writeError(w, http.StatusBadRequest, "validation_failed", err.Error())
		return false
	}
	return true
}

// writeServiceError maps a domain error kind to its HTTP status.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch domain.KindOf(err) {
	case domain.KindValidation:
		writeError(w, http.StatusBadRequest, "validation_failed", detailOf(err))
	case domain.KindNotFound:
		writeError(w, http.StatusNotFound, "not_found", detailOf(err))
	case domain.KindStore:
		logging.Ctx(r.Context()).Error().Err(err).Msg("store unavailable")
		writeError(w, http.StatusServiceUnavailable, "store_unavailable", "the data store is unavailable, try again later")
	default:
		logging.Ctx(r.Context()).Error().Err(err).Msg("unexpected error")
		writeError(w, http.StatusInternalServerError, "server_error", "internal error")
	}
}

// detailOf returns the innermost message, without the operation prefix.
func detailOf(err error) string {
	var de *domain.Error
	if errors.As(err, &de) && de.Err != nil {
		return de.Err.Error()
	}
	return err.Error()
}
