package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/spendwise/spendwise/internal/auth"
	"github.com/spendwise/spendwise/internal/models"
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, models.ErrorResponse{Error: msg})
}

// writeAuthError maps the closed auth error taxonomy onto HTTP statuses.
// The response body carries only the caller-safe message.
func writeAuthError(w http.ResponseWriter, err error) {
	e := auth.AsError(err)
	status := http.StatusInternalServerError
	switch e.Kind {
	case auth.KindValidation:
		status = http.StatusBadRequest
	case auth.KindInvalidCredentials, auth.KindInvalidToken:
		status = http.StatusUnauthorized
	case auth.KindAccountLocked:
		status = http.StatusLocked
		w.Header().Set("Retry-After", strconv.Itoa(e.RetryAfterMinutes*60))
	}
	writeError(w, status, e.Message)
}
