// internal/controller/response.go
package controller

import (
	"net/http"

	"github.com/goccy/go-json"

	"github.com/unclebandit/promo-dashboard/internal/logging"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.Warn().Err(err).Msg("failed to encode response")
	}
}

func writeMessage(w http.ResponseWriter, status int, message string) {
	result := "success"
	if status >= 400 {
		result = "error"
	}
	writeJSON(w, status, map[string]string{
		"status":  result,
		"message": message,
	})
}

func decodeBody(r *http.Request, v any) error {
	return json.NewDecoder(r.Body).Decode(v)
}
