package api

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
)

const maxRequestBodySize = 1 << 20 // 1MB

// envelope wraps every response body except the health and metrics
// endpoints. Code always equals the HTTP status.
type envelope struct {
	Code    int `json:"code"`
	Message any `json:"message"`
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("writing response failed", "error", err)
	}
}

func writeEnvelope(w http.ResponseWriter, code int, message any) {
	writeJSON(w, code, envelope{Code: code, Message: message})
}

func httpError(w http.ResponseWriter, code int, format string, args ...any) {
	writeEnvelope(w, code, fmt.Sprintf(format, args...))
}

// decodeBody reads a JSON request body capped at maxRequestBodySize.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}
