package api

import (
	"encoding/json"
	"net/http"

	"github.com/clipforge/clipforge/internal/apierr"
)

type errorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// writeAPIError maps a classified apierr.Error to its HTTP status and
// writes the client-safe message; the wrapped cause, if any, stays out
// of the response body and is left for the caller to log.
func writeAPIError(w http.ResponseWriter, err *apierr.Error) {
	writeJSON(w, err.Kind.Status(), errorResponse{Error: err.Message, Kind: string(err.Kind)})
}
