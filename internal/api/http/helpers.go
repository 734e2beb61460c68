// Package http holds the request handlers. Each handler is a thin layer:
// decode, call the domain package, encode. Per-request sequencing for the
// adaptive pipeline lives in the evaluation handlers.
package http

import (
	"encoding/json"
	"net/http"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
