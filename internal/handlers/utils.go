package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"media-converter/internal/converter"
	"media-converter/internal/database"
	"media-converter/internal/logging"
)

// writeJSON encodes v as JSON and writes it to the response writer.
// Any encoding or write errors are logged since we typically cannot
// recover from them in an HTTP handler context.
func writeJSON(w http.ResponseWriter, v interface{}) {
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.Error("failed to encode JSON response: %v", err)
	}
}

// writeJSONError writes an error response as JSON with the given status code.
func writeJSONError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	writeJSON(w, map[string]string{"error": message})
}

// writeJSONStatus writes a simple status response as JSON.
func writeJSONStatus(w http.ResponseWriter, status string) {
	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, map[string]string{"status": status})
}

// respondError maps domain errors to HTTP status codes.
func respondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, database.ErrNotFound):
		writeJSONError(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, converter.ErrDoesNotQualify):
		writeJSONError(w, err.Error(), http.StatusConflict)
	case errors.Is(err, converter.ErrKindMismatch):
		writeJSONError(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, converter.ErrUnsupportedMedia):
		writeJSONError(w, err.Error(), http.StatusUnsupportedMediaType)
	default:
		logging.Error("request failed: %v", err)
		writeJSONError(w, "internal server error", http.StatusInternalServerError)
	}
}

// pathID extracts a numeric route variable.
func pathID(r *http.Request, name string) (int64, error) {
	return strconv.ParseInt(mux.Vars(r)[name], 10, 64)
}
