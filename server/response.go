package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/teranos/mechrelay/errors"
)

// writeJSON writes a JSON response with the given status code
func writeJSON(w http.ResponseWriter, status int, data interface{}) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	enc := json.NewEncoder(w)
	// Prompts and agent output routinely contain <, > and &
	enc.SetEscapeHTML(false)
	if err := enc.Encode(data); err != nil {
		return errors.Wrap(err, "failed to encode JSON")
	}
	return nil
}

// writeError writes the failure envelope {"success": false, "error": message}
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorBody{Success: false, Error: message})
}

// intQuery parses an optional positive integer query parameter.
// Absent returns def; values above max are clamped.
func intQuery(r *http.Request, name string, def, max int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 0, NewInvalidRequestError("%s must be a positive integer, got %q", name, raw)
	}
	if n > max {
		n = max
	}
	return n, nil
}
