package middleware

import (
	"encoding/json"
	"net/http"
)

// writeError answers with the {"error": ...} body the handlers use,
// adding the request ID when one is known
func writeError(w http.ResponseWriter, r *http.Request, status int, message string) {
	body := map[string]string{"error": message}
	if id := GetRequestID(r.Context()); id != "" {
		body["requestId"] = id
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
