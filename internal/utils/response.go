package utils

import (
	"encoding/json"
	"net/http"
)

// WriteJSONError writes the {"message": ...} body every API error uses.
func WriteJSONError(w http.ResponseWriter, message string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"message": message})
}
