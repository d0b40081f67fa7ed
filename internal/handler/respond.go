package handler

import (
	"encoding/json"
	"net/http"

	"github.com/web3-frozen/traffic-dashboard/internal/traffic"
)

type errorBody struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError renders a classified error. Internal errors never carry details.
func writeError(w http.ResponseWriter, err *traffic.Error) {
	body := errorBody{Error: err.Message}
	if err.Kind == traffic.KindProviderError {
		body.Details = err.Details
	}
	writeJSON(w, err.Status, body)
}
