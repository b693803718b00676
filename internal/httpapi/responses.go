package httpapi

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"raptorplanner.dev/internal/logging"
)

// errorResponse is the JSON body sent for any non-2xx response.
type errorResponse struct {
	Code int    `json:"code"`
	Text string `json:"text"`
}

func setJSONResponseType(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
}

func sendResponse(w http.ResponseWriter, logger *slog.Logger, status int, body interface{}) {
	setJSONResponseType(w)
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logging.LogError(logger, "failed to encode response body", err)
	}
}

func sendError(w http.ResponseWriter, logger *slog.Logger, status int, message string) {
	sendResponse(w, logger, status, errorResponse{Code: status, Text: message})
}
