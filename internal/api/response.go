package api

import (
	"encoding/json"
	"net/http"
)

// Response messages of /api/login
const (
	MessageLoginSuccessful    = "Login successful"
	MessageInvalidCredentials = "Invalid credentials"
	MessageMalformedBody      = "Malformed request body"
	MessageInternalError      = "Internal server error"
)

// MessageResponse is the body of every /api/login response
type MessageResponse struct {
	Message string `json:"message"`
}

func writeMessage(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(MessageResponse{Message: message})
}
