package api

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"
)

type Message struct {
	Message   string `json:"message"`
	RequestID string `json:"requestId,omitempty"`
}

func WriteJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Warn().Err(err).Msg("write json failed")
	}
}

func Success(w http.ResponseWriter, data any) {
	WriteJSON(w, http.StatusOK, data)
}

func Created(w http.ResponseWriter, data any) {
	WriteJSON(w, http.StatusCreated, data)
}

func Info(w http.ResponseWriter, message, requestID string) {
	WriteJSON(w, http.StatusOK, Message{Message: message, RequestID: requestID})
}

func Fail(w http.ResponseWriter, status int, message, requestID string) {
	WriteJSON(w, status, Message{Message: message, RequestID: requestID})
}
