package services

import (
	"encoding/json"
	"fmt"
	"strings"
)

const defaultAuthMessage = "Invalid credentials"

// APIError ответ API со статусом >= 400.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api request failed with status %d", e.Status)
	}
	return fmt.Sprintf("api request failed (%d): %s", e.Status, e.Message)
}

// AuthError отказ во входе или регистрации. Message показывается пользователю как есть.
type AuthError struct {
	Message string
}

func (e *AuthError) Error() string {
	if e.Message == "" {
		return defaultAuthMessage
	}
	return e.Message
}

// extractMessage достаёт текст ошибки из тела ответа: {"message"}, {"error"} или сырой текст.
func extractMessage(body []byte) string {
	if len(body) == 0 {
		return ""
	}
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return strings.TrimSpace(string(body))
	}
	if payload.Message != "" {
		return strings.TrimSpace(payload.Message)
	}
	return strings.TrimSpace(payload.Error)
}
