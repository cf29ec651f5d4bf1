package types

import "fmt"

// AppError is the error shape every handler and middleware returns. Code maps
// directly to the HTTP status; Type is a stable machine-readable tag.
type AppError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Type    string `json:"type"`
}

func (e *AppError) Error() string {
	return fmt.Sprintf("%d: %s [type: %s]", e.Code, e.Message, e.Type)
}

// Validation reports missing or malformed input (400).
func Validation(message string) *AppError {
	return &AppError{Code: 400, Message: message, Type: "validation"}
}

// Unauthorized reports a request with no resolvable identity (401).
func Unauthorized(message string) *AppError {
	return &AppError{Code: 401, Message: message, Type: "authorization.session"}
}

// Forbidden reports a resolved identity that lacks privilege (403).
func Forbidden(message string) *AppError {
	return &AppError{Code: 403, Message: message, Type: "authorization"}
}

// NotFound reports an absent referenced entity (404).
func NotFound(message string) *AppError {
	return &AppError{Code: 404, Message: message, Type: "not_found"}
}

// Unexpected wraps a storage or provider failure (500). The underlying
// message is passed through to the caller.
func Unexpected(err error) *AppError {
	return &AppError{Code: 500, Message: err.Error(), Type: "unexpected"}
}
