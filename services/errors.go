package services

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

// ErrorKind classifies a ServiceError for the HTTP boundary
type ErrorKind string

const (
	KindUnauthorized ErrorKind = "unauthorized"
	KindValidation   ErrorKind = "validation"
	KindNotFound     ErrorKind = "not_found"
	KindConflict     ErrorKind = "conflict"
)

// Sentinels for errors.Is; any ServiceError of the same kind matches.
var (
	ErrUnauthorized = &ServiceError{Kind: KindUnauthorized}
	ErrValidation   = &ServiceError{Kind: KindValidation}
	ErrNotFound     = &ServiceError{Kind: KindNotFound}
	ErrConflict     = &ServiceError{Kind: KindConflict}
)

// ServiceError is a business-rule failure with a client-facing code and message
type ServiceError struct {
	Kind    ErrorKind
	Code    string
	Message string
}

func (e *ServiceError) Error() string {
	return e.Message
}

// Is matches errors of the same kind
func (e *ServiceError) Is(target error) bool {
	t, ok := target.(*ServiceError)
	return ok && t.Kind == e.Kind
}

func unauthorized(code, message string) error {
	return &ServiceError{Kind: KindUnauthorized, Code: code, Message: message}
}

func invalid(code, message string) error {
	return &ServiceError{Kind: KindValidation, Code: code, Message: message}
}

func notFound(code, message string) error {
	return &ServiceError{Kind: KindNotFound, Code: code, Message: message}
}

func conflict(code, message string) error {
	return &ServiceError{Kind: KindConflict, Code: code, Message: message}
}

// isDuplicateKey reports unique constraint violations from either driver
func isDuplicateKey(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	// Fallback when TranslateError is off (works with both PostgreSQL and SQLite)
	errMsg := strings.ToLower(err.Error())
	return strings.Contains(errMsg, "duplicate") ||
		strings.Contains(errMsg, "unique constraint") ||
		strings.Contains(errMsg, "unique")
}
