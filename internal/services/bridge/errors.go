// File: internal/services/bridge/errors.go
package bridge

import (
	"errors"
	"fmt"
)

var (
	ErrNotReady            = errors.New("telegram client not initialized yet")
	ErrIdentityUnavailable = errors.New("self user id not initialized")
)

type ErrorType string

const (
	ErrTypeValidation    ErrorType = "VALIDATION"
	ErrTypeForbiddenChat ErrorType = "FORBIDDEN_CHAT"
	ErrTypeConfig        ErrorType = "CONFIG"
)

// PolicyError is a permanent rejection of a single request.
type PolicyError struct {
	Type    ErrorType
	Message string
	ChatID  int64
}

func (e *PolicyError) Error() string {
	return fmt.Sprintf("bridge %s error: %s", e.Type, e.Message)
}

func NewValidationError(msg string) *PolicyError {
	return &PolicyError{Type: ErrTypeValidation, Message: msg}
}

func NewForbiddenChatError(chatID int64) *PolicyError {
	return &PolicyError{
		Type:    ErrTypeForbiddenChat,
		Message: "this chat is not allowed for reading",
		ChatID:  chatID,
	}
}

func NewConfigError(msg string) *PolicyError {
	return &PolicyError{Type: ErrTypeConfig, Message: msg}
}

// ErrorKind classifies messaging client failures.
type ErrorKind string

const (
	KindConnectivity ErrorKind = "CONNECTIVITY"
	KindNotFound     ErrorKind = "NOT_FOUND"
	KindPermission   ErrorKind = "PERMISSION"
	KindUnknown      ErrorKind = "UNKNOWN"
)

// AdapterError is returned by Client implementations.
type AdapterError struct {
	Kind      ErrorKind
	Operation string
	Cause     error
}

func (e *AdapterError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("telegram %s error in %s: %v", e.Kind, e.Operation, e.Cause)
	}
	return fmt.Sprintf("telegram %s error in %s", e.Kind, e.Operation)
}

func (e *AdapterError) Unwrap() error {
	return e.Cause
}

func NewAdapterError(kind ErrorKind, operation string, cause error) *AdapterError {
	return &AdapterError{Kind: kind, Operation: operation, Cause: cause}
}

// KindOf reports the adapter error kind carried by err, or KindUnknown.
func KindOf(err error) ErrorKind {
	var adapterErr *AdapterError
	if errors.As(err, &adapterErr) {
		return adapterErr.Kind
	}
	return KindUnknown
}

// DeliveryError is an unrecoverable send failure.
type DeliveryError struct {
	Via     string
	Message string
	Cause   error
}

func (e *DeliveryError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("delivery via %s failed: %s (caused by: %v)", e.Via, e.Message, e.Cause)
	}
	return fmt.Sprintf("delivery via %s failed: %s", e.Via, e.Message)
}

func (e *DeliveryError) Unwrap() error {
	return e.Cause
}
