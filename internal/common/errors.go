// Package common provides shared utilities and types used across the application.
package common

import (
	"errors"
	"fmt"
)

// Common application errors.
var (
	// Configuration errors.
	ErrNotConfigured = errors.New("AI provider not configured")
	ErrInvalidConfig = errors.New("invalid configuration")

	// Provider errors.
	ErrProvider      = errors.New("provider request failed")
	ErrEmptyResponse = errors.New("provider returned no candidates")

	// Storage errors.
	ErrStorage = errors.New("storage operation failed")
)

// ConfigurationError is returned when an operation needs a provider credential that is missing.
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	if e.Reason == "" {
		return ErrNotConfigured.Error()
	}
	return fmt.Sprintf("%s: %s", ErrNotConfigured, e.Reason)
}

func (e *ConfigurationError) Unwrap() error {
	return ErrNotConfigured
}

// ProviderError carries the upstream status and body of a failed model call.
// StatusCode is zero when the request never produced an HTTP response.
type ProviderError struct {
	Err        error
	Provider   string
	Body       string
	StatusCode int
}

func (e *ProviderError) Error() string {
	switch {
	case e.StatusCode != 0:
		return fmt.Sprintf("%s API error (status %d): %s", e.Provider, e.StatusCode, e.Body)
	case e.Err != nil:
		return fmt.Sprintf("%s request failed: %v", e.Provider, e.Err)
	default:
		return fmt.Sprintf("%s request failed", e.Provider)
	}
}

func (e *ProviderError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrProvider, e.Err}
	}
	return []error{ErrProvider}
}

// StorageError wraps a failed read or write against the key-value store.
type StorageError struct {
	Err error
	Op  string
	Key string
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s %q: %v", e.Op, e.Key, e.Err)
}

func (e *StorageError) Unwrap() []error {
	return []error{ErrStorage, e.Err}
}

// NewStorageError wraps err for the given operation and key.
func NewStorageError(op, key string, err error) error {
	return &StorageError{Op: op, Key: key, Err: err}
}

// UserError represents an error that should be shown to the user.
type UserError struct {
	Err         error
	UserMessage string
}

func (e *UserError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.UserMessage, e.Err)
	}
	return e.UserMessage
}

func (e *UserError) Unwrap() error {
	return e.Err
}

// NewUserError creates a new user-friendly error.
func NewUserError(userMessage string, err error) error {
	return &UserError{
		UserMessage: userMessage,
		Err:         err,
	}
}

// IsConfigurationError reports whether err signals a missing provider configuration.
func IsConfigurationError(err error) bool {
	return errors.Is(err, ErrNotConfigured)
}

// IsProviderError reports whether err came from the upstream model provider.
func IsProviderError(err error) bool {
	return errors.Is(err, ErrProvider)
}
