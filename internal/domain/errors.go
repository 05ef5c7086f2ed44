package domain

import (
	"errors"
	"fmt"
)

type ValidationError struct {
	Field string
	Msg   string
	Err   error
}

func (e ValidationError) Error() string {
	if e.Msg != "" && e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Msg)
	}
	if e.Msg != "" {
		return e.Msg
	}
	if e.Field != "" {
		return fmt.Sprintf("invalid %s", e.Field)
	}
	return "validation error"
}

func (e ValidationError) Unwrap() error { return e.Err }

type NotFoundError struct {
	Resource string
	ID       string
	Err      error
}

func (e NotFoundError) Error() string {
	switch {
	case e.Resource != "" && e.ID != "":
		return fmt.Sprintf("%s %s not found", e.Resource, e.ID)
	case e.Resource != "":
		return fmt.Sprintf("%s not found", e.Resource)
	default:
		return "not found"
	}
}

func (e NotFoundError) Unwrap() error { return e.Err }

// ConfigurationError means a required secret or setting is absent.
// In production it is fatal at startup, never a silent fallback.
type ConfigurationError struct {
	Setting string
	Err     error
}

func (e ConfigurationError) Error() string {
	if e.Setting != "" {
		return fmt.Sprintf("missing configuration: %s", e.Setting)
	}
	return "configuration error"
}

func (e ConfigurationError) Unwrap() error { return e.Err }

// StorageError wraps a backing-store failure with the provider status code.
type StorageError struct {
	Op   string
	Code string
	Err  error
}

func (e StorageError) Error() string {
	switch {
	case e.Op != "" && e.Code != "":
		return fmt.Sprintf("storage %s failed (%s)", e.Op, e.Code)
	case e.Op != "":
		return fmt.Sprintf("storage %s failed", e.Op)
	default:
		return "storage error"
	}
}

func (e StorageError) Unwrap() error { return e.Err }

// DeliveryError is a notification failure after the sender's own retries.
// Callers log it; it never unwinds a persisted state change.
type DeliveryError struct {
	StatusCode int
	Retryable  bool
	Err        error
}

func (e DeliveryError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("email delivery failed with status %d", e.StatusCode)
	}
	return "email delivery failed"
}

func (e DeliveryError) Unwrap() error { return e.Err }

type PaymentError struct {
	Op         string
	StatusCode int
	Err        error
}

func (e PaymentError) Error() string {
	if e.Op != "" && e.StatusCode != 0 {
		return fmt.Sprintf("payment %s failed with status %d", e.Op, e.StatusCode)
	}
	if e.Op != "" {
		return fmt.Sprintf("payment %s failed", e.Op)
	}
	return "payment error"
}

func (e PaymentError) Unwrap() error { return e.Err }

func IsValidation(err error) bool {
	var target ValidationError
	return errors.As(err, &target)
}

func IsNotFound(err error) bool {
	var target NotFoundError
	return errors.As(err, &target)
}

func IsConfiguration(err error) bool {
	var target ConfigurationError
	return errors.As(err, &target)
}

func IsStorage(err error) bool {
	var target StorageError
	return errors.As(err, &target)
}

func IsDelivery(err error) bool {
	var target DeliveryError
	return errors.As(err, &target)
}

func IsPayment(err error) bool {
	var target PaymentError
	return errors.As(err, &target)
}
