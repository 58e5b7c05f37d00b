package service

import "errors"

var ErrNotFound = errors.New("not found")

// ValidationError reports missing or malformed client input. Reason is safe to show to users.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

// StorageError wraps a file or database failure.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return e.Op + ": " + e.Err.Error()
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

func invalid(reason string) error {
	return &ValidationError{Reason: reason}
}
