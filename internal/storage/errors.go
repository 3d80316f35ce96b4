package storage

import "fmt"

// ErrorType represents the category of storage error that occurred
type ErrorType int

const (
	// ErrTypeUnavailable indicates the backing medium cannot be opened or
	// written. Fatal to boot; there is no local recovery.
	ErrTypeUnavailable ErrorType = iota
	// ErrTypeCorrupted indicates a checksum/magic/version mismatch. Recovered
	// locally by reinitializing defaults, never surfaced as a hard failure.
	ErrTypeCorrupted
	// ErrTypeValidation indicates a field failed validation (SSID charset or
	// length, hostname length). Rejected at the API boundary.
	ErrTypeValidation
	// ErrTypeNotOpen indicates an operation was attempted before the store
	// was successfully opened.
	ErrTypeNotOpen
)

// String returns a human-readable name for the error type
func (et ErrorType) String() string {
	switch et {
	case ErrTypeUnavailable:
		return "Storage Unavailable"
	case ErrTypeCorrupted:
		return "Storage Corrupted"
	case ErrTypeValidation:
		return "Validation Error"
	case ErrTypeNotOpen:
		return "Store Not Open"
	default:
		return fmt.Sprintf("ErrorType(%d)", et)
	}
}

// StoreError represents an error from the persistent configuration store
type StoreError struct {
	Type    ErrorType // Category of error
	Message string    // Human-readable error message
	Err     error     // Underlying error (if any)
}

// Error implements the error interface
func (e *StoreError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the underlying error for error chain inspection
func (e *StoreError) Unwrap() error {
	return e.Err
}

// NewUnavailableError creates an error for an inaccessible backing medium
func NewUnavailableError(message string, err error) *StoreError {
	return &StoreError{
		Type:    ErrTypeUnavailable,
		Message: message,
		Err:     err,
	}
}

// NewValidationError creates a field validation error
func NewValidationError(message string) *StoreError {
	return &StoreError{
		Type:    ErrTypeValidation,
		Message: message,
	}
}

// NewNotOpenError creates an error for operations attempted before Open
func NewNotOpenError(op string) *StoreError {
	return &StoreError{
		Type:    ErrTypeNotOpen,
		Message: fmt.Sprintf("%s requires an opened store", op),
	}
}

// IsUnavailable checks if an error indicates an inaccessible backing medium
func IsUnavailable(err error) bool {
	if storeErr, ok := err.(*StoreError); ok {
		return storeErr.Type == ErrTypeUnavailable
	}
	return false
}

// IsValidationError checks if an error is a field validation error
func IsValidationError(err error) bool {
	if storeErr, ok := err.(*StoreError); ok {
		return storeErr.Type == ErrTypeValidation
	}
	return false
}

// IsNotOpen checks if an error indicates the store was never opened
func IsNotOpen(err error) bool {
	if storeErr, ok := err.(*StoreError); ok {
		return storeErr.Type == ErrTypeNotOpen
	}
	return false
}
