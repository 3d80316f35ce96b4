package conn

import (
	"errors"
	"fmt"
)

// JoinError indicates the radio could not associate with a network within
// the configured timeout. Recoverable: the reconnection policy retries and
// eventually escalates to config mode.
type JoinError struct {
	SSID    string
	Timeout bool
	Err     error
}

// Error implements the error interface
func (e *JoinError) Error() string {
	if e.Timeout {
		return fmt.Sprintf("join %q timed out", e.SSID)
	}
	if e.Err != nil {
		return fmt.Sprintf("join %q failed: %v", e.SSID, e.Err)
	}
	return fmt.Sprintf("join %q failed", e.SSID)
}

// Unwrap returns the underlying error for error chain inspection
func (e *JoinError) Unwrap() error {
	return e.Err
}

// RadioFaultError indicates a hard radio failure during a join. Not
// recoverable by the reconnection policy; the manager enters the Error state.
type RadioFaultError struct {
	Reason string
	Err    error
}

// Error implements the error interface
func (e *RadioFaultError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("radio fault: %s (caused by: %v)", e.Reason, e.Err)
	}
	return fmt.Sprintf("radio fault: %s", e.Reason)
}

// Unwrap returns the underlying error for error chain inspection
func (e *RadioFaultError) Unwrap() error {
	return e.Err
}

// IsJoinFailure checks whether an error is a recoverable join failure
func IsJoinFailure(err error) bool {
	var joinErr *JoinError
	return errors.As(err, &joinErr)
}

// IsRadioFault checks whether an error is a hard radio failure
func IsRadioFault(err error) bool {
	var faultErr *RadioFaultError
	return errors.As(err, &faultErr)
}
