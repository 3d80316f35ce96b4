package conn

import (
	"fmt"
	"time"
)

// Status is the externally visible connection state of the device.
type Status int

const (
	// StatusDisconnected means no link is up and no portal is active.
	StatusDisconnected Status = iota
	// StatusConnecting means a join attempt is in progress.
	StatusConnecting
	// StatusConnected means the device has joined a network.
	StatusConnected
	// StatusConfigMode means the device is running its own setup access point.
	StatusConfigMode
	// StatusError means the radio reported a hard failure; external
	// intervention or a reset is required.
	StatusError
)

// String returns a human-readable status name
func (s Status) String() string {
	switch s {
	case StatusDisconnected:
		return "Disconnected"
	case StatusConnecting:
		return "Connecting"
	case StatusConnected:
		return "Connected"
	case StatusConfigMode:
		return "Config Mode"
	case StatusError:
		return "Error"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// LEDMode describes how the status LED should behave.
type LEDMode int

const (
	LEDOff LEDMode = iota
	LEDOn
	LEDBlink
)

// LEDPattern is a status indication: a mode plus a blink interval when
// blinking. Pure data, kept separate from the state machine logic so display
// layers can consume it without knowing transition rules.
type LEDPattern struct {
	Mode     LEDMode
	Interval time.Duration
}

// ledPatterns maps each status to its indication.
var ledPatterns = map[Status]LEDPattern{
	StatusDisconnected: {Mode: LEDOff},
	StatusConnecting:   {Mode: LEDBlink, Interval: 200 * time.Millisecond},
	StatusConnected:    {Mode: LEDOn},
	StatusConfigMode:   {Mode: LEDBlink, Interval: 100 * time.Millisecond},
	StatusError:        {Mode: LEDBlink, Interval: 1000 * time.Millisecond},
}

// LEDPattern returns the LED indication for this status.
func (s Status) LEDPattern() LEDPattern {
	if p, ok := ledPatterns[s]; ok {
		return p
	}
	return LEDPattern{Mode: LEDOff}
}
