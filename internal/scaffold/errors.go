package scaffold

import (
	"errors"
	"fmt"
	"strings"
)

// ConfigurationError reports internally inconsistent brick parameters.
// A brick that returns it has appended nothing to the graph.
type ConfigurationError struct {
	Brick   string
	Field   string
	Message string
}

// Error implements the error interface.
func (e *ConfigurationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("configuration error in brick %q: %s: %s", e.Brick, e.Field, e.Message)
	}
	return fmt.Sprintf("configuration error in brick %q: %s", e.Brick, e.Message)
}

// NewConfigurationError creates a ConfigurationError.
func NewConfigurationError(brick, field, message string) *ConfigurationError {
	return &ConfigurationError{Brick: brick, Field: field, Message: message}
}

// WiringErrorCode categorizes wiring errors.
type WiringErrorCode string

const (
	// ErrCodeArityMismatch indicates the number of source neurons does not
	// match the declared arity of the input port.
	ErrCodeArityMismatch WiringErrorCode = "ARITY_MISMATCH"

	// ErrCodeUnknownPort indicates a port position that was never declared.
	ErrCodeUnknownPort WiringErrorCode = "UNKNOWN_PORT"

	// ErrCodeUnknownFragment indicates a fragment index or name that does not exist.
	ErrCodeUnknownFragment WiringErrorCode = "UNKNOWN_FRAGMENT"

	// ErrCodeForwardReference indicates a source fragment added after the target.
	ErrCodeForwardReference WiringErrorCode = "FORWARD_REFERENCE"

	// ErrCodeAlreadyConnected indicates an input position wired twice.
	ErrCodeAlreadyConnected WiringErrorCode = "ALREADY_CONNECTED"

	// ErrCodeInvalidDelay indicates a negative connection delay.
	ErrCodeInvalidDelay WiringErrorCode = "INVALID_DELAY"

	// ErrCodeFinalized indicates a mutation attempted after Finalize.
	ErrCodeFinalized WiringErrorCode = "FINALIZED"

	// ErrCodeDuplicateID indicates two neurons received the same identifier.
	ErrCodeDuplicateID WiringErrorCode = "DUPLICATE_ID"
)

// WiringError reports a bad port connection at assembly time.
type WiringError struct {
	Code     WiringErrorCode
	Fragment int // Target fragment index, -1 if not applicable
	Position int // Input position, -1 if not applicable
	Message  string
}

// Error implements the error interface.
func (e *WiringError) Error() string {
	if e.Fragment >= 0 && e.Position >= 0 {
		return fmt.Sprintf("%s: %s (fragment=%d, input=%d)", e.Code, e.Message, e.Fragment, e.Position)
	}
	if e.Fragment >= 0 {
		return fmt.Sprintf("%s: %s (fragment=%d)", e.Code, e.Message, e.Fragment)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func newWiringError(code WiringErrorCode, fragment, position int, format string, args ...any) *WiringError {
	return &WiringError{
		Code:     code,
		Fragment: fragment,
		Position: position,
		Message:  fmt.Sprintf(format, args...),
	}
}

// PortAddress identifies one declared input port.
type PortAddress struct {
	Fragment int    `json:"fragment"`
	Name     string `json:"name"`
	Position int    `json:"position"`
}

// IncompleteGraphError reports declared input ports that were never connected.
type IncompleteGraphError struct {
	Missing []PortAddress
}

// Error implements the error interface.
func (e *IncompleteGraphError) Error() string {
	parts := make([]string, len(e.Missing))
	for i, m := range e.Missing {
		parts[i] = fmt.Sprintf("%s[%d].in[%d]", m.Name, m.Fragment, m.Position)
	}
	return fmt.Sprintf("incomplete graph: %d unconnected input port(s): %s",
		len(e.Missing), strings.Join(parts, ", "))
}

// IsConfigurationError reports whether err is a ConfigurationError.
func IsConfigurationError(err error) bool {
	var ce *ConfigurationError
	return errors.As(err, &ce)
}

// IsWiringError reports whether err is a WiringError.
func IsWiringError(err error) bool {
	var we *WiringError
	return errors.As(err, &we)
}

// IsIncompleteGraphError reports whether err is an IncompleteGraphError.
func IsIncompleteGraphError(err error) bool {
	var ie *IncompleteGraphError
	return errors.As(err, &ie)
}

// WiringCode returns the code of a WiringError, or "" if err is not one.
func WiringCode(err error) WiringErrorCode {
	var we *WiringError
	if errors.As(err, &we) {
		return we.Code
	}
	return ""
}
