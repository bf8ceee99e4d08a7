package simulator

import (
	"errors"
	"fmt"
)

// SimulationErrorCode categorizes simulation errors.
type SimulationErrorCode string

const (
	// ErrCodeNotCompiled indicates Run was called before a successful Compile.
	ErrCodeNotCompiled SimulationErrorCode = "NOT_COMPILED"

	// ErrCodeUnknownKind indicates a neuron kind the simulator cannot execute.
	ErrCodeUnknownKind SimulationErrorCode = "UNKNOWN_KIND"

	// ErrCodeZeroDelayCycle indicates a cycle made only of zero-delay synapses.
	ErrCodeZeroDelayCycle SimulationErrorCode = "ZERO_DELAY_CYCLE"

	// ErrCodeInvalidGraph indicates a malformed graph (bad IDs, endpoints,
	// delays or parameters).
	ErrCodeInvalidGraph SimulationErrorCode = "INVALID_GRAPH"

	// ErrCodeInvalidSteps indicates a negative step count.
	ErrCodeInvalidSteps SimulationErrorCode = "INVALID_STEPS"
)

// SimulationError is returned by Compile and Run.
type SimulationError struct {
	Code SimulationErrorCode

	// Neuron is the offending neuron ID, or -1.
	Neuron int

	Message string
}

// Error implements the error interface.
func (e *SimulationError) Error() string {
	if e.Neuron >= 0 {
		return fmt.Sprintf("%s: %s (neuron=%d)", e.Code, e.Message, e.Neuron)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func newError(code SimulationErrorCode, neuron int, format string, args ...any) *SimulationError {
	return &SimulationError{Code: code, Neuron: neuron, Message: fmt.Sprintf(format, args...)}
}

// IsSimulationError reports whether err wraps a *SimulationError.
func IsSimulationError(err error) bool {
	var se *SimulationError
	return errors.As(err, &se)
}

// ErrorCode returns the code of a wrapped *SimulationError, or "".
func ErrorCode(err error) SimulationErrorCode {
	var se *SimulationError
	if errors.As(err, &se) {
		return se.Code
	}
	return ""
}

// IsNotCompiled reports whether err is a NOT_COMPILED error.
func IsNotCompiled(err error) bool { return ErrorCode(err) == ErrCodeNotCompiled }

// IsZeroDelayCycle reports whether err is a ZERO_DELAY_CYCLE error.
func IsZeroDelayCycle(err error) bool { return ErrorCode(err) == ErrCodeZeroDelayCycle }
