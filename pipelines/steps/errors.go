// Copyright (c) 2026 Deepsel Systems. All rights reserved.

package steps

import (
	"fmt"

	"github.com/DeepselSystems/relkit/records"
)

// ErrUnknownStep is returned when no command is configured for a step.
type ErrUnknownStep struct {
	Name string
}

func (e *ErrUnknownStep) Error() string {
	return fmt.Sprintf("unknown step %q", e.Name)
}

// ErrCommand is returned when an external tool exits nonzero or fails
// to start.
type ErrCommand struct {
	Step    string
	Command string
	Err     error
}

func (e *ErrCommand) Error() string {
	return fmt.Sprintf("step %s (%s): %v", e.Step, e.Command, e.Err)
}

func (e *ErrCommand) Unwrap() error {
	return e.Err
}

// Error code constants for history storage.
const (
	ErrCodeMalformedVersion = "MALFORMED_VERSION"
	ErrCodeWriteFile        = "WRITE_FILE"
	ErrCodeCommand          = "COMMAND_FAILED"
	ErrCodeUnknownStep      = "UNKNOWN_STEP"
	ErrCodeUnknown          = "UNKNOWN"
)

// ErrorCode returns the error code string for a given error.
func ErrorCode(err error) string {
	switch err.(type) {
	case *records.ErrMalformedVersion:
		return ErrCodeMalformedVersion
	case *records.ErrWriteFile:
		return ErrCodeWriteFile
	case *ErrCommand:
		return ErrCodeCommand
	case *ErrUnknownStep:
		return ErrCodeUnknownStep
	default:
		return ErrCodeUnknown
	}
}
