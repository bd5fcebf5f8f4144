package recognition

import (
	"fmt"
	"strings"
)

// ValidationError reports malformed input such as a wrong-length descriptor
// or an empty frame.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// PolicyRejection is an expected, user-facing refusal such as a failed
// enrollment quality check or an active cooldown. It carries the individual
// issues so callers can surface them directly.
type PolicyRejection struct {
	Reason string
	Issues []string
}

func (e *PolicyRejection) Error() string {
	if len(e.Issues) > 0 {
		return e.Reason + ": " + strings.Join(e.Issues, ", ")
	}
	return e.Reason
}

// ResourceError reports an unavailable or busy resource such as a camera that
// cannot start or a capture already in progress.
type ResourceError struct {
	Resource string
	Message  string
}

func (e *ResourceError) Error() string {
	return fmt.Sprintf("%s: %s", e.Resource, e.Message)
}

// EngineFault wraps an unexpected failure from the detection engine or a
// storage backend. The attempt that hit it is aborted cleanly.
type EngineFault struct {
	Op  string
	Err error
}

func (e *EngineFault) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *EngineFault) Unwrap() error {
	return e.Err
}

// InsufficientSamplesError reports an enrollment completion attempt before
// enough samples were collected.
type InsufficientSamplesError struct {
	Required  int
	Collected int
}

func (e *InsufficientSamplesError) Error() string {
	return fmt.Sprintf("insufficient enrollment samples: need %d more (%d/%d collected)",
		e.Required-e.Collected, e.Collected, e.Required)
}

// Shortfall returns how many samples are still missing.
func (e *InsufficientSamplesError) Shortfall() int {
	return e.Required - e.Collected
}
