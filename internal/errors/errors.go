// SPDX-License-Identifier: AGPL-3.0-only
package errors

import (
	"errors"
	"fmt"
)

// ErrMaxTurnsExceeded is returned by the orchestration loop when the model
// keeps requesting tools past the configured turn limit. It is surfaced as a
// degraded final answer, not a crash.
var ErrMaxTurnsExceeded = errors.New("tool loop exceeded maximum turns")

// ErrNotFound is the sentinel wrapped by NotFound so transport layers can
// map missing resources to a 404.
var ErrNotFound = errors.New("resource not found")

// NotFound creates a formatted "not found" error
func NotFound(resource, id string) error {
	return fmt.Errorf("%w: %s with ID %s", ErrNotFound, resource, id)
}

// IsNotFound reports whether err stems from a missing resource.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// AlreadyExists creates a formatted "already exists" error
func AlreadyExists(resource, id string) error {
	return fmt.Errorf("resource already exists: %s with ID %s", resource, id)
}

// InvalidInput creates a formatted "invalid input" error
func InvalidInput(reason string) error {
	return fmt.Errorf("invalid input: %s", reason)
}

// Internal creates a formatted "internal error" error
func Internal(err error) error {
	return fmt.Errorf("internal error: %v", err)
}

// CompletionFailed wraps a remote completion error. Completion failures are
// fatal to the current chat invocation and are never retried internally.
func CompletionFailed(err error) error {
	return fmt.Errorf("completion request failed: %w", err)
}

// MaxTurnsExceeded wraps ErrMaxTurnsExceeded with the configured limit so
// callers can both match the sentinel and report the number.
func MaxTurnsExceeded(limit int) error {
	return fmt.Errorf("%w (%d)", ErrMaxTurnsExceeded, limit)
}

// The following produce the descriptive strings injected into synthetic tool
// messages. Tool-level failures never cross the core boundary as errors; the
// conversation must continue so the model can react.

// UnknownTool describes a tool call naming a tool no provider serves.
func UnknownTool(name string) string {
	return fmt.Sprintf("Error: tool %q not found", name)
}

// MalformedToolArguments describes an argument string that failed to parse
// as a JSON object.
func MalformedToolArguments(name string, err error) string {
	return fmt.Sprintf("Error: invalid arguments for tool %q: %v", name, err)
}

// ToolInvocationFailed describes a provider call that returned an error.
func ToolInvocationFailed(name string, err error) string {
	return fmt.Sprintf("Error executing tool %q: %v", name, err)
}
