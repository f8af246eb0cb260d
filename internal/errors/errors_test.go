// SPDX-License-Identifier: AGPL-3.0-only
package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestNotFound(t *testing.T) {
	err := NotFound("conversation", "123")
	expectedMsg := "resource not found: conversation with ID 123"
	if err.Error() != expectedMsg {
		t.Errorf("Expected error message '%s', got '%s'", expectedMsg, err.Error())
	}
}

func TestIsNotFound(t *testing.T) {
	if !IsNotFound(NotFound("conversation", "123")) {
		t.Error("Expected IsNotFound to match NotFound errors")
	}
	if !IsNotFound(fmt.Errorf("wrapped: %w", NotFound("conversation", "123"))) {
		t.Error("Expected IsNotFound to match wrapped NotFound errors")
	}
	if IsNotFound(Internal(fmt.Errorf("boom"))) {
		t.Error("Expected IsNotFound to reject unrelated errors")
	}
}

func TestAlreadyExists(t *testing.T) {
	err := AlreadyExists("conversation", "123")
	expectedMsg := "resource already exists: conversation with ID 123"
	if err.Error() != expectedMsg {
		t.Errorf("Expected error message '%s', got '%s'", expectedMsg, err.Error())
	}
}

func TestInvalidInput(t *testing.T) {
	reason := "missing required field"
	err := InvalidInput(reason)
	expectedMsg := "invalid input: " + reason
	if err.Error() != expectedMsg {
		t.Errorf("Expected error message '%s', got '%s'", expectedMsg, err.Error())
	}
}

func TestInternal(t *testing.T) {
	originalErr := fmt.Errorf("database connection failed")
	err := Internal(originalErr)
	expectedMsg := "internal error: database connection failed"
	if err.Error() != expectedMsg {
		t.Errorf("Expected error message '%s', got '%s'", expectedMsg, err.Error())
	}
}

func TestCompletionFailed(t *testing.T) {
	cause := fmt.Errorf("connection refused")
	err := CompletionFailed(cause)
	if !errors.Is(err, cause) {
		t.Errorf("Expected CompletionFailed to wrap the cause")
	}
	expectedMsg := "completion request failed: connection refused"
	if err.Error() != expectedMsg {
		t.Errorf("Expected error message '%s', got '%s'", expectedMsg, err.Error())
	}
}

func TestMaxTurnsExceeded(t *testing.T) {
	err := MaxTurnsExceeded(20)
	if !errors.Is(err, ErrMaxTurnsExceeded) {
		t.Errorf("Expected MaxTurnsExceeded to match ErrMaxTurnsExceeded")
	}
	expectedMsg := "tool loop exceeded maximum turns (20)"
	if err.Error() != expectedMsg {
		t.Errorf("Expected error message '%s', got '%s'", expectedMsg, err.Error())
	}
}

func TestUnknownTool(t *testing.T) {
	msg := UnknownTool("delete_everything")
	expected := `Error: tool "delete_everything" not found`
	if msg != expected {
		t.Errorf("Expected '%s', got '%s'", expected, msg)
	}
}

func TestMalformedToolArguments(t *testing.T) {
	msg := MalformedToolArguments("search_users", fmt.Errorf("unexpected end of JSON input"))
	expected := `Error: invalid arguments for tool "search_users": unexpected end of JSON input`
	if msg != expected {
		t.Errorf("Expected '%s', got '%s'", expected, msg)
	}
}
