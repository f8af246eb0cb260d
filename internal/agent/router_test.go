// SPDX-License-Identifier: AGPL-3.0-only
package agent

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/rodman1980/ai-dial-ums-ui-agent/internal/model"
)

// fakeInvoker records the last call and returns a scripted result.
type fakeInvoker struct {
	out     string
	err     error
	gotName string
	gotArgs map[string]interface{}
}

func (f *fakeInvoker) CallTool(_ context.Context, name string, args map[string]interface{}) (string, error) {
	f.gotName = name
	f.gotArgs = args
	return f.out, f.err
}

func TestToolRouter_Invoke(t *testing.T) {
	invoker := &fakeInvoker{out: `[{"id":1,"name":"Jo"}]`}
	router := NewToolRouter(map[string]ToolInvoker{"search_users": invoker}, nil)

	msg := router.Invoke(context.Background(), model.ToolCall{
		ID:        "c1",
		Name:      "search_users",
		Arguments: `{"q":"jo"}`,
	})

	if msg.Role != model.RoleTool {
		t.Errorf("Expected tool role, got %s", msg.Role)
	}
	if msg.ToolCallID != "c1" {
		t.Errorf("Expected tool_call_id 'c1', got '%s'", msg.ToolCallID)
	}
	if msg.ToolName != "search_users" {
		t.Errorf("Expected tool name 'search_users', got '%s'", msg.ToolName)
	}
	if msg.Content != `[{"id":1,"name":"Jo"}]` {
		t.Errorf("Expected result content, got '%s'", msg.Content)
	}
	if invoker.gotArgs["q"] != "jo" {
		t.Errorf("Expected parsed argument q='jo', got %v", invoker.gotArgs)
	}
}

func TestToolRouter_EmptyArgumentsTreatedAsEmptyObject(t *testing.T) {
	invoker := &fakeInvoker{out: "ok"}
	router := NewToolRouter(map[string]ToolInvoker{"list_users": invoker}, nil)

	msg := router.Invoke(context.Background(), model.ToolCall{ID: "c1", Name: "list_users"})

	if msg.Content != "ok" {
		t.Errorf("Expected successful call with empty arguments, got '%s'", msg.Content)
	}
	if invoker.gotArgs == nil || len(invoker.gotArgs) != 0 {
		t.Errorf("Expected empty args map, got %v", invoker.gotArgs)
	}
}

func TestToolRouter_UnknownTool(t *testing.T) {
	router := NewToolRouter(map[string]ToolInvoker{}, nil)

	msg := router.Invoke(context.Background(), model.ToolCall{
		ID:        "c9",
		Name:      "delete_everything",
		Arguments: "{}",
	})

	if msg.Role != model.RoleTool || msg.ToolCallID != "c9" {
		t.Errorf("Expected synthetic tool message for c9, got %+v", msg)
	}
	if !strings.Contains(msg.Content, "delete_everything") || !strings.Contains(msg.Content, "not found") {
		t.Errorf("Expected descriptive unknown-tool error, got '%s'", msg.Content)
	}
}

func TestToolRouter_MalformedArguments(t *testing.T) {
	invoker := &fakeInvoker{out: "never"}
	router := NewToolRouter(map[string]ToolInvoker{"search_users": invoker}, nil)

	msg := router.Invoke(context.Background(), model.ToolCall{
		ID:        "c1",
		Name:      "search_users",
		Arguments: `{"q":`,
	})

	if !strings.Contains(msg.Content, "invalid arguments") {
		t.Errorf("Expected malformed-arguments error, got '%s'", msg.Content)
	}
	if invoker.gotName != "" {
		t.Error("Invoker must not be called with malformed arguments")
	}
}

func TestToolRouter_InvocationFailure(t *testing.T) {
	invoker := &fakeInvoker{err: fmt.Errorf("connection reset")}
	router := NewToolRouter(map[string]ToolInvoker{"fetch": invoker}, nil)

	msg := router.Invoke(context.Background(), model.ToolCall{
		ID:        "c2",
		Name:      "fetch",
		Arguments: `{"url":"http://x"}`,
	})

	if !strings.Contains(msg.Content, "Error executing tool") || !strings.Contains(msg.Content, "connection reset") {
		t.Errorf("Expected invocation failure folded into content, got '%s'", msg.Content)
	}
}

func TestToolRouter_OneMessagePerCallInOrder(t *testing.T) {
	invoker := &fakeInvoker{out: "ok"}
	router := NewToolRouter(map[string]ToolInvoker{"search_users": invoker}, nil)

	calls := []model.ToolCall{
		{ID: "c1", Name: "search_users", Arguments: "{}"},
		{ID: "c2", Name: "missing_tool", Arguments: "{}"},
		{ID: "c3", Name: "search_users", Arguments: "{}"},
	}

	var msgs []model.Message
	for _, call := range calls {
		msgs = append(msgs, router.Invoke(context.Background(), call))
	}

	if len(msgs) != len(calls) {
		t.Fatalf("Expected %d tool messages, got %d", len(calls), len(msgs))
	}
	for i, call := range calls {
		if msgs[i].ToolCallID != call.ID {
			t.Errorf("Message %d: expected tool_call_id %s, got %s", i, call.ID, msgs[i].ToolCallID)
		}
	}
}
