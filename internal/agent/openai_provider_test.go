// SPDX-License-Identifier: AGPL-3.0-only
package agent

import (
	"testing"

	"github.com/openai/openai-go"

	"github.com/rodman1980/ai-dial-ums-ui-agent/internal/model"
)

func TestToOpenAITools(t *testing.T) {
	tools := []model.ToolDefinition{
		{
			Name:        "search_users",
			Description: "Search for users by criteria",
			Parameters: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"q": map[string]interface{}{
						"type":        "string",
						"description": "Search query",
					},
				},
				"required": []string{"q"},
			},
		},
		{
			Name:        "list_users",
			Description: "List all users",
			Parameters: map[string]interface{}{
				"type":       "object",
				"properties": map[string]interface{}{},
			},
		},
	}

	result := toOpenAITools(tools)

	if len(result) != 2 {
		t.Fatalf("Expected 2 tools, got %d", len(result))
	}
	if result[0].Function.Name != "search_users" {
		t.Errorf("Expected tool name 'search_users', got '%s'", result[0].Function.Name)
	}
	if result[1].Function.Name != "list_users" {
		t.Errorf("Expected tool name 'list_users', got '%s'", result[1].Function.Name)
	}
}

func TestToOpenAIMessage_System(t *testing.T) {
	msg := model.Message{Role: model.RoleSystem, Content: "You are a helper."}
	result := toOpenAIMessage(msg)

	if result.OfSystem == nil {
		t.Fatal("Expected system message, got nil")
	}
}

func TestToOpenAIMessage_User(t *testing.T) {
	msg := model.Message{Role: model.RoleUser, Content: "Hello"}
	result := toOpenAIMessage(msg)

	if result.OfUser == nil {
		t.Fatal("Expected user message, got nil")
	}
}

func TestToOpenAIMessage_Tool(t *testing.T) {
	msg := model.Message{Role: model.RoleTool, Content: "result data", ToolCallID: "call_123"}
	result := toOpenAIMessage(msg)

	if result.OfTool == nil {
		t.Fatal("Expected tool message, got nil")
	}
}

func TestToOpenAIMessage_AssistantWithToolCalls(t *testing.T) {
	msg := model.Message{
		Role:    model.RoleAssistant,
		Content: "Let me check.",
		ToolCalls: []model.ToolCall{
			{ID: "c1", Name: "search_users", Arguments: `{"q":"a"}`},
		},
	}
	result := toOpenAIMessage(msg)

	if result.OfAssistant == nil {
		t.Fatal("Expected assistant message, got nil")
	}
	if len(result.OfAssistant.ToolCalls) != 1 {
		t.Fatalf("Expected 1 tool call, got %d", len(result.OfAssistant.ToolCalls))
	}
	tc := result.OfAssistant.ToolCalls[0]
	if tc.ID != "c1" || tc.Function.Name != "search_users" {
		t.Errorf("Tool call mismatch: %+v", tc)
	}
}

func TestFromOpenAIMessage(t *testing.T) {
	resp := openai.ChatCompletionMessage{
		Content: "Found 1 user: Jo",
	}
	msg := fromOpenAIMessage(resp)

	if msg.Role != model.RoleAssistant {
		t.Errorf("Expected assistant role, got %s", msg.Role)
	}
	if msg.Content != "Found 1 user: Jo" {
		t.Errorf("Expected content preserved, got '%s'", msg.Content)
	}
	if len(msg.ToolCalls) != 0 {
		t.Errorf("Expected no tool calls, got %d", len(msg.ToolCalls))
	}
}

func TestFromOpenAIMessage_WithToolCalls(t *testing.T) {
	resp := openai.ChatCompletionMessage{
		ToolCalls: []openai.ChatCompletionMessageToolCall{
			{
				ID: "c1",
				Function: openai.ChatCompletionMessageToolCallFunction{
					Name:      "search_users",
					Arguments: `{"q":"a"}`,
				},
			},
		},
	}
	msg := fromOpenAIMessage(resp)

	if len(msg.ToolCalls) != 1 {
		t.Fatalf("Expected 1 tool call, got %d", len(msg.ToolCalls))
	}
	call := msg.ToolCalls[0]
	if call.ID != "c1" || call.Name != "search_users" || call.Arguments != `{"q":"a"}` {
		t.Errorf("Tool call mismatch: %+v", call)
	}
}
