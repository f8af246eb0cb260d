// SPDX-License-Identifier: AGPL-3.0-only
package agent

import (
	"encoding/json"
	"testing"

	"github.com/rodman1980/ai-dial-ums-ui-agent/internal/model"
)

func TestToAnthropicTools(t *testing.T) {
	tools := []model.ToolDefinition{
		{
			Name:        "search_users",
			Description: "Search for users",
			Parameters: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"q": map[string]interface{}{
						"type":        "string",
						"description": "Search query",
					},
				},
				"required": []interface{}{"q"},
			},
		},
	}

	result := toAnthropicTools(tools)

	if len(result) != 1 {
		t.Fatalf("Expected 1 tool, got %d", len(result))
	}
	tool := result[0].OfTool
	if tool == nil {
		t.Fatal("Expected OfTool to be set")
	}
	if tool.Name != "search_users" {
		t.Errorf("Expected name 'search_users', got '%s'", tool.Name)
	}
	if len(tool.InputSchema.Required) != 1 || tool.InputSchema.Required[0] != "q" {
		t.Errorf("Expected required ['q'], got %v", tool.InputSchema.Required)
	}
	props, ok := tool.InputSchema.Properties.(map[string]interface{})
	if !ok {
		t.Fatal("Expected properties to be map[string]interface{}")
	}
	if props["q"] == nil {
		t.Error("Expected 'q' property to exist")
	}
}

func TestToAnthropicTools_RequiredAsStringSlice(t *testing.T) {
	tools := []model.ToolDefinition{
		{
			Name: "create_user",
			Parameters: map[string]interface{}{
				"type":       "object",
				"properties": map[string]interface{}{},
				"required":   []string{"name", "email"},
			},
		},
	}

	result := toAnthropicTools(tools)
	if got := result[0].OfTool.InputSchema.Required; len(got) != 2 {
		t.Errorf("Expected required [name email], got %v", got)
	}
}

func TestToAnthropicMessages_RoleMapping(t *testing.T) {
	messages := []model.Message{
		{Role: model.RoleSystem, Content: "You are a helper."},
		{Role: model.RoleUser, Content: "list users"},
		{
			Role: model.RoleAssistant,
			ToolCalls: []model.ToolCall{
				{ID: "c1", Name: "search_users", Arguments: `{"q":"a"}`},
			},
		},
		{Role: model.RoleTool, Content: "[]", ToolCallID: "c1", ToolName: "search_users"},
	}

	result := toAnthropicMessages(messages)

	// System messages are carried out-of-band, so only 3 remain, and the
	// tool result becomes a user message.
	if len(result) != 3 {
		t.Fatalf("Expected 3 messages, got %d", len(result))
	}
	if result[0].Role != "user" {
		t.Errorf("Expected first message role 'user', got '%s'", result[0].Role)
	}
	if result[1].Role != "assistant" {
		t.Errorf("Expected second message role 'assistant', got '%s'", result[1].Role)
	}
	if result[2].Role != "user" {
		t.Errorf("Expected tool result to map to role 'user', got '%s'", result[2].Role)
	}
}

func TestToAnthropicMessages_EmptyToolCallArguments(t *testing.T) {
	messages := []model.Message{
		{
			Role: model.RoleAssistant,
			ToolCalls: []model.ToolCall{
				{ID: "c1", Name: "list_users", Arguments: ""},
			},
		},
	}

	result := toAnthropicMessages(messages)
	if len(result) != 1 {
		t.Fatalf("Expected 1 message, got %d", len(result))
	}
	block := result[0].Content[0].OfToolUse
	if block == nil {
		t.Fatal("Expected tool_use block")
	}
	var input map[string]interface{}
	raw, err := json.Marshal(block.Input)
	if err != nil {
		t.Fatalf("Failed to marshal input: %v", err)
	}
	if err := json.Unmarshal(raw, &input); err != nil {
		t.Fatalf("Empty arguments must serialize to a valid JSON object, got %s", raw)
	}
}

func TestBuildAnthropicParams_SystemPromptExtracted(t *testing.T) {
	messages := []model.Message{
		{Role: model.RoleSystem, Content: "You are a helper."},
		{Role: model.RoleUser, Content: "hi"},
	}

	params := buildAnthropicParams("claude-sonnet-4-20250514", messages, nil)

	if len(params.System) != 1 || params.System[0].Text != "You are a helper." {
		t.Errorf("Expected system prompt extracted, got %+v", params.System)
	}
	if len(params.Messages) != 1 {
		t.Errorf("Expected 1 conversation message, got %d", len(params.Messages))
	}
}
