// SPDX-License-Identifier: AGPL-3.0-only
package model

// Role identifies the author of a chat message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// ToolCall represents a single tool invocation requested by the model.
// Arguments is the raw JSON object string exactly as the model produced it.
type ToolCall struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// Message is one entry in a conversation. Messages are never mutated after
// creation; conversations grow by appending only.
//
//   - assistant messages may carry ToolCalls (and possibly empty Content)
//   - tool messages carry ToolCallID and ToolName to correlate with the
//     assistant tool call they answer
type Message struct {
	Role       Role       `json:"role"`
	Content    string     `json:"content,omitempty"`
	ToolCalls  []ToolCall `json:"tool_calls,omitempty"`
	ToolCallID string     `json:"tool_call_id,omitempty"`
	ToolName   string     `json:"name,omitempty"`
}

// ToolDefinition is a provider-agnostic representation of a tool that can be
// offered to an LLM during a chat completion. Parameters holds the tool's
// JSON-schema as a generic map.
type ToolDefinition struct {
	Name        string
	Description string
	Parameters  map[string]interface{}
}
