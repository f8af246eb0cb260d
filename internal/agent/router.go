// SPDX-License-Identifier: AGPL-3.0-only
package agent

import (
	"context"
	"encoding/json"

	"github.com/rodman1980/ai-dial-ums-ui-agent/internal/errors"
	"github.com/rodman1980/ai-dial-ums-ui-agent/internal/logging"
	"github.com/rodman1980/ai-dial-ums-ui-agent/internal/model"
)

// ToolInvoker executes a named tool with already-parsed arguments. Each
// connected MCP server session provides one invoker.
type ToolInvoker interface {
	CallTool(ctx context.Context, name string, args map[string]interface{}) (string, error)
}

// ToolRouter resolves a model-issued tool call to the invoker responsible for
// that tool name and performs the call.
type ToolRouter struct {
	invokers map[string]ToolInvoker
	logger   *logging.Logger
}

// NewToolRouter creates a router over the given tool-name-to-invoker map.
// The map is populated once at session start and treated as read-only.
func NewToolRouter(invokers map[string]ToolInvoker, logger *logging.Logger) *ToolRouter {
	if logger == nil {
		logger = logging.GetDefaultLogger()
	}
	return &ToolRouter{invokers: invokers, logger: logger}
}

// Invoke executes one tool call and always returns exactly one tool message
// correlated via ToolCallID. Unknown tools, malformed arguments and provider
// failures are folded into the message content as descriptive error strings
// instead of propagating: the conversation must continue so the model can
// react to the failure.
func (r *ToolRouter) Invoke(ctx context.Context, call model.ToolCall) model.Message {
	msg := model.Message{
		Role:       model.RoleTool,
		ToolCallID: call.ID,
		ToolName:   call.Name,
	}

	invoker, ok := r.invokers[call.Name]
	if !ok {
		r.logger.Warnf("Tool call for unknown tool %q", call.Name)
		msg.Content = errors.UnknownTool(call.Name)
		return msg
	}

	raw := call.Arguments
	if raw == "" {
		raw = "{}"
	}
	var args map[string]interface{}
	if err := json.Unmarshal([]byte(raw), &args); err != nil {
		r.logger.Warnf("Malformed arguments for tool %q: %v", call.Name, err)
		msg.Content = errors.MalformedToolArguments(call.Name, err)
		return msg
	}

	out, err := invoker.CallTool(ctx, call.Name, args)
	if err != nil {
		r.logger.Warnf("Tool %q failed: %v", call.Name, err)
		msg.Content = errors.ToolInvocationFailed(call.Name, err)
		return msg
	}

	msg.Content = out
	return msg
}
