// SPDX-License-Identifier: AGPL-3.0-only
package agent

import (
	"context"
	"fmt"
	"strings"

	"github.com/rodman1980/ai-dial-ums-ui-agent/internal/config"
	"github.com/rodman1980/ai-dial-ums-ui-agent/internal/model"
)

// ToolCallDelta is one partial tool-call payload from a streamed completion.
// Index is the zero-based position of the call within the eventual tool-call
// list. ID and Name arrive once per position; Arguments arrives in slices
// that must be concatenated.
type ToolCallDelta struct {
	Index     int
	ID        string
	Name      string
	Arguments string
}

// Fragment is one incremental unit of a streamed completion response. A
// fragment may carry a chunk of text content, partial tool-call data, a
// finish marker, or any combination.
type Fragment struct {
	Content      string
	ToolCalls    []ToolCallDelta
	FinishReason string
}

// CompletionStream is a finite, non-restartable sequence of fragments.
// Recv returns io.EOF once the stream is exhausted; any other error is a
// completion failure and terminates the stream.
type CompletionStream interface {
	Recv() (Fragment, error)
	Close() error
}

// ChatProvider abstracts a chat-completion backend so the orchestration loop
// can work with any LLM provider. System messages travel in the message
// slice itself (role "system") and are mapped to whatever the backend
// expects.
type ChatProvider interface {
	// CreateCompletion sends a blocking chat completion request and returns
	// the assistant's response message.
	CreateCompletion(ctx context.Context, modelName string, messages []model.Message, tools []model.ToolDefinition) (*model.Message, error)

	// CreateCompletionStream issues the same request in streaming mode. The
	// caller owns the returned stream and must drain or close it.
	CreateCompletionStream(ctx context.Context, modelName string, messages []model.Message, tools []model.ToolDefinition) (CompletionStream, error)
}

// NewChatProvider builds the appropriate ChatProvider based on cfg.AI.Provider.
func NewChatProvider(cfg *config.Config) (ChatProvider, error) {
	provider := strings.ToLower(cfg.AI.Provider)
	switch provider {
	case "anthropic":
		apiKey := cfg.AI.AnthropicAPIKey
		if apiKey == "" {
			apiKey = cfg.AI.APIKey
		}
		if apiKey == "" {
			return nil, fmt.Errorf("Anthropic API key is not set in configuration")
		}
		return NewAnthropicProvider(apiKey), nil
	default: // "openai" or empty
		apiKey := cfg.AI.OpenAIAPIKey
		if apiKey == "" {
			apiKey = cfg.AI.APIKey
		}
		if apiKey == "" {
			return nil, fmt.Errorf("OpenAI API key is not set in configuration")
		}
		return NewOpenAIProvider(apiKey, cfg.AI.BaseURL), nil
	}
}
