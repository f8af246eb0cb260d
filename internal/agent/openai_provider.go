// SPDX-License-Identifier: AGPL-3.0-only
package agent

import (
	"context"
	"io"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/packages/ssestream"
	"github.com/openai/openai-go/shared"

	"github.com/rodman1980/ai-dial-ums-ui-agent/internal/model"
)

// OpenAIProvider implements ChatProvider using the OpenAI SDK.
// It supports any OpenAI-compatible endpoint (OpenAI, DIAL, Ollama, vLLM,
// Groq, etc.) via a configurable base URL.
type OpenAIProvider struct {
	client *openai.Client
}

// NewOpenAIProvider creates a new OpenAI-backed ChatProvider.
// If baseURL is non-empty it overrides the default API endpoint, which allows
// pointing at any OpenAI-compatible server.
func NewOpenAIProvider(apiKey string, baseURL string) *OpenAIProvider {
	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	client := openai.NewClient(opts...)
	return &OpenAIProvider{client: &client}
}

func (p *OpenAIProvider) CreateCompletion(ctx context.Context, modelName string, messages []model.Message, tools []model.ToolDefinition) (*model.Message, error) {
	params := p.buildParams(modelName, messages, tools)
	resp, err := p.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return nil, err
	}
	return fromOpenAIMessage(resp.Choices[0].Message), nil
}

func (p *OpenAIProvider) CreateCompletionStream(ctx context.Context, modelName string, messages []model.Message, tools []model.ToolDefinition) (CompletionStream, error) {
	params := p.buildParams(modelName, messages, tools)
	stream := p.client.Chat.Completions.NewStreaming(ctx, params)
	if err := stream.Err(); err != nil {
		return nil, err
	}
	return &openaiStream{stream: stream}, nil
}

func (p *OpenAIProvider) buildParams(modelName string, messages []model.Message, tools []model.ToolDefinition) openai.ChatCompletionNewParams {
	oaiMsgs := make([]openai.ChatCompletionMessageParamUnion, 0, len(messages))
	for _, m := range messages {
		oaiMsgs = append(oaiMsgs, toOpenAIMessage(m))
	}

	params := openai.ChatCompletionNewParams{
		Model:    shared.ChatModel(modelName),
		Messages: oaiMsgs,
	}
	if len(tools) > 0 {
		params.Tools = toOpenAITools(tools)
	}
	return params
}

// openaiStream adapts the SDK's SSE chunk stream to CompletionStream.
type openaiStream struct {
	stream *ssestream.Stream[openai.ChatCompletionChunk]
}

func (s *openaiStream) Recv() (Fragment, error) {
	for s.stream.Next() {
		chunk := s.stream.Current()
		if len(chunk.Choices) == 0 {
			continue
		}
		choice := chunk.Choices[0]
		frag := Fragment{
			Content:      choice.Delta.Content,
			FinishReason: choice.FinishReason,
		}
		for _, tc := range choice.Delta.ToolCalls {
			frag.ToolCalls = append(frag.ToolCalls, ToolCallDelta{
				Index:     int(tc.Index),
				ID:        tc.ID,
				Name:      tc.Function.Name,
				Arguments: tc.Function.Arguments,
			})
		}
		return frag, nil
	}
	if err := s.stream.Err(); err != nil {
		return Fragment{}, err
	}
	return Fragment{}, io.EOF
}

func (s *openaiStream) Close() error {
	return s.stream.Close()
}

// toOpenAITools converts provider-agnostic tool definitions to the OpenAI SDK
// representation.
func toOpenAITools(tools []model.ToolDefinition) []openai.ChatCompletionToolParam {
	out := make([]openai.ChatCompletionToolParam, len(tools))
	for i, t := range tools {
		out[i] = openai.ChatCompletionToolParam{
			Function: shared.FunctionDefinitionParam{
				Name:        t.Name,
				Description: openai.String(t.Description),
				Parameters:  shared.FunctionParameters(t.Parameters),
			},
		}
	}
	return out
}

// toOpenAIMessage converts a provider-agnostic Message to an OpenAI SDK message
// union.
func toOpenAIMessage(m model.Message) openai.ChatCompletionMessageParamUnion {
	switch m.Role {
	case model.RoleSystem:
		return openai.SystemMessage(m.Content)
	case model.RoleTool:
		return openai.ToolMessage(m.Content, m.ToolCallID)
	case model.RoleUser:
		return openai.UserMessage(m.Content)
	default: // assistant
		asst := openai.ChatCompletionAssistantMessageParam{}
		if m.Content != "" {
			asst.Content.OfString = openai.String(m.Content)
		}
		if len(m.ToolCalls) > 0 {
			asst.ToolCalls = make([]openai.ChatCompletionMessageToolCallParam, len(m.ToolCalls))
			for i, tc := range m.ToolCalls {
				asst.ToolCalls[i] = openai.ChatCompletionMessageToolCallParam{
					ID: tc.ID,
					Function: openai.ChatCompletionMessageToolCallFunctionParam{
						Name:      tc.Name,
						Arguments: tc.Arguments,
					},
				}
			}
		}
		return openai.ChatCompletionMessageParamUnion{OfAssistant: &asst}
	}
}

// fromOpenAIMessage converts an OpenAI SDK response message to the
// provider-agnostic Message type.
func fromOpenAIMessage(m openai.ChatCompletionMessage) *model.Message {
	msg := &model.Message{
		Role:    model.RoleAssistant,
		Content: m.Content,
	}
	if len(m.ToolCalls) > 0 {
		msg.ToolCalls = make([]model.ToolCall, len(m.ToolCalls))
		for i, tc := range m.ToolCalls {
			msg.ToolCalls[i] = model.ToolCall{
				ID:        tc.ID,
				Name:      tc.Function.Name,
				Arguments: tc.Function.Arguments,
			}
		}
	}
	return msg
}
