// SPDX-License-Identifier: AGPL-3.0-only
package agent

import (
	"context"
	"encoding/json"
	"io"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/anthropics/anthropic-sdk-go/packages/ssestream"

	"github.com/rodman1980/ai-dial-ums-ui-agent/internal/model"
)

// AnthropicProvider implements ChatProvider using the Anthropic SDK.
type AnthropicProvider struct {
	client *anthropic.Client
}

// NewAnthropicProvider creates a new Anthropic-backed ChatProvider.
func NewAnthropicProvider(apiKey string) *AnthropicProvider {
	client := anthropic.NewClient(option.WithAPIKey(apiKey))
	return &AnthropicProvider{client: &client}
}

func (p *AnthropicProvider) CreateCompletion(ctx context.Context, modelName string, messages []model.Message, tools []model.ToolDefinition) (*model.Message, error) {
	params := buildAnthropicParams(modelName, messages, tools)
	resp, err := p.client.Messages.New(ctx, params)
	if err != nil {
		return nil, err
	}
	return fromAnthropicMessage(resp), nil
}

func (p *AnthropicProvider) CreateCompletionStream(ctx context.Context, modelName string, messages []model.Message, tools []model.ToolDefinition) (CompletionStream, error) {
	params := buildAnthropicParams(modelName, messages, tools)
	stream := p.client.Messages.NewStreaming(ctx, params)
	if err := stream.Err(); err != nil {
		return nil, err
	}
	return &anthropicStream{
		stream:  stream,
		toolPos: make(map[int64]int),
	}, nil
}

// anthropicStream adapts Anthropic content-block events onto position-indexed
// fragments. Content blocks are numbered across text and tool_use blocks, so
// tool_use blocks get their own zero-based position counter.
type anthropicStream struct {
	stream  *ssestream.Stream[anthropic.MessageStreamEventUnion]
	toolPos map[int64]int // content block index -> tool call position
	nTools  int
}

func (s *anthropicStream) Recv() (Fragment, error) {
	for s.stream.Next() {
		event := s.stream.Current()
		switch variant := event.AsAny().(type) {
		case anthropic.ContentBlockStartEvent:
			if variant.ContentBlock.Type != "tool_use" {
				continue
			}
			pos := s.nTools
			s.nTools++
			s.toolPos[variant.Index] = pos
			return Fragment{ToolCalls: []ToolCallDelta{{
				Index: pos,
				ID:    variant.ContentBlock.ID,
				Name:  variant.ContentBlock.Name,
			}}}, nil
		case anthropic.ContentBlockDeltaEvent:
			switch delta := variant.Delta.AsAny().(type) {
			case anthropic.TextDelta:
				if delta.Text == "" {
					continue
				}
				return Fragment{Content: delta.Text}, nil
			case anthropic.InputJSONDelta:
				pos, ok := s.toolPos[variant.Index]
				if !ok || delta.PartialJSON == "" {
					continue
				}
				return Fragment{ToolCalls: []ToolCallDelta{{
					Index:     pos,
					Arguments: delta.PartialJSON,
				}}}, nil
			}
		case anthropic.MessageDeltaEvent:
			switch string(variant.Delta.StopReason) {
			case "":
				continue
			case "tool_use":
				return Fragment{FinishReason: "tool_calls"}, nil
			default:
				return Fragment{FinishReason: "stop"}, nil
			}
		}
	}
	if err := s.stream.Err(); err != nil {
		return Fragment{}, err
	}
	return Fragment{}, io.EOF
}

func (s *anthropicStream) Close() error {
	return s.stream.Close()
}

func buildAnthropicParams(modelName string, messages []model.Message, tools []model.ToolDefinition) anthropic.MessageNewParams {
	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(modelName),
		Messages:  toAnthropicMessages(messages),
		MaxTokens: 4096,
	}
	// System messages are carried out-of-band in the Anthropic API.
	for _, m := range messages {
		if m.Role == model.RoleSystem && m.Content != "" {
			params.System = append(params.System, anthropic.TextBlockParam{Text: m.Content})
		}
	}
	if len(tools) > 0 {
		params.Tools = toAnthropicTools(tools)
	}
	return params
}

// toAnthropicTools converts provider-agnostic tool definitions to Anthropic SDK
// tool params.
func toAnthropicTools(tools []model.ToolDefinition) []anthropic.ToolUnionParam {
	out := make([]anthropic.ToolUnionParam, len(tools))
	for i, t := range tools {
		// Extract properties and required from the JSON-schema map.
		props, _ := t.Parameters["properties"].(map[string]interface{})
		if props == nil {
			props = map[string]interface{}{}
		}
		var required []string
		if req, ok := t.Parameters["required"].([]interface{}); ok {
			for _, r := range req {
				if s, ok := r.(string); ok {
					required = append(required, s)
				}
			}
		}
		// Also handle the case where required is already []string (e.g. from typed code).
		if req, ok := t.Parameters["required"].([]string); ok {
			required = req
		}

		out[i] = anthropic.ToolUnionParam{
			OfTool: &anthropic.ToolParam{
				Name:        t.Name,
				Description: anthropic.String(t.Description),
				InputSchema: anthropic.ToolInputSchemaParam{
					Properties: props,
					Required:   required,
				},
			},
		}
	}
	return out
}

// toAnthropicMessages converts provider-agnostic messages to Anthropic SDK
// message params.
//
// Anthropic's API requires:
//   - Only "user" and "assistant" roles (no "system" or "tool" roles)
//   - Tool results are sent as user messages with ToolResultBlockParam content
//   - Assistant messages with tool calls use ToolUseBlockParam content
func toAnthropicMessages(messages []model.Message) []anthropic.MessageParam {
	out := make([]anthropic.MessageParam, 0, len(messages))
	for _, m := range messages {
		switch m.Role {
		case model.RoleUser:
			out = append(out, anthropic.NewUserMessage(
				anthropic.NewTextBlock(m.Content),
			))
		case model.RoleTool:
			out = append(out, anthropic.NewUserMessage(
				anthropic.NewToolResultBlock(m.ToolCallID, m.Content, false),
			))
		case model.RoleAssistant:
			blocks := make([]anthropic.ContentBlockParamUnion, 0)
			if m.Content != "" {
				blocks = append(blocks, anthropic.NewTextBlock(m.Content))
			}
			for _, tc := range m.ToolCalls {
				var input json.RawMessage
				if tc.Arguments != "" {
					input = json.RawMessage(tc.Arguments)
				} else {
					input = json.RawMessage("{}")
				}
				blocks = append(blocks, anthropic.ContentBlockParamUnion{
					OfToolUse: &anthropic.ToolUseBlockParam{
						ID:    tc.ID,
						Name:  tc.Name,
						Input: input,
					},
				})
			}
			out = append(out, anthropic.NewAssistantMessage(blocks...))
		}
	}
	return out
}

// fromAnthropicMessage converts an Anthropic SDK response to the
// provider-agnostic Message type.
func fromAnthropicMessage(resp *anthropic.Message) *model.Message {
	msg := &model.Message{
		Role: model.RoleAssistant,
	}
	for _, block := range resp.Content {
		switch block.Type {
		case "text":
			if msg.Content != "" {
				msg.Content += "\n"
			}
			msg.Content += block.AsText().Text
		case "tool_use":
			tu := block.AsToolUse()
			msg.ToolCalls = append(msg.ToolCalls, model.ToolCall{
				ID:        tu.ID,
				Name:      tu.Name,
				Arguments: string(tu.Input),
			})
		}
	}
	return msg
}
