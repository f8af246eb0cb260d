// SPDX-License-Identifier: AGPL-3.0-only
package agent

import (
	"context"
	"io"

	"github.com/rodman1980/ai-dial-ums-ui-agent/internal/errors"
	"github.com/rodman1980/ai-dial-ums-ui-agent/internal/logging"
	"github.com/rodman1980/ai-dial-ums-ui-agent/internal/model"
)

// Event is one unit of a streamed chat response surfaced to the transport
// layer: either a text fragment or the terminal marker.
type Event struct {
	Content string
	Done    bool
}

// EmitFunc receives streamed events. Returning an error stops the loop from
// forwarding further fragments (e.g. the client disconnected).
type EmitFunc func(Event) error

// Options configures an Orchestrator.
type Options struct {
	Provider ChatProvider
	Model    string
	Tools    []model.ToolDefinition
	Router   *ToolRouter
	MaxTurns int
	Logger   *logging.Logger
}

// Orchestrator drives the turn-by-turn exchange between the model and the
// tools for a single conversation: request a completion, execute any tool
// calls it carries, append the results, and repeat until a turn produces no
// tool calls.
//
// The loop is deliberately iterative rather than recursive so the turn guard
// is trivial to enforce and the call stack stays flat. The orchestrator
// mutates the conversation in place by appending messages and has no internal
// synchronization; callers serialize access per conversation.
type Orchestrator struct {
	provider  ChatProvider
	modelName string
	tools     []model.ToolDefinition
	router    *ToolRouter
	maxTurns  int
	logger    *logging.Logger
}

// NewOrchestrator creates an orchestrator scoped to one conversation run.
func NewOrchestrator(opts Options) *Orchestrator {
	logger := opts.Logger
	if logger == nil {
		logger = logging.GetDefaultLogger()
	}
	maxTurns := opts.MaxTurns
	if maxTurns <= 0 {
		maxTurns = 20
	}
	return &Orchestrator{
		provider:  opts.Provider,
		modelName: opts.Model,
		tools:     opts.Tools,
		router:    opts.Router,
		maxTurns:  maxTurns,
		logger:    logger,
	}
}

// RunBlocking executes the tool-calling loop with blocking completions and
// returns the final answer text. Only completion failures and the turn guard
// cross this boundary as errors; tool-level failures are absorbed into the
// conversation as tool messages.
func (o *Orchestrator) RunBlocking(ctx context.Context, conv *model.Conversation) (string, error) {
	for turn := 1; turn <= o.maxTurns; turn++ {
		o.logger.Debugf("Turn %d: requesting completion with %d messages", turn, len(conv.Messages))

		resp, err := o.provider.CreateCompletion(ctx, o.modelName, conv.Messages, o.tools)
		if err != nil {
			return "", errors.CompletionFailed(err)
		}
		conv.Append(*resp)

		if len(resp.ToolCalls) == 0 {
			o.logger.Debugf("Turn %d: final answer after %d messages", turn, len(conv.Messages))
			return resp.Content, nil
		}

		o.runToolCalls(ctx, conv, resp.ToolCalls, turn)
	}
	return "", errors.MaxTurnsExceeded(o.maxTurns)
}

// RunStreaming executes the same loop over streamed completions. Every text
// fragment is forwarded through emit as it arrives, including fragments of
// turns that go on to request tools. A single terminal event (Done) is
// emitted after the final turn. If emit returns an error or ctx is
// cancelled, forwarding stops and the in-flight completion is abandoned; a
// tool invocation already started runs to completion.
func (o *Orchestrator) RunStreaming(ctx context.Context, conv *model.Conversation, emit EmitFunc) (string, error) {
	for turn := 1; turn <= o.maxTurns; turn++ {
		o.logger.Debugf("Turn %d: requesting streamed completion with %d messages", turn, len(conv.Messages))

		resp, err := o.streamTurn(ctx, conv, emit)
		if err != nil {
			return "", err
		}
		conv.Append(*resp)

		if len(resp.ToolCalls) == 0 {
			if err := emit(Event{Done: true}); err != nil {
				return resp.Content, err
			}
			return resp.Content, nil
		}

		o.runToolCalls(ctx, conv, resp.ToolCalls, turn)
	}
	return "", errors.MaxTurnsExceeded(o.maxTurns)
}

// streamTurn issues one streamed completion, forwards text fragments, and
// assembles the turn's assistant message.
func (o *Orchestrator) streamTurn(ctx context.Context, conv *model.Conversation, emit EmitFunc) (*model.Message, error) {
	stream, err := o.provider.CreateCompletionStream(ctx, o.modelName, conv.Messages, o.tools)
	if err != nil {
		return nil, errors.CompletionFailed(err)
	}
	defer stream.Close()

	asm := NewAssembler()
	for {
		frag, err := stream.Recv()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.CompletionFailed(err)
		}
		asm.Add(frag)
		if frag.Content != "" {
			if err := emit(Event{Content: frag.Content}); err != nil {
				return nil, err
			}
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
	}
	return asm.Message(), nil
}

// runToolCalls invokes the turn's tool calls strictly in request order and
// appends one tool message per call. No concurrency: later tool arguments may
// depend on earlier results being visible to the model on the next turn.
func (o *Orchestrator) runToolCalls(ctx context.Context, conv *model.Conversation, calls []model.ToolCall, turn int) {
	o.logger.Debugf("Turn %d: processing %d tool calls", turn, len(calls))
	for _, call := range calls {
		o.logger.Debugf("Invoking tool %s (call %s)", call.Name, call.ID)
		conv.Append(o.router.Invoke(ctx, call))
	}
}
