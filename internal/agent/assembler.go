// SPDX-License-Identifier: AGPL-3.0-only
package agent

import (
	"strings"

	"github.com/rodman1980/ai-dial-ums-ui-agent/internal/model"
)

// Assembler reconstructs a complete assistant message from a sequence of
// streamed fragments. It is a pure reducer over fragments: feed every
// fragment through Add, then read the result with Message once the stream is
// exhausted.
//
// There is no per-call completion signal in the fragment stream. A call is
// complete only when the stream ends (or a terminal finish marker arrives);
// until then any position may still receive argument slices. Fragments for
// different positions may interleave; the assembled list preserves position
// order, not arrival order.
type Assembler struct {
	content      strings.Builder
	calls        map[int]*pendingCall
	maxIndex     int
	finishReason string
}

type pendingCall struct {
	id   string
	name string
	args strings.Builder
}

// NewAssembler creates an empty Assembler.
func NewAssembler() *Assembler {
	return &Assembler{calls: make(map[int]*pendingCall)}
}

// Add folds one fragment into the accumulated state.
func (a *Assembler) Add(frag Fragment) {
	a.content.WriteString(frag.Content)

	for _, d := range frag.ToolCalls {
		pc, ok := a.calls[d.Index]
		if !ok {
			pc = &pendingCall{}
			a.calls[d.Index] = pc
			if d.Index > a.maxIndex {
				a.maxIndex = d.Index
			}
		}
		// ID and name arrive once; arguments stream in slices and are
		// concatenated.
		if d.ID != "" {
			pc.id = d.ID
		}
		if d.Name != "" {
			pc.name = d.Name
		}
		pc.args.WriteString(d.Arguments)
	}

	if frag.FinishReason != "" {
		a.finishReason = frag.FinishReason
	}
}

// FinishReason returns the terminal finish marker, if one was seen.
func (a *Assembler) FinishReason() string {
	return a.finishReason
}

// Message returns the assembled assistant message: the concatenated text
// content and the tool-call requests in position order. A position that
// received no argument slices gets an empty-object arguments string.
func (a *Assembler) Message() *model.Message {
	msg := &model.Message{
		Role:    model.RoleAssistant,
		Content: a.content.String(),
	}
	for i := 0; i <= a.maxIndex; i++ {
		pc, ok := a.calls[i]
		if !ok {
			continue
		}
		args := pc.args.String()
		if args == "" {
			args = "{}"
		}
		msg.ToolCalls = append(msg.ToolCalls, model.ToolCall{
			ID:        pc.id,
			Name:      pc.name,
			Arguments: args,
		})
	}
	return msg
}
