// SPDX-License-Identifier: AGPL-3.0-only
package model

import (
	"time"

	"github.com/google/uuid"
)

// Conversation is the ordered, append-only message history for one chat
// session. The conversation exclusively owns its message slice; the
// orchestration loop appends to it in place and never reorders or deletes
// existing entries.
type Conversation struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Messages  []Message `json:"messages"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ConversationSummary is the list-endpoint view of a conversation: metadata
// only, no message payload.
type ConversationSummary struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	MessageCount int       `json:"message_count"`
}

// NewConversation creates an empty conversation with a generated ID.
// The system prompt is added on first chat, not at creation time.
func NewConversation(title string) *Conversation {
	now := time.Now().UTC()
	return &Conversation{
		ID:        uuid.NewString(),
		Title:     title,
		Messages:  []Message{},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Append adds messages to the end of the conversation.
func (c *Conversation) Append(msgs ...Message) {
	c.Messages = append(c.Messages, msgs...)
}
