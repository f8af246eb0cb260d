// SPDX-License-Identifier: AGPL-3.0-only
package model

import "time"

// ConversationStore abstracts conversation persistence. The orchestration
// core never performs partial saves: messages are loaded once before a chat
// turn starts and written back once after the loop finishes.
type ConversationStore interface {
	// CreateConversation persists a new conversation.
	CreateConversation(conv *Conversation) error

	// GetConversation returns a conversation with its full message history,
	// or nil if it does not exist.
	GetConversation(id string) (*Conversation, error)

	// ListConversations returns summaries ordered by most recently updated.
	ListConversations() ([]ConversationSummary, error)

	// DeleteConversation removes a conversation. Returns false if it did
	// not exist.
	DeleteConversation(id string) (bool, error)

	// ReplaceMessages overwrites the stored message history for a
	// conversation and bumps its updated-at timestamp.
	ReplaceMessages(id string, msgs []Message) error

	// UpdateTitle sets a conversation's title.
	UpdateTitle(id, title string) error

	// DeleteConversationsBefore removes conversations whose updated-at is
	// older than cutoff, returning how many were deleted.
	DeleteConversationsBefore(cutoff time.Time) (int, error)

	// Close releases the underlying database handle.
	Close() error
}
