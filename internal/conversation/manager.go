// SPDX-License-Identifier: AGPL-3.0-only

// Package conversation coordinates chat sessions: it owns persistence of
// conversation histories and serializes chat turns per conversation before
// handing control to the orchestration loop.
package conversation

import (
	"context"
	"strings"
	"sync"

	"github.com/rodman1980/ai-dial-ums-ui-agent/internal/agent"
	"github.com/rodman1980/ai-dial-ums-ui-agent/internal/errors"
	"github.com/rodman1980/ai-dial-ums-ui-agent/internal/logging"
	"github.com/rodman1980/ai-dial-ums-ui-agent/internal/model"
)

// maxTitleLen caps auto-generated conversation titles.
const maxTitleLen = 60

// Manager exposes conversation CRUD and the chat entry points. Chat turns on
// the same conversation are serialized with a per-conversation mutex; turns
// on different conversations run concurrently.
type Manager struct {
	store     model.ConversationStore
	agentOpts agent.Options
	logger    *logging.Logger

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewManager creates a Manager. agentOpts carries the provider, tools,
// router, and turn limit shared by every chat invocation.
func NewManager(store model.ConversationStore, agentOpts agent.Options, logger *logging.Logger) *Manager {
	if logger == nil {
		logger = logging.GetDefaultLogger()
	}
	if agentOpts.Logger == nil {
		agentOpts.Logger = logger
	}
	return &Manager{
		store:     store,
		agentOpts: agentOpts,
		logger:    logger,
		locks:     map[string]*sync.Mutex{},
	}
}

// Create starts a new, empty conversation.
func (m *Manager) Create(title string) (*model.Conversation, error) {
	conv := model.NewConversation(title)
	if err := m.store.CreateConversation(conv); err != nil {
		return nil, err
	}
	m.logger.Infof("Created conversation %s", conv.ID)
	return conv, nil
}

// Get returns a conversation with its full message history.
func (m *Manager) Get(id string) (*model.Conversation, error) {
	conv, err := m.store.GetConversation(id)
	if err != nil {
		return nil, err
	}
	if conv == nil {
		return nil, errors.NotFound("conversation", id)
	}
	return conv, nil
}

// List returns conversation summaries, most recently updated first.
func (m *Manager) List() ([]model.ConversationSummary, error) {
	return m.store.ListConversations()
}

// Delete removes a conversation and its history.
func (m *Manager) Delete(id string) error {
	deleted, err := m.store.DeleteConversation(id)
	if err != nil {
		return err
	}
	if !deleted {
		return errors.NotFound("conversation", id)
	}
	m.logger.Infof("Deleted conversation %s", id)

	m.mu.Lock()
	delete(m.locks, id)
	m.mu.Unlock()
	return nil
}

// Chat runs one blocking chat turn: append the user message, drive the tool
// loop to its final answer, and persist the full history once at the end.
// The history is persisted even when the loop fails so partial turns are not
// silently lost.
func (m *Manager) Chat(ctx context.Context, id, userMessage string) (string, error) {
	lock := m.lockFor(id)
	lock.Lock()
	defer lock.Unlock()

	conv, err := m.prepare(id, userMessage)
	if err != nil {
		return "", err
	}

	answer, runErr := agent.NewOrchestrator(m.agentOpts).RunBlocking(ctx, conv)
	if err := m.store.ReplaceMessages(conv.ID, conv.Messages); err != nil {
		m.logger.Errorf("Failed to persist conversation %s: %v", conv.ID, err)
		if runErr == nil {
			return "", err
		}
	}
	return answer, runErr
}

// ChatStream runs one streamed chat turn, forwarding text fragments through
// emit. Persistence follows the same single-write rule as Chat.
func (m *Manager) ChatStream(ctx context.Context, id, userMessage string, emit agent.EmitFunc) (string, error) {
	lock := m.lockFor(id)
	lock.Lock()
	defer lock.Unlock()

	conv, err := m.prepare(id, userMessage)
	if err != nil {
		return "", err
	}

	answer, runErr := agent.NewOrchestrator(m.agentOpts).RunStreaming(ctx, conv, emit)
	if err := m.store.ReplaceMessages(conv.ID, conv.Messages); err != nil {
		m.logger.Errorf("Failed to persist conversation %s: %v", conv.ID, err)
		if runErr == nil {
			return "", err
		}
	}
	return answer, runErr
}

// prepare loads the conversation, seeds the system prompt on first use, and
// appends the user's message. It does not persist; the chat turn writes the
// history back once when it finishes.
func (m *Manager) prepare(id, userMessage string) (*model.Conversation, error) {
	conv, err := m.store.GetConversation(id)
	if err != nil {
		return nil, err
	}
	if conv == nil {
		return nil, errors.NotFound("conversation", id)
	}

	if len(conv.Messages) == 0 {
		conv.Append(model.Message{Role: model.RoleSystem, Content: agent.SystemPrompt})
		if conv.Title == "" {
			conv.Title = titleFrom(userMessage)
			if err := m.store.UpdateTitle(conv.ID, conv.Title); err != nil {
				m.logger.Warnf("Failed to set title for conversation %s: %v", conv.ID, err)
			}
		}
	}
	conv.Append(model.Message{Role: model.RoleUser, Content: userMessage})
	return conv, nil
}

// lockFor returns the mutex serializing chat turns for one conversation.
func (m *Manager) lockFor(id string) *sync.Mutex {
	m.mu.Lock()
	defer m.mu.Unlock()
	lock, ok := m.locks[id]
	if !ok {
		lock = &sync.Mutex{}
		m.locks[id] = lock
	}
	return lock
}

// titleFrom derives a conversation title from the first user message.
func titleFrom(userMessage string) string {
	title := strings.TrimSpace(userMessage)
	if i := strings.IndexByte(title, '\n'); i >= 0 {
		title = title[:i]
	}
	if len(title) > maxTitleLen {
		title = title[:maxTitleLen]
	}
	return title
}
