// SPDX-License-Identifier: AGPL-3.0-only
package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rodman1980/ai-dial-ums-ui-agent/internal/model"

	_ "modernc.org/sqlite"
)

const timeFormat = time.RFC3339Nano

// SQLiteStore implements model.ConversationStore backed by a SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) the SQLite database at dbPath,
// enables WAL mode, and runs any pending schema migrations.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	// Ensure the parent directory exists.
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// Enable WAL mode for better concurrent read performance.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// CreateConversation persists a new conversation and its initial messages.
func (s *SQLiteStore) CreateConversation(conv *model.Conversation) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin create conversation: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		INSERT INTO conversations (id, title, created_at, updated_at)
		VALUES (?, ?, ?, ?)`,
		conv.ID,
		conv.Title,
		conv.CreatedAt.Format(timeFormat),
		conv.UpdatedAt.Format(timeFormat),
	)
	if err != nil {
		return fmt.Errorf("insert conversation: %w", err)
	}
	if err := insertMessages(tx, conv.ID, conv.Messages); err != nil {
		return err
	}
	return tx.Commit()
}

// GetConversation returns a conversation with its full message history,
// or nil, nil if it does not exist.
func (s *SQLiteStore) GetConversation(id string) (*model.Conversation, error) {
	var conv model.Conversation
	var createdStr, updatedStr string
	row := s.db.QueryRow(`
		SELECT id, title, created_at, updated_at
		FROM conversations
		WHERE id = ?`, id)
	if err := row.Scan(&conv.ID, &conv.Title, &createdStr, &updatedStr); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("query conversation: %w", err)
	}
	conv.CreatedAt, _ = time.Parse(timeFormat, createdStr)
	conv.UpdatedAt, _ = time.Parse(timeFormat, updatedStr)

	rows, err := s.db.Query(`
		SELECT role, content, tool_calls, tool_call_id, tool_name
		FROM messages
		WHERE conversation_id = ?
		ORDER BY position ASC`, id)
	if err != nil {
		return nil, fmt.Errorf("query messages: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var m model.Message
		var role, toolCalls string
		if err := rows.Scan(&role, &m.Content, &toolCalls, &m.ToolCallID, &m.ToolName); err != nil {
			return nil, fmt.Errorf("scan message row: %w", err)
		}
		m.Role = model.Role(role)
		if toolCalls != "" {
			if err := json.Unmarshal([]byte(toolCalls), &m.ToolCalls); err != nil {
				return nil, fmt.Errorf("decode tool calls: %w", err)
			}
		}
		conv.Messages = append(conv.Messages, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate message rows: %w", err)
	}
	return &conv, nil
}

// ListConversations returns summaries ordered by most recently updated.
func (s *SQLiteStore) ListConversations() ([]model.ConversationSummary, error) {
	rows, err := s.db.Query(`
		SELECT c.id, c.title, c.created_at, c.updated_at, COUNT(m.id)
		FROM conversations c
		LEFT JOIN messages m ON m.conversation_id = c.id
		GROUP BY c.id
		ORDER BY c.updated_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("query conversations: %w", err)
	}
	defer rows.Close()

	summaries := []model.ConversationSummary{}
	for rows.Next() {
		var sum model.ConversationSummary
		var createdStr, updatedStr string
		if err := rows.Scan(&sum.ID, &sum.Title, &createdStr, &updatedStr, &sum.MessageCount); err != nil {
			return nil, fmt.Errorf("scan conversation row: %w", err)
		}
		sum.CreatedAt, _ = time.Parse(timeFormat, createdStr)
		sum.UpdatedAt, _ = time.Parse(timeFormat, updatedStr)
		summaries = append(summaries, sum)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate conversation rows: %w", err)
	}
	return summaries, nil
}

// DeleteConversation removes a conversation and its messages.
// Returns false if the conversation did not exist.
func (s *SQLiteStore) DeleteConversation(id string) (bool, error) {
	result, err := s.db.Exec("DELETE FROM conversations WHERE id = ?", id)
	if err != nil {
		return false, fmt.Errorf("delete conversation: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("check delete result: %w", err)
	}
	return rows > 0, nil
}

// ReplaceMessages overwrites the stored message history for a conversation
// and bumps its updated-at timestamp.
func (s *SQLiteStore) ReplaceMessages(id string, msgs []model.Message) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin replace messages: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.Exec("UPDATE conversations SET updated_at = ? WHERE id = ?",
		time.Now().UTC().Format(timeFormat), id)
	if err != nil {
		return fmt.Errorf("touch conversation: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check touch result: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("conversation %s not found", id)
	}

	if _, err := tx.Exec("DELETE FROM messages WHERE conversation_id = ?", id); err != nil {
		return fmt.Errorf("clear messages: %w", err)
	}
	if err := insertMessages(tx, id, msgs); err != nil {
		return err
	}
	return tx.Commit()
}

// UpdateTitle sets a conversation's title.
func (s *SQLiteStore) UpdateTitle(id, title string) error {
	result, err := s.db.Exec("UPDATE conversations SET title = ? WHERE id = ?", title, id)
	if err != nil {
		return fmt.Errorf("update title: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check title update: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("conversation %s not found", id)
	}
	return nil
}

// DeleteConversationsBefore removes conversations whose updated-at is older
// than cutoff, returning how many were deleted.
func (s *SQLiteStore) DeleteConversationsBefore(cutoff time.Time) (int, error) {
	result, err := s.db.Exec("DELETE FROM conversations WHERE updated_at < ?",
		cutoff.UTC().Format(timeFormat))
	if err != nil {
		return 0, fmt.Errorf("delete old conversations: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("check delete result: %w", err)
	}
	return int(rows), nil
}

func insertMessages(tx *sql.Tx, conversationID string, msgs []model.Message) error {
	for i, m := range msgs {
		toolCalls := ""
		if len(m.ToolCalls) > 0 {
			b, err := json.Marshal(m.ToolCalls)
			if err != nil {
				return fmt.Errorf("encode tool calls: %w", err)
			}
			toolCalls = string(b)
		}
		_, err := tx.Exec(`
			INSERT INTO messages (conversation_id, position, role, content, tool_calls, tool_call_id, tool_name)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			conversationID, i, string(m.Role), m.Content, toolCalls, m.ToolCallID, m.ToolName,
		)
		if err != nil {
			return fmt.Errorf("insert message: %w", err)
		}
	}
	return nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
