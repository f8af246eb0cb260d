// SPDX-License-Identifier: AGPL-3.0-only
package server

import (
	"encoding/json"
	"net/http"

	"github.com/rodman1980/ai-dial-ums-ui-agent/internal/agent"
	"github.com/rodman1980/ai-dial-ums-ui-agent/internal/errors"
	"github.com/rodman1980/ai-dial-ums-ui-agent/internal/model"
)

type createConversationRequest struct {
	Title string `json:"title"`
}

type chatRequest struct {
	Message model.Message `json:"message"`
	Stream  *bool         `json:"stream"`
}

type chatResponse struct {
	Content        string `json:"content"`
	ConversationID string `json:"conversation_id"`
}

type errorResponse struct {
	Detail string `json:"detail"`
}

// SSE chunk shapes mirror OpenAI streaming chunks so existing chat UIs can
// consume them unchanged.
type sseDelta struct {
	Content string `json:"content,omitempty"`
}

type sseChoice struct {
	Delta        sseDelta `json:"delta"`
	Index        int      `json:"index"`
	FinishReason *string  `json:"finish_reason"`
}

type sseChunk struct {
	Choices []sseChoice `json:"choices"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status": "healthy",
	})
}

func (s *Server) handleCreateConversation(w http.ResponseWriter, r *http.Request) {
	var req createConversationRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}
	title := req.Title
	if title == "" {
		title = "New Conversation"
	}

	conv, err := s.service.Create(title)
	if err != nil {
		s.logger.Errorf("Failed to create conversation: %v", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, conv)
}

func (s *Server) handleListConversations(w http.ResponseWriter, _ *http.Request) {
	summaries, err := s.service.List()
	if err != nil {
		s.logger.Errorf("Failed to list conversations: %v", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if summaries == nil {
		summaries = []model.ConversationSummary{}
	}
	writeJSON(w, http.StatusOK, summaries)
}

func (s *Server) handleGetConversation(w http.ResponseWriter, r *http.Request) {
	conv, err := s.service.Get(r.PathValue("id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, conv)
}

func (s *Server) handleDeleteConversation(w http.ResponseWriter, r *http.Request) {
	if err := s.service.Delete(r.PathValue("id")); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"message": "Conversation deleted successfully",
	})
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Message.Content == "" {
		writeError(w, http.StatusBadRequest, "message content is required")
		return
	}

	// Streaming is the default, matching the UI.
	stream := true
	if req.Stream != nil {
		stream = *req.Stream
	}

	if !stream {
		content, err := s.service.Chat(r.Context(), id, req.Message.Content)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, chatResponse{Content: content, ConversationID: id})
		return
	}

	s.streamChat(w, r, id, req.Message.Content)
}

// streamChat runs a chat turn over SSE. The first chunk carries the
// conversation ID; text deltas follow as OpenAI-shaped chunks; a
// finish_reason "stop" chunk and a [DONE] marker terminate the stream. A
// failure after headers are sent is reported as an error event so the client
// is not left waiting.
func (s *Server) streamChat(w http.ResponseWriter, r *http.Request, id, userMessage string) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming not supported")
		return
	}

	// The conversation must exist before headers are committed so a missing
	// ID still maps to a 404.
	if _, err := s.service.Get(id); err != nil {
		writeServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	writeSSE(w, map[string]string{"conversation_id": id})
	flusher.Flush()

	_, err := s.service.ChatStream(r.Context(), id, userMessage, func(ev agent.Event) error {
		if ev.Done {
			stop := "stop"
			writeSSE(w, sseChunk{Choices: []sseChoice{{FinishReason: &stop}}})
			flusher.Flush()
			return nil
		}
		writeSSE(w, sseChunk{Choices: []sseChoice{{Delta: sseDelta{Content: ev.Content}}}})
		flusher.Flush()
		return nil
	})
	if err != nil {
		s.logger.Errorf("Streamed chat for conversation %s failed: %v", id, err)
		writeSSE(w, map[string]string{"error": err.Error()})
		flusher.Flush()
	}

	if _, err := w.Write([]byte("data: [DONE]\n\n")); err == nil {
		flusher.Flush()
	}
}

func writeSSE(w http.ResponseWriter, payload interface{}) {
	b, err := json.Marshal(payload)
	if err != nil {
		return
	}
	_, _ = w.Write([]byte("data: "))
	_, _ = w.Write(b)
	_, _ = w.Write([]byte("\n\n"))
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, errorResponse{Detail: detail})
}

// writeServiceError maps manager errors to HTTP statuses.
func writeServiceError(w http.ResponseWriter, err error) {
	if errors.IsNotFound(err) {
		writeError(w, http.StatusNotFound, "Conversation not found")
		return
	}
	writeError(w, http.StatusInternalServerError, err.Error())
}
