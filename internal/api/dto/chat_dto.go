package dto

import (
	"time"

	"github.com/logic-legends/triage-service/internal/domain"
)

// SendChatMessageRequest payload.
type SendChatMessageRequest struct {
	Content       string  `json:"content"`
	CustomerName  string  `json:"customer_name,omitempty"`
	CustomerEmail string  `json:"customer_email,omitempty"`
	CustomerPhone *string `json:"customer_phone,omitempty"`
}

// ChatMessageResponse is one transcript entry.
type ChatMessageResponse struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	Sender    string    `json:"sender"`
	Timestamp time.Time `json:"timestamp"`
}

// ChatSessionResponse is the wire form of a session.
type ChatSessionResponse struct {
	ID        string                `json:"id"`
	Title     string                `json:"title,omitempty"`
	Messages  []ChatMessageResponse `json:"messages"`
	CreatedAt time.Time             `json:"created_at"`
	UpdatedAt time.Time             `json:"updated_at"`
}

// SendChatMessageResponse is the assistant's answer plus any ticket the
// handoff created.
type SendChatMessageResponse struct {
	Reply            ChatMessageResponse `json:"reply"`
	SuggestedActions []string            `json:"suggested_actions,omitempty"`
	Ticket           *TicketResponse     `json:"ticket,omitempty"`
}

// FromChatMessage converts a transcript entry.
func FromChatMessage(m domain.ChatMessage) ChatMessageResponse {
	return ChatMessageResponse{
		ID:        m.ID,
		Content:   m.Content,
		Sender:    string(m.Sender),
		Timestamp: m.Timestamp,
	}
}

// FromChatSession converts a session.
func FromChatSession(s *domain.ChatSession) ChatSessionResponse {
	messages := make([]ChatMessageResponse, 0, len(s.Messages))
	for _, msg := range s.Messages {
		messages = append(messages, FromChatMessage(msg))
	}
	return ChatSessionResponse{
		ID:        s.ID,
		Title:     s.Title,
		Messages:  messages,
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
	}
}
