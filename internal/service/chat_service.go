package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/logic-legends/triage-service/internal/classify"
	"github.com/logic-legends/triage-service/internal/domain"
	apperrors "github.com/logic-legends/triage-service/pkg/util/errorutil"
)

// ChatService runs assistant conversations. Sessions are append-only and
// deleted only by explicit user action. When a reply's classification
// demands a human, the transcript is summarized and handed to triage as a
// chat-sourced ticket.
type ChatService struct {
	model  *classify.ModelClassifier
	triage *TriageService
	logger *zap.Logger

	mu       sync.RWMutex
	sessions map[string]*domain.ChatSession
}

// NewChatService constructs the service.
func NewChatService(model *classify.ModelClassifier, triage *TriageService, logger *zap.Logger) *ChatService {
	return &ChatService{
		model:    model,
		triage:   triage,
		logger:   logger,
		sessions: make(map[string]*domain.ChatSession),
	}
}

// StartSession opens a new conversation.
func (s *ChatService) StartSession() *domain.ChatSession {
	now := time.Now()
	session := &domain.ChatSession{
		ID:        uuid.NewString(),
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.mu.Lock()
	s.sessions[session.ID] = session
	s.mu.Unlock()
	return session
}

// SendResult is the outcome of one user message.
type SendResult struct {
	Reply            domain.ChatMessage
	SuggestedActions []string
	Ticket           *domain.Ticket
}

// SendMessage appends the user message, generates the assistant reply
// (model-backed with keyword fallback), and creates a ticket when the
// classification needs a human.
func (s *ChatService) SendMessage(ctx context.Context, sessionID, content string, customer domain.CustomerInfo) (*SendResult, error) {
	s.mu.Lock()
	session, ok := s.sessions[sessionID]
	if !ok {
		s.mu.Unlock()
		return nil, apperrors.NewNotFound("chat session", map[string]any{"session_id": sessionID})
	}
	history := historyTurns(session)
	appendMessage(session, domain.SenderUser, content)
	s.mu.Unlock()

	reply := s.model.GenerateReply(ctx, content, history)

	s.mu.Lock()
	botMessage := appendMessage(session, domain.SenderBot, reply.Message)
	s.mu.Unlock()

	result := &SendResult{
		Reply:            botMessage,
		SuggestedActions: reply.SuggestedActions,
	}

	if reply.NeedsHuman || reply.Classification.NeedsHuman() {
		ticket, err := s.handOff(ctx, session, reply, customer)
		if err != nil {
			// The conversation continues even when ticket creation fails;
			// the caller is told no ticket was persisted.
			s.logger.Warn("chat handoff failed", zap.String("session_id", sessionID), zap.Error(err))
			return result, err
		}
		result.Ticket = ticket
	}
	return result, nil
}

// GetSession returns a copy of a session transcript.
func (s *ChatService) GetSession(id string) (*domain.ChatSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[id]
	if !ok {
		return nil, apperrors.NewNotFound("chat session", map[string]any{"session_id": id})
	}
	copied := *session
	copied.Messages = append([]domain.ChatMessage(nil), session.Messages...)
	return &copied, nil
}

// DeleteSession removes a session on explicit user request.
func (s *ChatService) DeleteSession(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[id]; !ok {
		return apperrors.NewNotFound("chat session", map[string]any{"session_id": id})
	}
	delete(s.sessions, id)
	return nil
}

func (s *ChatService) handOff(ctx context.Context, session *domain.ChatSession, reply classify.Reply, customer domain.CustomerInfo) (*domain.Ticket, error) {
	s.mu.RLock()
	turns := historyTurns(session)
	s.mu.RUnlock()

	summary := s.model.Summarize(ctx, turns)
	return s.triage.Intake(ctx, IntakeInput{
		Title:        summary.Title,
		Description:  summary.Description,
		CategoryHint: summary.Category,
		Source:       domain.SourceChat,
		Customer:     customer,
	})
}

func historyTurns(session *domain.ChatSession) []classify.Turn {
	turns := make([]classify.Turn, 0, len(session.Messages))
	for _, msg := range session.Messages {
		role := "user"
		if msg.Sender == domain.SenderBot {
			role = "assistant"
		}
		turns = append(turns, classify.Turn{Role: role, Content: msg.Content})
	}
	return turns
}

func appendMessage(session *domain.ChatSession, sender domain.ChatSender, content string) domain.ChatMessage {
	msg := domain.ChatMessage{
		ID:        uuid.NewString(),
		Content:   content,
		Sender:    sender,
		Timestamp: time.Now(),
	}
	session.Messages = append(session.Messages, msg)
	session.UpdatedAt = msg.Timestamp
	if session.Title == "" && sender == domain.SenderUser {
		session.Title = truncate(content, 60)
	}
	return msg
}

// truncate cuts on rune boundaries so multi-byte text is never split
// mid-character.
func truncate(text string, max int) string {
	runes := []rune(text)
	if len(runes) <= max {
		return text
	}
	return string(runes[:max-3]) + "..."
}
