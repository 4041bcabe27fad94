package service

import (
	"context"
	"strings"
	"testing"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/logic-legends/triage-service/internal/classify"
	"github.com/logic-legends/triage-service/internal/config"
	"github.com/logic-legends/triage-service/internal/domain"
	"github.com/logic-legends/triage-service/internal/store"
	apperrors "github.com/logic-legends/triage-service/pkg/util/errorutil"
)

func newChatFixture(t *testing.T) *ChatService {
	t.Helper()
	ticketStore := store.New(store.NewMemoryRepository(), nil, nil)
	model := classify.NewModelClassifier(config.ClassifierConfig{}, classify.NewKeywordClassifier(), zap.NewNop())
	triage := NewTriageService(ticketStore, model, zap.NewNop())
	return NewChatService(model, triage, zap.NewNop())
}

func TestChatCalmMessageStaysWithAssistant(t *testing.T) {
	chat := newChatFixture(t)
	session := chat.StartSession()

	result, err := chat.SendMessage(context.Background(), session.ID, "what are your opening hours?", domain.CustomerInfo{})
	if err != nil {
		t.Fatalf("SendMessage: %v", err)
	}
	if result.Ticket != nil {
		t.Fatalf("calm message created ticket %s", result.Ticket.ID)
	}
	if result.Reply.Sender != domain.SenderBot {
		t.Fatalf("reply sender = %q", result.Reply.Sender)
	}
	if result.Reply.Content == "" {
		t.Fatal("empty assistant reply")
	}
}

func TestChatUrgentMessageHandsOffToTicket(t *testing.T) {
	chat := newChatFixture(t)
	session := chat.StartSession()

	result, err := chat.SendMessage(context.Background(), session.ID,
		"urgent: my production system is down", domain.CustomerInfo{Name: "Dana", Email: "dana@example.com"})
	if err != nil {
		t.Fatalf("SendMessage: %v", err)
	}
	if result.Ticket == nil {
		t.Fatal("urgent message did not create a ticket")
	}
	if result.Ticket.Source != domain.SourceChat {
		t.Fatalf("ticket source = %q, want chat", result.Ticket.Source)
	}
	if result.Ticket.Customer.Email != "dana@example.com" {
		t.Fatalf("customer not carried to ticket: %+v", result.Ticket.Customer)
	}
}

func TestChatTranscriptIsAppendOnly(t *testing.T) {
	chat := newChatFixture(t)
	session := chat.StartSession()
	ctx := context.Background()

	if _, err := chat.SendMessage(ctx, session.ID, "hello there", domain.CustomerInfo{}); err != nil {
		t.Fatalf("SendMessage: %v", err)
	}
	if _, err := chat.SendMessage(ctx, session.ID, "one more question", domain.CustomerInfo{}); err != nil {
		t.Fatalf("SendMessage: %v", err)
	}

	got, err := chat.GetSession(session.ID)
	if err != nil {
		t.Fatalf("GetSession: %v", err)
	}
	// Two user messages, two assistant replies.
	if len(got.Messages) != 4 {
		t.Fatalf("transcript length = %d, want 4", len(got.Messages))
	}
	if got.Messages[0].Sender != domain.SenderUser || got.Messages[1].Sender != domain.SenderBot {
		t.Fatalf("transcript order wrong: %q then %q", got.Messages[0].Sender, got.Messages[1].Sender)
	}
	if got.Title != "hello there" {
		t.Fatalf("session title = %q, want first user message", got.Title)
	}
}

func TestChatSessionLifecycle(t *testing.T) {
	chat := newChatFixture(t)
	session := chat.StartSession()

	if _, err := chat.GetSession(session.ID); err != nil {
		t.Fatalf("GetSession: %v", err)
	}
	if err := chat.DeleteSession(session.ID); err != nil {
		t.Fatalf("DeleteSession: %v", err)
	}
	if _, err := chat.GetSession(session.ID); !apperrors.IsCode(err, "NOT_FOUND") {
		t.Fatalf("deleted session lookup: err = %v, want NOT_FOUND", err)
	}
	if err := chat.DeleteSession(session.ID); !apperrors.IsCode(err, "NOT_FOUND") {
		t.Fatalf("double delete: err = %v, want NOT_FOUND", err)
	}
}

func TestChatSessionTitleTruncatesOnRuneBoundaries(t *testing.T) {
	chat := newChatFixture(t)
	session := chat.StartSession()

	long := "héllo wörld " + strings.Repeat("ü", 80)
	if _, err := chat.SendMessage(context.Background(), session.ID, long, domain.CustomerInfo{}); err != nil {
		t.Fatalf("SendMessage: %v", err)
	}

	got, err := chat.GetSession(session.ID)
	if err != nil {
		t.Fatalf("GetSession: %v", err)
	}
	if !utf8.ValidString(got.Title) {
		t.Fatalf("title is not valid UTF-8: %q", got.Title)
	}
	if want := 60; utf8.RuneCountInString(got.Title) != want {
		t.Fatalf("title rune count = %d, want %d", utf8.RuneCountInString(got.Title), want)
	}
	if !strings.HasSuffix(got.Title, "...") {
		t.Fatalf("truncated title missing ellipsis: %q", got.Title)
	}
}

func TestChatUnknownSession(t *testing.T) {
	chat := newChatFixture(t)
	_, err := chat.SendMessage(context.Background(), "missing", "hi", domain.CustomerInfo{})
	if !apperrors.IsCode(err, "NOT_FOUND") {
		t.Fatalf("err = %v, want NOT_FOUND", err)
	}
}
