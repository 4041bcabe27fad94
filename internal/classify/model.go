package classify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/logic-legends/triage-service/internal/config"
	"github.com/logic-legends/triage-service/internal/domain"
	apperrors "github.com/logic-legends/triage-service/pkg/util/errorutil"
)

const systemPrompt = `You are an intelligent customer support AI assistant for Logic Legends, a tech support platform. Your role is to:

1. Provide helpful, accurate, and empathetic customer support
2. Classify issues by priority (normal, priority) and category
3. Detect customer sentiment and respond appropriately
4. Determine when human intervention is needed
5. Suggest practical solutions and next steps

CRITICAL: You MUST respond with a valid JSON object in this exact format:
{
  "message": "Your response to the customer",
  "classification": {
    "priority": "normal|priority",
    "category": "general|technical|billing|account|shipping|product_quality",
    "sentiment": "positive|neutral|frustrated|angry",
    "needsHuman": true/false,
    "suggestedActions": ["action1", "action2"]
  }
}

Do not include any text before or after the JSON. Do not wrap it in code blocks or backticks.`

// Reply is the assistant's answer plus the inferred classification.
type Reply struct {
	Message          string
	Classification   domain.Classification
	NeedsHuman       bool
	SuggestedActions []string
}

// Summary condenses a conversation into ticket content.
type Summary struct {
	Title       string
	Description string
	Category    string
}

// Turn is one prior exchange in the conversation history.
type Turn struct {
	Role    string
	Content string
}

// chatCompleter is the slice of the OpenAI client the classifier needs.
type chatCompleter interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// ModelClassifier upgrades classification via an OpenAI-compatible chat
// API. Every call is deadline-bounded; on timeout, transport failure, or
// malformed output it falls back to the keyword classifier so callers are
// never blocked and never see a hard upstream failure.
type ModelClassifier struct {
	client   chatCompleter
	fallback *KeywordClassifier
	model    string
	timeout  time.Duration
	logger   *zap.Logger
}

// NewModelClassifier builds the upgrade hook from config. A nil client is
// allowed (no API key configured); every call then takes the fallback path.
func NewModelClassifier(cfg config.ClassifierConfig, fallback *KeywordClassifier, logger *zap.Logger) *ModelClassifier {
	var client chatCompleter
	if cfg.APIKey != "" {
		clientCfg := openai.DefaultConfig(cfg.APIKey)
		if cfg.BaseURL != "" {
			clientCfg.BaseURL = cfg.BaseURL
		}
		client = openai.NewClientWithConfig(clientCfg)
	}
	return &ModelClassifier{
		client:   client,
		fallback: fallback,
		model:    cfg.Model,
		timeout:  cfg.Timeout(),
		logger:   logger,
	}
}

// GenerateReply produces a conversational answer and classification for a
// user message, consulting the model when available.
func (m *ModelClassifier) GenerateReply(ctx context.Context, userMessage string, history []Turn) Reply {
	if m.client == nil {
		return m.fallbackReply(ctx, userMessage)
	}

	callCtx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	messages := make([]openai.ChatCompletionMessage, 0, len(history)+2)
	messages = append(messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleSystem, Content: systemPrompt})
	for _, turn := range history {
		messages = append(messages, openai.ChatCompletionMessage{Role: turn.Role, Content: turn.Content})
	}
	messages = append(messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: userMessage})

	resp, err := m.client.CreateChatCompletion(callCtx, openai.ChatCompletionRequest{
		Model:       m.model,
		Messages:    messages,
		Temperature: 0.7,
		MaxTokens:   500,
	})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			err = apperrors.NewUpstreamTimeout("chat completion", err)
		}
		m.logger.Warn("model classification failed, using keyword fallback", zap.Error(err))
		return m.fallbackReply(ctx, userMessage)
	}
	if len(resp.Choices) == 0 {
		m.logger.Warn("model returned no choices, using keyword fallback")
		return m.fallbackReply(ctx, userMessage)
	}

	reply, err := parseReply(resp.Choices[0].Message.Content)
	if err != nil {
		m.logger.Warn("unparseable model reply, using keyword fallback", zap.Error(err))
		fallback := m.fallbackReply(ctx, userMessage)
		// Keep the model's prose when only the envelope was malformed.
		if text := strings.TrimSpace(resp.Choices[0].Message.Content); text != "" {
			fallback.Message = text
		}
		return fallback
	}
	return reply
}

// Classify satisfies the Classifier interface so the model can replace
// the keyword classifier behind the same signature.
func (m *ModelClassifier) Classify(ctx context.Context, text, hintCategory string) domain.Classification {
	reply := m.GenerateReply(ctx, text, nil)
	if hint := strings.TrimSpace(hintCategory); hint != "" {
		reply.Classification.Category = hint
	}
	return reply.Classification
}

// Summarize condenses a chat transcript into ticket title/description.
func (m *ModelClassifier) Summarize(ctx context.Context, history []Turn) Summary {
	fallback := Summary{
		Title:       "Support Request from Chat",
		Description: "Customer support request initiated from chat conversation.",
		Category:    "general",
	}
	if m.client == nil || len(history) == 0 {
		if len(history) > 0 {
			fallback.Description = transcript(history)
		}
		return fallback
	}

	callCtx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	prompt := fmt.Sprintf(`Based on this customer support conversation, generate a concise ticket summary in JSON format. You MUST respond with valid JSON only, no additional text.

{
  "title": "Brief descriptive title for the issue",
  "description": "Detailed description of the customer's problem and context",
  "category": "general|technical|billing|account|shipping|product_quality"
}

Conversation history:
%s`, transcript(history))

	resp, err := m.client.CreateChatCompletion(callCtx, openai.ChatCompletionRequest{
		Model:       m.model,
		Messages:    []openai.ChatCompletionMessage{{Role: openai.ChatMessageRoleUser, Content: prompt}},
		Temperature: 0.3,
		MaxTokens:   300,
	})
	if err != nil || len(resp.Choices) == 0 {
		if errors.Is(err, context.DeadlineExceeded) {
			err = apperrors.NewUpstreamTimeout("chat completion", err)
		}
		m.logger.Warn("summary generation failed, using fallback", zap.Error(err))
		fallback.Description = transcript(history)
		return fallback
	}

	var parsed struct {
		Title       string `json:"title"`
		Description string `json:"description"`
		Category    string `json:"category"`
	}
	if err := json.Unmarshal([]byte(extractJSON(resp.Choices[0].Message.Content)), &parsed); err != nil {
		fallback.Description = transcript(history)
		return fallback
	}
	if parsed.Title != "" {
		fallback.Title = parsed.Title
	}
	if parsed.Description != "" {
		fallback.Description = parsed.Description
	}
	if parsed.Category != "" {
		fallback.Category = parsed.Category
	}
	return fallback
}

func (m *ModelClassifier) fallbackReply(ctx context.Context, userMessage string) Reply {
	classification := m.fallback.Classify(ctx, userMessage, "")

	message := "Thank you for contacting Logic Legends support. I'm here to help you with your inquiry."
	if classification.Sentiment == domain.SentimentFrustrated || classification.Sentiment == domain.SentimentAngry {
		message = "I understand your frustration, and I sincerely apologize for any inconvenience. Let me help resolve this issue as quickly as possible."
	} else if classification.Priority == domain.TicketPriorityUrgent {
		message = "I've identified this as a high-priority issue. I'm immediately connecting you with our specialized support team for urgent assistance."
	}
	message += " Could you please provide more details about your specific concern so I can assist you better?"

	return Reply{
		Message:          message,
		Classification:   classification,
		NeedsHuman:       classification.NeedsHuman(),
		SuggestedActions: suggestedActions(classification.Category, classification.Priority),
	}
}

func parseReply(raw string) (Reply, error) {
	var envelope struct {
		Message        string `json:"message"`
		Classification struct {
			Priority         string   `json:"priority"`
			Category         string   `json:"category"`
			Sentiment        string   `json:"sentiment"`
			NeedsHuman       bool     `json:"needsHuman"`
			SuggestedActions []string `json:"suggestedActions"`
		} `json:"classification"`
	}
	if err := json.Unmarshal([]byte(extractJSON(raw)), &envelope); err != nil {
		return Reply{}, err
	}
	if envelope.Message == "" {
		return Reply{}, errors.New("model reply missing message")
	}

	classification := domain.DefaultClassification()
	if envelope.Classification.Priority == string(domain.TicketPriorityUrgent) {
		classification.Priority = domain.TicketPriorityUrgent
	}
	switch domain.Sentiment(envelope.Classification.Sentiment) {
	case domain.SentimentPositive, domain.SentimentFrustrated, domain.SentimentAngry:
		classification.Sentiment = domain.Sentiment(envelope.Classification.Sentiment)
	}
	if envelope.Classification.Category != "" {
		classification.Category = envelope.Classification.Category
	}

	return Reply{
		Message:          envelope.Message,
		Classification:   classification,
		NeedsHuman:       envelope.Classification.NeedsHuman,
		SuggestedActions: envelope.Classification.SuggestedActions,
	}, nil
}

// extractJSON strips code fences and returns the first JSON object in the
// text. Models wrap output in backticks despite instructions.
func extractJSON(raw string) string {
	cleaned := strings.TrimSpace(raw)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	cleaned = strings.TrimSpace(cleaned)

	start := strings.Index(cleaned, "{")
	end := strings.LastIndex(cleaned, "}")
	if start >= 0 && end > start {
		return cleaned[start : end+1]
	}
	return cleaned
}

func suggestedActions(category string, priority domain.TicketPriority) []string {
	var actions []string
	if priority == domain.TicketPriorityUrgent {
		actions = append(actions, "Escalate to priority support team", "Schedule immediate callback")
	}
	switch category {
	case "billing":
		actions = append(actions, "Review billing details", "Contact billing specialist")
	case "account":
		actions = append(actions, "Send password reset link", "Verify account information")
	case "technical":
		actions = append(actions, "Gather system information", "Run diagnostic tests")
	case "shipping":
		actions = append(actions, "Track package status", "Contact shipping carrier")
	default:
		actions = append(actions, "Create support ticket", "Provide general assistance")
	}
	return actions
}

func transcript(history []Turn) string {
	lines := make([]string, 0, len(history))
	for _, turn := range history {
		lines = append(lines, turn.Role+": "+turn.Content)
	}
	return strings.Join(lines, "\n")
}
