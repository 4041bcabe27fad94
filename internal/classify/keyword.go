package classify

import (
	"context"
	"strings"

	"github.com/logic-legends/triage-service/internal/domain"
)

// Classifier maps free text to a classification tuple. Implementations
// must be total: absence of signal yields the neutral default. The
// context bounds implementations that call out; pure ones ignore it.
type Classifier interface {
	Classify(ctx context.Context, text, hintCategory string) domain.Classification
}

// KeywordClassifier is the local, deterministic classifier. It is a pure
// lexical scan with no state and no I/O, shared by every intake path so
// the keyword lists cannot drift between entry points.
type KeywordClassifier struct{}

// NewKeywordClassifier returns the shared keyword classifier.
func NewKeywordClassifier() *KeywordClassifier {
	return &KeywordClassifier{}
}

// Priority tiers are checked in order; first match wins.
var (
	urgentTerms   = []string{"urgent", "emergency", "critical", "down", "not working", "broken"}
	moderateTerms = []string{"issue", "problem", "error", "help", "billing", "payment", "invoice", "question"}

	angryTerms      = []string{"furious", "outraged", "disgusted"}
	frustratedTerms = []string{"frustrated", "angry", "terrible", "worst", "horrible"}
	positiveTerms   = []string{"thank", "great", "excellent"}
)

var categoryBuckets = []struct {
	name  string
	terms []string
}{
	{"billing", []string{"billing", "payment", "charge", "invoice"}},
	{"account", []string{"password", "login", "account"}},
	{"technical", []string{"bug", "error", "not working"}},
	{"shipping", []string{"shipping", "delivery", "package"}},
}

var wasteBuckets = []struct {
	category domain.WasteCategory
	terms    []string
}{
	{domain.WasteProductDefect, []string{"defect", "broken", "damaged", "quality"}},
	{domain.WasteShippingError, []string{"shipping", "delivery", "package"}},
	{domain.WasteUserConfusion, []string{"confused", "how to", "don't understand"}},
	{domain.WasteProcessIssue, []string{"process", "procedure", "workflow"}},
}

// Classify scans the text case-insensitively and returns the inferred
// tuple. A non-empty hintCategory from a structured form overrides the
// detected category. The context is unused; the scan does no I/O.
func (k *KeywordClassifier) Classify(ctx context.Context, text, hintCategory string) domain.Classification {
	lowered := strings.ToLower(text)
	result := domain.DefaultClassification()

	if containsAny(lowered, urgentTerms) {
		result.Priority = domain.TicketPriorityUrgent
	} else if containsAny(lowered, moderateTerms) {
		result.Priority = domain.TicketPriorityModerate
	}

	// Angry outranks frustrated outranks positive.
	switch {
	case containsAny(lowered, angryTerms):
		result.Sentiment = domain.SentimentAngry
	case containsAny(lowered, frustratedTerms):
		result.Sentiment = domain.SentimentFrustrated
	case containsAny(lowered, positiveTerms):
		result.Sentiment = domain.SentimentPositive
	}

	for _, bucket := range categoryBuckets {
		if containsAny(lowered, bucket.terms) {
			result.Category = bucket.name
			break
		}
	}
	if hint := strings.TrimSpace(hintCategory); hint != "" {
		result.Category = hint
	}

	for _, bucket := range wasteBuckets {
		if containsAny(lowered, bucket.terms) {
			result.WasteCategory = bucket.category
			break
		}
	}

	return result
}

func containsAny(text string, terms []string) bool {
	for _, term := range terms {
		if strings.Contains(text, term) {
			return true
		}
	}
	return false
}
