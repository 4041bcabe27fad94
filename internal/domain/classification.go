package domain

// Classification is the inferred triage tuple attached to a ticket at
// creation or reclassification. It is a value object and never persisted
// on its own.
type Classification struct {
	Priority      TicketPriority
	Sentiment     Sentiment
	Category      string
	WasteCategory WasteCategory
}

// NeedsHuman reports whether the classification demands handing the
// conversation to a human handler.
func (c Classification) NeedsHuman() bool {
	return c.Priority == TicketPriorityUrgent || c.Sentiment == SentimentAngry
}

// DefaultClassification is returned when no keyword matches.
func DefaultClassification() Classification {
	return Classification{
		Priority:      TicketPriorityNormal,
		Sentiment:     SentimentNeutral,
		Category:      "general",
		WasteCategory: WasteNone,
	}
}
