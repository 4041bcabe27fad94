package domain

import "time"

// AlertType enumerates proactive alert categories.
type AlertType string

const (
	AlertPerformance  AlertType = "performance"
	AlertQuality      AlertType = "quality"
	AlertUserBehavior AlertType = "user_behavior"
	AlertSystem       AlertType = "system"
)

// AlertSeverity grades a proactive alert.
type AlertSeverity string

const (
	SeverityCritical AlertSeverity = "critical"
	SeverityWarning  AlertSeverity = "warning"
	SeverityInfo     AlertSeverity = "info"
)

// ProactiveAlert is a system-detected anomaly created by external
// monitoring. The core consumes alerts read-only.
type ProactiveAlert struct {
	ID               string
	Type             AlertType
	Title            string
	Description      string
	Severity         AlertSeverity
	AffectedUsers    int
	Action           string
	PreventedTickets int
	CreatedAt        time.Time
	ResolvedAt       *time.Time
}
