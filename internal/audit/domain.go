package audit

import "time"

// DecisionEntry is one persisted authorization decision.
type DecisionEntry struct {
	ID         string
	UserID     int64
	Controller string
	Handler    string
	Allowed    bool
	Kind       string
	Reason     string
	DecidedAt  time.Time
}
