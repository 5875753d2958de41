package models

import "time"

// Severity grades a user-facing log message.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeveritySuccess Severity = "success"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// LogMessage is a user-facing message pushed to the log pane.
type LogMessage struct {
	Sender   string    `json:"sender"`
	Severity Severity  `json:"severity"`
	Message  string    `json:"message"`
	Time     time.Time `json:"time"`
}
