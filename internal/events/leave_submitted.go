package events

import "time"

const LeaveSubmittedTopic = "leave.assistant.submitted.v1"

// LeaveSubmittedEvent is published after a leave request (single day or
// batch) is committed to the ledger.
type LeaveSubmittedEvent struct {
	EventType   string    `json:"event_type"`
	EmployeeID  string    `json:"employee_id"`
	RequestType string    `json:"request_type"`
	Dates       []string  `json:"dates"`
	Reason      string    `json:"reason"`
	OccurredAt  time.Time `json:"occurred_at"`
}
