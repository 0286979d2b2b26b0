package conversation

import (
	"github.com/AkshiGarg/nagarro-leave-manager/internal/classifier"
)

// Detail names the slot the leave-application sub-dialog is waiting on.
type Detail string

const (
	DetailNone      Detail = "none"
	DetailDate      Detail = "date"
	DetailReason    Detail = "reason"
	DetailComment   Detail = "comment"
	DetailConfirm   Detail = "confirm"
	DetailSubmitted Detail = "submitted"
)

// UserProfile is the durable per-user state. ID is set once from the first
// raw reply after the employee-id prompt; the three draft fields fill in
// one per turn during slot-filling and clear together on submit or cancel.
type UserProfile struct {
	ID        string `json:"id,omitempty"`
	LeaveDate string `json:"leaveDate,omitempty"`
	Reason    string `json:"reason,omitempty"`
	Comment   string `json:"comment,omitempty"`
}

// ClearDraft drops the pending leave fields but keeps the identity.
func (p *UserProfile) ClearDraft() {
	p.LeaveDate = ""
	p.Reason = ""
	p.Comment = ""
}

// ConversationFlow is the durable per-conversation state.
// PromptedForEmployeeID only ever moves false to true. A Detail other
// than none implies PromptedForEmployeeID is true. PendingClassification
// holds at most one cached classifier result: set once while the user is
// unidentified, consumed exactly once on the next idle turn, then cleared.
type ConversationFlow struct {
	PromptedForEmployeeID bool               `json:"promptedForEmployeeId"`
	Detail                Detail             `json:"promptedForLeaveRequestDetails"`
	PendingClassification *classifier.Result `json:"pendingClassification,omitempty"`
}

func NewFlow() *ConversationFlow {
	return &ConversationFlow{Detail: DetailNone}
}

// TakePending consumes the cached classification, clearing it so it can
// never leak into a later turn.
func (f *ConversationFlow) TakePending() *classifier.Result {
	result := f.PendingClassification
	f.PendingClassification = nil
	return result
}
