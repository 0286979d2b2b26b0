package classifier

import (
	"context"
	"strings"
)

// Intent is the closed set of intents the assistant dispatches on.
type Intent string

const (
	IntentGreeting     Intent = "Greeting"
	IntentHelp         Intent = "Help"
	IntentHoliday      Intent = "Upcoming Holidays"
	IntentLeaveRequest Intent = "leave_requests"
	IntentNone         Intent = "None"
)

// Action is the leave-request action the user asked for.
type Action string

const (
	ActionApply Action = "apply"
	ActionShow  Action = "show"
)

// Entity type names on the wire.
const (
	entityActionTypes  = "action_types"
	entityRequestTypes = "request_types"
	entityDatetime     = "datetime"
	entityDateRange    = "daterange"
)

// Result is one classification of an utterance. Entities arrive as an open
// {type, value} list and are folded into fixed typed fields here; unknown
// entity types are dropped at this boundary.
type Result struct {
	TopIntent       Intent   `json:"topIntent"`
	Confidence      float64  `json:"confidence"`
	Action          Action   `json:"action,omitempty"`
	RequestTypes    []string `json:"requestTypes,omitempty"`
	DatePhrase      string   `json:"datePhrase,omitempty"`
	DateRangePhrase string   `json:"dateRangePhrase,omitempty"`
}

// HasAction reports whether any action-type entity was extracted.
func (r *Result) HasAction() bool {
	return r.Action != ""
}

// WantsRequestType reports whether the utterance named the given request
// type, matching loosely the way the original entity values contain the
// canonical name.
func (r *Result) WantsRequestType(name string) bool {
	for _, rt := range r.RequestTypes {
		if strings.Contains(strings.ToLower(rt), strings.ToLower(name)) {
			return true
		}
	}
	return false
}

//go:generate mockgen -source=classifier.go -destination=mock/classifier_mock.go -package=mock
type Classifier interface {
	Classify(ctx context.Context, utterance string) (*Result, error)
}

type wireEntity struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

func parseIntent(s string) Intent {
	switch Intent(s) {
	case IntentGreeting, IntentHelp, IntentHoliday, IntentLeaveRequest:
		return Intent(s)
	default:
		return IntentNone
	}
}

func foldEntities(r *Result, entities []wireEntity) {
	for _, e := range entities {
		switch e.Type {
		case entityActionTypes:
			v := strings.ToLower(e.Value)
			if strings.Contains(v, string(ActionApply)) {
				r.Action = ActionApply
			} else if strings.Contains(v, string(ActionShow)) {
				r.Action = ActionShow
			}
		case entityRequestTypes:
			r.RequestTypes = append(r.RequestTypes, e.Value)
		case entityDatetime:
			if r.DatePhrase == "" {
				r.DatePhrase = e.Value
			}
		case entityDateRange:
			if r.DateRangePhrase == "" {
				r.DateRangePhrase = e.Value
			}
		}
	}
}
