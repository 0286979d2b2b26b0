package conversation

import "fmt"

// TurnRequest is one inbound message event. Exactly one of Text or
// Selection carries the user's input; Selection arrives when the user
// picks a quick-reply option instead of typing.
type TurnRequest struct {
	ConversationID string     `json:"conversation_id" binding:"required"`
	UserID         string     `json:"user_id" binding:"required"`
	Text           string     `json:"text"`
	Selection      *Selection `json:"selection"`
}

// Selection is a postback payload from a quick-reply option.
type Selection struct {
	Date string `json:"date" binding:"required"`
	Name string `json:"name"`
}

type ReplyKind string

const (
	ReplyText        ReplyKind = "text"
	ReplyHolidayList ReplyKind = "holiday_list"
	ReplyRequestList ReplyKind = "request_list"
	ReplyChoices     ReplyKind = "choices"
)

// Choice is one selectable option in a choices reply.
type Choice struct {
	Title string `json:"title"`
	Date  string `json:"date,omitempty"`
	Name  string `json:"name,omitempty"`
}

// Reply is one outbound message. The channel adapter renders it; the
// engine only fills in data.
type Reply struct {
	Kind    ReplyKind `json:"kind"`
	Text    string    `json:"text,omitempty"`
	Items   []string  `json:"items,omitempty"`
	Choices []Choice  `json:"choices,omitempty"`
}

type TurnResponse struct {
	Replies []Reply `json:"replies"`
}

func textReply(format string, args ...any) []Reply {
	return []Reply{{Kind: ReplyText, Text: fmt.Sprintf(format, args...)}}
}
