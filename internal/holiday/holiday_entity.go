package holiday

import (
	"fmt"
	"time"
)

const (
	TypePublic   = "Public"
	TypeFlexible = "flexible"

	DateFormat = "2006-01-02"
)

// Holiday is one row of the company calendar shipped with the service.
type Holiday struct {
	Day  string `json:"day"`
	Date string `json:"date"`
	Name string `json:"name"`
	Type string `json:"type"`
}

// On reports the calendar date at midnight UTC.
func (h Holiday) On() (time.Time, error) {
	return time.Parse(DateFormat, h.Date)
}

// Label renders the line shown to the user, e.g.
// "Friday, 2026-12-25 - Christmas".
func (h Holiday) Label() string {
	return fmt.Sprintf("%s, %s - %s", h.Day, h.Date, h.Name)
}
