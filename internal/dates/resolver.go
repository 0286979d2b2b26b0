package dates

import (
	"time"
)

// DisplayFormat is how resolved leave dates are shown to the user and
// round-tripped through the conversation profile.
const DisplayFormat = "1/2/2006"

const (
	MsgWeekendDate    = "The date you have mentioned falls on weekend."
	MsgPastDate       = "I'm sorry, please enter an upcoming date."
	MsgUnparsableDate = "I'm sorry, I could not interpret that as an appropriate date. Please enter an upcoming date."
)

// Validation is the outcome of ValidateSingleDate. On success Date holds
// the accepted calendar day and Display its user-facing form; on failure
// Message explains why the input was rejected.
type Validation struct {
	Success bool
	Date    time.Time
	Display string
	Message string
}

//go:generate mockgen -source=resolver.go -destination=mock/resolver_mock.go -package=mock
type Resolver interface {
	ValidateSingleDate(text string, ref time.Time) Validation
	ResolveRange(phrase string, ref time.Time) ([]time.Time, error)
}

type resolver struct {
	rec Recognizer
}

func NewResolver(rec Recognizer) Resolver {
	return &resolver{rec: rec}
}

// ValidateSingleDate accepts the first reading of text that is an upcoming
// weekday. The weekend check runs before the recency check and rejects the
// whole input as soon as a candidate lands on Saturday or Sunday; later
// readings are never considered. Ambiguous phrases therefore resolve by
// first match, not best match.
func (r *resolver) ValidateSingleDate(text string, ref time.Time) Validation {
	resolutions, err := r.rec.Recognize(text, ref)
	if err != nil {
		return Validation{Success: false, Message: MsgUnparsableDate}
	}

	for _, res := range resolutions {
		candidate := res.Start

		if wd := candidate.Weekday(); wd == time.Saturday || wd == time.Sunday {
			return Validation{Success: false, Message: MsgWeekendDate}
		}

		if candidate.After(ref) {
			return Validation{
				Success: true,
				Date:    midnight(candidate),
				Display: candidate.Format(DisplayFormat),
			}
		}
	}

	return Validation{Success: false, Message: MsgPastDate}
}

// ResolveRange expands every reading of phrase into calendar days at
// midnight granularity: ranges cover start inclusive to end exclusive,
// points contribute a single day. Only days strictly later than ref
// survive. Days are not deduplicated across readings; callers that need a
// set must dedupe themselves.
func (r *resolver) ResolveRange(phrase string, ref time.Time) ([]time.Time, error) {
	resolutions, err := r.rec.Recognize(phrase, ref)
	if err != nil {
		return nil, err
	}

	var days []time.Time
	for _, res := range resolutions {
		if res.IsRange() {
			end := midnight(res.End)
			for d := midnight(res.Start); d.Before(end); d = d.AddDate(0, 0, 1) {
				if d.After(ref) {
					days = append(days, d)
				}
			}
			continue
		}

		if d := midnight(res.Start); d.After(ref) {
			days = append(days, d)
		}
	}

	return days, nil
}

// RemoveWeekends drops Saturdays and Sundays from a list of calendar days.
// Used on the batched multi-day path only; the single-date path rejects
// weekends outright instead.
func RemoveWeekends(days []time.Time) []time.Time {
	filtered := make([]time.Time, 0, len(days))
	for _, d := range days {
		if wd := d.Weekday(); wd == time.Saturday || wd == time.Sunday {
			continue
		}
		filtered = append(filtered, d)
	}
	return filtered
}

// Dedupe collapses repeated calendar days, preserving first-seen order.
func Dedupe(days []time.Time) []time.Time {
	seen := make(map[time.Time]struct{}, len(days))
	out := make([]time.Time, 0, len(days))
	for _, d := range days {
		if _, ok := seen[d]; ok {
			continue
		}
		seen[d] = struct{}{}
		out = append(out, d)
	}
	return out
}

func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
