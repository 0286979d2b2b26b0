package dates

import (
	"time"

	"github.com/ijt/go-anytime"
)

// Resolution is one reading of a free-text phrase produced by the
// recognizer. A point in time has End zero; a range covers [Start, End).
type Resolution struct {
	Start time.Time
	End   time.Time
}

func (r Resolution) IsRange() bool {
	return !r.End.IsZero()
}

//go:generate mockgen -source=recognizer.go -destination=mock/recognizer_mock.go -package=mock
type Recognizer interface {
	Recognize(text string, ref time.Time) ([]Resolution, error)
}

type anytimeRecognizer struct{}

// NewRecognizer returns the production recognizer backed by go-anytime.
func NewRecognizer() Recognizer {
	return anytimeRecognizer{}
}

func (anytimeRecognizer) Recognize(text string, ref time.Time) ([]Resolution, error) {
	r, err := anytime.ParseRange(text, ref)
	if err == nil {
		// A reading that spans no more than one day is a point; anything
		// longer is a calendar range.
		if r.Duration > 24*time.Hour {
			return []Resolution{{Start: r.Time, End: r.Time.Add(r.Duration)}}, nil
		}
		return []Resolution{{Start: r.Time}}, nil
	}

	t, pointErr := anytime.Parse(text, ref)
	if pointErr != nil {
		return nil, pointErr
	}
	return []Resolution{{Start: t}}, nil
}
