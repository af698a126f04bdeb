package viewing

import (
	"fmt"

	"viewstudy/domain/core"
)

// ExamRange is an inclusive [Start, End] interval of exam days
type ExamRange struct {
	Start core.Date `json:"start" yaml:"start"`
	End   core.Date `json:"end" yaml:"end"`
	Label string    `json:"label,omitempty" yaml:"label,omitempty"`
}

// Contains reports whether d lies in the range, both bounds included
func (r ExamRange) Contains(d core.Date) bool {
	return !d.Before(r.Start) && !d.After(r.End)
}

// Days is the inclusive length of the range
func (r ExamRange) Days() int {
	return core.DaysInclusive(r.Start, r.End)
}

func (r ExamRange) String() string {
	return fmt.Sprintf("%s..%s", r.Start, r.End)
}

// Window optionally restricts the analysed period
type Window struct {
	From core.Date `json:"from,omitempty" yaml:"from,omitempty"`
	To   core.Date `json:"to,omitempty" yaml:"to,omitempty"`
}

// IsSet reports whether either bound was configured
func (w Window) IsSet() bool {
	return !w.From.IsZero() || !w.To.IsZero()
}

// Contains reports whether d lies inside the window; an unset bound is open
func (w Window) Contains(d core.Date) bool {
	if !w.From.IsZero() && d.Before(w.From) {
		return false
	}
	if !w.To.IsZero() && d.After(w.To) {
		return false
	}
	return true
}

// Calendar is the ordered, externally supplied list of exam ranges
type Calendar struct {
	Ranges []ExamRange `json:"exam_periods" yaml:"exam_periods"`
	Window Window      `json:"window,omitempty" yaml:"window,omitempty"`
}

// IsExam reports membership in any range
func (c Calendar) IsExam(d core.Date) bool {
	for _, r := range c.Ranges {
		if r.Contains(d) {
			return true
		}
	}
	return false
}

// Hash fingerprints the calendar for the run manifest
func (c Calendar) Hash() core.CalendarHash {
	parts := make([]string, 0, len(c.Ranges)+1)
	for _, r := range c.Ranges {
		parts = append(parts, r.String())
	}
	parts = append(parts, fmt.Sprintf("window:%s..%s", c.Window.From, c.Window.To))
	return core.ComputeCalendarHash(parts)
}
