// Package viewing holds the records of the viewing-history study: raw rows,
// parsed events and the per-day and per-week aggregates derived from them.
package viewing

import (
	"viewstudy/domain/core"
)

// RawRow is one row of the exported history, before any parsing
type RawRow struct {
	Line  int    // source line; the header is line 1
	Title string `json:"title"`
	Date  string `json:"date"`
}

// ShowInfo is the show / season / episode split of a title
type ShowInfo struct {
	Show    string `json:"show" yaml:"show"`
	Season  string `json:"season,omitempty" yaml:"season,omitempty"`
	Episode string `json:"episode,omitempty" yaml:"episode,omitempty"`
}

// ViewingEvent is one accepted viewing, immutable after parsing
type ViewingEvent struct {
	Title  string
	Date   core.Date
	Info   ShowInfo
	IsExam bool
}

// DailyCount is the number of viewings on one calendar date
type DailyCount struct {
	Date        core.Date `json:"date" yaml:"date"`
	Count       int       `json:"count" yaml:"count"`
	UniqueShows int       `json:"unique_shows" yaml:"unique_shows"`
	IsExam      bool      `json:"is_exam" yaml:"is_exam"`
	// Synthesized marks a zero-count day added by calendar filling
	Synthesized bool `json:"synthesized,omitempty" yaml:"synthesized,omitempty"`
}

// WeeklyCount aggregates viewings by ISO week
type WeeklyCount struct {
	ISOYear int `json:"iso_year" yaml:"iso_year"`
	ISOWeek int `json:"iso_week" yaml:"iso_week"`
	Views   int `json:"views" yaml:"views"`
}

// PeriodStats summarizes one side of the exam flag
type PeriodStats struct {
	IsExam      bool `json:"is_exam" yaml:"is_exam"`
	TotalViews  int  `json:"total_views" yaml:"total_views"`
	UniqueShows int  `json:"unique_shows" yaml:"unique_shows"`
	UniqueDays  int  `json:"unique_days" yaml:"unique_days"`
}

// DayOfWeekStat counts viewings per weekday (0 = Monday) and exam flag
type DayOfWeekStat struct {
	IsExam  bool `json:"is_exam" yaml:"is_exam"`
	Weekday int  `json:"weekday" yaml:"weekday"`
	Views   int  `json:"views" yaml:"views"`
}

// WeekendStat counts viewings per weekend flag and exam flag
type WeekendStat struct {
	IsExam    bool `json:"is_exam" yaml:"is_exam"`
	IsWeekend bool `json:"is_weekend" yaml:"is_weekend"`
	Views     int  `json:"views" yaml:"views"`
}

// BingeStat is the share of viewings that were part of a binge session
type BingeStat struct {
	IsExam     bool    `json:"is_exam" yaml:"is_exam"`
	BingeViews int     `json:"binge_views" yaml:"binge_views"`
	Views      int     `json:"views" yaml:"views"`
	Ratio      float64 `json:"ratio" yaml:"ratio"`
}

// RowError records a skipped row
type RowError struct {
	Line   int    `json:"line" yaml:"line"`
	Reason string `json:"reason" yaml:"reason"`
}

// Derivation is everything the feature deriver produces in one pass
type Derivation struct {
	Events     []ViewingEvent
	Daily      []DailyCount
	Weekly     []WeeklyCount
	Periods    []PeriodStats
	DayOfWeek  []DayOfWeekStat
	Weekend    []WeekendStat
	Binge      []BingeStat
	Skipped    []RowError
	OutOfRange int
	// Filled is true when zero-count days were synthesized
	Filled bool
	// First and Last bound the observed (or configured) period
	First core.Date
	Last  core.Date
}

// CalendarDays is the number of days in the analysed period, which is the
// correct denominator for per-day rates when days were not filled.
func (d *Derivation) CalendarDays() int {
	if d.First.IsZero() {
		return 0
	}
	return core.DaysInclusive(d.First, d.Last)
}
