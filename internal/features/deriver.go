// Package features turns raw viewing-history rows into dated events and the
// daily, weekly and per-period aggregates the hypothesis tests consume.
package features

import (
	"sort"
	"strings"
	"time"

	"viewstudy/domain/core"
	"viewstudy/domain/viewing"
	"viewstudy/internal"
	"viewstudy/internal/errors"
)

// DefaultLayouts are tried in order when parsing the Date column. 01-02-06 is
// how Excel displays a date cell with the short date format.
var DefaultLayouts = []string{"1/2/06", "1/2/2006", "01/02/2006", "01-02-06", core.DateLayout, time.RFC3339}

// DefaultBingeThreshold is the number of same-show episodes in one day that
// counts as a binge
const DefaultBingeThreshold = 3

// Options tune a Deriver
type Options struct {
	Layouts        []string
	Window         viewing.Window // overrides the calendar's window when set
	FillCalendar   bool
	BingeThreshold int
}

// Deriver assigns exam flags and aggregates viewing events
type Deriver struct {
	calendar viewing.Calendar
	opts     Options
	logger   *internal.Logger
}

// NewDeriver creates a deriver for one calendar
func NewDeriver(calendar viewing.Calendar, opts Options, logger *internal.Logger) *Deriver {
	if len(opts.Layouts) == 0 {
		opts.Layouts = DefaultLayouts
	}
	if opts.BingeThreshold <= 0 {
		opts.BingeThreshold = DefaultBingeThreshold
	}
	if !opts.Window.IsSet() {
		opts.Window = calendar.Window
	}
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &Deriver{calendar: calendar, opts: opts, logger: logger}
}

// ParseTimestamp parses s with the first matching layout and truncates it
// to a calendar date
func ParseTimestamp(s string, layouts []string) (core.Date, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return core.Date{}, errors.ParseError("empty date")
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return core.DateOf(t), nil
		}
	}
	return core.Date{}, errors.ParseErrorf("unrecognized date %q", s)
}

// ParseRow turns one raw row into an event, or a PARSE_ERROR
func (d *Deriver) ParseRow(row viewing.RawRow) (viewing.ViewingEvent, error) {
	title := strings.TrimSpace(row.Title)
	if title == "" {
		return viewing.ViewingEvent{}, errors.ParseErrorf("line %d: empty title", row.Line)
	}
	date, err := ParseTimestamp(row.Date, d.opts.Layouts)
	if err != nil {
		return viewing.ViewingEvent{}, errors.Wrapf(err, "line %d", row.Line)
	}
	return viewing.ViewingEvent{
		Title:  title,
		Date:   date,
		Info:   ParseTitle(title),
		IsExam: d.calendar.IsExam(date),
	}, nil
}

// Derive parses rows and computes every aggregate. Malformed rows are
// skipped and recorded; they never abort the derivation.
func (d *Deriver) Derive(rows []viewing.RawRow) *viewing.Derivation {
	start := time.Now()
	out := &viewing.Derivation{}

	events := make([]viewing.ViewingEvent, 0, len(rows))
	for _, row := range rows {
		ev, err := d.ParseRow(row)
		if err != nil {
			d.logger.Warn("skipping row: %v", err)
			out.Skipped = append(out.Skipped, viewing.RowError{Line: row.Line, Reason: err.Error()})
			continue
		}
		if !d.opts.Window.Contains(ev.Date) {
			out.OutOfRange++
			continue
		}
		events = append(events, ev)
	}
	sort.SliceStable(events, func(i, j int) bool { return events[i].Date.Before(events[j].Date) })
	out.Events = events

	out.Daily = DailyCounts(events)
	if len(out.Daily) > 0 {
		out.First = out.Daily[0].Date
		out.Last = out.Daily[len(out.Daily)-1].Date
	}
	if d.opts.FillCalendar {
		if !d.opts.Window.From.IsZero() {
			out.First = d.opts.Window.From
		}
		if !d.opts.Window.To.IsZero() {
			out.Last = d.opts.Window.To
		}
		if !out.First.IsZero() && !out.Last.IsZero() {
			out.Daily = d.fill(out.Daily, out.First, out.Last)
			out.Filled = true
		}
	}

	out.Weekly = WeeklyCounts(events)
	out.Periods = PeriodSummary(events)
	out.DayOfWeek = DayOfWeekCounts(events)
	out.Weekend = WeekendCounts(events)
	out.Binge = BingeStats(events, d.opts.BingeThreshold)

	d.logger.Info("Derived %d daily counts from %d events (%d skipped, %d outside window) in %v",
		len(out.Daily), len(events), len(out.Skipped), out.OutOfRange, time.Since(start))
	return out
}

// fill inserts zero-count days so every date in [from, to] appears once
func (d *Deriver) fill(daily []viewing.DailyCount, from, to core.Date) []viewing.DailyCount {
	byDate := make(map[core.Date]viewing.DailyCount, len(daily))
	for _, dc := range daily {
		byDate[dc.Date] = dc
	}
	filled := make([]viewing.DailyCount, 0, core.DaysInclusive(from, to))
	for day := from; !day.After(to); day = day.AddDays(1) {
		if dc, ok := byDate[day]; ok {
			filled = append(filled, dc)
			continue
		}
		filled = append(filled, viewing.DailyCount{
			Date:        day,
			IsExam:      d.calendar.IsExam(day),
			Synthesized: true,
		})
	}
	return filled
}
