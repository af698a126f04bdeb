package excel

import (
	"strconv"

	"viewstudy/domain/viewing"
)

// Table is one derived dataset ready for export
type Table struct {
	Name    string
	Headers []string
	Rows    [][]interface{}
}

var weekdayNames = [7]string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

// DerivedTables flattens a derivation into exportable tables, in a fixed order
func DerivedTables(d *viewing.Derivation) []Table {
	daily := Table{Name: "daily_counts", Headers: []string{"Date", "daily_views", "unique_shows", "is_exam", "synthesized"}}
	for _, dc := range d.Daily {
		daily.Rows = append(daily.Rows, []interface{}{dc.Date.String(), dc.Count, dc.UniqueShows, dc.IsExam, dc.Synthesized})
	}

	weekly := Table{Name: "weekly_counts", Headers: []string{"iso_year", "iso_week", "views"}}
	for _, w := range d.Weekly {
		weekly.Rows = append(weekly.Rows, []interface{}{w.ISOYear, w.ISOWeek, w.Views})
	}

	periods := Table{Name: "period_stats", Headers: []string{"is_exam", "total_views", "unique_shows", "unique_days"}}
	for _, p := range d.Periods {
		periods.Rows = append(periods.Rows, []interface{}{p.IsExam, p.TotalViews, p.UniqueShows, p.UniqueDays})
	}

	dow := Table{Name: "day_of_week", Headers: []string{"is_exam", "weekday", "views"}}
	for _, s := range d.DayOfWeek {
		dow.Rows = append(dow.Rows, []interface{}{s.IsExam, weekdayNames[s.Weekday], s.Views})
	}

	weekend := Table{Name: "weekend", Headers: []string{"is_exam", "is_weekend", "views"}}
	for _, s := range d.Weekend {
		weekend.Rows = append(weekend.Rows, []interface{}{s.IsExam, s.IsWeekend, s.Views})
	}

	binge := Table{Name: "binge", Headers: []string{"is_exam", "binge_views", "views", "ratio"}}
	for _, b := range d.Binge {
		binge.Rows = append(binge.Rows, []interface{}{b.IsExam, b.BingeViews, b.Views, b.Ratio})
	}

	skipped := Table{Name: "skipped_rows", Headers: []string{"line", "reason"}}
	for _, e := range d.Skipped {
		skipped.Rows = append(skipped.Rows, []interface{}{e.Line, e.Reason})
	}

	return []Table{daily, weekly, periods, dow, weekend, binge, skipped}
}

// cellText renders a cell for CSV output
func cellText(v interface{}) string {
	switch x := v.(type) {
	case string:
		return x
	case int:
		return strconv.Itoa(x)
	case bool:
		return strconv.FormatBool(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	}
	return ""
}
