package features

import (
	"sort"

	"viewstudy/domain/core"
	"viewstudy/domain/stats"
	"viewstudy/domain/viewing"
)

// DailyCounts groups events by date. Only observed dates appear.
func DailyCounts(events []viewing.ViewingEvent) []viewing.DailyCount {
	type acc struct {
		count  int
		shows  map[string]struct{}
		isExam bool
	}
	byDate := make(map[core.Date]*acc)
	for _, ev := range events {
		a, ok := byDate[ev.Date]
		if !ok {
			a = &acc{shows: make(map[string]struct{}), isExam: ev.IsExam}
			byDate[ev.Date] = a
		}
		a.count++
		a.shows[ev.Info.Show] = struct{}{}
	}

	daily := make([]viewing.DailyCount, 0, len(byDate))
	for date, a := range byDate {
		daily = append(daily, viewing.DailyCount{
			Date:        date,
			Count:       a.count,
			UniqueShows: len(a.shows),
			IsExam:      a.isExam,
		})
	}
	sort.Slice(daily, func(i, j int) bool { return daily[i].Date.Before(daily[j].Date) })
	return daily
}

// WeeklyCounts groups events by ISO year and week
func WeeklyCounts(events []viewing.ViewingEvent) []viewing.WeeklyCount {
	type key struct{ year, week int }
	counts := make(map[key]int)
	for _, ev := range events {
		y, w := ev.Date.ISOWeek()
		counts[key{y, w}]++
	}
	weekly := make([]viewing.WeeklyCount, 0, len(counts))
	for k, n := range counts {
		weekly = append(weekly, viewing.WeeklyCount{ISOYear: k.year, ISOWeek: k.week, Views: n})
	}
	sort.Slice(weekly, func(i, j int) bool {
		if weekly[i].ISOYear != weekly[j].ISOYear {
			return weekly[i].ISOYear < weekly[j].ISOYear
		}
		return weekly[i].ISOWeek < weekly[j].ISOWeek
	})
	return weekly
}

// PeriodSummary totals views, distinct shows and distinct days per exam
// flag. Only flags that occur are reported, non-exam first.
func PeriodSummary(events []viewing.ViewingEvent) []viewing.PeriodStats {
	var out []viewing.PeriodStats
	for _, flag := range []bool{false, true} {
		shows := make(map[string]struct{})
		days := make(map[core.Date]struct{})
		total := 0
		for _, ev := range events {
			if ev.IsExam != flag {
				continue
			}
			total++
			shows[ev.Info.Show] = struct{}{}
			days[ev.Date] = struct{}{}
		}
		if total == 0 {
			continue
		}
		out = append(out, viewing.PeriodStats{
			IsExam:      flag,
			TotalViews:  total,
			UniqueShows: len(shows),
			UniqueDays:  len(days),
		})
	}
	return out
}

// DayOfWeekCounts counts events per exam flag and weekday (0 = Monday)
func DayOfWeekCounts(events []viewing.ViewingEvent) []viewing.DayOfWeekStat {
	var grid [2][7]int
	for _, ev := range events {
		grid[boolIndex(ev.IsExam)][ev.Date.DayIndex()]++
	}
	var out []viewing.DayOfWeekStat
	for flag := 0; flag < 2; flag++ {
		for day := 0; day < 7; day++ {
			if grid[flag][day] == 0 {
				continue
			}
			out = append(out, viewing.DayOfWeekStat{IsExam: flag == 1, Weekday: day, Views: grid[flag][day]})
		}
	}
	return out
}

// WeekendCounts counts events per exam flag and weekend flag
func WeekendCounts(events []viewing.ViewingEvent) []viewing.WeekendStat {
	var grid [2][2]int
	for _, ev := range events {
		grid[boolIndex(ev.IsExam)][boolIndex(ev.Date.IsWeekend())]++
	}
	var out []viewing.WeekendStat
	for flag := 0; flag < 2; flag++ {
		for weekend := 0; weekend < 2; weekend++ {
			if grid[flag][weekend] == 0 {
				continue
			}
			out = append(out, viewing.WeekendStat{IsExam: flag == 1, IsWeekend: weekend == 1, Views: grid[flag][weekend]})
		}
	}
	return out
}

// BingeStats computes, per exam flag, how many views belonged to a
// (date, show) pair with at least threshold episodes
func BingeStats(events []viewing.ViewingEvent, threshold int) []viewing.BingeStat {
	type key struct {
		date core.Date
		show string
	}
	sessions := make(map[key]int)
	for _, ev := range events {
		sessions[key{ev.Date, ev.Info.Show}]++
	}

	var binge, views [2]int
	for _, ev := range events {
		i := boolIndex(ev.IsExam)
		views[i]++
		if sessions[key{ev.Date, ev.Info.Show}] >= threshold {
			binge[i]++
		}
	}

	var out []viewing.BingeStat
	for i := 0; i < 2; i++ {
		if views[i] == 0 {
			continue
		}
		out = append(out, viewing.BingeStat{
			IsExam:     i == 1,
			BingeViews: binge[i],
			Views:      views[i],
			Ratio:      float64(binge[i]) / float64(views[i]),
		})
	}
	return out
}

// SplitByExam partitions daily counts into the exam and non-exam samples.
// Every date lands in exactly one group.
func SplitByExam(daily []viewing.DailyCount) (exam, nonExam stats.SampleGroup) {
	var e, n []int
	for _, dc := range daily {
		if dc.IsExam {
			e = append(e, dc.Count)
		} else {
			n = append(n, dc.Count)
		}
	}
	return stats.NewSampleGroup(stats.LabelExam, e), stats.NewSampleGroup(stats.LabelNonExam, n)
}

// SplitByWeekend partitions daily counts into weekend and weekday samples
func SplitByWeekend(daily []viewing.DailyCount) (weekend, weekday stats.SampleGroup) {
	var we, wd []int
	for _, dc := range daily {
		if dc.Date.IsWeekend() {
			we = append(we, dc.Count)
		} else {
			wd = append(wd, dc.Count)
		}
	}
	return stats.NewSampleGroup(stats.LabelWeekend, we), stats.NewSampleGroup(stats.LabelWeekday, wd)
}

// DayOfWeekTable lays the day-of-week counts out as a 2 x 7 table,
// rows non-exam then exam, columns Monday..Sunday
func DayOfWeekTable(dow []viewing.DayOfWeekStat) [][]float64 {
	table := [][]float64{make([]float64, 7), make([]float64, 7)}
	for _, s := range dow {
		table[boolIndex(s.IsExam)][s.Weekday] += float64(s.Views)
	}
	return table
}

// WeeklySeries returns sequential week positions and weekly views for
// trend analysis
func WeeklySeries(weekly []viewing.WeeklyCount) (x, y []float64) {
	x = make([]float64, len(weekly))
	y = make([]float64, len(weekly))
	for i, w := range weekly {
		x[i] = float64(i + 1)
		y[i] = float64(w.Views)
	}
	return x, y
}

// PeakWeeks returns the weeks with the most and the fewest views; the
// earliest week wins a tie
func PeakWeeks(weekly []viewing.WeeklyCount) (busiest, quietest viewing.WeeklyCount, ok bool) {
	if len(weekly) == 0 {
		return busiest, quietest, false
	}
	busiest, quietest = weekly[0], weekly[0]
	for _, w := range weekly[1:] {
		if w.Views > busiest.Views {
			busiest = w
		}
		if w.Views < quietest.Views {
			quietest = w
		}
	}
	return busiest, quietest, true
}

func boolIndex(b bool) int {
	if b {
		return 1
	}
	return 0
}

// WeeklyFromDaily sums daily counts into ISO weeks. It matches
// WeeklyCounts when the daily table was derived from events.
func WeeklyFromDaily(daily []viewing.DailyCount) []viewing.WeeklyCount {
	var weekly []viewing.WeeklyCount
	for _, dc := range daily {
		y, w := dc.Date.ISOWeek()
		if n := len(weekly); n > 0 && weekly[n-1].ISOYear == y && weekly[n-1].ISOWeek == w {
			weekly[n-1].Views += dc.Count
			continue
		}
		weekly = append(weekly, viewing.WeeklyCount{ISOYear: y, ISOWeek: w, Views: dc.Count})
	}
	return weekly
}

// DayOfWeekFromDaily is DayOfWeekCounts for a daily table
func DayOfWeekFromDaily(daily []viewing.DailyCount) []viewing.DayOfWeekStat {
	var grid [2][7]int
	for _, dc := range daily {
		grid[boolIndex(dc.IsExam)][dc.Date.DayIndex()] += dc.Count
	}
	var out []viewing.DayOfWeekStat
	for flag := 0; flag < 2; flag++ {
		for day := 0; day < 7; day++ {
			if grid[flag][day] > 0 {
				out = append(out, viewing.DayOfWeekStat{IsExam: flag == 1, Weekday: day, Views: grid[flag][day]})
			}
		}
	}
	return out
}
