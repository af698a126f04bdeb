// Package report renders study results as plain text, Markdown, HTML and
// YAML.
package report

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"viewstudy/domain/stats"
	"viewstudy/internal/errors"
	"viewstudy/ports"
)

const title = "VIEWING HABITS: EXAM PERIODS VS NON-EXAM PERIODS"

// Conclusion phrases the outcome of one test at alpha
func Conclusion(o stats.Outcome, alpha float64) string {
	if o.Failed() {
		return "Not evaluated: the test was aborted."
	}
	r := o.Result
	if math.IsNaN(r.PValue) {
		return "Not evaluated: the p-value is undefined."
	}
	sig := r.Significant(alpha)
	op := ">="
	if sig {
		op = "<"
	}
	cmp := fmt.Sprintf("p = %.4f %s alpha = %.2f", r.PValue, op, alpha)

	switch r.Type {
	case stats.TestPearson:
		if sig {
			return fmt.Sprintf("Significant trend in weekly views (%s).", cmp)
		}
		return fmt.Sprintf("No significant trend in weekly views (%s).", cmp)
	case stats.TestChiSquareTable:
		if sig {
			return fmt.Sprintf("Viewing by day of week depends on the exam flag (%s).", cmp)
		}
		return fmt.Sprintf("No evidence that viewing by day of week depends on the exam flag (%s).", cmp)
	case stats.TestChiSquareRate:
		if sig {
			return fmt.Sprintf("The daily viewing rate differs between the groups (%s).", cmp)
		}
		return fmt.Sprintf("No evidence that the daily viewing rate differs between the groups (%s).", cmp)
	}
	if sig {
		return fmt.Sprintf("Significant difference between the groups (%s).", cmp)
	}
	return fmt.Sprintf("No significant difference between the groups (%s).", cmp)
}

// Mode describes how days without views were treated
func Mode(results *ports.StudyResults) string {
	d := results.Derivation
	if d == nil {
		return "as supplied in the daily-count table"
	}
	if d.Filled {
		return fmt.Sprintf("filled with zero counts (%d calendar days)", len(d.Daily))
	}
	return fmt.Sprintf("not counted: per-day figures cover %d observed of %d calendar days", len(d.Daily), d.CalendarDays())
}

// Text renders the plain-text report
func Text(results *ports.StudyResults) string {
	var b strings.Builder
	b.WriteString(title + "\n")
	b.WriteString(strings.Repeat("=", len(title)) + "\n\n")

	if m := results.Manifest; m != nil {
		b.WriteString(fmt.Sprintf("Run: %s\n", m.RunID))
		b.WriteString(fmt.Sprintf("Input: %s (sha256 %s)\n", m.InputPath, shortHash(m.InputHash.String())))
	}
	b.WriteString(fmt.Sprintf("Exam ranges: %d\n", len(results.Calendar.Ranges)))
	for _, r := range results.Calendar.Ranges {
		if r.Label != "" {
			b.WriteString(fmt.Sprintf("  - %s (%s, %d days)\n", r, r.Label, r.Days()))
		} else {
			b.WriteString(fmt.Sprintf("  - %s (%d days)\n", r, r.Days()))
		}
	}
	if d := results.Derivation; d != nil {
		if !d.First.IsZero() {
			b.WriteString(fmt.Sprintf("Period: %s to %s\n", d.First, d.Last))
		}
		b.WriteString(fmt.Sprintf("Viewings: %d (skipped rows: %d, outside window: %d)\n", len(d.Events), len(d.Skipped), d.OutOfRange))
	}
	b.WriteString(fmt.Sprintf("Days without views: %s\n", Mode(results)))
	b.WriteString(fmt.Sprintf("Significance level: %.2f\n\n", results.Alpha))

	for i, o := range results.Outcomes {
		heading := fmt.Sprintf("%d. %s", i+1, o.Name)
		b.WriteString(heading + "\n")
		b.WriteString(strings.Repeat("-", len(heading)) + "\n")
		if o.Question != "" {
			b.WriteString(fmt.Sprintf("Question: %s\n", o.Question))
		}
		if o.Failed() {
			b.WriteString(fmt.Sprintf("Status: FAILED (%s)\n", errors.GetCode(o.Err)))
			b.WriteString(fmt.Sprintf("Reason: %v\n", o.Err))
			b.WriteString(fmt.Sprintf("Conclusion: %s\n\n", Conclusion(o, results.Alpha)))
			continue
		}
		r := o.Result
		b.WriteString(fmt.Sprintf("Test: %s\n", r.Type.DisplayName()))
		b.WriteString(fmt.Sprintf("Statistic: %.4f\n", r.Statistic))
		b.WriteString(fmt.Sprintf("P-value: %.4f\n", r.PValue))
		if r.Method != "" {
			b.WriteString(fmt.Sprintf("Method: %s\n", r.Method))
		}
		if r.DF > 0 {
			b.WriteString(fmt.Sprintf("Degrees of freedom: %g\n", r.DF))
		}
		for _, label := range r.GroupOrder {
			s := r.Groups[label]
			b.WriteString(fmt.Sprintf("Group %s: mean %.4f, median %.4f, sd %.4f, n %d\n", label, s.Mean, s.Median, s.StdDev, s.N))
		}
		for _, key := range sortedKeys(r.Extra) {
			b.WriteString(fmt.Sprintf("%s: %.4f\n", key, r.Extra[key]))
		}
		b.WriteString(fmt.Sprintf("Conclusion: %s\n\n", Conclusion(o, results.Alpha)))
	}

	if d := results.Derivation; d != nil && len(d.Binge) > 0 {
		b.WriteString("Binge watching\n--------------\n")
		for _, s := range d.Binge {
			b.WriteString(fmt.Sprintf("%s: %d of %d views in binge sessions (ratio %.4f)\n", examLabel(s.IsExam), s.BingeViews, s.Views, s.Ratio))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func examLabel(isExam bool) string {
	if isExam {
		return stats.LabelExam
	}
	return stats.LabelNonExam
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func shortHash(h string) string {
	if len(h) > 12 {
		return h[:12]
	}
	return h
}
