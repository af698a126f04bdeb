package stats

import (
	"fmt"
	"math"
)

// TestType defines the statistical test performed
type TestType string

const (
	TestMannWhitney    TestType = "mann_whitney"    // Mann-Whitney U test
	TestChiSquareRate  TestType = "chisquare_rate"  // Pearson chi-square, uniform daily rate
	TestChiSquareTable TestType = "chisquare_table" // Chi-square test of independence
	TestTTest          TestType = "ttest"           // Student's t-test, pooled variance
	TestPearson        TestType = "pearson"         // Pearson correlation
)

// DisplayName is the human-readable test name used in reports
func (t TestType) DisplayName() string {
	switch t {
	case TestMannWhitney:
		return "Mann-Whitney U test"
	case TestChiSquareRate:
		return "Chi-square rate test"
	case TestChiSquareTable:
		return "Chi-square test of independence"
	case TestTTest:
		return "Independent t-test"
	case TestPearson:
		return "Pearson correlation"
	}
	return string(t)
}

// Method records how a p-value was obtained
type Method string

const (
	MethodExact      Method = "exact"
	MethodAsymptotic Method = "asymptotic"
)

// Group labels used throughout the study
const (
	LabelExam    = "exam"
	LabelNonExam = "non_exam"
	LabelWeekend = "weekend"
	LabelWeekday = "weekday"
)

// SampleGroup is an ordered sequence of daily counts sharing one label.
// Days is the exposure used by rate tests; zero means len(Values).
type SampleGroup struct {
	Label  string    `json:"label" yaml:"label"`
	Values []float64 `json:"values" yaml:"-"`
	Days   int       `json:"days,omitempty" yaml:"days,omitempty"`
}

// NewSampleGroup builds a group from integer counts
func NewSampleGroup(label string, counts []int) SampleGroup {
	values := make([]float64, len(counts))
	for i, c := range counts {
		values[i] = float64(c)
	}
	return SampleGroup{Label: label, Values: values}
}

// N is the number of observations
func (g SampleGroup) N() int { return len(g.Values) }

// DaySpan is the exposure in days
func (g SampleGroup) DaySpan() int {
	if g.Days > 0 {
		return g.Days
	}
	return len(g.Values)
}

// Total sums the values
func (g SampleGroup) Total() float64 {
	total := 0.0
	for _, v := range g.Values {
		total += v
	}
	return total
}

// CheckValues reports the first non-finite or negative count
func (g SampleGroup) CheckValues() error {
	for i, v := range g.Values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%s group value %d is not numeric", g.Label, i)
		}
		if v < 0 {
			return fmt.Errorf("%s group value %d is negative (%g)", g.Label, i, v)
		}
	}
	return nil
}

// GroupSummary contains basic descriptive statistics for one group
type GroupSummary struct {
	Mean   float64 `json:"mean" yaml:"mean"`
	Median float64 `json:"median" yaml:"median"`
	StdDev float64 `json:"std_dev" yaml:"std_dev"`
	N      int     `json:"n" yaml:"n"`
}

// TestResult is the outcome of one hypothesis test
type TestResult struct {
	Type      TestType                `json:"type" yaml:"type"`
	Statistic float64                 `json:"statistic" yaml:"statistic"`
	PValue    float64                 `json:"p_value" yaml:"p_value"`
	Method    Method                  `json:"method,omitempty" yaml:"method,omitempty"`
	DF        float64                 `json:"df,omitempty" yaml:"df,omitempty"`
	Groups    map[string]GroupSummary `json:"group_summaries,omitempty" yaml:"group_summaries,omitempty"`
	// GroupOrder keeps report output stable; maps are unordered
	GroupOrder []string           `json:"-" yaml:"-"`
	Extra      map[string]float64 `json:"extra,omitempty" yaml:"extra,omitempty"`
}

// Significant reports p < alpha
func (r TestResult) Significant(alpha float64) bool {
	return r.PValue < alpha
}

// Outcome pairs a named test with either its result or the error that
// aborted it. Exactly one of Result and Err is set.
type Outcome struct {
	Name     string      `json:"name" yaml:"name"`
	Question string      `json:"question" yaml:"question"`
	Result   *TestResult `json:"result,omitempty" yaml:"result,omitempty"`
	Err      error       `json:"-" yaml:"-"`
}

// Failed reports whether the test was aborted
func (o Outcome) Failed() bool { return o.Err != nil }
