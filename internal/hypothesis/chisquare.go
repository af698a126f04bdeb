package hypothesis

import (
	"math"

	domainstats "viewstudy/domain/stats"
	"viewstudy/internal/errors"
)

// ChiSquareRate tests whether both groups share one daily rate. Observed
// values are the group totals; expected values split the grand total in
// proportion to each group's day span. The statistic has one degree of
// freedom and does not depend on argument order.
func (t *Tester) ChiSquareRate(a, b domainstats.SampleGroup) (*domainstats.TestResult, error) {
	if err := validatePair(a, b); err != nil {
		return nil, err
	}
	groups, order, err := summarizeAll(a, b)
	if err != nil {
		return nil, err
	}

	grand := a.Total() + b.Total()
	if grand == 0 {
		return nil, errors.ValidationError("no views in either group, expected counts are zero")
	}
	span := float64(a.DaySpan() + b.DaySpan())

	extra := make(map[string]float64, 4)
	statistic := 0.0
	for _, g := range []domainstats.SampleGroup{a, b} {
		observed := g.Total()
		expected := grand * float64(g.DaySpan()) / span
		statistic += (observed - expected) * (observed - expected) / expected
		extra["observed_"+g.Label] = observed
		extra["expected_"+g.Label] = expected
	}

	return &domainstats.TestResult{
		Type:       domainstats.TestChiSquareRate,
		Statistic:  statistic,
		PValue:     t.dist.ChiSquarePValue(statistic, 1),
		Method:     domainstats.MethodAsymptotic,
		DF:         1,
		Groups:     groups,
		GroupOrder: order,
		Extra:      extra,
	}, nil
}

// ChiSquareContingency is Pearson's test of independence on an r x c table
// of counts. Rows or columns that are entirely zero are dropped first. A
// 2 x 2 table gets Yates' continuity correction.
func (t *Tester) ChiSquareContingency(table [][]float64) (*domainstats.TestResult, error) {
	if len(table) == 0 {
		return nil, errors.ValidationError("contingency table is empty")
	}
	cols := len(table[0])
	for i, row := range table {
		if len(row) != cols {
			return nil, errors.ValidationErrorf("contingency row %d has %d columns, want %d", i, len(row), cols)
		}
		for j, v := range row {
			if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
				return nil, errors.ValidationErrorf("contingency cell (%d,%d) is not a count: %g", i, j, v)
			}
		}
	}

	reduced := dropEmpty(table)
	r := len(reduced)
	if r < 2 || len(reduced[0]) < 2 {
		return nil, errors.ValidationErrorf("contingency table needs at least 2 non-empty rows and columns, got %dx%d", r, lenCols(reduced))
	}
	c := len(reduced[0])

	rowTotals := make([]float64, r)
	colTotals := make([]float64, c)
	grand := 0.0
	for i, row := range reduced {
		for j, v := range row {
			rowTotals[i] += v
			colTotals[j] += v
			grand += v
		}
	}

	df := (r - 1) * (c - 1)
	statistic := 0.0
	for i, row := range reduced {
		for j, observed := range row {
			expected := rowTotals[i] * colTotals[j] / grand
			diff := math.Abs(observed - expected)
			if df == 1 {
				diff = math.Max(diff-0.5, 0)
			}
			statistic += diff * diff / expected
		}
	}

	return &domainstats.TestResult{
		Type:      domainstats.TestChiSquareTable,
		Statistic: statistic,
		PValue:    t.dist.ChiSquarePValue(statistic, df),
		Method:    domainstats.MethodAsymptotic,
		DF:        float64(df),
		Extra:     map[string]float64{"rows": float64(r), "cols": float64(c), "total": grand},
	}, nil
}

func dropEmpty(table [][]float64) [][]float64 {
	cols := len(table[0])
	keepCol := make([]bool, cols)
	for _, row := range table {
		for j, v := range row {
			if v > 0 {
				keepCol[j] = true
			}
		}
	}

	var out [][]float64
	for _, row := range table {
		var kept []float64
		total := 0.0
		for j, v := range row {
			if keepCol[j] {
				kept = append(kept, v)
				total += v
			}
		}
		if total > 0 {
			out = append(out, kept)
		}
	}
	return out
}

func lenCols(table [][]float64) int {
	if len(table) == 0 {
		return 0
	}
	return len(table[0])
}
