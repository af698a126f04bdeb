package hypothesis

import (
	"math"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat"

	domainstats "viewstudy/domain/stats"
	"viewstudy/internal/errors"
)

// PearsonTrend correlates x with y and tests r against zero with a t
// statistic on n-2 degrees of freedom
func (t *Tester) PearsonTrend(x, y []float64) (*domainstats.TestResult, error) {
	if len(x) != len(y) {
		return nil, errors.ValidationErrorf("series lengths differ: %d vs %d", len(x), len(y))
	}
	n := len(x)
	if n < 3 {
		return nil, errors.ValidationErrorf("correlation needs at least 3 points, got %d", n)
	}
	for i := range x {
		if math.IsNaN(x[i]) || math.IsInf(x[i], 0) || math.IsNaN(y[i]) || math.IsInf(y[i], 0) {
			return nil, errors.ValidationErrorf("point %d is not finite", i)
		}
	}
	if stat.Variance(x, nil) == 0 || stat.Variance(y, nil) == 0 {
		return nil, errors.ValidationError("a constant series has no correlation")
	}

	r := stat.Correlation(x, y, nil)
	mean, _ := stats.Mean(y)
	sd, _ := stats.StandardDeviationPopulation(y)
	maxV, _ := stats.Max(y)
	minV, _ := stats.Min(y)

	return &domainstats.TestResult{
		Type:      domainstats.TestPearson,
		Statistic: r,
		PValue:    t.dist.CorrelationPValue(r, n),
		Method:    domainstats.MethodAsymptotic,
		DF:        float64(n - 2),
		Extra: map[string]float64{
			"n":      float64(n),
			"mean_y": mean,
			"std_y":  sd,
			"max_y":  maxV,
			"min_y":  minV,
		},
	}, nil
}
