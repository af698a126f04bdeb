// Package hypothesis implements the classical two-sample tests used by the
// study: Mann-Whitney U, chi-square rate and contingency tests, Student's
// t-test and Pearson trend correlation.
package hypothesis

import (
	"math"

	moremath "github.com/aclements/go-moremath/stats"
	"gonum.org/v1/gonum/stat/distuv"
)

// Distributions provides the tail probabilities the tests need
type Distributions struct{}

// NewDistributions creates a new distributions utility
func NewDistributions() *Distributions {
	return &Distributions{}
}

// TTestPValue computes the two-sided p-value of a t statistic
func (sd *Distributions) TTestPValue(tStatistic float64, degreesOfFreedom int) float64 {
	if degreesOfFreedom <= 0 {
		return 1.0
	}
	tDist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: float64(degreesOfFreedom)}
	return clip01(2 * tDist.Survival(math.Abs(tStatistic)))
}

// CorrelationPValue computes the two-sided p-value of a correlation coefficient
func (sd *Distributions) CorrelationPValue(correlation float64, sampleSize int) float64 {
	if sampleSize < 3 {
		return 1.0
	}
	if math.Abs(correlation) >= 1 {
		return 0
	}
	df := float64(sampleSize - 2)
	tStatistic := correlation * math.Sqrt(df/(1-correlation*correlation))
	return sd.TTestPValue(tStatistic, int(df))
}

// ChiSquarePValue computes the upper-tail p-value of a chi-square statistic
func (sd *Distributions) ChiSquarePValue(chiSquare float64, degreesOfFreedom int) float64 {
	if degreesOfFreedom <= 0 {
		return 1.0
	}
	chiDist := distuv.ChiSquared{K: float64(degreesOfFreedom)}
	return clip01(chiDist.Survival(chiSquare))
}

// NormalTwoSidedPValue computes 2 * P(Z > z) for a standard normal Z,
// clipped to [0, 1]
func (sd *Distributions) NormalTwoSidedPValue(z float64) float64 {
	return clip01(2 * distuv.UnitNormal.Survival(z))
}

// MannWhitneyExactPValue computes the exact two-sided p-value of U for
// samples without ties. By symmetry P(U >= max) equals P(U <= min).
func (sd *Distributions) MannWhitneyExactPValue(u1 float64, n1, n2 int) float64 {
	if n1 <= 0 || n2 <= 0 {
		return 1.0
	}
	u2 := float64(n1*n2) - u1
	dist := moremath.UDist{N1: n1, N2: n2}
	return clip01(2 * dist.CDF(math.Min(u1, u2)))
}

// EffectSizeCohenD computes Cohen's d for two groups with pooled variance
func (sd *Distributions) EffectSizeCohenD(mean1, mean2, std1, std2 float64, n1, n2 int) float64 {
	if n1 <= 0 || n2 <= 0 || n1+n2 <= 2 {
		return 0
	}
	pooledStd := math.Sqrt(((float64(n1-1) * std1 * std1) + (float64(n2-1) * std2 * std2)) / float64(n1+n2-2))
	if pooledStd == 0 {
		return 0
	}
	return (mean1 - mean2) / pooledStd
}

func clip01(p float64) float64 {
	if math.IsNaN(p) {
		return p
	}
	return math.Max(0, math.Min(1, p))
}
