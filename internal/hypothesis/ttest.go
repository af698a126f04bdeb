package hypothesis

import (
	"math"

	domainstats "viewstudy/domain/stats"
	"viewstudy/internal/errors"
)

// StudentT is the pooled-variance two-sample t-test with Cohen's d
func (t *Tester) StudentT(a, b domainstats.SampleGroup) (*domainstats.TestResult, error) {
	if err := validatePair(a, b); err != nil {
		return nil, err
	}
	n1, n2 := a.N(), b.N()
	if n1+n2 < 3 {
		return nil, errors.ValidationErrorf("t-test needs at least 3 observations, got %d", n1+n2)
	}
	groups, order, err := summarizeAll(a, b)
	if err != nil {
		return nil, err
	}
	sa, sb := groups[a.Label], groups[b.Label]

	df := n1 + n2 - 2
	pooledVar := (float64(n1-1)*sa.StdDev*sa.StdDev + float64(n2-1)*sb.StdDev*sb.StdDev) / float64(df)
	if pooledVar == 0 {
		return nil, errors.ValidationError("both groups have zero variance, t statistic is undefined")
	}

	se := math.Sqrt(pooledVar * (1/float64(n1) + 1/float64(n2)))
	statistic := (sa.Mean - sb.Mean) / se

	return &domainstats.TestResult{
		Type:       domainstats.TestTTest,
		Statistic:  statistic,
		PValue:     t.dist.TTestPValue(statistic, df),
		Method:     domainstats.MethodAsymptotic,
		DF:         float64(df),
		Groups:     groups,
		GroupOrder: order,
		Extra: map[string]float64{
			"cohens_d": t.dist.EffectSizeCohenD(sa.Mean, sb.Mean, sa.StdDev, sb.StdDev, n1, n2),
		},
	}, nil
}
