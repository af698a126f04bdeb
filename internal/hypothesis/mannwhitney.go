package hypothesis

import (
	"math"
	"sort"

	domainstats "viewstudy/domain/stats"
)

// DefaultExactLimit is the largest smaller-sample size for which the exact
// U distribution is used
const DefaultExactLimit = 8

// rankResult holds mid-ranks and the tie group sizes of a pooled sample
type rankResult struct {
	ranks []float64
	ties  []int // sizes of tied groups larger than one
}

// midRanks ranks values 1..n, giving tied values the mean of their ranks
func midRanks(values []float64) rankResult {
	n := len(values)
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(i, j int) bool { return values[idx[i]] < values[idx[j]] })

	res := rankResult{ranks: make([]float64, n)}
	for i := 0; i < n; {
		j := i
		for j+1 < n && values[idx[j+1]] == values[idx[i]] {
			j++
		}
		rank := float64(i+j)/2 + 1
		for k := i; k <= j; k++ {
			res.ranks[idx[k]] = rank
		}
		if size := j - i + 1; size > 1 {
			res.ties = append(res.ties, size)
		}
		i = j + 1
	}
	return res
}

// MannWhitneyU compares two samples by rank. The reported statistic is U of
// the first sample. The exact null distribution is used when neither sample
// has ties and the smaller one has at most limit values; otherwise the
// normal approximation with tie and continuity corrections.
func (t *Tester) MannWhitneyU(a, b domainstats.SampleGroup) (*domainstats.TestResult, error) {
	if err := validatePair(a, b); err != nil {
		return nil, err
	}
	groups, order, err := summarizeAll(a, b)
	if err != nil {
		return nil, err
	}

	n1, n2 := a.N(), b.N()
	pooled := make([]float64, 0, n1+n2)
	pooled = append(pooled, a.Values...)
	pooled = append(pooled, b.Values...)
	ranked := midRanks(pooled)

	r1 := 0.0
	for _, r := range ranked.ranks[:n1] {
		r1 += r
	}
	u1 := r1 - float64(n1*(n1+1))/2
	u2 := float64(n1*n2) - u1

	result := &domainstats.TestResult{
		Type:       domainstats.TestMannWhitney,
		Statistic:  u1,
		Groups:     groups,
		GroupOrder: order,
		Extra:      map[string]float64{"u2": u2},
	}

	t.logger.Trace("mann-whitney n1=%d n2=%d tie groups=%d", n1, n2, len(ranked.ties))
	if len(ranked.ties) == 0 && min(n1, n2) <= t.exactLimit {
		result.Method = domainstats.MethodExact
		result.PValue = t.dist.MannWhitneyExactPValue(u1, n1, n2)
		return result, nil
	}

	result.Method = domainstats.MethodAsymptotic
	result.PValue, result.Extra["z"] = t.mannWhitneyAsymptotic(u1, u2, n1, n2, ranked.ties)
	return result, nil
}

// mannWhitneyAsymptotic returns the two-sided p-value and z score
func (t *Tester) mannWhitneyAsymptotic(u1, u2 float64, n1, n2 int, ties []int) (float64, float64) {
	n := float64(n1 + n2)
	mu := float64(n1*n2) / 2

	tieTerm := 0.0
	for _, size := range ties {
		s := float64(size)
		tieTerm += s*s*s - s
	}
	sigma := math.Sqrt(float64(n1*n2) / 12 * ((n + 1) - tieTerm/(n*(n-1))))
	if !(sigma > 0) {
		// every value identical
		return 1.0, 0
	}

	u := math.Max(u1, u2)
	z := (u - mu - 0.5) / sigma
	return t.dist.NormalTwoSidedPValue(z), z
}
