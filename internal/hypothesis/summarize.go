package hypothesis

import (
	"github.com/montanaflynn/stats"

	domainstats "viewstudy/domain/stats"
	"viewstudy/internal/errors"
)

// Summarize computes mean, median and sample standard deviation of a group
func Summarize(group domainstats.SampleGroup) (domainstats.GroupSummary, error) {
	if group.N() == 0 {
		return domainstats.GroupSummary{}, errors.ValidationErrorf("%s group is empty", group.Label)
	}
	data := stats.Float64Data(group.Values)

	mean, err := stats.Mean(data)
	if err != nil {
		return domainstats.GroupSummary{}, errors.WithCode(errors.CodeValidationError, err)
	}
	median, err := stats.Median(data)
	if err != nil {
		return domainstats.GroupSummary{}, errors.WithCode(errors.CodeValidationError, err)
	}
	var stdDev float64
	if group.N() > 1 {
		if stdDev, err = stats.StandardDeviationSample(data); err != nil {
			return domainstats.GroupSummary{}, errors.WithCode(errors.CodeValidationError, err)
		}
	}

	return domainstats.GroupSummary{Mean: mean, Median: median, StdDev: stdDev, N: group.N()}, nil
}

// summarizeAll summarizes groups in order, keyed by label
func summarizeAll(groups ...domainstats.SampleGroup) (map[string]domainstats.GroupSummary, []string, error) {
	summaries := make(map[string]domainstats.GroupSummary, len(groups))
	order := make([]string, 0, len(groups))
	for _, g := range groups {
		s, err := Summarize(g)
		if err != nil {
			return nil, nil, err
		}
		summaries[g.Label] = s
		order = append(order, g.Label)
	}
	return summaries, order, nil
}

// validatePair rejects empty groups and non-finite or negative counts
func validatePair(a, b domainstats.SampleGroup) error {
	for _, g := range []domainstats.SampleGroup{a, b} {
		if g.N() == 0 {
			return errors.ValidationErrorf("%s group is empty", g.Label)
		}
		if err := g.CheckValues(); err != nil {
			return errors.WithCode(errors.CodeValidationError, err)
		}
	}
	return nil
}
