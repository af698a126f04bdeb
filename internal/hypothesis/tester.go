package hypothesis

import (
	"viewstudy/internal"
)

// Tester runs hypothesis tests. It holds no state between calls.
type Tester struct {
	dist       *Distributions
	exactLimit int
	logger     *internal.Logger
}

// NewTester creates a tester. A negative exactLimit selects
// DefaultExactLimit; zero always uses the normal approximation.
func NewTester(exactLimit int, logger *internal.Logger) *Tester {
	if exactLimit < 0 {
		exactLimit = DefaultExactLimit
	}
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &Tester{dist: NewDistributions(), exactLimit: exactLimit, logger: logger}
}
