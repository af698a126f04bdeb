package ports

import (
	"context"

	"viewstudy/domain/run"
	"viewstudy/domain/stats"
	"viewstudy/domain/viewing"
)

// StudyResults is everything one run produces
type StudyResults struct {
	Manifest   *run.RunManifest
	Calendar   viewing.Calendar
	Derivation *viewing.Derivation // nil when tests ran on a daily-count table
	Outcomes   []stats.Outcome
	Alpha      float64
}

// ArtifactWriter persists run outputs; each writer returns the files it created
type ArtifactWriter interface {
	Name() string
	Write(ctx context.Context, dir string, results *StudyResults) ([]string, error)
}
