package report

import (
	"gopkg.in/yaml.v3"

	"viewstudy/domain/run"
	"viewstudy/domain/stats"
	"viewstudy/internal/errors"
	"viewstudy/ports"
)

// ResultsDump is the machine-readable form of a run
type ResultsDump struct {
	Manifest   *run.RunManifest `yaml:"manifest,omitempty"`
	Alpha      float64          `yaml:"alpha"`
	ZeroDays   string           `yaml:"zero_view_days"`
	Derivation *DerivationDump  `yaml:"derivation,omitempty"`
	Tests      []TestDump       `yaml:"tests"`
}

// DerivationDump summarizes the feature derivation
type DerivationDump struct {
	Events     int    `yaml:"events"`
	Days       int    `yaml:"days"`
	Skipped    int    `yaml:"skipped_rows"`
	OutOfRange int    `yaml:"outside_window"`
	Filled     bool   `yaml:"filled"`
	First      string `yaml:"first,omitempty"`
	Last       string `yaml:"last,omitempty"`
}

// TestDump is one test outcome
type TestDump struct {
	Name        string            `yaml:"name"`
	Question    string            `yaml:"question,omitempty"`
	Status      string            `yaml:"status"`
	Significant bool              `yaml:"significant"`
	ErrorCode   string            `yaml:"error_code,omitempty"`
	Error       string            `yaml:"error,omitempty"`
	Result      *stats.TestResult `yaml:"result,omitempty"`
}

// NewResultsDump builds the dump for a run
func NewResultsDump(results *ports.StudyResults) *ResultsDump {
	dump := &ResultsDump{
		Manifest: results.Manifest,
		Alpha:    results.Alpha,
		ZeroDays: Mode(results),
	}
	if d := results.Derivation; d != nil {
		dump.Derivation = &DerivationDump{
			Events:     len(d.Events),
			Days:       len(d.Daily),
			Skipped:    len(d.Skipped),
			OutOfRange: d.OutOfRange,
			Filled:     d.Filled,
		}
		if !d.First.IsZero() {
			dump.Derivation.First = d.First.String()
			dump.Derivation.Last = d.Last.String()
		}
	}
	for _, o := range results.Outcomes {
		td := TestDump{Name: o.Name, Question: o.Question, Status: "ok", Result: o.Result}
		if o.Failed() {
			td.Status = "failed"
			td.ErrorCode = errors.GetCode(o.Err)
			td.Error = o.Err.Error()
		} else {
			td.Significant = o.Result.Significant(results.Alpha)
		}
		dump.Tests = append(dump.Tests, td)
	}
	return dump
}

// YAML marshals the results dump
func YAML(results *ports.StudyResults) ([]byte, error) {
	out, err := yaml.Marshal(NewResultsDump(results))
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal results")
	}
	return out, nil
}
