package run

import (
	"viewstudy/domain/core"
	"viewstudy/internal/errors"
)

// RunManifest records what a study run consumed, so a report can be traced
// back to its inputs
type RunManifest struct {
	RunID        core.RunID        `json:"run_id" yaml:"run_id"`
	InputPath    string            `json:"input_path" yaml:"input_path"`
	InputHash    core.InputHash    `json:"input_hash" yaml:"input_hash"`
	CalendarHash core.CalendarHash `json:"calendar_hash" yaml:"calendar_hash"`
	Settings     Settings          `json:"settings" yaml:"settings"`
	CodeVersion  string            `json:"code_version" yaml:"code_version"`
	Fingerprint  RunFingerprint    `json:"fingerprint" yaml:"fingerprint"`
	CreatedAt    core.Timestamp    `json:"created_at" yaml:"created_at"`
}

// NewRunManifest creates a run manifest for one study run
func NewRunManifest(
	runID core.RunID,
	inputPath string,
	inputHash core.InputHash,
	calendarHash core.CalendarHash,
	settings Settings,
	codeVersion string,
) *RunManifest {
	return &RunManifest{
		RunID:        runID,
		InputPath:    inputPath,
		InputHash:    inputHash,
		CalendarHash: calendarHash,
		Settings:     settings,
		CodeVersion:  codeVersion,
		Fingerprint:  NewRunFingerprint(inputHash, calendarHash, settings, codeVersion),
		CreatedAt:    core.Now(),
	}
}

// Validate checks if the manifest is complete
func (r *RunManifest) Validate() error {
	if _, err := core.ParseRunID(string(r.RunID)); err != nil {
		return errors.ValidationErrorf("run_manifest: %v", err)
	}
	if r.InputHash == "" {
		return errors.ValidationError("run_manifest: input_hash cannot be empty")
	}
	if r.CalendarHash == "" {
		return errors.ValidationError("run_manifest: calendar_hash cannot be empty")
	}
	if r.CodeVersion == "" {
		return errors.ValidationError("run_manifest: code_version cannot be empty")
	}
	return nil
}
