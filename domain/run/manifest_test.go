package run

import (
	"testing"

	"viewstudy/domain/core"
	"viewstudy/internal/errors"
)

func testSettings() Settings {
	return Settings{
		Alpha:          0.05,
		DateLayouts:    []string{"1/2/06"},
		BingeThreshold: 3,
		ExactLimit:     8,
	}
}

func TestRunFingerprint_Deterministic(t *testing.T) {
	// Same inputs produce identical fingerprints
	inputHash := core.InputHash("test-input")
	calendarHash := core.CalendarHash("test-calendar")
	codeVersion := "1.0.0"

	fp1 := NewRunFingerprint(inputHash, calendarHash, testSettings(), codeVersion)
	fp2 := NewRunFingerprint(inputHash, calendarHash, testSettings(), codeVersion)

	if fp1.Fingerprint != fp2.Fingerprint {
		t.Errorf("Fingerprints not identical: %s vs %s", fp1.Fingerprint, fp2.Fingerprint)
	}
	if fp1.InputHash != inputHash {
		t.Errorf("InputHash mismatch: %s vs %s", fp1.InputHash, inputHash)
	}
	if fp1.CalendarHash != calendarHash {
		t.Errorf("CalendarHash mismatch: %s vs %s", fp1.CalendarHash, calendarHash)
	}
	if fp1.CodeVersion != codeVersion {
		t.Errorf("CodeVersion mismatch: %s vs %s", fp1.CodeVersion, codeVersion)
	}
}

func TestRunFingerprint_Unique(t *testing.T) {
	base := NewRunFingerprint("test-input", "test-calendar", testSettings(), "1.0.0")

	filled := testSettings()
	filled.FillCalendar = true
	alpha := testSettings()
	alpha.Alpha = 0.01

	testCases := []struct {
		name string
		fp   RunFingerprint
	}{
		{"different input", NewRunFingerprint("other-input", "test-calendar", testSettings(), "1.0.0")},
		{"different calendar", NewRunFingerprint("test-input", "other-calendar", testSettings(), "1.0.0")},
		{"fill calendar", NewRunFingerprint("test-input", "test-calendar", filled, "1.0.0")},
		{"different alpha", NewRunFingerprint("test-input", "test-calendar", alpha, "1.0.0")},
		{"different code", NewRunFingerprint("test-input", "test-calendar", testSettings(), "1.0.1")},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if tc.fp.Fingerprint == base.Fingerprint {
				t.Errorf("Fingerprint should be different for %s", tc.name)
			}
		})
	}
}

func TestRunManifest_Complete(t *testing.T) {
	runID := core.NewRunID()
	manifest := NewRunManifest(runID, "history.csv", "in", "cal", testSettings(), "1.0.0")

	if err := manifest.Validate(); err != nil {
		t.Fatalf("complete manifest failed validation: %v", err)
	}
	if manifest.RunID != runID {
		t.Errorf("RunID mismatch: %s vs %s", manifest.RunID, runID)
	}
	if manifest.CreatedAt.IsZero() {
		t.Error("CreatedAt should be set")
	}
	if manifest.Fingerprint.Fingerprint.IsEmpty() {
		t.Error("Fingerprint should be set")
	}
}

func TestRunManifest_ValidateMissingFields(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(m *RunManifest)
	}{
		{"run id", func(m *RunManifest) { m.RunID = "" }},
		{"malformed run id", func(m *RunManifest) { m.RunID = "run-42" }},
		{"input hash", func(m *RunManifest) { m.InputHash = "" }},
		{"calendar hash", func(m *RunManifest) { m.CalendarHash = "" }},
		{"code version", func(m *RunManifest) { m.CodeVersion = "" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			m := NewRunManifest(core.NewRunID(), "h.csv", "in", "cal", testSettings(), "1.0.0")
			tc.mutate(m)
			err := m.Validate()
			if !errors.IsValidationError(err) {
				t.Errorf("expected validation error, got %v", err)
			}
		})
	}
}
