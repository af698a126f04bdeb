package run

import (
	"fmt"

	"viewstudy/domain/core"
)

// Settings are the analysis parameters that influence results
type Settings struct {
	Alpha          float64  `json:"alpha" yaml:"alpha"`
	DateLayouts    []string `json:"date_layouts" yaml:"date_layouts"`
	BingeThreshold int      `json:"binge_threshold" yaml:"binge_threshold"`
	FillCalendar   bool     `json:"fill_calendar" yaml:"fill_calendar"`
	ExactLimit     int      `json:"exact_limit" yaml:"exact_limit"`
}

// RunFingerprint ensures deterministic replay: same inputs, same settings,
// same code produce the same fingerprint
type RunFingerprint struct {
	InputHash    core.InputHash    `json:"input_hash" yaml:"input_hash"`
	CalendarHash core.CalendarHash `json:"calendar_hash" yaml:"calendar_hash"`
	SettingsHash core.Hash         `json:"settings_hash" yaml:"settings_hash"`
	CodeVersion  string            `json:"code_version" yaml:"code_version"`
	Fingerprint  core.Hash         `json:"fingerprint" yaml:"fingerprint"` // Hash of all above
}

// NewRunFingerprint creates a fingerprint from determinism parameters
func NewRunFingerprint(inputHash core.InputHash, calendarHash core.CalendarHash,
	settings Settings, codeVersion string) RunFingerprint {

	settingsHash := settings.Hash()
	return RunFingerprint{
		InputHash:    inputHash,
		CalendarHash: calendarHash,
		SettingsHash: settingsHash,
		CodeVersion:  codeVersion,
		Fingerprint:  computeRunFingerprint(inputHash, calendarHash, settingsHash, codeVersion),
	}
}

// Hash fingerprints the settings
func (s Settings) Hash() core.Hash {
	data := fmt.Sprintf("alpha:%g|layouts:%q|binge:%d|fill:%t|exact:%d",
		s.Alpha, s.DateLayouts, s.BingeThreshold, s.FillCalendar, s.ExactLimit)
	return core.NewHash([]byte(data))
}

// computeRunFingerprint generates deterministic hash from all determinism parameters
func computeRunFingerprint(inputHash core.InputHash, calendarHash core.CalendarHash,
	settingsHash core.Hash, codeVersion string) core.Hash {

	data := fmt.Sprintf("input:%s|calendar:%s|settings:%s|code:%s",
		inputHash, calendarHash, settingsHash, codeVersion)
	return core.NewHash([]byte(data))
}
