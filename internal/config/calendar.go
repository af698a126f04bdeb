package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"viewstudy/domain/core"
	"viewstudy/domain/viewing"
	"viewstudy/internal/errors"
)

// LoadCalendar reads the exam calendar from a YAML, JSON or TOML file.
// Any malformed entry is a CONFIG_INVALID error: a run must not start
// against a calendar it only partly understood.
func LoadCalendar(path string) (*viewing.Calendar, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.ConfigInvalid("calendar file path is required")
	}

	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, errors.ConfigInvalidf("failed to read calendar %s: %v", path, err)
	}

	if !v.IsSet("exam_periods") {
		return nil, errors.ConfigInvalidf("calendar %s has no exam_periods key", path)
	}
	ranges, err := decodeRanges(v.Get("exam_periods"))
	if err != nil {
		return nil, errors.Wrapf(err, "calendar %s", path)
	}

	window, err := decodeWindow(v.Get("window.from"), v.Get("window.to"))
	if err != nil {
		return nil, errors.Wrapf(err, "calendar %s", path)
	}

	return &viewing.Calendar{Ranges: ranges, Window: window}, nil
}

// ParseRangeFlag parses a START:END pair as given on the command line
func ParseRangeFlag(s string) (viewing.ExamRange, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 2 {
		return viewing.ExamRange{}, errors.ConfigInvalidf("exam range %q must look like 2024-03-25:2024-03-29", s)
	}
	return newRange(parts[0], parts[1], "")
}

// BuildCalendar validates ranges supplied directly (flags, tests)
func BuildCalendar(specs []string, window viewing.Window) (*viewing.Calendar, error) {
	ranges := make([]viewing.ExamRange, 0, len(specs))
	for _, s := range specs {
		r, err := ParseRangeFlag(s)
		if err != nil {
			return nil, err
		}
		ranges = append(ranges, r)
	}
	if err := checkWindow(window); err != nil {
		return nil, err
	}
	return &viewing.Calendar{Ranges: ranges, Window: window}, nil
}

func decodeRanges(raw interface{}) ([]viewing.ExamRange, error) {
	var entries []interface{}
	switch list := raw.(type) {
	case nil:
		return []viewing.ExamRange{}, nil
	case []interface{}:
		entries = list
	case []map[string]interface{}:
		for _, m := range list {
			entries = append(entries, m)
		}
	default:
		return nil, errors.ConfigInvalidf("exam_periods must be a list, got %T", raw)
	}

	ranges := make([]viewing.ExamRange, 0, len(entries))
	for i, entry := range entries {
		fields, ok := asStringMap(entry)
		if !ok {
			return nil, errors.ConfigInvalidf("exam_periods[%d] must be a mapping with start and end", i)
		}
		start, err := toDateString(fields["start"])
		if err != nil {
			return nil, errors.ConfigInvalidf("exam_periods[%d].start: %v", i, err)
		}
		end, err := toDateString(fields["end"])
		if err != nil {
			return nil, errors.ConfigInvalidf("exam_periods[%d].end: %v", i, err)
		}
		label, _ := fields["label"].(string)

		r, err := newRange(start, end, label)
		if err != nil {
			return nil, errors.Wrapf(err, "exam_periods[%d]", i)
		}
		ranges = append(ranges, r)
	}
	return ranges, nil
}

func decodeWindow(from, to interface{}) (viewing.Window, error) {
	var w viewing.Window
	if from != nil {
		s, err := toDateString(from)
		if err != nil {
			return w, errors.ConfigInvalidf("window.from: %v", err)
		}
		if w.From, err = core.ParseDate(s); err != nil {
			return w, errors.ConfigInvalidf("window.from: %v", err)
		}
	}
	if to != nil {
		s, err := toDateString(to)
		if err != nil {
			return w, errors.ConfigInvalidf("window.to: %v", err)
		}
		if w.To, err = core.ParseDate(s); err != nil {
			return w, errors.ConfigInvalidf("window.to: %v", err)
		}
	}
	return w, checkWindow(w)
}

func checkWindow(w viewing.Window) error {
	if !w.From.IsZero() && !w.To.IsZero() && w.To.Before(w.From) {
		return errors.ConfigInvalidf("window ends (%s) before it starts (%s)", w.To, w.From)
	}
	return nil
}

func newRange(startStr, endStr, label string) (viewing.ExamRange, error) {
	start, err := core.ParseDate(startStr)
	if err != nil {
		return viewing.ExamRange{}, errors.ConfigInvalidf("range start: %v", err)
	}
	end, err := core.ParseDate(endStr)
	if err != nil {
		return viewing.ExamRange{}, errors.ConfigInvalidf("range end: %v", err)
	}
	if end.Before(start) {
		return viewing.ExamRange{}, errors.ConfigInvalidf("range %s..%s ends before it starts", start, end)
	}
	return viewing.ExamRange{Start: start, End: end, Label: strings.TrimSpace(label)}, nil
}

func asStringMap(entry interface{}) (map[string]interface{}, bool) {
	switch m := entry.(type) {
	case map[string]interface{}:
		return m, true
	case map[interface{}]interface{}:
		out := make(map[string]interface{}, len(m))
		for k, v := range m {
			out[fmt.Sprint(k)] = v
		}
		return out, true
	}
	return nil, false
}

// toDateString accepts quoted strings and the native date values some
// decoders (TOML local dates, YAML timestamps) produce
func toDateString(v interface{}) (string, error) {
	switch d := v.(type) {
	case nil:
		return "", fmt.Errorf("missing date")
	case string:
		return d, nil
	case time.Time:
		return d.Format(core.DateLayout), nil
	case fmt.Stringer:
		return d.String(), nil
	}
	return "", fmt.Errorf("unsupported date value %v (%T)", v, v)
}

// ValidateCalendar checks a calendar built elsewhere (code, tests)
func ValidateCalendar(cal viewing.Calendar) error {
	for i, r := range cal.Ranges {
		if r.Start.IsZero() || r.End.IsZero() {
			return errors.ConfigInvalidf("exam range %d is missing a bound", i)
		}
		if r.End.Before(r.Start) {
			return errors.ConfigInvalidf("exam range %d (%s) ends before it starts", i, r)
		}
	}
	return checkWindow(cal.Window)
}
