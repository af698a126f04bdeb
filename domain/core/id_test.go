package core

import (
	"testing"
)

// TestNewRunIDUniqueness tests that run IDs never collide across runs
func TestNewRunIDUniqueness(t *testing.T) {
	const numIDs = 2000

	ids := make(map[RunID]bool, numIDs)
	for i := 0; i < numIDs; i++ {
		id := NewRunID()
		if _, err := ParseRunID(id.String()); err != nil {
			t.Errorf("Generated invalid run ID at iteration %d: %v", i, err)
		}
		if ids[id] {
			t.Errorf("Generated duplicate run ID: %s", id)
		}
		ids[id] = true
	}
}

// TestParseRunID tests run ID parsing
func TestParseRunID(t *testing.T) {
	tests := []struct {
		input    string
		expected RunID
		hasError bool
	}{
		{"0190b2c4-5d6e-7f80-9a1b-2c3d4e5f6a7b", RunID("0190b2c4-5d6e-7f80-9a1b-2c3d4e5f6a7b"), false},
		{" 0190B2C4-5D6E-7F80-9A1B-2C3D4E5F6A7B ", RunID("0190b2c4-5d6e-7f80-9a1b-2c3d4e5f6a7b"), false},
		{"run-123", "", true},
		{"", "", true},
		{"   ", "", true},
	}

	for _, test := range tests {
		result, err := ParseRunID(test.input)
		if test.hasError && err == nil {
			t.Errorf("Expected error for input '%s', but got none", test.input)
		}
		if !test.hasError && err != nil {
			t.Errorf("Unexpected error for input '%s': %v", test.input, err)
		}
		if result != test.expected {
			t.Errorf("Expected %s, got %s", test.expected, result)
		}
	}
}

func TestComputeCalendarHash_OrderSensitive(t *testing.T) {
	a := ComputeCalendarHash([]string{"2024-03-25..2024-03-29", "2024-04-15..2024-04-18"})
	b := ComputeCalendarHash([]string{"2024-03-25..2024-03-29", "2024-04-15..2024-04-18"})
	c := ComputeCalendarHash([]string{"2024-04-15..2024-04-18", "2024-03-25..2024-03-29"})

	if !Hash(a).Equals(Hash(b)) {
		t.Errorf("identical calendars hashed differently: %s vs %s", a, b)
	}
	if Hash(a).Equals(Hash(c)) {
		t.Error("reordered calendar should change the hash")
	}
	if len(Hash(a).Short()) != 12 {
		t.Errorf("Short() should be 12 chars, got %q", Hash(a).Short())
	}
}
