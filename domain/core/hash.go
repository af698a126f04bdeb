package core

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Hash represents a cryptographic hash
type Hash string

// NewHash creates a new hash from data
func NewHash(data []byte) Hash {
	sum := sha256.Sum256(data)
	return Hash(hex.EncodeToString(sum[:]))
}

// String returns the string representation
func (h Hash) String() string {
	return string(h)
}

// IsEmpty checks if the hash is empty
func (h Hash) IsEmpty() bool {
	return h == ""
}

// Equals checks if two hashes are equal
func (h Hash) Equals(other Hash) bool {
	return h == other
}

// Short returns the first 12 hex characters, for log lines and report headers
func (h Hash) Short() string {
	if len(h) <= 12 {
		return string(h)
	}
	return string(h[:12])
}

// Domain-specific hash types
type (
	InputHash    Hash
	CalendarHash Hash
)

func NewInputHash(data []byte) InputHash { return InputHash(NewHash(data)) }

func (h InputHash) String() string    { return Hash(h).String() }
func (h CalendarHash) String() string { return Hash(h).String() }

// ComputeCalendarHash fingerprints an ordered list of range descriptors.
// Order is significant: the calendar is an ordered configuration.
func ComputeCalendarHash(parts []string) CalendarHash {
	var data strings.Builder
	for _, p := range parts {
		data.WriteString(p)
		data.WriteByte('\n')
	}
	return CalendarHash(NewHash([]byte(data.String())))
}
