package features

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"viewstudy/domain/viewing"
)

func TestParseTitle(t *testing.T) {
	tests := []struct {
		title string
		want  viewing.ShowInfo
	}{
		{"Dark: Season 2: Lost and Found", viewing.ShowInfo{Show: "Dark", Season: "2", Episode: "Lost and Found"}},
		{"Dark: Season 2: Episode 4", viewing.ShowInfo{Show: "Dark", Season: "2", Episode: "Episode 4"}},
		{"The Crown: Season 1", viewing.ShowInfo{Show: "The Crown", Season: "1"}},
		{"Glass Onion", viewing.ShowInfo{Show: "Glass Onion"}},
		{"Arcane: Part 2", viewing.ShowInfo{Show: "Arcane", Episode: "Part 2"}},
		{"  Padded Title  ", viewing.ShowInfo{Show: "Padded Title"}},
	}
	for _, tt := range tests {
		t.Run(tt.title, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseTitle(tt.title))
		})
	}
}
