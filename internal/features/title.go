package features

import (
	"regexp"
	"strings"

	"viewstudy/domain/viewing"
)

// titlePattern matches "Show", "Show: Season N" and "Show: Season N: Episode"
var titlePattern = regexp.MustCompile(`^(.*?)(?:: Season (\d+))?(?:: (Episode \d+|.*?))?$`)

// ParseTitle splits an export title into show, season and episode.
// Titles that do not follow the pattern are returned whole as the show.
func ParseTitle(title string) viewing.ShowInfo {
	title = strings.TrimSpace(title)
	m := titlePattern.FindStringSubmatch(title)
	if m == nil {
		return viewing.ShowInfo{Show: title}
	}
	info := viewing.ShowInfo{
		Show:    strings.TrimSpace(m[1]),
		Season:  m[2],
		Episode: m[3],
	}
	if info.Show == "" {
		info.Show = title
	}
	return info
}
