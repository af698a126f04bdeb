package viewing

import "viewstudy/domain/core"

// HistorySource is a loaded history export with its fingerprint
type HistorySource struct {
	Path string
	Rows []RawRow
	Hash core.InputHash
}

// DailyCountRow is one unparsed row of a daily-count table
type DailyCountRow struct {
	Line   int
	Date   string
	Views  string
	IsExam string
}

// DailyCountSource is a loaded daily-count table
type DailyCountSource struct {
	Path       string
	Rows       []DailyCountRow
	HasExamCol bool
	Hash       core.InputHash
}
