package ports

import (
	"viewstudy/domain/viewing"
)

// HistoryReader loads a viewing-history export
type HistoryReader interface {
	ReadHistory() (*viewing.HistorySource, error)
}

// DailyCountReader loads a previously derived daily-count table
type DailyCountReader interface {
	ReadDailyCounts() (*viewing.DailyCountSource, error)
}

// ReaderFactory opens a reader for a path; the file adapter picks CSV or
// XLSX by extension
type ReaderFactory func(path string) HistoryReader

// CountReaderFactory opens a daily-count reader for a path
type CountReaderFactory func(path string) DailyCountReader
