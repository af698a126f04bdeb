package excel

// RawRowData represents a row of raw sheet data as header -> cell text
type RawRowData map[string]string

// ExcelData represents the complete tabular dataset of one file
type ExcelData struct {
	Headers []string     // Column headers
	Rows    []RawRowData // Data rows
	Raw     []byte       // File bytes, kept for fingerprinting
}

// Column name candidates, matched case-insensitively in order
var (
	titleColumns  = []string{"title", "name", "show"}
	dateColumns   = []string{"date", "timestamp", "watched_at", "start time"}
	viewsColumns  = []string{"daily_views", "views", "count"}
	isExamColumns = []string{"is_exam", "is_exam_period", "exam"}
)
