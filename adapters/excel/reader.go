package excel

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"viewstudy/domain/core"
	"viewstudy/domain/viewing"
	"viewstudy/internal"
	"viewstudy/internal/errors"
)

// DataReader handles reading Excel and CSV files
type DataReader struct {
	filePath string
	fileType string // "xlsx" or "csv"
	logger   *internal.Logger
}

// NewDataReader creates a new data reader that handles both Excel and CSV files
func NewDataReader(filePath string, logger *internal.Logger) *DataReader {
	ext := strings.ToLower(filepath.Ext(filePath))
	fileType := "csv"
	if ext == ".xlsx" || ext == ".xlsm" {
		fileType = "xlsx"
	}
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &DataReader{filePath: filePath, fileType: fileType, logger: logger}
}

// Path returns the file this reader was created for
func (r *DataReader) Path() string { return r.filePath }

// ReadData reads data from Excel or CSV files into structured format
func (r *DataReader) ReadData() (*ExcelData, error) {
	r.logger.Debug("[DataReader] Starting to read %s file: %s", r.fileType, r.filePath)

	raw, err := os.ReadFile(r.filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.IOError(fmt.Sprintf("%s file not found: %s", strings.ToUpper(r.fileType), r.filePath), err)
		}
		return nil, errors.IOError("failed to read "+r.filePath, err)
	}

	var rows [][]string
	readStart := time.Now()
	switch r.fileType {
	case "csv":
		rows, err = r.readCSVRows(raw)
	case "xlsx":
		rows, err = r.readExcelRows(raw)
	default:
		return nil, errors.InvalidInput(fmt.Sprintf("unsupported file type: %s", r.fileType))
	}
	if err != nil {
		return nil, err
	}
	r.logger.Debug("[DataReader] %s read in %.2fms (%d rows)", r.filePath, float64(time.Since(readStart).Nanoseconds())/1e6, len(rows))

	if len(rows) < 1 {
		return nil, errors.InvalidInput(fmt.Sprintf("%s file must have at least a header row", strings.ToUpper(r.fileType)))
	}

	data := r.processRows(rows)
	data.Raw = raw
	return data, nil
}

// readExcelRows reads the first sheet of a workbook
func (r *DataReader) readExcelRows(raw []byte) ([][]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(raw))
	if err != nil {
		return nil, errors.IOError("failed to open Excel file", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.InvalidInput("Excel file has no sheets")
	}
	rows, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, errors.IOError(fmt.Sprintf("failed to read sheet %s", sheets[0]), err)
	}
	if len(rows) > 0 {
		props, _ := f.GetWorkbookProps()
		date1904 := props.Date1904 != nil && *props.Date1904
		convertDateSerials(rows, date1904)
	}
	return rows, nil
}

// convertDateSerials rewrites numeric cells of date columns as ISO dates.
// Raw values keep the sheet's display format out of the way; Excel stores
// real dates as day serials.
func convertDateSerials(rows [][]string, date1904 bool) {
	var cols []int
	for j, header := range rows[0] {
		for _, want := range dateColumns {
			if strings.EqualFold(strings.TrimSpace(header), want) {
				cols = append(cols, j)
				break
			}
		}
	}
	for _, row := range rows[1:] {
		for _, j := range cols {
			if j >= len(row) {
				continue
			}
			serial, err := strconv.ParseFloat(strings.TrimSpace(row[j]), 64)
			if err != nil {
				continue
			}
			if t, err := excelize.ExcelDateToTime(serial, date1904); err == nil {
				row[j] = t.Format(core.DateLayout)
			}
		}
	}
}

// readCSVRows reads CSV data, tolerating ragged rows so that one bad line
// surfaces as a row-level parse error rather than failing the file
func (r *DataReader) readCSVRows(raw []byte) ([][]string, error) {
	reader := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(raw, []byte("\ufeff"))))
	reader.FieldsPerRecord = -1

	var rows [][]string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.IOError("failed to read CSV file", err)
		}
		rows = append(rows, record)
	}
	return rows, nil
}

// processRows converts raw string rows into ExcelData format
func (r *DataReader) processRows(rows [][]string) *ExcelData {
	headerRow := rows[0]
	headers := make([]string, len(headerRow))
	for i, header := range headerRow {
		headers[i] = strings.TrimSpace(header)
	}

	dataRows := make([]RawRowData, 0, len(rows)-1)
	for i := 1; i < len(rows); i++ {
		rowData := make(RawRowData, len(headers))
		for j, cell := range rows[i] {
			if j < len(headers) {
				rowData[headers[j]] = strings.TrimSpace(cell)
			}
		}
		dataRows = append(dataRows, rowData)
	}

	r.logger.Debug("[DataReader] %s file processed (%d columns, %d rows)",
		strings.ToUpper(r.fileType), len(headers), len(dataRows))

	return &ExcelData{Headers: headers, Rows: dataRows}
}

// ReadHistory reads a viewing-history export with Title and Date columns.
// Row lines count the header as line 1.
func (r *DataReader) ReadHistory() (*viewing.HistorySource, error) {
	data, err := r.ReadData()
	if err != nil {
		return nil, err
	}

	titleCol, err := FindColumn(data.Headers, titleColumns...)
	if err != nil {
		return nil, err
	}
	dateCol, err := FindColumn(data.Headers, dateColumns...)
	if err != nil {
		return nil, err
	}

	rows := make([]viewing.RawRow, 0, len(data.Rows))
	for i, row := range data.Rows {
		rows = append(rows, viewing.RawRow{
			Line:  i + 2,
			Title: row[titleCol],
			Date:  row[dateCol],
		})
	}

	r.logger.Info("Loaded %d history rows from %s", len(rows), r.filePath)
	return &viewing.HistorySource{
		Path: r.filePath,
		Rows: rows,
		Hash: core.NewInputHash(data.Raw),
	}, nil
}

// ReadDailyCounts reads a previously derived daily-count table. Cells are
// returned as text; numeric validation belongs to the caller.
func (r *DataReader) ReadDailyCounts() (*viewing.DailyCountSource, error) {
	data, err := r.ReadData()
	if err != nil {
		return nil, err
	}

	dateCol, err := FindColumn(data.Headers, dateColumns...)
	if err != nil {
		return nil, err
	}
	viewsCol, err := FindColumn(data.Headers, viewsColumns...)
	if err != nil {
		return nil, err
	}
	examCol, _ := FindColumn(data.Headers, isExamColumns...)

	rows := make([]viewing.DailyCountRow, 0, len(data.Rows))
	for i, row := range data.Rows {
		rec := viewing.DailyCountRow{Line: i + 2, Date: row[dateCol], Views: row[viewsCol]}
		if examCol != "" {
			rec.IsExam = row[examCol]
		}
		rows = append(rows, rec)
	}

	return &viewing.DailyCountSource{
		Path:       r.filePath,
		Rows:       rows,
		HasExamCol: examCol != "",
		Hash:       core.NewInputHash(data.Raw),
	}, nil
}

// FindColumn returns the first header matching any candidate, ignoring case
func FindColumn(headers []string, candidates ...string) (string, error) {
	for _, want := range candidates {
		for _, header := range headers {
			if strings.EqualFold(strings.TrimSpace(header), want) {
				return header, nil
			}
		}
	}
	return "", errors.InvalidInput(fmt.Sprintf("no column named any of %v (have %v)", candidates, headers))
}
