package excel

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"viewstudy/internal"
	"viewstudy/internal/errors"
	"viewstudy/ports"
)

// WorkbookName is the file name of the exported workbook
const WorkbookName = "viewing_study.xlsx"

// CSVWriter exports each derived table as its own CSV file
type CSVWriter struct {
	logger *internal.Logger
}

// NewCSVWriter creates a CSV exporter
func NewCSVWriter(logger *internal.Logger) *CSVWriter {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &CSVWriter{logger: logger}
}

func (w *CSVWriter) Name() string { return "csv" }

// Write writes <table>.csv files into dir
func (w *CSVWriter) Write(ctx context.Context, dir string, results *ports.StudyResults) ([]string, error) {
	if results.Derivation == nil {
		return nil, nil
	}
	var files []string
	for _, table := range DerivedTables(results.Derivation) {
		if err := ctx.Err(); err != nil {
			return files, err
		}
		path := filepath.Join(dir, table.Name+".csv")
		if err := writeCSV(path, table); err != nil {
			return files, err
		}
		w.logger.Debug("[CSVWriter] wrote %s (%d rows)", path, len(table.Rows))
		files = append(files, path)
	}
	return files, nil
}

func writeCSV(path string, table Table) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return errors.IOError("failed to create "+path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = errors.IOError("failed to close "+path, cerr)
		}
	}()

	cw := csv.NewWriter(f)
	if err := cw.Write(table.Headers); err != nil {
		return errors.IOError("failed to write "+path, err)
	}
	for _, row := range table.Rows {
		record := make([]string, len(row))
		for i, cell := range row {
			record[i] = cellText(cell)
		}
		if err := cw.Write(record); err != nil {
			return errors.IOError("failed to write "+path, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return errors.IOError("failed to flush "+path, err)
	}
	return nil
}

// WorkbookWriter exports all derived tables as sheets of one workbook
type WorkbookWriter struct {
	logger *internal.Logger
}

// NewWorkbookWriter creates an XLSX exporter
func NewWorkbookWriter(logger *internal.Logger) *WorkbookWriter {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &WorkbookWriter{logger: logger}
}

func (w *WorkbookWriter) Name() string { return "xlsx" }

// Write saves viewing_study.xlsx into dir
func (w *WorkbookWriter) Write(ctx context.Context, dir string, results *ports.StudyResults) ([]string, error) {
	if results.Derivation == nil {
		return nil, nil
	}
	f := excelize.NewFile()
	defer f.Close()

	tables := DerivedTables(results.Derivation)
	for i, table := range tables {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if _, err := f.NewSheet(table.Name); err != nil {
			return nil, errors.IOError(fmt.Sprintf("failed to add sheet %s", table.Name), err)
		}
		if err := writeSheet(f, table); err != nil {
			return nil, err
		}
		if i == 0 {
			idx, _ := f.GetSheetIndex(table.Name)
			f.SetActiveSheet(idx)
		}
	}
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, errors.IOError("failed to remove default sheet", err)
	}

	path := filepath.Join(dir, WorkbookName)
	if err := f.SaveAs(path); err != nil {
		return nil, errors.IOError("failed to save "+path, err)
	}
	w.logger.Debug("[WorkbookWriter] wrote %s (%d sheets)", path, len(tables))
	return []string{path}, nil
}

func writeSheet(f *excelize.File, table Table) error {
	header := make([]interface{}, len(table.Headers))
	for i, h := range table.Headers {
		header[i] = h
	}
	if err := f.SetSheetRow(table.Name, "A1", &header); err != nil {
		return errors.IOError("failed to write header of "+table.Name, err)
	}
	for i, row := range table.Rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return errors.InternalError(err.Error())
		}
		values := row
		if err := f.SetSheetRow(table.Name, cell, &values); err != nil {
			return errors.IOError("failed to write row of "+table.Name, err)
		}
	}
	return nil
}
