package app

import (
	"viewstudy/adapters/excel"
	"viewstudy/internal"
	"viewstudy/internal/config"
	"viewstudy/internal/report"
	"viewstudy/ports"
)

// DefaultWriters returns the table and report writers enabled by cfg
func DefaultWriters(cfg *config.Config, logger *internal.Logger) (tables, reports []ports.ArtifactWriter) {
	tables = []ports.ArtifactWriter{excel.NewCSVWriter(logger)}
	if cfg.WriteWorkbook {
		tables = append(tables, excel.NewWorkbookWriter(logger))
	}
	reports = []ports.ArtifactWriter{
		report.NewTextWriter(logger),
		report.NewMarkdownWriter(cfg.WriteHTML, logger),
		report.NewYAMLWriter(logger),
	}
	return tables, reports
}

// NewDefaultStudyService wires the file-based readers and default writers
func NewDefaultStudyService(cfg *config.Config, logger *internal.Logger) *StudyService {
	tables, reports := DefaultWriters(cfg, logger)
	return NewStudyService(cfg, logger,
		func(path string) ports.HistoryReader { return excel.NewDataReader(path, logger) },
		func(path string) ports.DailyCountReader { return excel.NewDataReader(path, logger) },
		tables, reports,
	)
}
