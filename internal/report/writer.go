package report

import (
	"context"
	"os"
	"path/filepath"

	"viewstudy/internal"
	"viewstudy/internal/errors"
	"viewstudy/ports"
)

// Output file names
const (
	TextFile     = "report.txt"
	MarkdownFile = "report.md"
	HTMLFile     = "report.html"
	YAMLFile     = "results.yaml"
)

// TextWriter writes report.txt
type TextWriter struct {
	logger *internal.Logger
}

// NewTextWriter creates the plain-text report writer
func NewTextWriter(logger *internal.Logger) *TextWriter {
	return &TextWriter{logger: orDefault(logger)}
}

func (w *TextWriter) Name() string { return "text" }

func (w *TextWriter) Write(ctx context.Context, dir string, results *ports.StudyResults) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path := filepath.Join(dir, TextFile)
	if err := writeFile(path, []byte(Text(results))); err != nil {
		return nil, err
	}
	w.logger.Debug("[TextWriter] wrote %s", path)
	return []string{path}, nil
}

// MarkdownWriter writes report.md and, optionally, report.html
type MarkdownWriter struct {
	withHTML bool
	logger   *internal.Logger
}

// NewMarkdownWriter creates the Markdown report writer
func NewMarkdownWriter(withHTML bool, logger *internal.Logger) *MarkdownWriter {
	return &MarkdownWriter{withHTML: withHTML, logger: orDefault(logger)}
}

func (w *MarkdownWriter) Name() string { return "markdown" }

func (w *MarkdownWriter) Write(ctx context.Context, dir string, results *ports.StudyResults) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	md := Markdown(results)
	mdPath := filepath.Join(dir, MarkdownFile)
	if err := writeFile(mdPath, []byte(md)); err != nil {
		return nil, err
	}
	files := []string{mdPath}
	if w.withHTML {
		htmlPath := filepath.Join(dir, HTMLFile)
		if err := writeFile(htmlPath, HTML(md)); err != nil {
			return files, err
		}
		files = append(files, htmlPath)
	}
	w.logger.Debug("[MarkdownWriter] wrote %v", files)
	return files, nil
}

// YAMLWriter writes results.yaml
type YAMLWriter struct {
	logger *internal.Logger
}

// NewYAMLWriter creates the results dump writer
func NewYAMLWriter(logger *internal.Logger) *YAMLWriter {
	return &YAMLWriter{logger: orDefault(logger)}
}

func (w *YAMLWriter) Name() string { return "yaml" }

func (w *YAMLWriter) Write(ctx context.Context, dir string, results *ports.StudyResults) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out, err := YAML(results)
	if err != nil {
		return nil, err
	}
	path := filepath.Join(dir, YAMLFile)
	if err := writeFile(path, out); err != nil {
		return nil, err
	}
	w.logger.Debug("[YAMLWriter] wrote %s", path)
	return []string{path}, nil
}

func writeFile(path string, data []byte) error {
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.IOError("failed to write "+path, err)
	}
	return nil
}

func orDefault(logger *internal.Logger) *internal.Logger {
	if logger == nil {
		return internal.DefaultLogger
	}
	return logger
}
