package report

import (
	"fmt"
	"strings"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"

	"viewstudy/internal/errors"
	"viewstudy/ports"
)

// Markdown renders the report as Markdown with one table per test
func Markdown(results *ports.StudyResults) string {
	var b strings.Builder
	b.WriteString("# Viewing habits: exam periods vs non-exam periods\n\n")

	if m := results.Manifest; m != nil {
		b.WriteString(fmt.Sprintf("- Run: `%s`\n", m.RunID))
		b.WriteString(fmt.Sprintf("- Input: `%s` (sha256 `%s`)\n", m.InputPath, shortHash(m.InputHash.String())))
	}
	b.WriteString(fmt.Sprintf("- Exam ranges: %d\n", len(results.Calendar.Ranges)))
	if d := results.Derivation; d != nil && !d.First.IsZero() {
		b.WriteString(fmt.Sprintf("- Period: %s to %s\n", d.First, d.Last))
	}
	b.WriteString(fmt.Sprintf("- Days without views: %s\n", Mode(results)))
	b.WriteString(fmt.Sprintf("- Significance level: %.2f\n\n", results.Alpha))

	b.WriteString("## Summary\n\n")
	b.WriteString("| Test | Statistic | p-value | Result |\n|---|---:|---:|---|\n")
	for _, o := range results.Outcomes {
		if o.Failed() {
			b.WriteString(fmt.Sprintf("| %s | | | failed (%s) |\n", o.Name, errors.GetCode(o.Err)))
			continue
		}
		verdict := "not significant"
		if o.Result.Significant(results.Alpha) {
			verdict = "**significant**"
		}
		b.WriteString(fmt.Sprintf("| %s | %.4f | %.4f | %s |\n", o.Name, o.Result.Statistic, o.Result.PValue, verdict))
	}
	b.WriteString("\n")

	for _, o := range results.Outcomes {
		b.WriteString(fmt.Sprintf("## %s\n\n", o.Name))
		if o.Question != "" {
			b.WriteString(fmt.Sprintf("_%s_\n\n", o.Question))
		}
		if o.Failed() {
			b.WriteString(fmt.Sprintf("Test aborted with `%s`: %s\n\n", errors.GetCode(o.Err), mdEscape(o.Err.Error())))
			continue
		}
		r := o.Result
		if len(r.GroupOrder) > 0 {
			b.WriteString("| Group | n | Mean | Median | SD |\n|---|---:|---:|---:|---:|\n")
			for _, label := range r.GroupOrder {
				s := r.Groups[label]
				b.WriteString(fmt.Sprintf("| %s | %d | %.4f | %.4f | %.4f |\n", label, s.N, s.Mean, s.Median, s.StdDev))
			}
			b.WriteString("\n")
		}
		b.WriteString(fmt.Sprintf("%s: statistic **%.4f**, p-value **%.4f**", r.Type.DisplayName(), r.Statistic, r.PValue))
		if r.Method != "" {
			b.WriteString(fmt.Sprintf(" (%s", r.Method))
			if r.DF > 0 {
				b.WriteString(fmt.Sprintf(", df = %g", r.DF))
			}
			b.WriteString(")")
		}
		b.WriteString(".\n\n")
		b.WriteString(Conclusion(o, results.Alpha) + "\n\n")
	}

	if d := results.Derivation; d != nil && len(d.Binge) > 0 {
		b.WriteString("## Binge watching\n\n| Period | Binge views | Views | Ratio |\n|---|---:|---:|---:|\n")
		for _, s := range d.Binge {
			b.WriteString(fmt.Sprintf("| %s | %d | %d | %.4f |\n", examLabel(s.IsExam), s.BingeViews, s.Views, s.Ratio))
		}
		b.WriteString("\n")
	}
	return b.String()
}

// HTML converts the Markdown report into a standalone HTML page
func HTML(md string) []byte {
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.AutoHeadingIDs)
	renderer := html.NewRenderer(html.RendererOptions{
		Flags: html.CommonFlags | html.CompletePage,
		Title: "Viewing study report",
	})
	return markdown.ToHTML([]byte(md), p, renderer)
}

func mdEscape(s string) string {
	return strings.NewReplacer("|", "\\|", "*", "\\*", "_", "\\_").Replace(s)
}
