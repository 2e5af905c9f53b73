package report

import (
	"io"
	"strconv"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"

	"github.com/nao1215/lingoscan/internal/model"
)

// MarkdownWriter outputs reports in Markdown format for documentation and sharing.
type MarkdownWriter struct {
	*baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer, opts ...Option) *MarkdownWriter {
	return &MarkdownWriter{baseWriter: newBaseWriter(output, opts)}
}

// RenderReport writes the report as a Markdown document.
func (w *MarkdownWriter) RenderReport(r *model.Report) error {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, r)
	w.writeGroups(md, r)
	w.writeResults(md, r)
	w.writeFooter(md)

	return md.Build()
}

// RenderError writes the error as a caution alert.
func (w *MarkdownWriter) RenderError(err error) error {
	md := markdown.NewMarkdown(w.output)
	md.Cautionf("%s", ErrorMessage(err))
	return md.Build()
}

func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, r *model.Report) {
	md.H1("Lingoscan Report")
	md.PlainText("")

	rows := [][]string{
		{"Mode", string(r.Mode)},
		{"Total Count", FormatCount(r.Aggregate.TotalCount)},
		{"Pages", strconv.Itoa(r.Aggregate.PagesCrawled)},
		{"Primary Group", r.Aggregate.PrimaryGroup},
	}
	if !r.CreatedAt.IsZero() {
		rows = append(rows, []string{"Analyzed", r.CreatedAt.Format("2006-01-02 15:04:05 MST")})
	}
	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeGroups writes a pie chart of counts per language group.
func (w *MarkdownWriter) writeGroups(md *markdown.Markdown, r *model.Report) {
	shares := groupShares(r)
	if len(shares) == 0 {
		return
	}

	md.H2("Language Groups")
	md.PlainText("")

	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Count by Language Group"),
		piechart.WithShowData(true),
	)
	for _, s := range shares {
		chart.LabelAndIntValue(s.Group, uint64(max(s.Count, 0))) //nolint:gosec // clamped to zero
	}

	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

func (w *MarkdownWriter) writeResults(md *markdown.Markdown, r *model.Report) {
	md.H2("Results")
	md.PlainText("")

	rows := Rows(r)
	if len(rows) == 0 {
		md.PlainText("No results.")
		md.PlainText("")
		return
	}

	table := make([][]string, len(rows))
	for i, row := range rows {
		table[i] = []string{row.Title, row.Count, row.Type, row.Link}
	}
	md.Table(markdown.TableSet{
		Header: []string{"Title", "Count", "Type", "Link"},
		Rows:   table,
	})
	md.PlainText("")

	if n := r.FailedCount(); n > 0 {
		md.Warningf("%d URL(s) could not be analyzed.", n)
		md.PlainText("")
		for _, row := range rows {
			if row.Failed {
				md.Details(row.Link, row.Error)
			}
		}
		md.PlainText("")
	} else {
		md.Tip("All URLs were analyzed.")
		md.PlainText("")
	}
}

func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainText("*Report generated by lingoscan*")
}
