package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/nao1215/lingoscan/internal/model"
)

// SimpleWriter outputs human-readable text reports for terminal display.
type SimpleWriter struct {
	*baseWriter
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...Option) *SimpleWriter {
	return &SimpleWriter{baseWriter: newBaseWriter(output, opts)}
}

// RenderReport writes the summary and the result table.
func (w *SimpleWriter) RenderReport(r *model.Report) error {
	var sb strings.Builder

	w.writeHeader(&sb, r)
	w.writeSummary(&sb, r)
	w.writeResults(&sb, r)
	w.writeFailures(&sb, r)
	w.writeFooter(&sb)

	_, err := io.WriteString(w.output, sb.String())
	return err
}

// RenderError writes a single error line.
func (w *SimpleWriter) RenderError(err error) error {
	_, werr := fmt.Fprintf(w.output, "Error: %s\n", ErrorMessage(err))
	return werr
}

func (w *SimpleWriter) writeHeader(sb *strings.Builder, r *model.Report) {
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("                      LINGOSCAN LINGUISTIC REPORT\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n\n")

	fmt.Fprintf(sb, "Mode:           %s\n", r.Mode)
	if !r.CreatedAt.IsZero() {
		fmt.Fprintf(sb, "Analyzed:       %s\n", r.CreatedAt.Format("2006-01-02 15:04:05 MST"))
	}
	sb.WriteString("\n")
}

func (w *SimpleWriter) writeSummary(sb *strings.Builder, r *model.Report) {
	writeSection(sb, "SUMMARY")
	fmt.Fprintf(sb, "  TOTAL COUNT:   %s\n", FormatCount(r.Aggregate.TotalCount))
	fmt.Fprintf(sb, "  PAGES:         %d\n", r.Aggregate.PagesCrawled)
	fmt.Fprintf(sb, "  LANGUAGE:      %s\n", r.Aggregate.PrimaryGroup)
	sb.WriteString("\n")
}

func (w *SimpleWriter) writeResults(sb *strings.Builder, r *model.Report) {
	writeSection(sb, "RESULTS")

	rows := Rows(r)
	if len(rows) == 0 {
		sb.WriteString("  No results\n\n")
		return
	}

	fmt.Fprintf(sb, "  %-43s %10s  %-10s  %s\n", "TITLE", "COUNT", "TYPE", "LINK")
	for _, row := range rows {
		fmt.Fprintf(sb, "  %-43s %10s  %-10s  %s\n", row.Title, row.Count, row.Type, row.Link)
	}
	sb.WriteString("\n")
}

func (w *SimpleWriter) writeFailures(sb *strings.Builder, r *model.Report) {
	if r.FailedCount() == 0 {
		return
	}

	writeSection(sb, "FAILED URLS")
	for _, it := range r.Items {
		if it.Failed() {
			fmt.Fprintf(sb, "  [!] %s\n      %s\n", it.URL, it.Error)
		}
	}
	sb.WriteString("\n")
}

func (w *SimpleWriter) writeFooter(sb *strings.Builder) {
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
}

func writeSection(sb *strings.Builder, title string) {
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString(title)
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")
}
