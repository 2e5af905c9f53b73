package report

import (
	"encoding/json"
	"io"

	"github.com/nao1215/lingoscan/internal/model"
)

// JSONWriter outputs reports in JSON format for tool integration.
type JSONWriter struct {
	*baseWriter
}

// NewJSONWriter creates a JSONWriter that outputs to the given writer.
func NewJSONWriter(output io.Writer, opts ...Option) *JSONWriter {
	return &JSONWriter{baseWriter: newBaseWriter(output, opts)}
}

// JSONReport is the JSON document written for a report.
type JSONReport struct {
	*model.Report

	// FailedCount is the number of items that could not be analyzed.
	FailedCount int `json:"failed_count"`

	// GroupCounts sums the counts per language group.
	GroupCounts map[string]int `json:"group_counts"`
}

// RenderReport writes r as one JSON document.
func (w *JSONWriter) RenderReport(r *model.Report) error {
	return w.writeJSON(JSONReport{
		Report:      r,
		FailedCount: r.FailedCount(),
		GroupCounts: r.GroupCounts(),
	})
}

// RenderError writes {"error": "..."}.
func (w *JSONWriter) RenderError(err error) error {
	return w.writeJSON(struct {
		Error string `json:"error"`
	}{Error: ErrorMessage(err)})
}

func (w *JSONWriter) writeJSON(v any) error {
	var (
		data []byte
		err  error
	)
	if w.indent {
		data, err = json.MarshalIndent(v, w.indentPrefix, w.indentString)
	} else {
		data, err = json.Marshal(v)
	}
	if err != nil {
		return err
	}

	// Trailing newline for terminal output.
	data = append(data, '\n')
	_, err = w.output.Write(data)
	return err
}
