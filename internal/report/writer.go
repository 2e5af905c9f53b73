package report

import (
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/nao1215/lingoscan/internal/model"
)

// Presenter shows reports, errors and progress to the user.
type Presenter interface {
	// RenderReport shows a successful report.
	RenderReport(r *model.Report) error

	// RenderError shows a failure.
	RenderError(err error) error

	// SetBusy shows or clears the progress indicator.
	SetBusy(busy bool, text string)
}

// MultiPresenter renders to several Presenters, for example the terminal and
// a report file.
type MultiPresenter struct {
	presenters []Presenter
}

// NewMultiPresenter creates a Presenter that forwards to all given Presenters.
func NewMultiPresenter(presenters ...Presenter) *MultiPresenter {
	return &MultiPresenter{presenters: presenters}
}

// RenderReport renders r with every presenter and joins their errors.
func (m *MultiPresenter) RenderReport(r *model.Report) error {
	var errs []error
	for _, p := range m.presenters {
		errs = append(errs, p.RenderReport(r))
	}
	return errors.Join(errs...)
}

// RenderError renders err with every presenter and joins their errors.
func (m *MultiPresenter) RenderError(err error) error {
	var errs []error
	for _, p := range m.presenters {
		errs = append(errs, p.RenderError(err))
	}
	return errors.Join(errs...)
}

// SetBusy forwards to every presenter.
func (m *MultiPresenter) SetBusy(busy bool, text string) {
	for _, p := range m.presenters {
		p.SetBusy(busy, text)
	}
}

// Option configures a report writer.
type Option func(*baseWriter)

// WithStatusOutput sets where progress messages go. The default discards them.
func WithStatusOutput(w io.Writer) Option {
	return func(b *baseWriter) {
		if w != nil {
			b.status = w
		}
	}
}

// WithIndent enables indented JSON output. Other writers ignore it.
func WithIndent(prefix, indent string) Option {
	return func(b *baseWriter) {
		b.indent = true
		b.indentPrefix = prefix
		b.indentString = indent
	}
}

// WithPrettyPrint is WithIndent("", "  ").
func WithPrettyPrint() Option {
	return WithIndent("", "  ")
}

// baseWriter provides common functionality for report writers.
type baseWriter struct {
	output io.Writer
	status io.Writer

	indent       bool
	indentPrefix string
	indentString string

	mu   sync.Mutex
	busy bool
}

func newBaseWriter(output io.Writer, opts []Option) *baseWriter {
	b := &baseWriter{output: output, status: io.Discard}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// SetBusy prints text when a request starts and "done" when it ends.
func (b *baseWriter) SetBusy(busy bool, text string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch {
	case busy:
		fmt.Fprintf(b.status, "%s\n", text)
	case b.busy:
		fmt.Fprintln(b.status, "done")
	}
	b.busy = busy
}
