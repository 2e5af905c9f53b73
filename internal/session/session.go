// Package session holds the client-side state of an analysis session: the
// active submission mode and the last successful report.
package session

import (
	"sync"

	"github.com/nao1215/lingoscan/internal/model"
)

// Directive tells the presentation layer how to shape the input area for a mode.
type Directive struct {
	Placeholder string
	InputRows   int
}

const (
	singlePlaceholder = "Enter URLs here (one per line)\nhttps://example.com\nhttps://ulatus.com"
	crawlPlaceholder  = "Enter website home URL (e.g., https://example.com)"
)

// DirectiveFor returns the input directive of mode m.
// Unknown modes get the single-mode directive.
func DirectiveFor(m model.Mode) Directive {
	if m == model.ModeCrawl {
		return Directive{Placeholder: crawlPlaceholder, InputRows: 2}
	}
	return Directive{Placeholder: singlePlaceholder, InputRows: 5}
}

// BusyText returns the progress message shown while a request of mode m runs.
func BusyText(m model.Mode) string {
	if m == model.ModeCrawl {
		return "Crawling Entire Website..."
	}
	return "Analyzing Content..."
}

// Session is safe for concurrent use.
type Session struct {
	mu     sync.RWMutex
	mode   model.Mode
	report *model.Report
}

// New returns a session in the default mode with no report.
func New() *Session {
	return &Session{mode: model.DefaultMode}
}

// Mode returns the active mode.
func (s *Session) Mode() model.Mode {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.mode
}

// SetMode switches the active mode and returns its directive.
// The stored report is left untouched.
func (s *Session) SetMode(m model.Mode) Directive {
	s.mu.Lock()
	s.mode = m
	s.mu.Unlock()
	return DirectiveFor(m)
}

// Report returns the last successful report, if any.
func (s *Session) Report() (*model.Report, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.report, s.report != nil
}

// SetReport replaces the stored report.
func (s *Session) SetReport(r *model.Report) {
	s.mu.Lock()
	s.report = r
	s.mu.Unlock()
}
