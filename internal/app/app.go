// Package app ties the session, the service client, the aggregator and a
// presenter together. It is the only owner of the session.
package app

import (
	"context"
	"log/slog"

	"github.com/nao1215/lingoscan/internal/aggregate"
	"github.com/nao1215/lingoscan/internal/client"
	"github.com/nao1215/lingoscan/internal/model"
	"github.com/nao1215/lingoscan/internal/report"
	"github.com/nao1215/lingoscan/internal/session"
)

// Submitter sends one analysis request. *client.Dispatcher implements it.
type Submitter interface {
	Submit(ctx context.Context, input string, mode model.Mode) (*model.RawResponse, error)
}

// ExportRunner exports the report held by a source. *client.Exporter implements it.
type ExportRunner interface {
	Export(ctx context.Context, src client.ReportSource, destDir string) (*client.Artifact, error)
}

// App runs submissions and exports for one session.
type App struct {
	session   *session.Session
	submitter Submitter
	exporter  ExportRunner
	presenter report.Presenter
	normalize []aggregate.Option
	logger    *slog.Logger
}

// Option configures an App.
type Option func(*App)

// WithPrimaryGroupPolicy sets the single-mode primary group policy.
func WithPrimaryGroupPolicy(p aggregate.PrimaryGroupPolicy) Option {
	return func(a *App) {
		a.normalize = append(a.normalize, aggregate.WithPrimaryGroupPolicy(p))
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(a *App) {
		if l != nil {
			a.logger = l
		}
	}
}

// WithSession uses s instead of a new session.
func WithSession(s *session.Session) Option {
	return func(a *App) {
		if s != nil {
			a.session = s
		}
	}
}

// New creates an App. The exporter may be nil when exports are not needed.
func New(submitter Submitter, exporter ExportRunner, presenter report.Presenter, opts ...Option) *App {
	a := &App{
		session:   session.New(),
		submitter: submitter,
		exporter:  exporter,
		presenter: presenter,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Session returns the session owned by the app.
func (a *App) Session() *session.Session {
	return a.session
}

// SetMode switches the submission mode. The last report is kept.
func (a *App) SetMode(m model.Mode) session.Directive {
	a.logger.Debug("mode changed", "mode", m)
	return a.session.SetMode(m)
}

// Submit analyzes input in the current mode. On success the report replaces
// the stored one and is rendered. On failure the error is rendered once and
// the stored report stays as it was.
func (a *App) Submit(ctx context.Context, input string) (*model.Report, error) {
	mode := a.session.Mode()

	raw, err := a.submitter.Submit(ctx, input, mode)
	if err != nil {
		return nil, a.fail(err)
	}

	r, err := aggregate.Normalize(mode, raw, a.normalize...)
	if err != nil {
		return nil, a.fail(err)
	}

	a.session.SetReport(r)
	a.logger.Debug("report stored", "mode", mode, "items", len(r.Items), "total", r.Aggregate.TotalCount)

	if err := a.presenter.RenderReport(r); err != nil {
		return r, err
	}
	return r, nil
}

// Export saves the last report as CSV in destDir.
// It returns nil, nil when there is nothing to export.
func (a *App) Export(ctx context.Context, destDir string) (*client.Artifact, error) {
	if a.exporter == nil {
		return nil, nil
	}
	artifact, err := a.exporter.Export(ctx, a.session, destDir)
	if err != nil {
		return nil, a.fail(err)
	}
	return artifact, nil
}

func (a *App) fail(err error) error {
	if rerr := a.presenter.RenderError(err); rerr != nil {
		a.logger.Warn("failed to render error", "error", rerr)
	}
	return err
}
