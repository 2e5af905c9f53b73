package client

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/nao1215/lingoscan/internal/model"
)

// ExportFileName is the name the exported CSV is saved under.
const ExportFileName = "ulatus_linguistic_report.csv"

// ReportSource provides the report to export.
type ReportSource interface {
	Report() (*model.Report, bool)
}

// Artifact is a saved export file.
type Artifact struct {
	Path string
	Size int64
}

// Exporter turns the last report into a CSV file via the service.
type Exporter struct {
	*transport
}

// NewExporter creates an Exporter for the service at baseURL.
func NewExporter(baseURL string, opts ...Option) (*Exporter, error) {
	t, err := newTransport(baseURL, opts)
	if err != nil {
		return nil, err
	}
	return &Exporter{transport: t}, nil
}

// Export sends the results of the report held by src to /export and saves
// the response in destDir as ExportFileName.
// Without a report, or with an empty one, it does nothing and returns nil, nil.
// The file appears only once it is complete.
func (e *Exporter) Export(ctx context.Context, src ReportSource, destDir string) (*Artifact, error) {
	r, ok := src.Report()
	if !ok || r.IsEmpty() {
		return nil, nil
	}

	body, err := r.ResultsJSON()
	if err != nil {
		return nil, &ExportError{Message: err.Error(), Err: err}
	}

	resp, err := e.post(ctx, "/export", body)
	if err != nil {
		return nil, &ExportError{Message: err.Error(), Err: err}
	}
	defer resp.Body.Close()

	if !isSuccess(resp.StatusCode) {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxErrorBody))
		return nil, &ExportError{
			Message: ExportFailureMessage,
			Err:     &ServiceError{StatusCode: resp.StatusCode, Message: ExportFailureMessage},
		}
	}

	artifact, err := saveAtomic(resp.Body, destDir, ExportFileName)
	if err != nil {
		return nil, &ExportError{Message: err.Error(), Err: err}
	}
	e.logger.Debug("export saved", "path", artifact.Path, "size", artifact.Size)
	return artifact, nil
}

// saveAtomic writes r to a temporary file in dir and renames it to name.
// The temporary file never survives a failure.
func saveAtomic(r io.Reader, dir, name string) (_ *Artifact, err error) {
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, err
	}

	tmp, err := os.CreateTemp(dir, ".lingoscan-export-*.tmp")
	if err != nil {
		return nil, err
	}
	tmpPath := tmp.Name()
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmpPath)
		}
	}()

	size, err := io.Copy(tmp, r)
	if err != nil {
		return nil, err
	}
	if err := tmp.Sync(); err != nil {
		return nil, err
	}
	if err := tmp.Close(); err != nil {
		return nil, err
	}

	dest := filepath.Join(dir, name)
	if err := os.Rename(tmpPath, dest); err != nil {
		return nil, err
	}
	return &Artifact{Path: dest, Size: size}, nil
}
