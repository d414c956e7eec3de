package report

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/vbonduro/fieldinspect/internal/domain"
)

// Sharer hands a finished report to the user's chosen destination and
// returns where it ended up.
type Sharer interface {
	Share(ctx context.Context, path, mime string) (string, error)
}

// Result describes a completed export.
type Result struct {
	Path      string
	MIME      string
	Rows      int
	SharedURL string
}

type Exporter struct {
	dir     string
	encoder Encoder
	sharer  Sharer
	now     func() time.Time
	logger  *slog.Logger
}

func NewExporter(dir string, encoder Encoder, sharer Sharer, logger *slog.Logger) *Exporter {
	return &Exporter{
		dir:     dir,
		encoder: encoder,
		sharer:  sharer,
		now:     time.Now,
		logger:  logger,
	}
}

// WithClock replaces the clock used to name report files.
func (e *Exporter) WithClock(now func() time.Time) *Exporter {
	e.now = now
	return e
}

// FileName is Отчет_<ddMMyyyy_HHmm>.<ext>. Two exports in the same minute
// share a name and the later one replaces the earlier file.
func FileName(at time.Time, ext string) string {
	return fmt.Sprintf("Отчет_%s.%s", at.Format("02012006_1504"), ext)
}

// Export serializes entries, writes the report under the report directory and
// shares it. The entries are only read.
func (e *Exporter) Export(ctx context.Context, entries []domain.Entry) (*Result, error) {
	if len(entries) == 0 {
		return nil, domain.ErrNoEntries
	}

	var buf bytes.Buffer
	if err := e.encoder.Encode(&buf, entries); err != nil {
		return nil, &domain.ExportError{Stage: domain.StageSerialize, Err: err}
	}

	if err := os.MkdirAll(e.dir, 0755); err != nil {
		return nil, &domain.ExportError{Stage: domain.StageWrite, Err: fmt.Errorf("failed to create report directory: %w", err)}
	}
	path := filepath.Join(e.dir, FileName(e.now(), e.encoder.Extension()))
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return nil, &domain.ExportError{Stage: domain.StageWrite, Err: fmt.Errorf("failed to write report: %w", err)}
	}

	url, err := e.sharer.Share(ctx, path, e.encoder.MIME())
	if err != nil {
		return nil, &domain.ExportError{Stage: domain.StageShare, Err: err}
	}

	e.logger.Info("report exported", "path", path, "rows", len(entries), "shared", url)
	return &Result{
		Path:      path,
		MIME:      e.encoder.MIME(),
		Rows:      len(entries),
		SharedURL: url,
	}, nil
}
