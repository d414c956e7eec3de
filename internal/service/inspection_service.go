package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/vbonduro/fieldinspect/internal/capture"
	"github.com/vbonduro/fieldinspect/internal/domain"
	"github.com/vbonduro/fieldinspect/internal/entry"
	"github.com/vbonduro/fieldinspect/internal/metrics"
	"github.com/vbonduro/fieldinspect/internal/report"
)

// photoCapturer is the subset of capture.Capturer that InspectionService
// requires.
type photoCapturer interface {
	Capture(ctx context.Context, dev capture.Devices, d entry.Draft) ([]string, error)
	Open(ctx context.Context, name string) (io.ReadCloser, string, error)
	Discard(ctx context.Context, uri string) error
}

// reportExporter is the subset of report.Exporter that InspectionService
// requires.
type reportExporter interface {
	Export(ctx context.Context, entries []domain.Entry) (*report.Result, error)
}

// InspectionService drives one form session: editing the draft, attaching
// photos, submitting entries and exporting the report.
type InspectionService struct {
	session  *entry.Session
	capturer photoCapturer
	exporter reportExporter
	metrics  *metrics.Metrics
	logger   *slog.Logger

	// photoMu is held for a whole capture and by every operation that
	// replaces the draft or its photo list, so a capture always attaches its
	// photos to the draft it named them for.
	photoMu sync.Mutex
}

func NewInspectionService(
	session *entry.Session,
	capturer photoCapturer,
	exporter reportExporter,
	m *metrics.Metrics,
	logger *slog.Logger,
) *InspectionService {
	return &InspectionService{
		session:  session,
		capturer: capturer,
		exporter: exporter,
		metrics:  m,
		logger:   logger.With("session_id", session.ID()),
	}
}

func (s *InspectionService) Draft() entry.Draft {
	return s.session.Draft()
}

// UpdateDraft applies fn atomically; on error the draft is unchanged.
func (s *InspectionService) UpdateDraft(fn func(*entry.Draft) error) (entry.Draft, error) {
	d, err := s.session.UpdateDraft(fn)
	if err != nil {
		s.countValidation("update_draft", err)
	}
	return d, err
}

func (s *InspectionService) SetWorkType(t domain.WorkType) (entry.Draft, error) {
	return s.UpdateDraft(func(d *entry.Draft) error { return d.SetWorkType(t) })
}

func (s *InspectionService) SetWorkResult(r domain.WorkResult) (entry.Draft, error) {
	return s.UpdateDraft(func(d *entry.Draft) error { return d.SetWorkResult(r) })
}

// CapturePhotos runs the capture flow for the current draft and attaches the
// stored photos to it.
func (s *InspectionService) CapturePhotos(ctx context.Context, dev capture.Devices) (entry.Draft, error) {
	s.photoMu.Lock()
	defer s.photoMu.Unlock()

	uris, err := s.capturer.Capture(ctx, dev, s.session.Draft())
	if err != nil {
		var permErr *domain.PermissionDeniedError
		switch {
		case errors.Is(err, domain.ErrCaptureCancelled):
			s.metrics.Captures.WithLabelValues(metrics.OutcomeCancelled).Inc()
			s.logger.Info("photo capture cancelled")
		case errors.As(err, &permErr):
			s.metrics.Captures.WithLabelValues(metrics.OutcomeDenied).Inc()
			s.logger.Warn("photo capture permission denied", "permission", permErr.Permission)
		default:
			s.metrics.Captures.WithLabelValues(metrics.OutcomeError).Inc()
			s.logger.Error("photo capture failed", "error", err)
		}
		return s.session.Draft(), err
	}

	d, err := s.session.UpdateDraft(func(d *entry.Draft) error {
		d.AddPhotos(uris...)
		return nil
	})
	if err != nil {
		return d, err
	}
	s.metrics.Captures.WithLabelValues(metrics.OutcomeOK).Inc()
	s.metrics.PhotosCaptured.Add(float64(len(uris)))
	return d, nil
}

// RemovePhoto detaches the pending photo at index i and deletes its files.
func (s *InspectionService) RemovePhoto(ctx context.Context, i int) (entry.Draft, error) {
	s.photoMu.Lock()
	defer s.photoMu.Unlock()

	var removed string
	d, err := s.UpdateDraft(func(d *entry.Draft) error {
		uri, err := d.RemovePhoto(i)
		removed = uri
		return err
	})
	if err != nil {
		return d, err
	}
	if err := s.capturer.Discard(ctx, removed); err != nil {
		s.logger.Error("failed to delete removed photo", "uri", removed, "error", err)
	}
	return d, nil
}

// Submit appends the draft to the session and starts a fresh one.
func (s *InspectionService) Submit() (domain.Entry, error) {
	s.photoMu.Lock()
	defer s.photoMu.Unlock()

	e, err := s.session.Submit()
	if err != nil {
		s.countValidation("submit", err)
		return e, err
	}
	s.metrics.EntriesSubmitted.Inc()
	s.logger.Info("entry submitted",
		"entries", s.session.Len(),
		"work_type", e.WorkType,
		"photos", len(e.PhotoURIs),
	)
	return e, nil
}

// Reset clears the draft and deletes photos that were never submitted.
func (s *InspectionService) Reset(ctx context.Context) entry.Draft {
	s.photoMu.Lock()
	defer s.photoMu.Unlock()

	for _, uri := range s.session.Reset() {
		if err := s.capturer.Discard(ctx, uri); err != nil {
			s.logger.Error("failed to delete pending photo", "uri", uri, "error", err)
		}
	}
	return s.session.Draft()
}

// OpenPhoto reads a stored photo or geotag file by name.
func (s *InspectionService) OpenPhoto(ctx context.Context, name string) (io.ReadCloser, string, error) {
	return s.capturer.Open(ctx, name)
}

func (s *InspectionService) Entries() []domain.Entry {
	return s.session.Entries()
}

func (s *InspectionService) Export(ctx context.Context) (*report.Result, error) {
	res, err := s.exporter.Export(ctx, s.session.Entries())
	switch {
	case errors.Is(err, domain.ErrNoEntries):
		s.metrics.Exports.WithLabelValues(metrics.OutcomeEmpty).Inc()
		return nil, err
	case err != nil:
		s.metrics.Exports.WithLabelValues(metrics.OutcomeError).Inc()
		s.logger.Error("report export failed", "error", err)
		return nil, fmt.Errorf("failed to export report: %w", err)
	}
	s.metrics.Exports.WithLabelValues(metrics.OutcomeOK).Inc()
	return res, nil
}

func (s *InspectionService) countValidation(op string, err error) {
	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		s.metrics.ValidationFailures.WithLabelValues(op).Inc()
	}
}
