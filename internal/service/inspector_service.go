package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/vbonduro/fieldinspect/internal/domain"
	"github.com/vbonduro/fieldinspect/internal/metrics"
	"github.com/vbonduro/fieldinspect/internal/provider"
)

// opsSource is the subset of provider.Provider that InspectorService requires.
type opsSource interface {
	Ops() (provider.Ops, error)
}

type InspectorService struct {
	source  opsSource
	metrics *metrics.Metrics
	logger  *slog.Logger
}

func NewInspectorService(source opsSource, m *metrics.Metrics, logger *slog.Logger) *InspectorService {
	return &InspectorService{source: source, metrics: m, logger: logger}
}

func (s *InspectorService) List(ctx context.Context) ([]*domain.Inspector, error) {
	ops, err := s.source.Ops()
	if err != nil {
		return nil, err
	}
	return ops.List(ctx)
}

// Names returns inspector names, newest first, for the inspector pickers.
func (s *InspectorService) Names(ctx context.Context) ([]string, error) {
	inspectors, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(inspectors))
	for _, in := range inspectors {
		names = append(names, in.Name)
	}
	return names, nil
}

// Add stores a trimmed, non-blank name and returns its id.
func (s *InspectorService) Add(ctx context.Context, name string) (int64, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		s.metrics.ValidationFailures.WithLabelValues("add_inspector").Inc()
		return 0, &domain.ValidationError{Fields: []string{"name"}}
	}
	ops, err := s.source.Ops()
	if err != nil {
		return 0, err
	}
	id, err := ops.Add(ctx, name)
	if err != nil {
		return 0, fmt.Errorf("failed to add inspector: %w", err)
	}
	s.metrics.InspectorChanges.WithLabelValues("add").Inc()
	s.logger.Info("inspector added", "inspector_id", id)
	return id, nil
}

func (s *InspectorService) Remove(ctx context.Context, id int64) error {
	ops, err := s.source.Ops()
	if err != nil {
		return err
	}
	if err := ops.Remove(ctx, id); err != nil {
		return fmt.Errorf("failed to remove inspector: %w", err)
	}
	s.metrics.InspectorChanges.WithLabelValues("remove").Inc()
	s.logger.Info("inspector removed", "inspector_id", id)
	return nil
}

// Unavailable reports whether err means the store is not usable yet or at
// all.
func Unavailable(err error) bool {
	var initErr *domain.StoreInitError
	return errors.Is(err, domain.ErrNotInitialized) || errors.As(err, &initErr)
}
