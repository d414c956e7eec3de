// Package provider owns the process-wide lifecycle of the inspector store:
// it opens the database once, in the background, and hands out the
// operations facade only after that succeeded.
package provider

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/vbonduro/fieldinspect/internal/domain"
	"github.com/vbonduro/fieldinspect/internal/store"
)

// Ops is the inspector operations facade. Each call is its own atomic unit.
type Ops interface {
	List(ctx context.Context) ([]*domain.Inspector, error)
	Add(ctx context.Context, name string) (int64, error)
	Remove(ctx context.Context, id int64) error
}

// Opener opens and migrates the backing database.
type Opener func(ctx context.Context) (*sql.DB, error)

type Provider struct {
	open   Opener
	logger *slog.Logger

	once        sync.Once
	done        chan struct{}
	initialized atomic.Bool

	mu  sync.RWMutex
	db  *sql.DB
	ops Ops
	err error
}

func New(open Opener, logger *slog.Logger) *Provider {
	return &Provider{
		open:   open,
		logger: logger,
		done:   make(chan struct{}),
	}
}

// Start begins initialization in the background. Only the first call has
// any effect.
func (p *Provider) Start(ctx context.Context) {
	p.once.Do(func() {
		go p.initialize(ctx)
	})
}

func (p *Provider) initialize(ctx context.Context) {
	defer close(p.done)

	p.logger.Info("store initialization started")
	database, err := p.open(ctx)

	p.mu.Lock()
	defer p.mu.Unlock()
	if err != nil {
		p.err = &domain.StoreInitError{Err: err}
		p.logger.Error("store initialization failed", "error", err)
		return
	}
	p.db = database
	p.ops = store.NewInspectorStore(database)
	p.initialized.Store(true)
	p.logger.Info("store initialized")
}

// Wait blocks until initialization finished or ctx is done. It returns the
// initialization error, if any. Start must have been called.
func (p *Provider) Wait(ctx context.Context) error {
	select {
	case <-p.done:
	case <-ctx.Done():
		return ctx.Err()
	}
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.err
}

func (p *Provider) Initialized() bool {
	return p.initialized.Load()
}

// Ops returns the operations facade. Before initialization completes it
// returns domain.ErrNotInitialized; after a failed initialization it returns
// the *domain.StoreInitError.
func (p *Provider) Ops() (Ops, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.err != nil {
		return nil, p.err
	}
	if !p.initialized.Load() {
		return nil, domain.ErrNotInitialized
	}
	return p.ops, nil
}

// Close releases the database once initialization has finished. It does not
// wait for a pending initialization.
func (p *Provider) Close() error {
	select {
	case <-p.done:
	default:
		return nil
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.db == nil {
		return nil
	}
	err := p.db.Close()
	p.db = nil
	p.ops = nil
	p.initialized.Store(false)
	if err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}
	return nil
}
