package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/vbonduro/fieldinspect/internal/capture"
	"github.com/vbonduro/fieldinspect/internal/config"
	"github.com/vbonduro/fieldinspect/internal/entry"
	"github.com/vbonduro/fieldinspect/internal/mapview"
	"github.com/vbonduro/fieldinspect/internal/metrics"
	"github.com/vbonduro/fieldinspect/internal/photostore/local"
	"github.com/vbonduro/fieldinspect/internal/provider"
	"github.com/vbonduro/fieldinspect/internal/report"
	"github.com/vbonduro/fieldinspect/internal/service"
	"github.com/vbonduro/fieldinspect/internal/web"
)

const storeCloseTimeout = 5 * time.Second

func serveCmd(cfg *config.Config, logger *slog.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the inspection form API",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg, logger)
		},
	}
}

// newServer wires the API without waiting for the inspector store; its
// endpoints answer 503 until the store is ready.
func newServer(ctx context.Context, cfg *config.Config, open provider.Opener, logger *slog.Logger) (*web.Server, func(), error) {
	p := provider.New(open, logger)
	p.Start(ctx)
	closeStore := func() {
		waitCtx, cancel := context.WithTimeout(context.Background(), storeCloseTimeout)
		defer cancel()
		if err := p.Wait(waitCtx); errors.Is(err, context.DeadlineExceeded) {
			logger.Warn("inspector store still opening at shutdown", "error", err)
		}
		if err := p.Close(); err != nil {
			logger.Error("failed to close database", "error", err)
		}
	}

	photos, err := local.NewLocalPhotoStore(cfg.PhotoPath)
	if err != nil {
		closeStore()
		return nil, nil, err
	}
	sharer, err := newSharer(ctx, cfg)
	if err != nil {
		closeStore()
		return nil, nil, err
	}
	encoder, err := report.NewEncoder(cfg.ReportFormat, reportLayout(cfg))
	if err != nil {
		closeStore()
		return nil, nil, err
	}

	opts := []capture.Option{capture.WithSidecarFormat(capture.SidecarFormat(cfg.SidecarFormat))}
	if cfg.RequireMediaLibrary {
		opts = append(opts, capture.WithMediaLibrary())
	}

	m := metrics.New()
	inspection := service.NewInspectionService(
		entry.NewSession(nil),
		capture.NewCapturer(photos, logger, opts...),
		report.NewExporter(cfg.ReportPath, encoder, sharer, logger),
		m,
		logger,
	)
	inspectors := service.NewInspectorService(p, m, logger)
	visualizer := mapview.NewVisualizer(mapview.NewDirLibrary(cfg.PhotoLibraryPath), cfg.MapPhotoLimit, logger)

	return web.NewServer(inspectors, inspection, visualizer, p, m, logger), closeStore, nil
}

func serve(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	server, closeStore, err := newServer(ctx, cfg, dbOpener(cfg.DBPath), logger)
	if err != nil {
		logger.Error("failed to initialize server", "error", err)
		return err
	}
	defer closeStore()

	srv := server.HTTPServer(cfg.ListenAddr)
	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting server", "addr", cfg.ListenAddr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
			return err
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown failed", "error", err)
		return err
	}
	return nil
}
