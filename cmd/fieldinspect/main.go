package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/vbonduro/fieldinspect/internal/config"
	"github.com/vbonduro/fieldinspect/internal/db"
	"github.com/vbonduro/fieldinspect/internal/logging"
	"github.com/vbonduro/fieldinspect/internal/provider"
	"github.com/vbonduro/fieldinspect/internal/report"
	"github.com/vbonduro/fieldinspect/internal/share"
	s3share "github.com/vbonduro/fieldinspect/internal/share/s3"
)

func main() {
	cfg := config.Load()

	logger, cleanup, err := logging.New(cfg.LogLevel, cfg.LogFormat, cfg.LogFile)
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer cleanup()

	if err := newRootCmd(cfg, logger).Execute(); err != nil {
		cleanup()
		os.Exit(1)
	}
}

func newRootCmd(cfg *config.Config, logger *slog.Logger) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "fieldinspect",
		Short:        "Field inspection data collection",
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVar(&cfg.DBPath, "db", cfg.DBPath, "inspector database path")

	rootCmd.AddCommand(serveCmd(cfg, logger))
	rootCmd.AddCommand(inspectorsCmd(cfg, logger))
	rootCmd.AddCommand(mapCmd(cfg, logger))
	return rootCmd
}

// dbOpener opens the inspector database at path, creating its directory.
func dbOpener(path string) provider.Opener {
	return func(ctx context.Context) (*sql.DB, error) {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
		return db.Open(path)
	}
}

// startProvider begins opening the store in the background. Callers that
// need the store before going on follow it with Wait.
func startProvider(ctx context.Context, cfg *config.Config, logger *slog.Logger) *provider.Provider {
	p := provider.New(dbOpener(cfg.DBPath), logger)
	p.Start(ctx)
	return p
}

func newSharer(ctx context.Context, cfg *config.Config) (report.Sharer, error) {
	switch cfg.ShareBackend {
	case "s3":
		return s3share.New(ctx, s3share.Config{
			Bucket:    cfg.ShareS3Bucket,
			Region:    cfg.ShareS3Region,
			Endpoint:  cfg.ShareS3Endpoint,
			Prefix:    cfg.ShareS3Prefix,
			PathStyle: cfg.ShareS3PathStyle,
			LinkTTL:   cfg.ShareLinkTTL,
		})
	case "", "local":
		return share.NewLocal(cfg.ShareLocalPath)
	default:
		return nil, fmt.Errorf("unknown share backend %q", cfg.ShareBackend)
	}
}

func reportLayout(cfg *config.Config) report.Layout {
	if cfg.ReportIncludeRoom {
		return report.LayoutWithRoom
	}
	return report.LayoutNoRoom
}
