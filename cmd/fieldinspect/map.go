package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/vbonduro/fieldinspect/internal/config"
	"github.com/vbonduro/fieldinspect/internal/mapview"
)

func mapCmd(cfg *config.Config, logger *slog.Logger) *cobra.Command {
	var out string
	var library string

	cmd := &cobra.Command{
		Use:   "map",
		Short: "Render geotagged library photos as a map page",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			v := mapview.NewVisualizer(mapview.NewDirLibrary(library), cfg.MapPhotoLimit, logger)
			markers, err := v.Collect(cmd.Context())
			if err != nil {
				return err
			}

			f, err := os.Create(out)
			if err != nil {
				return fmt.Errorf("failed to create %s: %w", out, err)
			}
			if err := mapview.Render(f, markers); err != nil {
				_ = f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return fmt.Errorf("failed to close %s: %w", out, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d markers to %s\n", len(markers), out)
			return nil
		},
	}
	cmd.Flags().StringVar(&out, "out", "map.html", "output file")
	cmd.Flags().StringVar(&library, "library", cfg.PhotoLibraryPath, "photo library directory")
	return cmd
}
