package main

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/vbonduro/fieldinspect/internal/config"
	"github.com/vbonduro/fieldinspect/internal/metrics"
	"github.com/vbonduro/fieldinspect/internal/service"
)

func inspectorsCmd(cfg *config.Config, logger *slog.Logger) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspectors",
		Short: "Manage the inspector roster",
	}

	// withService opens the store for one command and closes it afterwards.
	withService := func(cmd *cobra.Command, fn func(*service.InspectorService) error) error {
		p := startProvider(cmd.Context(), cfg, logger)
		if err := p.Wait(cmd.Context()); err != nil {
			return err
		}
		defer func() {
			if err := p.Close(); err != nil {
				logger.Error("failed to close database", "error", err)
			}
		}()
		return fn(service.NewInspectorService(p, metrics.New(), logger))
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List inspectors, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withService(cmd, func(svc *service.InspectorService) error {
				inspectors, err := svc.List(cmd.Context())
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if len(inspectors) == 0 {
					fmt.Fprintln(out, "No inspectors.")
					return nil
				}
				for _, in := range inspectors {
					fmt.Fprintf(out, "%d\t%s\t%s\n", in.ID, in.Name, in.CreatedAt.Format("02.01.2006 15:04"))
				}
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "add [name]",
		Short: "Add an inspector",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withService(cmd, func(svc *service.InspectorService) error {
				id, err := svc.Add(cmd.Context(), strings.Join(args, " "))
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Added inspector %d\n", id)
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "remove [id]",
		Short: "Remove an inspector",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid inspector id %q", args[0])
			}
			return withService(cmd, func(svc *service.InspectorService) error {
				if err := svc.Remove(cmd.Context(), id); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed inspector %d\n", id)
				return nil
			})
		},
	})
	return cmd
}
