package main

import (
	"fmt"
	"path/filepath"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"tvcut/internal/store"
	"tvcut/internal/timecode"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history [recording]",
		Short: "List recent pipeline runs",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			source := ""
			if len(args) == 1 {
				abs, err := filepath.Abs(args[0])
				if err != nil {
					return err
				}
				source = abs
			}
			return ctx.withStore(func(s *store.Store) error {
				runs, err := s.ListRuns(cmd.Context(), source, limit)
				if err != nil {
					return err
				}
				if ctx.jsonOutput() {
					return writeJSON(cmd, runs)
				}
				if len(runs) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No runs recorded")
					return nil
				}
				renderRuns(cmd, runs)
				return nil
			})
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum runs to show (0 for all)")
	cmd.AddCommand(newHistoryShowCommand(ctx))
	cmd.AddCommand(newHistoryPurgeCalibrationsCommand(ctx))
	return cmd
}

func newHistoryShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show <run-id>",
		Short: "Show a single run (a unique id prefix is accepted)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(s *store.Store) error {
				run, err := s.GetRun(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if ctx.jsonOutput() {
					return writeJSON(cmd, run)
				}
				out := cmd.OutOrStdout()
				printField(out, "Run", run.ID)
				printField(out, "Recording", run.Source)
				printField(out, "Status", string(run.Status))
				printField(out, "Started", run.StartedAt.Local().Format(time.DateTime))
				if !run.FinishedAt.IsZero() {
					printField(out, "Finished", run.FinishedAt.Local().Format(time.DateTime))
				}
				if run.Strategy != "" {
					printField(out, "Strategy", run.Strategy)
				}
				if run.Status == store.StatusCompleted {
					printField(out, "Segments", strconv.Itoa(run.Segments))
					printField(out, "Output", timecode.Clock(run.FinalDuration))
					printField(out, "Removed", formatSeconds(run.RemovedSeconds)+"s")
					printField(out, "Manifest", run.ManifestPath)
				}
				if run.ErrorMessage != "" {
					printField(out, "Error", run.ErrorMessage)
				}
				return nil
			})
		},
	}
}

func newHistoryPurgeCalibrationsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "purge-calibrations",
		Short: "Delete every cached calibration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(s *store.Store) error {
				n, err := s.PurgeCalibrations(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed %d cached calibration(s)\n", n)
				return nil
			})
		},
	}
}

func renderRuns(cmd *cobra.Command, runs []store.Run) {
	rows := make([][]string, 0, len(runs))
	for _, run := range runs {
		id := run.ID
		if len(id) > 8 {
			id = id[:8]
		}
		output := "-"
		if run.Status == store.StatusCompleted {
			output = timecode.Clock(run.FinalDuration)
		}
		rows = append(rows, []string{
			id,
			run.StartedAt.Local().Format(time.DateTime),
			filepath.Base(run.Source),
			string(run.Status),
			strconv.Itoa(run.Segments),
			output,
		})
	}
	fmt.Fprintln(cmd.OutOrStdout(), renderTable(
		[]string{"Run", "Started", "Recording", "Status", "Segments", "Output"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignLeft},
	))
}
