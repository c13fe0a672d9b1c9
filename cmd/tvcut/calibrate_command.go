package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"tvcut/internal/pipeline"
)

func newCalibrateCommand(ctx *commandContext) *cobra.Command {
	var refresh bool

	cmd := &cobra.Command{
		Use:   "calibrate <recording>",
		Short: "Measure frame and byte totals for byte-offset locating",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withRunner(cmd, func(runner *pipeline.Runner) error {
				cal, cached, err := runner.Calibrate(cmd.Context(), args[0], refresh)
				if err != nil {
					return err
				}
				if ctx.jsonOutput() {
					return writeJSON(cmd, struct {
						Cached      bool  `json:"cached"`
						TotalFrames int64 `json:"total_frames"`
						SourceBytes int64 `json:"source_bytes"`
						RemuxBytes  int64 `json:"remux_bytes"`
						ExtraBytes  int64 `json:"extra_bytes"`
					}{cached, cal.TotalFrames, cal.SourceBytes, cal.RemuxBytes, cal.ExtraBytes})
				}
				out := cmd.OutOrStdout()
				printField(out, "Frames", strconv.FormatInt(cal.TotalFrames, 10))
				printField(out, "Source bytes", strconv.FormatInt(cal.SourceBytes, 10))
				printField(out, "Remux bytes", strconv.FormatInt(cal.RemuxBytes, 10))
				printField(out, "Extra bytes", strconv.FormatInt(cal.ExtraBytes, 10))
				printField(out, "Cached", yesNo(cached))
				if cal.TotalFrames > 0 {
					fmt.Fprintf(out, "%-16s %.1f\n", "Extra/frame:", float64(cal.ExtraBytes)/float64(cal.TotalFrames))
				}
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&refresh, "refresh", false, "Ignore the cached calibration and measure again")
	return cmd
}
