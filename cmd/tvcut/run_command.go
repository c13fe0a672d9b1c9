package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"tvcut/internal/locate"
	"tvcut/internal/pipeline"
	"tvcut/internal/timecode"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	var (
		cuts      cutlistFlags
		strategy  string
		outputDir string
		refresh   bool
	)

	cmd := &cobra.Command{
		Use:   "run <recording>",
		Short: "Plan, locate, and write the manifest and chapter file for a recording",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := pipeline.Request{
				Source:             args[0],
				OutputDir:          outputDir,
				RefreshCalibration: refresh,
			}
			if err := cuts.apply(&req); err != nil {
				return err
			}
			if strategy != "" {
				mode, err := locate.ParseMode(strategy)
				if err != nil {
					return err
				}
				req.Strategy = mode
			}
			return ctx.withRunner(cmd, func(runner *pipeline.Runner) error {
				result, err := runner.Run(cmd.Context(), req)
				if err != nil {
					return err
				}
				if ctx.jsonOutput() {
					return writeJSON(cmd, result.Manifest)
				}
				renderRunResult(cmd, result)
				return nil
			})
		},
	}
	cuts.register(cmd)
	cmd.Flags().StringVar(&strategy, "strategy", "", "Locating strategy: time or byte (defaults to config)")
	cmd.Flags().StringVarP(&outputDir, "output-dir", "o", "", "Directory for the manifest and chapter file (defaults to work_dir)")
	cmd.Flags().BoolVar(&refresh, "refresh-calibration", false, "Ignore cached calibrations")
	return cmd
}

func renderRunResult(cmd *cobra.Command, result pipeline.Result) {
	out := cmd.OutOrStdout()
	m := result.Manifest
	segments := newSegmentTable(
		[]string{"Start", "Frames", "Bytes"},
		[]columnAlignment{alignLeft, alignRight, alignRight},
	)
	for _, ex := range m.Extractions {
		frames, bytes := "-", "-"
		if ex.Mode == locate.ModeByte {
			frames = fmt.Sprintf("%d-%d", ex.StartFrame, ex.EndFrame)
			bytes = fmt.Sprintf("%d-%d", ex.StartByte, ex.EndByte)
		}
		segments.add(ex.Duration, timecode.Clock(ex.Start), frames, bytes)
	}
	fmt.Fprintln(out, segments.render())
	printField(out, "Run", result.RunID)
	printField(out, "Strategy", string(m.Strategy))
	printField(out, "Output", timecode.Clock(m.Plan.FinalDuration()))
	printField(out, "Manifest", result.ManifestPath)
	if result.ChaptersPath != "" {
		printField(out, "Chapters", result.ChaptersPath)
	}
}
