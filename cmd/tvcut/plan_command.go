package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"tvcut/internal/cutlist"
	"tvcut/internal/pipeline"
	"tvcut/internal/timecode"
)

type cutlistFlags struct {
	path   string
	format string
}

func (f *cutlistFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.path, "cutlist", "", "Cutlist file (Comskip, EDL, or seconds)")
	cmd.Flags().StringVar(&f.format, "cutlist-format", "", "Cutlist format: auto, comskip, edl, seconds")
}

func (f *cutlistFlags) apply(req *pipeline.Request) error {
	req.Cutlist = f.path
	if f.format == "" {
		return nil
	}
	format, err := cutlist.ParseFormat(f.format)
	if err != nil {
		return err
	}
	req.CutlistFormat = format
	return nil
}

func newPlanCommand(ctx *commandContext) *cobra.Command {
	var cuts cutlistFlags

	cmd := &cobra.Command{
		Use:   "plan <recording>",
		Short: "Show keep segments and chapter marks without locating",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := pipeline.Request{Source: args[0]}
			if err := cuts.apply(&req); err != nil {
				return err
			}
			return ctx.withRunner(cmd, func(runner *pipeline.Runner) error {
				planned, err := runner.Plan(cmd.Context(), req)
				if err != nil {
					return err
				}
				if ctx.jsonOutput() {
					return writeJSON(cmd, planned.Plan)
				}
				renderPlan(cmd, planned.Plan)
				return nil
			})
		},
	}
	cuts.register(cmd)
	return cmd
}

func renderPlan(cmd *cobra.Command, plan cutlist.Plan) {
	out := cmd.OutOrStdout()
	segments := newSegmentTable(
		[]string{"Source Start", "Source End", "Output Start"},
		[]columnAlignment{alignLeft, alignLeft, alignLeft},
	)
	for _, seg := range plan.Segments {
		segments.add(seg.Source.Duration(),
			timecode.Clock(seg.Source.Start),
			timecode.Clock(seg.Source.End),
			timecode.Clock(seg.ElapsedAtStart),
		)
	}
	fmt.Fprintln(out, segments.render())
	printField(out, "Recording", timecode.Clock(plan.TotalDuration))
	printField(out, "Output", timecode.Clock(plan.FinalDuration()))
	printField(out, "Removed", formatSeconds(plan.Removed())+"s")
	printField(out, "Chapters", strconv.Itoa(len(plan.Chapters)-1))
}
