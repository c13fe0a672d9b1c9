package main

import (
	"strconv"

	"github.com/spf13/cobra"

	"tvcut/internal/pipeline"
)

func newResyncCommand(ctx *commandContext) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "resync <manifest> <captions.srt>",
		Short: "Correct captions extracted from the rejoined stream",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withRunner(cmd, func(runner *pipeline.Runner) error {
				result, err := runner.Resync(cmd.Context(), pipeline.ResyncRequest{
					Manifest: args[0],
					Captions: args[1],
					Output:   output,
				})
				if err != nil {
					return err
				}
				if ctx.jsonOutput() {
					return writeJSON(cmd, result)
				}
				out := cmd.OutOrStdout()
				if result.Output == "" {
					printField(out, "Captions", "none found; nothing written")
					return nil
				}
				printField(out, "Entries", strconv.Itoa(result.Stats.Entries))
				printField(out, "Clipped", strconv.Itoa(result.Stats.Clipped))
				printField(out, "Final delay", formatSeconds(result.Stats.FinalDelay)+"s")
				printField(out, "Written", result.Output)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "Corrected caption path (defaults to <captions> with the configured suffix)")
	return cmd
}
