package main

import (
	"github.com/spf13/cobra"

	"tvcut/internal/chapters"
	"tvcut/internal/pipeline"
)

func newChaptersCommand(ctx *commandContext) *cobra.Command {
	var (
		format string
		output string
		label  string
	)

	cmd := &cobra.Command{
		Use:   "chapters <manifest>",
		Short: "Write the chapter marks of a manifest in Matroska or MP4 timed-text format",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if format == "" {
				format = cfg.Chapters.Format
			}
			parsed, err := chapters.ParseFormat(format)
			if err != nil {
				return err
			}
			return ctx.withRunner(cmd, func(runner *pipeline.Runner) error {
				path, err := runner.WriteChapters(args[0], parsed, output, label)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if path == "" {
					printField(out, "Chapters", "nothing to write")
					return nil
				}
				printField(out, "Chapters", path)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "", "Chapter format: mkv, ttxt (mp4), or none")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Chapter file path (defaults beside the manifest)")
	cmd.Flags().StringVar(&label, "label", "", "Chapter label template, e.g. \"Scene %d\"")
	return cmd
}
