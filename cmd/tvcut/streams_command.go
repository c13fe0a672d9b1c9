package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"tvcut/internal/language"
	"tvcut/internal/pipeline"
	"tvcut/internal/streams"
)

func newStreamsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "streams <recording>",
		Short: "List candidate streams and the ones selected for demuxing",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withRunner(cmd, func(runner *pipeline.Runner) error {
				_, catalog, err := runner.Inspect(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if ctx.jsonOutput() {
					return writeJSON(cmd, catalog)
				}
				renderCatalog(cmd, catalog)
				return nil
			})
		},
	}
}

func renderCatalog(cmd *cobra.Command, catalog streams.Catalog) {
	var rows [][]string
	for _, group := range [][]streams.Descriptor{catalog.Video, catalog.Audio} {
		for _, desc := range group {
			lang := "-"
			if desc.Language != "" {
				lang = fmt.Sprintf("%s (%s)", desc.Language, language.DisplayName(desc.Language))
			}
			rows = append(rows, []string{string(desc.Kind), desc.ID, lang, yesNo(desc.Selected)})
		}
	}
	fmt.Fprintln(cmd.OutOrStdout(), renderTable(
		[]string{"Kind", "ID", "Language", "Selected"},
		rows,
		nil,
	))
}
