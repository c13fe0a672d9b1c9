package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"tvcut/internal/preflight"
)

func newDoctorCommand(ctx *commandContext) *cobra.Command {
	var source string

	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check directories, free space, and external tools",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			req := preflight.Request{Source: source}
			if source != "" {
				if r := preflight.CheckSourceReadable(source); r.Passed {
					if info, statErr := fileSize(source); statErr == nil {
						req.SourceBytes = info
						req.KeptFraction = 1
					}
				}
			}
			results := preflight.RunAll(cmd.Context(), cfg, req)
			if ctx.jsonOutput() {
				if err := writeJSON(cmd, results); err != nil {
					return err
				}
				return preflight.Err(results)
			}
			out := cmd.OutOrStdout()
			rows := make([][]string, 0, len(results))
			for _, r := range results {
				rows = append(rows, []string{r.Name, statusLabel(out, r.Passed, r.Optional), r.Detail})
			}
			fmt.Fprintln(out, renderTable([]string{"Check", "Status", "Detail"}, rows, nil))
			return preflight.Err(results)
		},
	}
	cmd.Flags().StringVar(&source, "recording", "", "Also check a recording and the free space it needs")
	return cmd
}

func fileSize(path string) (int64, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}
