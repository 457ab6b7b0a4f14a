package main

import (
	"encoding/json"
	"fmt"

	"github.com/Zuo-Peng/chatx/internal/render"
	"github.com/Zuo-Peng/chatx/internal/search"
	"github.com/Zuo-Peng/chatx/internal/stats"
	"github.com/spf13/cobra"
)

func statsCmd() *cobra.Command {
	var filters filterFlags
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "stats <path>...",
		Short: "Show message statistics for chat exports",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := loadInputs(cmd.ErrOrStderr(), args)
			if err != nil {
				return err
			}

			summary := stats.Compute(search.Filter(in.result.Records, filters.options()))
			out := cmd.OutOrStdout()

			if asJSON || !isTerminal(out) {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(summary)
			}

			fmt.Fprintln(out, render.Summary(in.baseName, summary))
			return nil
		},
	}

	filters.bind(cmd)
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON even on a terminal")

	return cmd
}
