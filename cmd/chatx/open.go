package main

import (
	"fmt"

	"github.com/Zuo-Peng/chatx/internal/open"
	"github.com/spf13/cobra"
)

func openCmd() *cobra.Command {
	var hit int

	cmd := &cobra.Command{
		Use:   "open <path>...",
		Short: "Open the source file in $EDITOR at a message's line",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := loadInputs(cmd.ErrOrStderr(), args)
			if err != nil {
				return err
			}
			records := in.result.Records
			if hit < 0 || hit >= len(records) {
				return fmt.Errorf("--hit %d out of range (%d messages)", hit, len(records))
			}
			return open.Record(in.files, records[hit])
		},
	}

	cmd.Flags().IntVar(&hit, "hit", 0, "Message index to jump to (from parse output)")

	return cmd
}
