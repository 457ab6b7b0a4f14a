package main

import (
	"github.com/Zuo-Peng/chatx/internal/tui"
	"github.com/spf13/cobra"
)

func browseCmd() *cobra.Command {
	var filters filterFlags

	cmd := &cobra.Command{
		Use:   "browse <path>...",
		Short: "Browse messages in an interactive two-pane view",
		Long:  `Opens a TUI listing the parsed messages next to a transcript preview. Type to filter by keyword, Tab cycles the sender filter, Enter copies the selected message to the clipboard.`,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := loadInputs(cmd.ErrOrStderr(), args)
			if err != nil {
				return err
			}
			return tui.Run(in.result.Records, in.baseName, filters.options())
		},
	}

	filters.bind(cmd)

	return cmd
}
