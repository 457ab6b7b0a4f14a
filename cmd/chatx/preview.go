package main

import (
	"fmt"

	"github.com/Zuo-Peng/chatx/internal/render"
	"github.com/spf13/cobra"
)

func previewCmd() *cobra.Command {
	var hit int
	var context int
	var keyword string
	var width int

	cmd := &cobra.Command{
		Use:   "preview <path>...",
		Short: "Preview a chat with context around a message",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := loadInputs(cmd.ErrOrStderr(), args)
			if err != nil {
				return err
			}
			records := in.result.Records
			if hit >= len(records) {
				return fmt.Errorf("--hit %d out of range (%d messages)", hit, len(records))
			}

			out, _ := render.Transcript(records, render.Options{
				Hit:     hit,
				Context: context,
				Width:   width,
				Keyword: keyword,
				Title:   in.baseName,
			})
			fmt.Fprint(cmd.OutOrStdout(), out)
			return nil
		},
	}

	cmd.Flags().IntVar(&hit, "hit", -1, "Message index to highlight (from parse output)")
	cmd.Flags().IntVar(&context, "context", 10, "Messages before/after hit to show (-1 = all)")
	cmd.Flags().StringVar(&keyword, "keyword", "", "Keyword to highlight")
	cmd.Flags().IntVar(&width, "width", 0, "Wrap width (0 = no wrap)")

	return cmd
}
