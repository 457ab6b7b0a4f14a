package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/Zuo-Peng/chatx/internal/parse"
	"github.com/Zuo-Peng/chatx/internal/render"
	"github.com/Zuo-Peng/chatx/internal/search"
	"github.com/Zuo-Peng/chatx/internal/stats"
	"github.com/spf13/cobra"
)

const (
	pColorReset = "\033[0m"
	pColorDim   = "\033[2m"
	pColorBold  = "\033[1m"
)

// parseOutput is the machine-readable form of a parsed batch.
type parseOutput struct {
	BaseName       string            `json:"baseName"`
	FilesProcessed int               `json:"filesProcessed"`
	TotalRows      int               `json:"totalRows"`
	Errors         []parse.FileError `json:"errors"`
	Stats          stats.Summary     `json:"stats"`
	Records        []parse.Record    `json:"records"`
}

func parseCmd() *cobra.Command {
	var filters filterFlags
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "parse <path>...",
		Short: "Parse chat exports and print the messages",
		Long: `Parse .txt or .zip chat exports (files or directories).

On a terminal the messages are shown as a coloured transcript. When piped,
one message per line is written as TSV for fzf integration:
  index, date, time, sender, message

--json prints the full parse result including statistics.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := loadInputs(cmd.ErrOrStderr(), args)
			if err != nil {
				return err
			}

			opts := filters.options()
			records := search.Filter(in.result.Records, opts)
			out := cmd.OutOrStdout()

			if asJSON {
				fileErrors := in.result.Errors
				if fileErrors == nil {
					fileErrors = []parse.FileError{}
				}
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(parseOutput{
					BaseName:       in.baseName,
					FilesProcessed: in.result.FilesProcessed,
					TotalRows:      len(records),
					Errors:         fileErrors,
					Stats:          stats.Compute(records),
					Records:        records,
				})
			}

			if isTerminal(out) {
				text, _ := render.Transcript(records, render.Options{
					Hit:     -1,
					Context: -1,
					Keyword: opts.Keyword,
					Title:   in.baseName,
				})
				fmt.Fprint(out, text)
				return nil
			}

			// index stays the position in the unfiltered set so it can be
			// passed back to preview --hit and open --hit
			for _, r := range search.Search(in.result.Records, opts, 0) {
				fmt.Fprintf(out, "%d\t%s%s%s\t%s\t%s%s%s\t%s\n",
					r.Index,
					pColorDim, r.Record.Date, pColorReset,
					r.Record.Time,
					pColorBold, tsvField(r.Record.Sender), pColorReset,
					tsvField(r.Record.Message),
				)
			}
			return nil
		},
	}

	filters.bind(cmd)
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the parse result as JSON")

	return cmd
}

func tsvField(s string) string {
	s = strings.ReplaceAll(s, "\t", " ")
	s = strings.ReplaceAll(s, "\r", " ")
	return strings.ReplaceAll(s, "\n", " ")
}
