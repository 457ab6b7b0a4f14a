package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/Zuo-Peng/chatx/internal/config"
	"github.com/Zuo-Peng/chatx/internal/export"
	"github.com/Zuo-Peng/chatx/internal/search"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

func exportCmd() *cobra.Command {
	var filters filterFlags
	var format, columns, delimiter, output string

	cmd := &cobra.Command{
		Use:   "export <path>...",
		Short: "Export parsed messages as csv, json, html, xlsx or yaml",
		Long: `Export parsed messages. Unknown formats fall back to csv.

--columns selects and orders the fields of csv, html and xlsx output
(json and yaml always carry every field). The file is written to the
current directory under the export's base name unless --output is set;
--output - writes to stdout.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			delim, err := config.ParseDelimiter(delimiter)
			if err != nil {
				return err
			}

			in, err := loadInputs(cmd.ErrOrStderr(), args)
			if err != nil {
				return err
			}

			records := search.Filter(in.result.Records, filters.options())
			payload, err := export.Render(records, export.Options{
				Format:    export.ParseFormat(format),
				Columns:   export.ParseColumns(columns),
				Delimiter: delim,
				BaseName:  in.baseName,
			})
			if err != nil {
				return err
			}

			if output == "-" {
				_, err := cmd.OutOrStdout().Write(payload.Body)
				return err
			}

			dest := output
			if dest == "" {
				dest = payload.FileName
			} else if info, err := os.Stat(dest); err == nil && info.IsDir() {
				dest = filepath.Join(dest, payload.FileName)
			}
			if err := os.WriteFile(dest, payload.Body, 0o644); err != nil {
				return fmt.Errorf("write export: %w", err)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %d messages (%s) to %s\n",
				len(records), humanize.Bytes(uint64(len(payload.Body))), dest)
			return nil
		},
	}

	filters.bind(cmd)
	cmd.Flags().StringVarP(&format, "format", "f", "csv", "Export format: csv, json, html, xlsx, yaml")
	cmd.Flags().StringVar(&columns, "columns", "", "Comma separated column list (default: all)")
	cmd.Flags().StringVarP(&delimiter, "delimiter", "d", ",", `CSV delimiter (one character, or "tab")`)
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file or directory (- for stdout)")

	return cmd
}
