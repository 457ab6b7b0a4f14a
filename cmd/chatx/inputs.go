package main

import (
	"fmt"
	"io"
	"os"

	"github.com/Zuo-Peng/chatx/internal/parse"
	"github.com/Zuo-Peng/chatx/internal/scan"
	"github.com/Zuo-Peng/chatx/internal/search"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// loaded is a parsed set of input paths.
type loaded struct {
	files    []scan.FileInfo
	result   *parse.ParseResult
	baseName string
}

// loadInputs scans, reads and parses paths. Per-file failures are warned
// about on stderr; only a batch without any record is an error.
func loadInputs(stderr io.Writer, paths []string) (*loaded, error) {
	files, err := scan.ScanPaths(paths...)
	if err != nil {
		return nil, fmt.Errorf("scan: %w", err)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no .txt or .zip files found in %v", paths)
	}

	names := make([]string, len(files))
	for i, fi := range files {
		names[i] = fi.Path
	}

	result, err := parse.ParseSources(scan.Load(files))
	if result != nil {
		for _, fe := range result.Errors {
			fmt.Fprintf(stderr, "  WARN: parse %s: %s\n", fe.File, fe.Error)
		}
	}
	if err != nil {
		return nil, err
	}
	return &loaded{files: files, result: result, baseName: scan.BaseName(names...)}, nil
}

type filterFlags struct {
	sender   string
	dateFrom string
	dateTo   string
	keyword  string
}

func (f *filterFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.sender, "sender", "", `Only messages from this sender ("all" = everyone)`)
	cmd.Flags().StringVar(&f.dateFrom, "from", "", "Only messages on or after this date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&f.dateTo, "to", "", "Only messages on or before this date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&f.keyword, "keyword", "", "Only messages whose text or sender contains this (case-insensitive)")
}

func (f filterFlags) options() search.Options {
	return search.Options{
		Sender:   f.sender,
		DateFrom: f.dateFrom,
		DateTo:   f.dateTo,
		Keyword:  f.keyword,
	}
}

// isTerminal reports whether w is an interactive terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
