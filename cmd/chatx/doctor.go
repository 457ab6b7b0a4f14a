package main

import (
	"fmt"
	"io"
	"os"

	"github.com/Zuo-Peng/chatx/internal/config"
	"github.com/Zuo-Peng/chatx/internal/session"
	"github.com/atotto/clipboard"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

func doctorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Self-check: verify config, session store and clipboard",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			home, err := os.UserHomeDir()
			if err != nil {
				return err
			}

			fmt.Fprintln(out, "=== Config ===")
			cfgPath := config.Path(home)
			checkFile(out, "File", cfgPath)
			cfg, err := config.Load()
			if err != nil {
				fmt.Fprintf(out, "  Status: INVALID (%v)\n", err)
				return fmt.Errorf("config: %w", err)
			}
			fmt.Fprintf(out, "  Addr:           %s\n", cfg.Addr)
			fmt.Fprintf(out, "  Session TTL:    %s\n", cfg.SessionTTL)
			fmt.Fprintf(out, "  Sweep interval: %s\n", cfg.SweepInterval)
			fmt.Fprintf(out, "  Preview rows:   %d\n", cfg.PreviewRows)
			fmt.Fprintf(out, "  Max upload:     %s\n", humanize.IBytes(uint64(cfg.MaxUploadBytes())))
			fmt.Fprintf(out, "  Delimiter:      %q\n", cfg.DelimiterRune())

			fmt.Fprintln(out, "\n=== Session store ===")
			fmt.Fprintf(out, "  Backend: %s\n", cfg.Store)
			if cfg.Store == config.StoreSQLite {
				fmt.Fprintf(out, "  Path: %s\n", cfg.DBPath)
				db, err := session.OpenSQLite(cfg.DBPath, cfg.SessionTTL)
				if err != nil {
					fmt.Fprintf(out, "  Status: ERROR (%v)\n", err)
					return err
				}
				defer db.Close()

				n, err := db.Count(cmd.Context())
				if err != nil {
					return fmt.Errorf("count sessions: %w", err)
				}
				fmt.Fprintf(out, "  Sessions: %d\n", n)
				if info, err := os.Stat(cfg.DBPath); err == nil {
					fmt.Fprintf(out, "  Size: %s\n", humanize.Bytes(uint64(info.Size())))
				}
			}
			fmt.Fprintln(out, "  Status: OK")

			fmt.Fprintln(out, "\n=== Tools ===")
			editor := os.Getenv("EDITOR")
			if editor == "" {
				editor = "less (EDITOR not set)"
			}
			fmt.Fprintf(out, "  Editor: %s\n", editor)
			if clipboard.Unsupported {
				fmt.Fprintln(out, "  Clipboard: UNAVAILABLE (browse cannot copy messages)")
			} else {
				fmt.Fprintln(out, "  Clipboard: OK")
			}

			return nil
		},
	}
}

func checkFile(out io.Writer, name, path string) {
	if info, err := os.Stat(path); err != nil {
		fmt.Fprintf(out, "  %s: %s (NOT FOUND, using defaults)\n", name, path)
	} else if info.IsDir() {
		fmt.Fprintf(out, "  %s: %s (IS A DIRECTORY)\n", name, path)
	} else {
		fmt.Fprintf(out, "  %s: %s (OK)\n", name, path)
	}
}
