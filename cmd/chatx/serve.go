package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Zuo-Peng/chatx/internal/api"
	"github.com/Zuo-Peng/chatx/internal/config"
	"github.com/Zuo-Peng/chatx/internal/session"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 10 * time.Second

// openStore builds the configured session store. The returned func
// releases it.
func openStore(cfg *config.Config) (session.Store, func() error, error) {
	switch cfg.Store {
	case config.StoreSQLite:
		s, err := session.OpenSQLite(cfg.DBPath, cfg.SessionTTL)
		if err != nil {
			return nil, nil, fmt.Errorf("open session db: %w", err)
		}
		return s, s.Close, nil
	default:
		return session.NewMemoryStore(cfg.SessionTTL), func() error { return nil }, nil
	}
}

func serveCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API for uploads, previews and one-time exports",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("config: %w", err)
			}
			if addr != "" {
				cfg.Addr = addr
			}

			store, closeStore, err := openStore(cfg)
			if err != nil {
				return err
			}
			defer closeStore()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			go session.RunSweeper(ctx, store, cfg.SweepInterval)

			server := &http.Server{
				Addr:              cfg.Addr,
				Handler:           api.NewServer(store, cfg, version).Router(),
				ReadHeaderTimeout: 15 * time.Second,
				ReadTimeout:       5 * time.Minute,
				WriteTimeout:      5 * time.Minute,
				IdleTimeout:       60 * time.Second,
			}

			errCh := make(chan error, 1)
			go func() {
				log.Printf("chatx %s listening on %s (store=%s, ttl=%s)", version, cfg.Addr, cfg.Store, cfg.SessionTTL)
				errCh <- server.ListenAndServe()
			}()

			select {
			case err := <-errCh:
				if !errors.Is(err, http.ErrServerClosed) {
					return err
				}
				return nil
			case <-ctx.Done():
			}

			log.Printf("shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			return server.Shutdown(shutdownCtx)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (overrides CHATX_ADDR and config.toml)")

	return cmd
}
