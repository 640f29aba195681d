package cmd

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/leedsrising/pdf-to-text/internal/config"
	"github.com/leedsrising/pdf-to-text/internal/server"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the sanitization and rehydration engines over HTTP",
	Long: `Serve starts an HTTP API exposing the same pipeline as the sanitize and
rehydrate commands. Detectors and embedded concept vectors are built once at
startup, so repeated requests avoid per-document model setup.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		provider, err := buildProvider(cfg)
		if err != nil {
			if !disableSemantic {
				return err
			}
			log.Warn().Err(err).Msg("no llm provider; delegated rehydration unavailable")
			provider = nil
		}
		engine, err := buildEngine(ctx, cfg, provider)
		if err != nil {
			return err
		}

		store, err := openEvidenceStore(cfg)
		if err != nil {
			return err
		}
		defer store.Close()

		srv := server.New(serveAddr, engine, buildRehydrators(cfg, provider), store)

		errCh := make(chan error, 1)
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
		}()

		select {
		case err := <-errCh:
			return err
		case <-ctx.Done():
		}

		log.Info().Msg("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", ":8080", "listen address")
	serveCmd.Flags().BoolVar(&disableNER, "disable-ner", false, "skip the statistical recognizer")
	serveCmd.Flags().BoolVar(&disableSemantic, "disable-semantic", false, "skip the embedding-based scorer")
	rootCmd.AddCommand(serveCmd)
}
