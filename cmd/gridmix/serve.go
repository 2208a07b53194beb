package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/gridmix/gridmix/internal/api"
)

func serveCmd() *cobra.Command {
	var listen string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the scenario evaluator as an HTTP JSON API",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return runServe(listen)
		},
	}

	cmd.Flags().StringVar(&listen, "listen", "", "listen address (overrides config)")
	return cmd
}

func runServe(listen string) error {
	cfg, table, err := loadInputs()
	if err != nil {
		return err
	}
	if listen != "" {
		cfg.Server.Listen = listen
	}

	// Fail fast when the configured mix names columns the dataset lacks,
	// instead of erroring on every request.
	mix := cfg.ScenarioMix()
	if !table.HasTechnology(mix.Baseload) {
		return fmt.Errorf("dataset has no %q column for the baseload", mix.Baseload)
	}
	for tech := range mix.Weights {
		if !table.HasTechnology(tech) {
			return fmt.Errorf("dataset has no %q column", tech)
		}
	}

	srv := api.New(cfg, table, logger)
	server := &http.Server{
		Addr:              cfg.Server.Listen,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	shutdownDone := make(chan struct{})
	go func() {
		signalChan := make(chan os.Signal, 1)
		signal.Notify(signalChan, syscall.SIGINT, syscall.SIGTERM)
		<-signalChan

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			logger.Error().Err(err).Msg("shutdown failed")
		}
		close(shutdownDone)
	}()

	logger.Info().
		Str("addr", cfg.Server.Listen).
		Int("rows", table.Len()).
		Msg("starting gridmix API")
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	<-shutdownDone
	return nil
}
