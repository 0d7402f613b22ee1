package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/angristan/music-tonight/internal/app/services/events"
	"github.com/angristan/music-tonight/internal/app/services/playlist"
	server "github.com/angristan/music-tonight/internal/infra/http"
	playlisthandler "github.com/angristan/music-tonight/internal/infra/http/handlers/playlist"
	"github.com/angristan/music-tonight/internal/infra/metrics"
	"github.com/angristan/music-tonight/internal/infra/repository/bandsintown"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel"
)

const shutdownTimeout = 15 * time.Second

func init() {
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the playlist HTTP server",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	config := GetEnv()
	logger := setupLogging(config)

	shutdownTracing, err := setupTracing(ctx, config.OTLPEndpoint)
	if err != nil {
		return fmt.Errorf("setup tracing: %w", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := shutdownTracing(ctx); err != nil {
			logger.WithError(err).Warn("Failed to flush traces")
		}
	}()

	tracer := otel.Tracer(serviceName)

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(reg)

	store, err := openStore(ctx, config, tracer, logger, m)
	if err != nil {
		return fmt.Errorf("open artist store: %w", err)
	}
	defer store.Close()

	httpClient := newHTTPClient(config)

	catalogs, err := newCatalogRegistry(ctx, config, tracer, logger, m, httpClient)
	if err != nil {
		return err
	}

	eventSearch := events.New(
		tracer,
		logger,
		m,
		bandsintown.New(tracer, httpClient, config.BandsintownURL, config.BandsintownAppID),
		events.Config{
			DefaultLocation: config.DefaultLocation,
			ProviderTimeout: config.ProviderTimeout,
		},
	)

	playlistService := playlist.New(tracer, logger, m, eventSearch, store, catalogs, playlist.Config{
		LookupConcurrency: config.LookupConcurrency,
		BuildTimeout:      config.BuildTimeout,
		LookupTimeout:     config.ProviderTimeout,
	})

	srv, err := server.New(
		server.NewConfig(config.Port, false),
		logger,
		m,
		reg,
		playlisthandler.New(tracer, logger, playlistService),
	)
	if err != nil {
		return err
	}

	serveErr := make(chan error, 1)
	go func() {
		defer close(serveErr)

		logger.WithField("addr", srv.Addr).WithField("providers", catalogs.Providers()).Info("Starting HTTP server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("Shutting down")
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Warn("HTTP server did not shut down cleanly")
	}
	if err := playlistService.Flush(shutdownCtx); err != nil {
		logger.WithError(err).Warn("Pending artist cache writes were dropped")
	}

	return nil
}
