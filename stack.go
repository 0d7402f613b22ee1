package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/angristan/music-tonight/internal/domain/model"
	"github.com/angristan/music-tonight/internal/infra/metrics"
	"github.com/angristan/music-tonight/internal/infra/ratelimit"
	"github.com/angristan/music-tonight/internal/infra/repository/catalog"
	"github.com/angristan/music-tonight/internal/infra/repository/deezer"
	"github.com/angristan/music-tonight/internal/infra/repository/kvstore"
	"github.com/angristan/music-tonight/internal/infra/repository/kvstore/redis"
	"github.com/angristan/music-tonight/internal/infra/repository/kvstore/sqlite"
	"github.com/angristan/music-tonight/internal/infra/repository/spotify"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/trace"
)

func openBackend(config *Env) (kvstore.Backend, error) {
	switch config.StoreBackend {
	case "redis":
		backend, err := redis.NewFromURL(config.RedisURL, config.StoreTable)
		if err != nil {
			return nil, err
		}
		return backend, nil
	case "sqlite":
		backend, err := sqlite.Open(config.SQLitePath, config.StoreTable)
		if err != nil {
			return nil, err
		}
		return backend, nil
	case "memory":
		return kvstore.NewMemoryBackend(), nil
	}

	return nil, fmt.Errorf("unknown STORE_BACKEND %q (want redis, sqlite or memory)", config.StoreBackend)
}

func openStore(ctx context.Context, config *Env, tracer trace.Tracer, logger logrus.FieldLogger, m *metrics.Metrics) (*kvstore.Store, error) {
	backend, err := openBackend(config)
	if err != nil {
		return nil, err
	}

	store, err := kvstore.Open(ctx, tracer, logger, m, backend, config.ProviderTimeout)
	if err != nil {
		_ = backend.Close()
		return nil, err
	}

	return store, nil
}

func newHTTPClient(config *Env) *http.Client {
	return &http.Client{
		Transport: otelhttp.NewTransport(http.DefaultTransport),
		Timeout:   config.ProviderTimeout,
	}
}

func newLimiter(config *Env, provider model.Provider, m *metrics.Metrics) *ratelimit.Limiter {
	return ratelimit.New(config.RateLimitRPS,
		ratelimit.WithBurst(config.RateLimitBurst),
		ratelimit.WithDelayObserver(func(d time.Duration) {
			m.RateLimitDelay(string(provider), d)
		}),
	)
}

// newCatalogRegistry registers Deezer, and Spotify when credentials are set.
// Each rate limited provider gets its own limiter.
func newCatalogRegistry(
	ctx context.Context,
	config *Env,
	tracer trace.Tracer,
	logger logrus.FieldLogger,
	m *metrics.Metrics,
	httpClient *http.Client,
) (*catalog.Registry, error) {
	registry := catalog.NewRegistry(m)

	if config.SpotifyClientID != "" && config.SpotifyClientSecret != "" {
		spotifyClient, err := spotify.New(ctx, spotify.NewSpotifyClientConfig(
			config.SpotifyClientID,
			config.SpotifyClientSecret,
			httpClient,
			tracer,
			logger.WithField("provider", model.ProviderSpotify),
		))
		if err != nil {
			return nil, fmt.Errorf("spotify: %w", err)
		}

		var opts []catalog.RegisterOption
		if config.SpotifyRateLimited {
			opts = append(opts, catalog.WithRateLimit(newLimiter(config, model.ProviderSpotify, m)))
		}
		registry.Register(model.ProviderSpotify, spotifyClient, opts...)
	} else {
		logger.Warn("SPOTIFY_CLIENT_ID or SPOTIFY_CLIENT_SECRET not set, spotify playlists are disabled")
	}

	deezerClient := deezer.New(tracer, logger.WithField("provider", model.ProviderDeezer), httpClient, config.DeezerURL)

	var opts []catalog.RegisterOption
	if config.DeezerRateLimited {
		opts = append(opts, catalog.WithRateLimit(newLimiter(config, model.ProviderDeezer, m)))
	}
	registry.Register(model.ProviderDeezer, deezerClient, opts...)

	return registry, nil
}
