package catalog

import (
	"context"
	"fmt"

	"github.com/angristan/music-tonight/internal/domain/model"
	"github.com/angristan/music-tonight/internal/infra/metrics"
	"github.com/angristan/music-tonight/internal/infra/ratelimit"
)

type rateLimited struct {
	client  Client
	limiter *ratelimit.Limiter
}

// RateLimited makes every lookup of client wait for a slot of limiter.
func RateLimited(client Client, limiter *ratelimit.Limiter) Client {
	return &rateLimited{client: client, limiter: limiter}
}

func (r *rateLimited) LookupArtist(ctx context.Context, performer string) (*model.ArtistRecord, error) {
	return ratelimit.Do(ctx, r.limiter, func(ctx context.Context) (*model.ArtistRecord, error) {
		return r.client.LookupArtist(ctx, performer)
	})
}

type instrumented struct {
	provider string
	client   Client
	metrics  *metrics.Metrics
}

func (i *instrumented) LookupArtist(ctx context.Context, performer string) (*model.ArtistRecord, error) {
	record, err := i.client.LookupArtist(ctx, performer)
	switch {
	case err != nil:
		i.metrics.CatalogLookup(i.provider, "error")
	case record == nil:
		i.metrics.CatalogLookup(i.provider, "not_found")
	default:
		i.metrics.CatalogLookup(i.provider, "found")
	}

	return record, err
}

// Registry holds one client per provider. Whether a provider is throttled
// is decided when it is registered, never by the caller.
type Registry struct {
	metrics *metrics.Metrics
	clients map[model.Provider]Client
}

func NewRegistry(m *metrics.Metrics) *Registry {
	return &Registry{
		metrics: m,
		clients: make(map[model.Provider]Client),
	}
}

type RegisterOption func(provider model.Provider, client Client) Client

// WithRateLimit throttles the provider through limiter. A nil limiter
// leaves the client unthrottled.
func WithRateLimit(limiter *ratelimit.Limiter) RegisterOption {
	return func(_ model.Provider, client Client) Client {
		if limiter == nil {
			return client
		}
		return RateLimited(client, limiter)
	}
}

func (r *Registry) Register(provider model.Provider, client Client, opts ...RegisterOption) {
	for _, opt := range opts {
		client = opt(provider, client)
	}

	r.clients[provider] = &instrumented{
		provider: string(provider),
		client:   client,
		metrics:  r.metrics,
	}
}

func (r *Registry) Client(provider model.Provider) (Client, error) {
	client, ok := r.clients[provider]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownProvider, provider)
	}

	return client, nil
}

func (r *Registry) Providers() []model.Provider {
	providers := make([]model.Provider, 0, len(r.clients))
	for p := range r.clients {
		providers = append(providers, p)
	}

	return providers
}
