package spotify

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/angristan/music-tonight/internal/domain/fault"
	"github.com/angristan/music-tonight/internal/domain/model"
	"github.com/angristan/music-tonight/internal/infra/repository/catalog"
	"github.com/sirupsen/logrus"
	spotifyLib "github.com/zmb3/spotify/v2"
	spotifyauth "github.com/zmb3/spotify/v2/auth"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
	"golang.org/x/sync/singleflight"
)

const (
	artistSearchLimit = 5
	defaultMarket     = "US"
	renewBefore       = 5 * time.Minute
)

type SpotifyClientConfig struct {
	clientID     string
	clientSecret string
	market       string
	tokenURL     string
	httpClient   *http.Client
	tracer       trace.Tracer
	logger       logrus.FieldLogger
}

func NewSpotifyClientConfig(
	clientID string,
	clientSecret string,
	httpClient *http.Client,
	tracer trace.Tracer,
	logger logrus.FieldLogger,
) *SpotifyClientConfig {
	return &SpotifyClientConfig{
		clientID:     clientID,
		clientSecret: clientSecret,
		market:       defaultMarket,
		tokenURL:     spotifyauth.TokenURL,
		httpClient:   httpClient,
		tracer:       tracer,
		logger:       logger,
	}
}

// WithTokenURL points the client credentials flow at another token endpoint.
func (c *SpotifyClientConfig) WithTokenURL(tokenURL string) *SpotifyClientConfig {
	c.tokenURL = tokenURL
	return c
}

// API is the part of the Spotify Web API client used for lookups.
type API interface {
	Search(ctx context.Context, query string, t spotifyLib.SearchType, opts ...spotifyLib.RequestOption) (*spotifyLib.SearchResult, error)
	GetArtistsTopTracks(ctx context.Context, artistID spotifyLib.ID, country string) ([]spotifyLib.FullTrack, error)
	Token() (*oauth2.Token, error)
}

type SpotifyClient struct {
	tracer     trace.Tracer
	logger     logrus.FieldLogger
	market     string
	config     *clientcredentials.Config
	httpClient *http.Client

	mu        sync.RWMutex
	apiClient API
	renewals  singleflight.Group
}

// New fetches an app token with the client credentials flow and returns a
// client using it.
func New(ctx context.Context, config *SpotifyClientConfig) (*SpotifyClient, error) {
	spotifyConfig := &clientcredentials.Config{
		ClientID:     config.clientID,
		ClientSecret: config.clientSecret,
		TokenURL:     config.tokenURL,
	}

	client := &SpotifyClient{
		tracer:     config.tracer,
		logger:     config.logger,
		market:     config.market,
		config:     spotifyConfig,
		httpClient: config.httpClient,
	}

	if err := client.renewToken(ctx); err != nil {
		return nil, fmt.Errorf("spotify: initial token: %w", err)
	}

	return client, nil
}

// NewWithAPI wraps an existing API client. Tokens are never renewed.
func NewWithAPI(tracer trace.Tracer, logger logrus.FieldLogger, api API) *SpotifyClient {
	return &SpotifyClient{
		tracer:    tracer,
		logger:    logger,
		market:    defaultMarket,
		apiClient: api,
	}
}

var _ catalog.Client = (*SpotifyClient)(nil)

func (client *SpotifyClient) api() API {
	client.mu.RLock()
	defer client.mu.RUnlock()

	return client.apiClient
}

func (client *SpotifyClient) LookupArtist(ctx context.Context, performer string) (*model.ArtistRecord, error) {
	ctx, span := client.tracer.Start(ctx, "SpotifyClient.LookupArtist")
	defer span.End()

	span.SetAttributes(attribute.String("performer", performer))
	logger := client.logger.WithField("performer", performer)

	if err := client.RenewTokenIfNeeded(ctx); err != nil {
		span.RecordError(err)
		return nil, fault.Provider("spotify.RenewTokenIfNeeded", err)
	}

	api := client.api()

	results, err := api.Search(ctx, `"`+performer+`"`, spotifyLib.SearchTypeArtist, spotifyLib.Limit(artistSearchLimit))
	if err != nil {
		span.RecordError(err)
		return nil, fault.Provider("spotify.Search", err)
	}

	if results.Artists == nil || len(results.Artists.Artists) == 0 {
		logger.Info("No artists found")
		return nil, nil
	}

	var match *spotifyLib.FullArtist
	for i := range results.Artists.Artists {
		if results.Artists.Artists[i].Name == performer {
			match = &results.Artists.Artists[i]
			break
		}
	}
	if match == nil {
		logger.Info("No exact name match for artist")
		return nil, nil
	}

	span.SetAttributes(attribute.String("artist_id", string(match.ID)))

	topTracks, err := api.GetArtistsTopTracks(ctx, match.ID, client.market)
	if err != nil {
		span.RecordError(err)
		return nil, fault.Provider("spotify.GetArtistsTopTracks", err)
	}
	if len(topTracks) == 0 {
		logger.Info("No tracks for artist")
		return nil, nil
	}

	candidates := make([]catalog.Candidate, 0, len(topTracks))
	for _, t := range topTracks {
		candidates = append(candidates, catalog.Candidate{
			Name:       t.Name,
			URI:        string(t.URI),
			Key:        string(t.URI),
			Popularity: int(t.Popularity),
			NumArtists: len(t.Artists),
		})
	}

	return &model.ArtistRecord{
		ID:     string(match.ID),
		Name:   match.Name,
		Tracks: catalog.Rank(performer, candidates),
	}, nil
}

// RenewTokenIfNeeded checks if the token expires soon, and if so recreates the API client with a new token
func (client *SpotifyClient) RenewTokenIfNeeded(ctx context.Context) error {
	if client.config == nil {
		return nil
	}

	ctx, span := client.tracer.Start(ctx, "SpotifyClient.RenewTokenIfNeeded")
	defer span.End()

	span.AddEvent("Checking if Spotify token needs to be renewed")

	expiry, err := client.tokenExpiry()
	if err != nil {
		return err
	}
	if time.Until(expiry) > renewBefore {
		span.AddEvent("Token is still valid, no need to refresh", trace.WithAttributes(
			attribute.Float64("minutes_until_expiry", time.Until(expiry).Minutes()),
		))
		return nil
	}

	// Concurrent lookups share one renewal. The expiry is checked again so a
	// caller arriving just after a renewal does not start another one.
	_, err, shared := client.renewals.Do("token", func() (any, error) {
		expiry, err := client.tokenExpiry()
		if err != nil {
			return nil, err
		}
		if time.Until(expiry) > renewBefore {
			return nil, nil
		}

		if err := client.renewToken(context.WithoutCancel(ctx)); err != nil {
			return nil, err
		}

		span.AddEvent("Token refreshed")
		client.logger.Info("Spotify token refreshed")
		return nil, nil
	})
	span.SetAttributes(attribute.Bool("shared_renewal", shared))

	return err
}

func (client *SpotifyClient) tokenExpiry() (time.Time, error) {
	token, err := client.api().Token()
	if err != nil {
		return time.Time{}, fmt.Errorf("client.apiClient.Token: %w", err)
	}

	return token.Expiry, nil
}

func (client *SpotifyClient) renewToken(ctx context.Context) error {
	if client.httpClient != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, client.httpClient)
	}

	token, err := client.config.Token(ctx)
	if err != nil {
		return fmt.Errorf("client.config.Token: %w", err)
	}

	httpClient := spotifyauth.New().Client(context.WithoutCancel(ctx), token)

	client.mu.Lock()
	client.apiClient = spotifyLib.New(httpClient)
	client.mu.Unlock()

	return nil
}
