// Package deezer looks up artists and their top tracks on the Deezer API.
// The API enforces a request quota per client, so this provider is usually
// registered behind a rate limiter.
package deezer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/angristan/music-tonight/internal/domain/fault"
	"github.com/angristan/music-tonight/internal/domain/model"
	"github.com/angristan/music-tonight/internal/infra/repository/catalog"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const (
	DefaultBaseURL = "https://api.deezer.com"

	artistSearchLimit = 5
	topTracksLimit    = 25

	// Deezer ranks run up to roughly a million; popularity is rank scaled
	// onto 0-100 so the shared scoring applies.
	rankPerPopularityPoint = 10_000
)

var (
	ErrQuotaExceeded = errors.New("deezer quota exceeded")
	ErrAPI           = errors.New("deezer api error")
)

type Client struct {
	tracer     trace.Tracer
	logger     logrus.FieldLogger
	httpClient *http.Client
	baseURL    string
}

func New(
	tracer trace.Tracer,
	logger logrus.FieldLogger,
	httpClient *http.Client,
	baseURL string,
) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	return &Client{
		tracer:     tracer,
		logger:     logger,
		httpClient: httpClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
	}
}

var _ catalog.Client = (*Client)(nil)

type apiError struct {
	Type    string `json:"type"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}

type artist struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type track struct {
	ID           int64    `json:"id"`
	Title        string   `json:"title"`
	Link         string   `json:"link"`
	Rank         int      `json:"rank"`
	Contributors []artist `json:"contributors"`
}

type artistSearchResponse struct {
	Data  []artist  `json:"data"`
	Error *apiError `json:"error"`
}

type topTracksResponse struct {
	Data  []track   `json:"data"`
	Error *apiError `json:"error"`
}

func (c *Client) LookupArtist(ctx context.Context, performer string) (*model.ArtistRecord, error) {
	ctx, span := c.tracer.Start(ctx, "DeezerClient.LookupArtist")
	defer span.End()

	span.SetAttributes(attribute.String("performer", performer))
	logger := c.logger.WithField("performer", performer)

	query := url.Values{}
	query.Set("q", performer)
	query.Set("limit", strconv.Itoa(artistSearchLimit))

	var artists artistSearchResponse
	if err := c.get(ctx, "/search/artist?"+query.Encode(), &artists, func() *apiError { return artists.Error }); err != nil {
		span.RecordError(err)
		return nil, fault.Provider("deezer.SearchArtist", err)
	}

	var match *artist
	for i := range artists.Data {
		if artists.Data[i].Name == performer {
			match = &artists.Data[i]
			break
		}
	}
	if match == nil {
		logger.WithField("candidates", len(artists.Data)).Info("No exact name match for artist")
		return nil, nil
	}

	artistID := strconv.FormatInt(match.ID, 10)
	span.SetAttributes(attribute.String("artist_id", artistID))

	var tracks topTracksResponse
	path := fmt.Sprintf("/artist/%s/top?limit=%d", artistID, topTracksLimit)
	if err := c.get(ctx, path, &tracks, func() *apiError { return tracks.Error }); err != nil {
		span.RecordError(err)
		return nil, fault.Provider("deezer.TopTracks", err)
	}
	if len(tracks.Data) == 0 {
		logger.Info("No tracks for artist")
		return nil, nil
	}

	candidates := make([]catalog.Candidate, 0, len(tracks.Data))
	for _, t := range tracks.Data {
		candidates = append(candidates, catalog.Candidate{
			Name:       t.Title,
			URI:        t.Link,
			Key:        "deezer:track:" + strconv.FormatInt(t.ID, 10),
			Popularity: popularity(t.Rank),
			NumArtists: len(t.Contributors),
		})
	}

	return &model.ArtistRecord{
		ID:     artistID,
		Name:   match.Name,
		Tracks: catalog.Rank(performer, candidates),
	}, nil
}

func popularity(rank int) int {
	p := rank / rankPerPopularityPoint
	if p > 100 {
		return 100
	}
	if p < 0 {
		return 0
	}

	return p
}

// get decodes the JSON body at path into dst. Deezer reports most failures
// with a 200 and an "error" object, which apiErr extracts after decoding.
func (c *Client) get(ctx context.Context, path string, dst any, apiErr func() *apiError) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: unexpected status %d", ErrAPI, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}

	if e := apiErr(); e != nil {
		if e.Code == 4 {
			return fmt.Errorf("%w: %s", ErrQuotaExceeded, e.Message)
		}
		return fmt.Errorf("%w: %s (%d)", ErrAPI, e.Message, e.Code)
	}

	return nil
}
