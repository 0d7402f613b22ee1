package bandsintown

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/angristan/music-tonight/internal/domain/fault"
	"github.com/angristan/music-tonight/internal/domain/model"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const (
	DefaultBaseURL = "http://api.bandsintown.com"

	unknownLocation = "Unknown Location"
	datetimeLayout  = "2006-01-02T15:04:05"
)

var (
	ErrUnknownLocation = errors.New("cannot geolocate the requested location")
	ErrAPI             = errors.New("bandsintown api error")
)

type Client struct {
	tracer     trace.Tracer
	httpClient *http.Client
	baseURL    string
	appID      string
}

func New(
	tracer trace.Tracer,
	httpClient *http.Client,
	baseURL string,
	appID string,
) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	return &Client{
		tracer:     tracer,
		httpClient: httpClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
		appID:      appID,
	}
}

type artist struct {
	Name string `json:"name"`
}

type venue struct {
	Name      string  `json:"name"`
	City      string  `json:"city"`
	Region    string  `json:"region"`
	Country   string  `json:"country"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type event struct {
	ID           json.RawMessage `json:"id"`
	Artists      []artist        `json:"artists"`
	Datetime     string          `json:"datetime"`
	TicketStatus string          `json:"ticket_status"`
	TicketURL    string          `json:"ticket_url"`
	Venue        venue           `json:"venue"`
}

type errorResponse struct {
	Errors []string `json:"errors"`
}

// Search lists the events around q.Location within q.Radius miles between
// the start and end dates (inclusive, day granularity).
func (c *Client) Search(ctx context.Context, q model.EventQuery) ([]model.Event, error) {
	ctx, span := c.tracer.Start(ctx, "BandsintownClient.Search")
	defer span.End()

	span.SetAttributes(
		attribute.String("location", q.Location),
		attribute.Int("radius", q.Radius),
	)

	params := url.Values{}
	params.Set("app_id", c.appID)
	params.Set("format", "json")
	params.Set("per_page", strconv.Itoa(q.PerPage))
	params.Set("location", q.Location)
	params.Set("radius", strconv.Itoa(q.Radius))
	params.Set("date", q.Start.UTC().Format("2006-01-02")+","+q.End.UTC().Format("2006-01-02"))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/events/search?"+params.Encode(), nil)
	if err != nil {
		return nil, fault.Provider("bandsintown.Search", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		span.RecordError(err)
		return nil, fault.Provider("bandsintown.Search", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fault.Provider("bandsintown.Search", err)
	}

	trimmed := bytes.TrimSpace(body)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		err := decodeErrors(trimmed)
		span.RecordError(err)
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fault.Provider("bandsintown.Search", fmt.Errorf("%w: unexpected status %d", ErrAPI, resp.StatusCode))
	}

	var raw []event
	if err := json.Unmarshal(trimmed, &raw); err != nil {
		return nil, fault.Provider("bandsintown.Search", fmt.Errorf("decode events: %w", err))
	}

	events := make([]model.Event, 0, len(raw))
	for _, e := range raw {
		events = append(events, e.toModel())
	}

	span.SetAttributes(attribute.Int("results", len(events)))
	return events, nil
}

func decodeErrors(body []byte) error {
	var payload errorResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return fault.Provider("bandsintown.Search", fmt.Errorf("decode error payload: %w", err))
	}

	if len(payload.Errors) > 0 && payload.Errors[0] == unknownLocation {
		return fault.ClientInput("bandsintown.Search", ErrUnknownLocation)
	}

	return fault.Provider("bandsintown.Search", fmt.Errorf("%w: %s", ErrAPI, strings.Join(payload.Errors, "; ")))
}

func (e event) toModel() model.Event {
	performers := make([]model.Performer, 0, len(e.Artists))
	for _, a := range e.Artists {
		performers = append(performers, model.Performer{Name: a.Name})
	}

	out := model.Event{
		ID:           strings.Trim(string(e.ID), `"`),
		Performers:   performers,
		TicketStatus: e.TicketStatus,
		TicketURL:    e.TicketURL,
		Venue: model.Venue{
			Name:      e.Venue.Name,
			City:      e.Venue.City,
			Region:    e.Venue.Region,
			Country:   e.Venue.Country,
			Latitude:  e.Venue.Latitude,
			Longitude: e.Venue.Longitude,
		},
	}

	// Datetimes are venue-local wall clock times without an offset.
	if dt, err := time.Parse(datetimeLayout, e.Datetime); err == nil {
		out.Datetime = dt
		out.DateString = fmt.Sprintf("%d-%d", int(dt.Month()), dt.Day())
	}

	return out
}
