package bandsintown_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/angristan/music-tonight/internal/domain/fault"
	"github.com/angristan/music-tonight/internal/domain/model"
	"github.com/angristan/music-tonight/internal/infra/repository/bandsintown"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
)

func newClient(t *testing.T, handler http.HandlerFunc) *bandsintown.Client {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return bandsintown.New(otel.Tracer("test"), server.Client(), server.URL, "music-tonight-test")
}

func query() model.EventQuery {
	return model.EventQuery{
		Location: "40.7436300,-73.9906270",
		Start:    time.Date(2026, 10, 18, 18, 0, 0, 0, time.UTC),
		End:      time.Date(2026, 10, 20, 18, 0, 0, 0, time.UTC),
		Radius:   25,
		PerPage:  50,
	}
}

func TestClient_Search(t *testing.T) {
	ctx := context.Background()

	t.Run("sends the query and maps events", func(t *testing.T) {
		var got url.Values
		client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/events/search", r.URL.Path)
			got = r.URL.Query()
			fmt.Fprint(w, `[{
				"id": 8675309,
				"artists": [{"name": "Beach House"}, {"name": "Wild Nothing"}],
				"datetime": "2026-10-19T20:00:00",
				"ticket_status": "available",
				"ticket_url": "https://tickets.example/8675309",
				"venue": {"name": "Brooklyn Steel", "city": "Brooklyn", "region": "NY", "country": "United States", "latitude": 40.71, "longitude": -73.93}
			}]`)
		})

		events, err := client.Search(ctx, query())
		require.NoError(t, err)

		assert.Equal(t, "music-tonight-test", got.Get("app_id"))
		assert.Equal(t, "json", got.Get("format"))
		assert.Equal(t, "50", got.Get("per_page"))
		assert.Equal(t, "25", got.Get("radius"))
		assert.Equal(t, "40.7436300,-73.9906270", got.Get("location"))
		assert.Equal(t, "2026-10-18,2026-10-20", got.Get("date"))

		require.Len(t, events, 1)
		e := events[0]
		assert.Equal(t, "8675309", e.ID)
		assert.Equal(t, []model.Performer{{Name: "Beach House"}, {Name: "Wild Nothing"}}, e.Performers)
		assert.Equal(t, "10-19", e.DateString)
		assert.Equal(t, "available", e.TicketStatus)
		assert.Equal(t, "Brooklyn Steel", e.Venue.Name)
	})

	t.Run("date window is in UTC", func(t *testing.T) {
		var got url.Values
		client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
			got = r.URL.Query()
			fmt.Fprint(w, `[]`)
		})

		edt := time.FixedZone("EDT", -4*3600)
		q := query()
		q.Start = time.Date(2026, 10, 18, 22, 0, 0, 0, edt)
		q.End = time.Date(2026, 10, 19, 22, 0, 0, 0, edt)

		_, err := client.Search(ctx, q)
		require.NoError(t, err)
		assert.Equal(t, "2026-10-19,2026-10-20", got.Get("date"))
	})

	t.Run("unknown location is a client error", func(t *testing.T) {
		client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"errors": ["Unknown Location"]}`)
		})

		_, err := client.Search(ctx, query())
		assert.ErrorIs(t, err, bandsintown.ErrUnknownLocation)
		assert.Equal(t, fault.KindClientInput, fault.KindOf(err))
	})

	t.Run("other errors are provider faults", func(t *testing.T) {
		client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"errors": ["app_id is invalid"]}`)
		})

		_, err := client.Search(ctx, query())
		assert.ErrorIs(t, err, bandsintown.ErrAPI)
		assert.Equal(t, fault.KindProvider, fault.KindOf(err))
	})

	t.Run("unexpected status", func(t *testing.T) {
		client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})

		_, err := client.Search(ctx, query())
		assert.Equal(t, fault.KindProvider, fault.KindOf(err))
	})

	t.Run("empty result", func(t *testing.T) {
		client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `[]`)
		})

		events, err := client.Search(ctx, query())
		require.NoError(t, err)
		assert.Empty(t, events)
	})
}
