package deezer_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/angristan/music-tonight/internal/domain/fault"
	"github.com/angristan/music-tonight/internal/infra/repository/deezer"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
)

func newServer(t *testing.T, handler http.HandlerFunc) *deezer.Client {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	logger, _ := logtest.NewNullLogger()
	return deezer.New(otel.Tracer("test"), logger, server.Client(), server.URL)
}

func TestClient_LookupArtist(t *testing.T) {
	ctx := context.Background()

	t.Run("ranks the exact match's top tracks", func(t *testing.T) {
		var searched string
		client := newServer(t, func(w http.ResponseWriter, r *http.Request) {
			switch r.URL.Path {
			case "/search/artist":
				searched = r.URL.Query().Get("q")
				assert.Equal(t, "5", r.URL.Query().Get("limit"))
				fmt.Fprint(w, `{"data":[{"id":1,"name":"Daft Punk Tribute"},{"id":27,"name":"Daft Punk"}]}`)
			case "/artist/27/top":
				fmt.Fprint(w, `{"data":[
					{"id":3135556,"title":"Get Lucky","link":"https://www.deezer.com/track/3135556","rank":900000,"contributors":[{"id":27,"name":"Daft Punk"},{"id":2,"name":"Pharrell Williams"}]},
					{"id":3135553,"title":"One More Time","link":"https://www.deezer.com/track/3135553","rank":800000,"contributors":[{"id":27,"name":"Daft Punk"}]}
				]}`)
			default:
				http.NotFound(w, r)
			}
		})

		record, err := client.LookupArtist(ctx, "Daft Punk")
		require.NoError(t, err)
		require.NotNil(t, record)

		assert.Equal(t, "Daft Punk", searched)
		assert.Equal(t, "27", record.ID)
		require.Len(t, record.Tracks, 2)
		assert.Equal(t, "One More Time", record.Tracks[0].Name)
		assert.Equal(t, 80, record.Tracks[0].Popularity)
		assert.Equal(t, "deezer:track:3135553", record.Tracks[0].Key)
		assert.Equal(t, "Get Lucky", record.Tracks[1].Name)
		assert.Equal(t, "Daft Punk", record.Tracks[1].Artist)
	})

	t.Run("no exact match", func(t *testing.T) {
		client := newServer(t, func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"data":[{"id":1,"name":"daft punk"}]}`)
		})

		record, err := client.LookupArtist(ctx, "Daft Punk")
		require.NoError(t, err)
		assert.Nil(t, record)
	})

	t.Run("quota exceeded", func(t *testing.T) {
		client := newServer(t, func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"error":{"type":"Exception","message":"Quota limit exceeded","code":4}}`)
		})

		_, err := client.LookupArtist(ctx, "Justice")
		assert.ErrorIs(t, err, deezer.ErrQuotaExceeded)
		assert.Equal(t, fault.KindProvider, fault.KindOf(err))
	})

	t.Run("server error", func(t *testing.T) {
		client := newServer(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		})

		_, err := client.LookupArtist(ctx, "Justice")
		assert.ErrorIs(t, err, deezer.ErrAPI)
	})

	t.Run("malformed body", func(t *testing.T) {
		client := newServer(t, func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"data":`)
		})

		_, err := client.LookupArtist(ctx, "Justice")
		assert.Equal(t, fault.KindProvider, fault.KindOf(err))
	})
}
