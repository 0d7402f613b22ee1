package playlist

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/angristan/music-tonight/internal/app/services/events"
	"github.com/angristan/music-tonight/internal/domain/fault"
	"github.com/angristan/music-tonight/internal/domain/model"
	"github.com/angristan/music-tonight/internal/infra/repository/catalog"
	"github.com/angristan/music-tonight/internal/infra/repository/kvstore"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"
)

type TrackOptions struct {
	Provider           model.Provider
	MaxTracksPerArtist int
	Language           string
}

// BuildPlaylist finds the performers playing nearby and collects up to
// MaxTracksPerArtist of each one's top tracks. A performer whose lookup
// fails contributes no tracks; only event search failures, invalid options
// and the build deadline fail the whole build.
func (s *PlaylistService) BuildPlaylist(ctx context.Context, eventOpts events.Options, trackOpts TrackOptions) (_ *model.Playlist, err error) {
	ctx, span := s.tracer.Start(ctx, "PlaylistService.BuildPlaylist")
	defer span.End()

	start := time.Now()
	defer func() {
		outcome := "ok"
		if err != nil {
			outcome = fault.KindOf(err).String()
			span.RecordError(err)
		}
		s.metrics.PlaylistBuild(outcome, time.Since(start))
	}()

	if trackOpts.MaxTracksPerArtist < 1 {
		return nil, fault.ClientInput("playlist.Build", ErrInvalidMaxTracks)
	}

	client, err := s.catalogs.Client(trackOpts.Provider)
	if err != nil {
		return nil, fault.ClientInput("playlist.Build", fmt.Errorf("%w %q: %w", ErrInvalidProvider, trackOpts.Provider, err))
	}

	if s.config.BuildTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.config.BuildTimeout)
		defer cancel()
	}

	performers, err := s.events.Search(ctx, eventOpts)
	if err != nil {
		return nil, fault.Provider("playlist.Build", err)
	}

	span.SetAttributes(
		attribute.String("provider", string(trackOpts.Provider)),
		attribute.Int("performers", len(performers)),
	)

	playlist := &model.Playlist{
		Name:     model.PlaylistName(s.config.Now()),
		Tracks:   []model.Track{},
		Language: trackOpts.Language,
	}
	if len(performers) == 0 {
		return playlist, nil
	}

	perArtist := TracksPerArtist(len(performers), trackOpts.MaxTracksPerArtist)

	names := make([]string, 0, len(performers))
	for name := range performers {
		names = append(names, name)
	}

	var g errgroup.Group
	if s.config.LookupConcurrency > 0 {
		g.SetLimit(s.config.LookupConcurrency)
	}

	selected := make([][]model.Track, len(names))
	for i, name := range names {
		i, name := i, name
		g.Go(func() error {
			selected[i] = s.performerTracks(ctx, client, trackOpts.Provider, name, performers[name], perArtist)
			return nil
		})
	}
	_ = g.Wait()

	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return nil, fault.Provider("playlist.Build", ctx.Err())
	}

	for _, tracks := range selected {
		playlist.Tracks = append(playlist.Tracks, tracks...)
	}

	span.SetAttributes(attribute.Int("tracks", len(playlist.Tracks)))
	return playlist, nil
}

func (s *PlaylistService) performerTracks(
	ctx context.Context,
	client catalog.Client,
	provider model.Provider,
	performer string,
	event model.Event,
	limit int,
) []model.Track {
	record, err := s.artistRecord(ctx, client, provider, performer)
	if err != nil {
		s.logger.WithError(err).WithField("performer", performer).Warn("Artist lookup failed, skipping performer")
		return nil
	}
	if record == nil {
		return nil
	}

	return SelectTracks(record, event, limit)
}

// artistRecord reads the cached record for performer, falling back to the
// catalog on a miss. Unreadable cache entries are treated as misses.
func (s *PlaylistService) artistRecord(ctx context.Context, client catalog.Client, provider model.Provider, performer string) (*model.ArtistRecord, error) {
	key := CacheKey(provider, performer)
	logger := s.logger.WithField("key", key)

	data, err := s.cache.Get(ctx, key)
	switch {
	case err == nil:
		var record *model.ArtistRecord
		if err := json.Unmarshal(data, &record); err == nil {
			return record, nil
		}
		logger.WithError(err).Warn("Discarding undecodable cache entry")
	case errors.Is(err, kvstore.ErrCacheMiss):
	default:
		logger.WithError(err).Warn("Cache read failed, querying catalog")
	}

	lookupCtx := ctx
	if s.config.LookupTimeout > 0 {
		var cancel context.CancelFunc
		lookupCtx, cancel = context.WithTimeout(ctx, s.config.LookupTimeout)
		defer cancel()
	}

	record, err := client.LookupArtist(lookupCtx, performer)
	if err != nil {
		return nil, err
	}

	s.writeBack(ctx, key, record)
	return record, nil
}

// writeBack stores record (nil included) without blocking the build. The
// outcome is only logged; Flush waits for pending writes.
func (s *PlaylistService) writeBack(ctx context.Context, key string, record *model.ArtistRecord) {
	s.writes.Add(1)
	go func() {
		defer s.writes.Done()

		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.config.WriteTimeout)
		defer cancel()

		if err := s.cache.Set(ctx, key, record); err != nil {
			s.logger.WithError(err).WithFields(logrus.Fields{
				"key": key,
			}).Warn("Failed to cache artist record")
		}
	}()
}

// Flush waits for pending cache writes or for ctx to end.
func (s *PlaylistService) Flush(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.writes.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
