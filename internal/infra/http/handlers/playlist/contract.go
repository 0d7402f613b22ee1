package playlist

import (
	"context"

	"github.com/angristan/music-tonight/internal/app/services/events"
	"github.com/angristan/music-tonight/internal/app/services/playlist"
	"github.com/angristan/music-tonight/internal/domain/model"
)

type PlaylistService interface {
	BuildPlaylist(ctx context.Context, eventOpts events.Options, trackOpts playlist.TrackOptions) (*model.Playlist, error)
}
