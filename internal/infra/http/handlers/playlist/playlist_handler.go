package playlist

import (
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/trace"
)

const (
	defaultDaysOut            = 1
	defaultMaxMiles           = 125
	defaultMaxTracksPerArtist = 2
	defaultLanguage           = "en-US"
)

type PlaylistHandler struct {
	tracer          trace.Tracer
	logger          logrus.FieldLogger
	playlistService PlaylistService
}

func New(
	tracer trace.Tracer,
	logger logrus.FieldLogger,
	playlistService PlaylistService,
) *PlaylistHandler {
	return &PlaylistHandler{
		tracer:          tracer,
		logger:          logger,
		playlistService: playlistService,
	}
}
