package playlist

import (
	"fmt"
	"sync"
	"time"

	"github.com/angristan/music-tonight/internal/infra/metrics"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/trace"
)

const (
	// TargetTracks is the playlist length tracks per artist are derived from.
	TargetTracks = 22

	DefaultLookupConcurrency = 8
	defaultWriteTimeout      = 5 * time.Second
)

type Config struct {
	// LookupConcurrency caps concurrent per-performer lookups. Zero or less
	// means no cap.
	LookupConcurrency int
	BuildTimeout      time.Duration
	LookupTimeout     time.Duration
	WriteTimeout      time.Duration
	Now               func() time.Time
}

type PlaylistService struct {
	tracer   trace.Tracer
	logger   logrus.FieldLogger
	metrics  *metrics.Metrics
	events   EventSearcher
	cache    Cache
	catalogs Catalogs
	config   Config

	writes sync.WaitGroup
}

func New(
	tracer trace.Tracer,
	logger logrus.FieldLogger,
	m *metrics.Metrics,
	events EventSearcher,
	cache Cache,
	catalogs Catalogs,
	config Config,
) *PlaylistService {
	if config.WriteTimeout <= 0 {
		config.WriteTimeout = defaultWriteTimeout
	}
	if config.Now == nil {
		config.Now = time.Now
	}

	return &PlaylistService{
		tracer:   tracer,
		logger:   logger,
		metrics:  m,
		events:   events,
		cache:    cache,
		catalogs: catalogs,
		config:   config,
	}
}

var (
	ErrInvalidMaxTracks = fmt.Errorf("maxartisttracks must be at least 1")
	ErrInvalidProvider  = fmt.Errorf("invalid service")
)
