package events

import (
	"fmt"
	"time"

	"github.com/angristan/music-tonight/internal/infra/metrics"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/trace"
)

const (
	InitialRadius         = 2
	PerPage               = 50
	MaxEvents             = 40
	MaxPerformersPerEvent = 3

	// DefaultLocation is used when the client is on a loopback address and
	// sent no coordinates.
	DefaultLocation = "40.7436300,-73.9906270"

	ticketStatusAvailable = "available"
	windowLead            = 2 * time.Hour
)

type Config struct {
	DefaultLocation string
	ProviderTimeout time.Duration
	Now             func() time.Time
}

type EventSearchService struct {
	tracer   trace.Tracer
	logger   logrus.FieldLogger
	metrics  *metrics.Metrics
	provider EventsProvider
	config   Config
}

func New(
	tracer trace.Tracer,
	logger logrus.FieldLogger,
	m *metrics.Metrics,
	provider EventsProvider,
	config Config,
) EventSearchService {
	if config.DefaultLocation == "" {
		config.DefaultLocation = DefaultLocation
	}
	if config.Now == nil {
		config.Now = time.Now
	}

	return EventSearchService{
		tracer:   tracer,
		logger:   logger,
		metrics:  m,
		provider: provider,
		config:   config,
	}
}

var (
	ErrInvalidDaysOut   = fmt.Errorf("daysout must be at least 1")
	ErrInvalidMaxRadius = fmt.Errorf("maxmiles must be positive")
)
