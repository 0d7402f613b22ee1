package events

import (
	"context"
	"math"
	"time"

	"github.com/angristan/music-tonight/internal/domain/fault"
	"github.com/angristan/music-tonight/internal/domain/model"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
)

type Options struct {
	Location      model.Location
	DaysOut       int
	MaxRadius     int
	OnlyAvailable bool
}

// Search widens the search radius until the provider returns enough events
// for the radius searched, or MaxRadius is reached. Attempts are sequential:
// each radius depends on the previous result count.
func (s EventSearchService) Search(ctx context.Context, opts Options) (model.PerformerMap, error) {
	ctx, span := s.tracer.Start(ctx, "EventSearchService.Search")
	defer span.End()

	if opts.DaysOut < 1 {
		return nil, fault.ClientInput("events.Search", ErrInvalidDaysOut)
	}
	if opts.MaxRadius <= 0 {
		return nil, fault.ClientInput("events.Search", ErrInvalidMaxRadius)
	}

	now := s.config.Now()
	query := model.EventQuery{
		Location: opts.Location.Query(s.config.DefaultLocation),
		Start:    now.Add(-windowLead),
		End:      now.Add(time.Duration(opts.DaysOut-1)*24*time.Hour - windowLead),
		PerPage:  PerPage,
	}

	span.SetAttributes(
		attribute.String("location", query.Location),
		attribute.Int("max_radius", opts.MaxRadius),
	)

	radius := InitialRadius
	for attempt := 1; ; attempt++ {
		radius = min(radius, opts.MaxRadius)
		query.Radius = radius

		found, err := s.fetch(ctx, query, opts.OnlyAvailable)
		if err != nil {
			span.RecordError(err)
			return nil, err
		}

		target := TargetCount(radius)
		s.logger.WithFields(logrus.Fields{
			"radius":  radius,
			"results": len(found),
			"target":  target,
		}).Debug("Event search attempt")

		if radius >= opts.MaxRadius || len(found) >= target {
			s.metrics.SearchAttempts(attempt)
			span.SetAttributes(
				attribute.Int("radius", radius),
				attribute.Int("attempts", attempt),
				attribute.Int("results", len(found)),
			)
			return BuildPerformerMap(found), nil
		}

		radius = NextRadius(radius, target, len(found))
	}
}

func (s EventSearchService) fetch(ctx context.Context, query model.EventQuery, onlyAvailable bool) ([]model.Event, error) {
	if s.config.ProviderTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.config.ProviderTimeout)
		defer cancel()
	}

	found, err := s.provider.Search(ctx, query)
	if err != nil {
		return nil, fault.Provider("events.Search", err)
	}

	if !onlyAvailable {
		return found, nil
	}

	available := found[:0:0]
	for _, e := range found {
		if e.TicketStatus == ticketStatusAvailable {
			available = append(available, e)
		}
	}

	return available, nil
}

// TargetCount is the number of events considered enough at radius: dense
// small areas need many results, wide areas few.
func TargetCount(radius int) int {
	target := int(math.Round(600 / float64(radius)))

	return max(4, min(50, target))
}

// NextRadius grows radius by a factor between 1.1 and 2 depending on how far
// the result count is from target.
func NextRadius(radius, target, results int) int {
	multiplier := math.Sqrt(float64(target+1) / float64(results+1))
	multiplier = math.Max(1.1, math.Min(2.0, multiplier))

	return int(math.Ceil(float64(radius)*multiplier)) + 1
}

// BuildPerformerMap keeps the first MaxEvents events and their first
// MaxPerformersPerEvent performers. A performer playing several events maps
// to the last one.
func BuildPerformerMap(found []model.Event) model.PerformerMap {
	if len(found) > MaxEvents {
		found = found[:MaxEvents]
	}

	performers := make(model.PerformerMap)
	for _, e := range found {
		if len(e.Performers) > MaxPerformersPerEvent {
			e.Performers = e.Performers[:MaxPerformersPerEvent]
		}
		for _, p := range e.Performers {
			performers[p.Name] = e
		}
	}

	return performers
}
