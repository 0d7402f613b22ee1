package events

import (
	"context"

	"github.com/angristan/music-tonight/internal/domain/model"
)

type EventsProvider interface {
	Search(ctx context.Context, q model.EventQuery) ([]model.Event, error)
}
