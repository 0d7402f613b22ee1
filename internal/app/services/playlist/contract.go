package playlist

import (
	"context"

	"github.com/angristan/music-tonight/internal/app/services/events"
	"github.com/angristan/music-tonight/internal/domain/model"
	"github.com/angristan/music-tonight/internal/infra/repository/catalog"
)

type EventSearcher interface {
	Search(ctx context.Context, opts events.Options) (model.PerformerMap, error)
}

// Cache is the artist store. Get returns kvstore.ErrCacheMiss for absent
// keys; a stored JSON null is a cached negative lookup.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value any) error
}

type Catalogs interface {
	Client(provider model.Provider) (catalog.Client, error)
}
