package catalog

import (
	"context"

	"go.uber.org/zap"
)

// Store is the durable storage of a catalog.
type Store interface {
	// Load returns the persisted catalog, or an empty one if nothing was persisted yet.
	Load(ctx context.Context) (*Catalog, error)
	// Save persists catalog. added holds the entries appended since the last Load or Save.
	Save(ctx context.Context, catalog *Catalog, added []PlaceEntry) error
}

// Load reads the catalog from store. unreadable storage is logged and treated as empty,
// so a broken catalog never keeps the process from starting.
func Load(ctx context.Context, store Store, log *zap.Logger) *Catalog {
	c, err := store.Load(ctx)
	if err != nil {
		log.Error("failed to load place catalog, starting with an empty one", zap.Error(err))
		return NewCatalog(nil)
	}
	log.Info("place catalog loaded", zap.Int("places", c.Len()))
	return c
}
