package referencedata

import (
	"context"
	"fmt"
	"sync"
	"time"

	"ivf_stage_bot/internal/domain/stage"

	"github.com/sirupsen/logrus"
)

// Cache holds the current stage catalog and reloads it from a Source on demand.
// It has no package-level state; build one per process and pass it around.
type Cache struct {
	source Source
	logger *logrus.Entry

	mu       sync.RWMutex
	catalog  *stage.Catalog
	loadedAt time.Time
}

func NewCache(source Source, logger *logrus.Entry) *Cache {
	return &Cache{source: source, logger: logger}
}

// Catalog returns the cached catalog, loading it on first use or after Invalidate.
func (c *Cache) Catalog(ctx context.Context) (*stage.Catalog, error) {
	c.mu.RLock()
	cat := c.catalog
	c.mu.RUnlock()
	if cat != nil {
		return cat, nil
	}
	return c.Refresh(ctx)
}

// Refresh reloads from the source. On failure the previous catalog is kept
// and returned alongside the error.
func (c *Cache) Refresh(ctx context.Context) (*stage.Catalog, error) {
	entries, err := c.source.Load(ctx)
	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.logger.WithError(err).Error("Failed to load stage reference data")
		return c.catalog, fmt.Errorf("failed to refresh reference data: %w", err)
	}

	c.catalog = stage.NewCatalog(entries)
	c.loadedAt = time.Now()
	c.logger.WithFields(logrus.Fields{
		"entries": len(entries),
		"indexed": c.catalog.Len(),
	}).Info("Stage reference data loaded")
	if c.catalog.Len() == 0 {
		c.logger.Warn("Stage reference data is empty; every stage will show as pending")
	}
	return c.catalog, nil
}

// Invalidate drops the cached catalog so the next Catalog call reloads.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	c.catalog = nil
	c.loadedAt = time.Time{}
	c.mu.Unlock()
	c.logger.Debug("Stage reference data invalidated")
}

// LoadedAt returns when the catalog was last loaded, zero if never.
func (c *Cache) LoadedAt() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loadedAt
}
