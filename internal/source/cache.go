// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package source

import (
	"context"
	"sync"
	"time"

	"github.com/mia-platform/asynciot/internal/results"
)

// Cache holds the latest complete snapshot read from a StateSource.
// Readers always see either the previous or the new snapshot, never a partial one.
type Cache struct {
	name   string
	source StateSource

	lock      sync.RWMutex
	snapshot  *results.JSON
	updatedAt time.Time
}

// NewCache returns an empty cache for src.
func NewCache(name string, src StateSource) *Cache {
	return &Cache{
		name:   name,
		source: src,
	}
}

// Name returns the name of the cached source.
func (c *Cache) Name() string {
	return c.name
}

// Source returns the cached source.
func (c *Cache) Source() StateSource {
	return c.source
}

// Update reads every key of the source and replaces the snapshot. The previous
// snapshot is kept when the read fails.
func (c *Cache) Update(ctx context.Context) error {
	_, err := c.update(ctx)
	return err
}

// update stores and returns the fresh snapshot.
func (c *Cache) update(ctx context.Context) (*results.JSON, error) {
	snapshot, err := All(ctx, c.source)
	if err != nil {
		return nil, err
	}

	c.lock.Lock()
	defer c.lock.Unlock()
	c.snapshot = snapshot
	c.updatedAt = time.Now()
	return snapshot, nil
}

// Cached returns the requested keys from the snapshot; false when nothing is cached.
func (c *Cache) Cached(keys ...string) (*results.JSON, bool) {
	c.lock.RLock()
	defer c.lock.RUnlock()

	if c.snapshot == nil {
		return nil, false
	}
	return c.snapshot.Get(keys...), true
}

// CachedAll returns the whole snapshot; false when nothing is cached.
func (c *Cache) CachedAll() (*results.JSON, bool) {
	return c.Cached(c.source.AvailableKeys()...)
}

// GetOrUpdate returns the requested keys from the snapshot, reading the source first
// when nothing is cached.
func (c *Cache) GetOrUpdate(ctx context.Context, keys ...string) (*results.JSON, error) {
	if snapshot, ok := c.Cached(keys...); ok {
		return snapshot, nil
	}

	snapshot, err := c.update(ctx)
	if err != nil {
		return nil, err
	}
	return snapshot.Get(keys...), nil
}

// AllOrUpdate returns the whole snapshot, reading the source first when nothing is cached.
func (c *Cache) AllOrUpdate(ctx context.Context) (*results.JSON, error) {
	return c.GetOrUpdate(ctx, c.source.AvailableKeys()...)
}

// Invalidate drops the snapshot so that the next read goes to the source.
func (c *Cache) Invalidate() {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.snapshot = nil
}

// LastUpdate returns the time of the last successful update, zero if none.
func (c *Cache) LastUpdate() time.Time {
	c.lock.RLock()
	defer c.lock.RUnlock()
	return c.updatedAt
}
