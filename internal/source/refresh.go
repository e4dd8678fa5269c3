// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package source

import (
	"context"
	"time"

	"github.com/mia-platform/asynciot/internal/logger"
)

// ErrorPolicy decides what a refresh loop does with a failed update: returning nil keeps
// the loop running, returning an error stops it.
type ErrorPolicy func(err error) error

// FailFast stops the refresh loop at the first failed update.
func FailFast(err error) error {
	return err
}

// Refresh updates cache every interval until ctx is done. Failed updates are handed to
// policy; a nil policy behaves like FailFast.
func Refresh(ctx context.Context, cache *Cache, interval time.Duration, policy ErrorPolicy) error {
	log := logger.FromContext(ctx).WithName("asynciot:refresh:" + cache.Name())
	if policy == nil {
		policy = FailFast
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Debug("refresh loop stopped", "reason", ctx.Err())
			return nil
		case <-ticker.C:
			start := time.Now()
			err := cache.Update(ctx)
			if ctx.Err() != nil {
				return nil
			}
			if err != nil {
				log.Warn("cache update failed", "error", err)
				if err := policy(err); err != nil {
					return err
				}
				continue
			}
			log.Trace("cache updated", "elapsed", time.Since(start).String())
		}
	}
}
