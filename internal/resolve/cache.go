// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package resolve

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/sync/singleflight"

	"github.com/pdiddy/depiction-engine/pkg/types"
)

// GenderCache is the slice of the analysis store the caching decorator
// needs. *store.Store satisfies it.
type GenderCache interface {
	CacheGet(ctx context.Context, name string) (types.GenderLabel, bool, error)
	CachePut(ctx context.Context, name string, gender types.GenderLabel) error
}

// CachedLookup wraps a Lookup with the persistent resolution cache and
// collapses concurrent lookups for the same name into one backend call
// (R4.4, R4.5). Keys are lowercased so the mention resolver and the
// author resolver share entries. Only successful verdicts are cached;
// transport failures stay transient and are retried on the next run.
type CachedLookup struct {
	Inner Lookup
	Cache GenderCache

	group singleflight.Group
}

// Name returns the wrapped backend's identifier.
func (c *CachedLookup) Name() string { return c.Inner.Name() }

// GenderByName serves a cached verdict when one exists and consults the
// wrapped backend otherwise, persisting what it learns.
func (c *CachedLookup) GenderByName(ctx context.Context, name string) (Result, error) {
	key := strings.ToLower(name)

	if g, ok, err := c.Cache.CacheGet(ctx, key); err != nil {
		return Result{}, fmt.Errorf("reading resolution cache: %w", err)
	} else if ok {
		return Result{Gender: g, Source: "cache"}, nil
	}

	v, err, _ := c.group.Do(key, func() (any, error) {
		res, err := c.Inner.GenderByName(ctx, name)
		if err != nil {
			return nil, err
		}
		if err := c.Cache.CachePut(ctx, key, res.Gender); err != nil {
			return nil, fmt.Errorf("writing resolution cache: %w", err)
		}
		return res, nil
	})
	if err != nil {
		return Result{}, err
	}
	return v.(Result), nil
}
