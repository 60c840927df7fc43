// Package profile serves the public profile page read path through a
// cache-aside layer over the key-value store.
package profile

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/mcansh/snkrs-sub000/internal/catalog"
	"github.com/mcansh/snkrs-sub000/internal/kv"
)

// DefaultTTL bounds how stale a profile snapshot may be. Nothing on the
// write path invalidates these entries; expiry is the only refresh.
const DefaultTTL = 5 * time.Minute

// Reader resolves a user's collection, cache first.
//
// The cache key is username plus sort order only. Brand filtering is
// applied in memory after the read on every request, so one cached
// snapshot per sort order serves every filter combination. A cached entry
// is authoritative for its TTL; no freshness check is made against the
// primary store. Concurrent misses are not coalesced: each one reads the
// primary store and overwrites the entry, last write wins.
type Reader struct {
	cache kv.Store
	store catalog.Store
	ttl   time.Duration
	log   zerolog.Logger
}

func NewReader(cache kv.Store, store catalog.Store, log zerolog.Logger) *Reader {
	return &Reader{
		cache: cache,
		store: store,
		ttl:   DefaultTTL,
		log:   log,
	}
}

func cacheKey(username string, sort catalog.Sort) string {
	return fmt.Sprintf("profile:%s:%s", username, sort)
}

// Page returns the user's collection with the brand filter applied.
// sortOrder is normalized (anything but "asc" means "desc") before it
// reaches the cache key, so equivalent requests share an entry.
func (r *Reader) Page(ctx context.Context, username, sortOrder string, brandSlugs []string) (*catalog.UserCollection, error) {
	if username == "" {
		return nil, fmt.Errorf("profile: empty username")
	}
	sort := catalog.NormalizeSort(sortOrder)
	key := cacheKey(username, sort)

	// A cache read failure is just a miss; the primary store still serves.
	raw, ok, err := r.cache.Get(ctx, key)
	if err != nil {
		r.log.Warn().Err(err).Str("key", key).Msg("profile cache read failed")
		ok = false
	}
	if ok {
		var snapshot catalog.UserCollection
		if err := json.Unmarshal([]byte(raw), &snapshot); err == nil {
			snapshot.Sneakers = catalog.FilterByBrands(snapshot.Sneakers, brandSlugs)
			return &snapshot, nil
		}
		r.log.Warn().Str("key", key).Msg("profile cache entry undecodable, refetching")
	}

	full, err := r.store.CollectionByUsername(ctx, username, sort)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(full); err == nil {
		// Best effort: the request already has its data.
		if err := r.cache.Set(ctx, key, string(data), r.ttl); err != nil {
			r.log.Warn().Err(err).Str("key", key).Msg("profile cache write failed")
		}
	}

	result := *full
	result.Sneakers = catalog.FilterByBrands(full.Sneakers, brandSlugs)
	return &result, nil
}
