package geocode

import (
	"context"
	"errors"

	"github.com/example/ride-booking/internal/models"
	"github.com/example/ride-booking/internal/observability"
)

// ErrNotFound means the provider returned no candidates for the query.
// A not-found result is never cached.
var ErrNotFound = errors.New("no geocoding candidates")

// Resolver memoizes provider lookups through a Cache. Concurrent
// resolution of the same key is not deduplicated; duplicate provider
// calls are acceptable and last write wins in the cache.
type Resolver struct {
	Provider Provider
	Cache    Cache
}

func NewResolver(p Provider, c Cache) *Resolver {
	return &Resolver{Provider: p, Cache: c}
}

// Resolve returns the coordinates for a place name, consulting the cache
// first. On a miss it takes the provider's first candidate.
func (r *Resolver) Resolve(ctx context.Context, placeName string) (models.Coord, error) {
	if c, ok := r.Cache.Get(placeName); ok {
		observability.GeocodeCacheHits.Inc()
		return c, nil
	}
	observability.GeocodeCacheMisses.Inc()
	cands, err := r.Provider.Forward(ctx, placeName)
	if err != nil {
		return models.Coord{}, err
	}
	if len(cands) == 0 {
		return models.Coord{}, ErrNotFound
	}
	c := cands[0].Center
	r.Cache.Set(placeName, c)
	return c, nil
}

// CountryAt reverse-geocodes a coordinate to its administrative country.
func (r *Resolver) CountryAt(ctx context.Context, c models.Coord) (string, error) {
	cands, err := r.Provider.Reverse(ctx, c)
	if err != nil {
		return "", err
	}
	for _, cand := range cands {
		if cand.Country != "" {
			return cand.Country, nil
		}
	}
	return "", ErrNotFound
}

// Suggest returns the provider's full candidate list for a partial query,
// bypassing the cache. Used by the typeahead endpoint.
func (r *Resolver) Suggest(ctx context.Context, query string) ([]Candidate, error) {
	return r.Provider.Forward(ctx, query)
}
