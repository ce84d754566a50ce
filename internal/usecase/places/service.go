package places

import (
	"context"
	"fmt"

	"github.com/lokamap/placesearch/internal/domain/geo"
	"github.com/lokamap/placesearch/internal/domain/intent"
	"github.com/lokamap/placesearch/internal/domain/place"
)

// maxResults caps every result list before caching and response.
const maxResults = 20

// minFilterRadiusMeters floors the distance post-filter so very tight radii
// still keep walkable results.
const minFilterRadiusMeters = 200.0

// Service handles the prompt-to-places search pipeline.
type Service struct {
	extractor Extractor
	locator   Locator
	searcher  Searcher
	router    Router
	cache     ResultCache
}

// New creates a places search service.
func New(extractor Extractor, locator Locator, searcher Searcher, router Router, cache ResultCache) *Service {
	return &Service{
		extractor: extractor,
		locator:   locator,
		searcher:  searcher,
		router:    router,
		cache:     cache,
	}
}

// SearchPrompt extracts the intent behind a free-text prompt and runs the
// search for it.
func (s *Service) SearchPrompt(ctx context.Context, prompt string) ([]place.Place, error) {
	raw, err := s.extractor.Extract(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("extract intent: %w", err)
	}

	i, err := intent.FromRaw(raw, prompt)
	if err != nil {
		return nil, err
	}

	return s.Search(ctx, &i)
}

// Search executes a place search for a validated intent: cache read, anchor
// resolution, nearby search with text-search fallback, strict distance
// post-filter, cap, cache write.
func (s *Service) Search(ctx context.Context, i *intent.Intent) ([]place.Place, error) {
	if results, ok := s.cache.Get(ctx, i); ok {
		return results, nil
	}

	loc, err := s.resolveAnchor(ctx, i.LocationText())
	if err != nil {
		return nil, err
	}

	keyword := i.SearchKeyword()

	var results []place.Place
	if loc != nil {
		// Nearby honors the radius strictly; keep the keyword concise.
		results, err = s.searcher.SearchNearby(ctx, *loc, i.RadiusMeters(), keyword, i.OpenNow())
		if err != nil {
			return nil, fmt.Errorf("nearby search: %w", err)
		}
	}

	// Text search fallback when nearby is sparse or the search is unanchored.
	if len(results) == 0 {
		results, err = s.searcher.SearchText(ctx, keyword, loc, i.RadiusMeters(), i.OpenNow())
		if err != nil {
			return nil, fmt.Errorf("text search: %w", err)
		}
	}

	// The provider treats the radius as a hint; enforce it here.
	if loc != nil {
		results = filterByDistance(results, *loc, i.RadiusMeters())
	}

	if len(results) > maxResults {
		results = results[:maxResults]
	}

	s.cache.Put(ctx, i, results)
	return results, nil
}

// Directions resolves a route between two free-text endpoints.
// Returns (nil, nil) when the provider finds no route.
func (s *Service) Directions(ctx context.Context, origin, destination string) (*place.Directions, error) {
	d, err := s.router.Directions(ctx, origin, destination)
	if err != nil {
		return nil, fmt.Errorf("directions: %w", err)
	}
	return d, nil
}

// resolveAnchor turns a free-text location into a coordinate: find-place
// first for precision around named POIs, geocode as fallback. An empty
// location text means an unanchored search.
func (s *Service) resolveAnchor(ctx context.Context, locationText string) (*geo.Coordinate, error) {
	if locationText == "" {
		return nil, nil
	}

	// A failed or empty find-place falls through to geocode; only a
	// geocode failure aborts the request.
	loc, err := s.locator.FindPlace(ctx, locationText)
	if err == nil && loc != nil {
		return loc, nil
	}

	loc, err = s.locator.Geocode(ctx, locationText)
	if err != nil {
		return nil, fmt.Errorf("geocode: %w", err)
	}
	return loc, nil
}

// filterByDistance keeps places within max(radiusMeters, 200) meters of the
// origin, preserving provider order.
func filterByDistance(results []place.Place, origin geo.Coordinate, radiusMeters int) []place.Place {
	limit := float64(radiusMeters)
	if limit < minFilterRadiusMeters {
		limit = minFilterRadiusMeters
	}

	kept := results[:0]
	for _, p := range results {
		if geo.Haversine(origin.Lat, origin.Lng, p.Lat, p.Lng) <= limit {
			kept = append(kept, p)
		}
	}
	return kept
}
