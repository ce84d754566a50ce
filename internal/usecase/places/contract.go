package places

import (
	"context"

	"github.com/lokamap/placesearch/internal/domain/geo"
	"github.com/lokamap/placesearch/internal/domain/intent"
	"github.com/lokamap/placesearch/internal/domain/place"
)

// Extractor turns a free-text prompt into untrusted intent fields.
type Extractor interface {
	Extract(ctx context.Context, prompt string) (intent.Raw, error)
}

// Locator resolves free-text locations to coordinates. Both methods return
// (nil, nil) when the provider has no answer.
type Locator interface {
	FindPlace(ctx context.Context, query string) (*geo.Coordinate, error)
	Geocode(ctx context.Context, address string) (*geo.Coordinate, error)
}

// Searcher queries the mapping provider for places.
type Searcher interface {
	SearchNearby(
		ctx context.Context, loc geo.Coordinate, radiusMeters int, keyword string, openNow bool,
	) ([]place.Place, error)
	SearchText(
		ctx context.Context, query string, loc *geo.Coordinate, radiusMeters int, openNow bool,
	) ([]place.Place, error)
}

// Router resolves directions between two free-text endpoints.
// A "no route" outcome is (nil, nil), not an error.
type Router interface {
	Directions(ctx context.Context, origin, destination string) (*place.Directions, error)
}

// ResultCache stores finished result lists per intent. Implementations never
// fail a search: errors degrade to a miss on read and are dropped on write.
type ResultCache interface {
	Get(ctx context.Context, i *intent.Intent) ([]place.Place, bool)
	Put(ctx context.Context, i *intent.Intent, places []place.Place)
}
