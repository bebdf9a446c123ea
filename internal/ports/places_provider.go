package ports

import (
	"context"

	"github.com/gdugdh24/location-insights/internal/domain"
)

// PlacesProvider finds points of interest near a coordinate.
type PlacesProvider interface {
	// Search returns places of the category within radiusMeters of point,
	// ordered by ascending distance. An empty result is not an error.
	Search(ctx context.Context, point domain.Coordinates, category domain.Category, radiusMeters int) ([]domain.Place, error)
}

// PlacesCacheInvalidator is implemented by caching providers so a refresh
// can bypass stale entries.
type PlacesCacheInvalidator interface {
	Invalidate(ctx context.Context, point domain.Coordinates, category domain.Category, radiusMeters int) error
}

// Summarizer writes a short narrative for a finished report.
type Summarizer interface {
	SummarizeLocation(ctx context.Context, profile *domain.DistanceProfile) (string, error)
}
