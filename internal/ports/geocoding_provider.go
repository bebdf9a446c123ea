package ports

import (
	"context"

	"github.com/gdugdh24/location-insights/internal/domain"
)

// GeocodingProvider converts between addresses and coordinates.
//
// Implementations return domain.ErrProviderNotConfigured when they cannot be
// used at all and domain.ErrNoGeocodeResult when the lookup found nothing.
type GeocodingProvider interface {
	Geocode(ctx context.Context, address string) (domain.Coordinates, error)
	ReverseGeocode(ctx context.Context, point domain.Coordinates) (string, error)
}
