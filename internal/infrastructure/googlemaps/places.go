package googlemaps

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strconv"

	"github.com/gdugdh24/location-insights/internal/domain"
	"github.com/gdugdh24/location-insights/internal/infrastructure/obs"
	"github.com/gdugdh24/location-insights/pkg/geo"
)

// Nearby Search caps the radius at 50 km.
const maxNearbyRadius = 50000

type nearbyResponse struct {
	Status       string `json:"status"`
	ErrorMessage string `json:"error_message"`
	Results      []struct {
		PlaceID  string   `json:"place_id"`
		Name     string   `json:"name"`
		Vicinity string   `json:"vicinity"`
		Rating   float64  `json:"rating"`
		Types    []string `json:"types"`
		Geometry struct {
			Location struct {
				Lat float64 `json:"lat"`
				Lng float64 `json:"lng"`
			} `json:"location"`
		} `json:"geometry"`
	} `json:"results"`
}

// Search runs a Nearby Search for the category's place type and returns the
// results inside the radius, nearest first.
func (c *Client) Search(
	ctx context.Context,
	point domain.Coordinates,
	category domain.Category,
	radiusMeters int,
) (_ []domain.Place, err error) {
	defer obs.Time(ctx, "googlemaps.Search."+string(category))(&err)

	info, ok := category.Info()
	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownCategory, category)
	}
	if radiusMeters <= 0 {
		return nil, fmt.Errorf("%w: %d", domain.ErrInvalidRadius, radiusMeters)
	}
	if radiusMeters > maxNearbyRadius {
		radiusMeters = maxNearbyRadius
	}

	q := url.Values{}
	q.Set("location", formatLatLng(point))
	q.Set("radius", strconv.Itoa(radiusMeters))
	q.Set("type", info.PlaceType)

	var decoded nearbyResponse
	if err := c.getJSON(ctx, "/place/nearbysearch/json", q, &decoded); err != nil {
		return nil, err
	}
	if err := statusErr(decoded.Status, decoded.ErrorMessage); err != nil {
		return nil, err
	}

	places := make([]domain.Place, 0, len(decoded.Results))
	for _, r := range decoded.Results {
		loc := r.Geometry.Location
		d := geo.DistanceMeters(point.Lat, point.Lng, loc.Lat, loc.Lng)
		if d > float64(radiusMeters) {
			continue
		}
		places = append(places, domain.Place{
			Name:           r.Name,
			DistanceMeters: d,
			Latitude:       loc.Lat,
			Longitude:      loc.Lng,
			PlaceID:        r.PlaceID,
			Address:        r.Vicinity,
			Rating:         r.Rating,
			Types:          r.Types,
		})
	}

	sort.SliceStable(places, func(i, j int) bool {
		return places[i].DistanceMeters < places[j].DistanceMeters
	})
	return places, nil
}
