package googlemaps

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/gdugdh24/location-insights/internal/domain"
	"github.com/gdugdh24/location-insights/internal/infrastructure/obs"
)

type geocodeResponse struct {
	Status       string `json:"status"`
	ErrorMessage string `json:"error_message"`
	Results      []struct {
		FormattedAddress string `json:"formatted_address"`
		Geometry         struct {
			Location struct {
				Lat float64 `json:"lat"`
				Lng float64 `json:"lng"`
			} `json:"location"`
		} `json:"geometry"`
	} `json:"results"`
}

// Geocode resolves an address to coordinates.
func (c *Client) Geocode(ctx context.Context, address string) (_ domain.Coordinates, err error) {
	defer obs.Time(ctx, "googlemaps.Geocode")(&err)

	address = strings.Join(strings.Fields(address), " ")
	if address == "" {
		return domain.Coordinates{}, fmt.Errorf("%w: address must be non-empty", domain.ErrValidation)
	}

	q := url.Values{}
	q.Set("address", address)

	var decoded geocodeResponse
	if err := c.getJSON(ctx, "/geocode/json", q, &decoded); err != nil {
		return domain.Coordinates{}, err
	}
	if err := statusErr(decoded.Status, decoded.ErrorMessage); err != nil {
		return domain.Coordinates{}, err
	}
	if len(decoded.Results) == 0 {
		return domain.Coordinates{}, domain.ErrNoGeocodeResult
	}

	loc := decoded.Results[0].Geometry.Location
	return domain.Coordinates{Lat: loc.Lat, Lng: loc.Lng}, nil
}

// ReverseGeocode resolves coordinates to a formatted address.
func (c *Client) ReverseGeocode(ctx context.Context, point domain.Coordinates) (_ string, err error) {
	defer obs.Time(ctx, "googlemaps.ReverseGeocode")(&err)

	q := url.Values{}
	q.Set("latlng", formatLatLng(point))

	var decoded geocodeResponse
	if err := c.getJSON(ctx, "/geocode/json", q, &decoded); err != nil {
		return "", err
	}
	if err := statusErr(decoded.Status, decoded.ErrorMessage); err != nil {
		return "", err
	}
	if len(decoded.Results) == 0 || decoded.Results[0].FormattedAddress == "" {
		return "", domain.ErrNoGeocodeResult
	}
	return decoded.Results[0].FormattedAddress, nil
}

func formatLatLng(p domain.Coordinates) string {
	return strconv.FormatFloat(p.Lat, 'f', 6, 64) + "," + strconv.FormatFloat(p.Lng, 'f', 6, 64)
}
