package googlemaps

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gdugdh24/location-insights/internal/domain"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewClient("test-key", WithBaseURL(srv.URL), WithRetry(3, time.Millisecond))
}

func TestSearchFiltersAndSortsByDistance(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/place/nearbysearch/json" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("type"); got != "school" {
			t.Errorf("type = %q, want school", got)
		}
		if got := r.URL.Query().Get("key"); got != "test-key" {
			t.Errorf("key = %q", got)
		}
		fmt.Fprint(w, `{"status":"OK","results":[
			{"name":"Far","place_id":"p3","geometry":{"location":{"lat":49.2950,"lng":-123.12}}},
			{"name":"Mid","place_id":"p2","geometry":{"location":{"lat":49.2860,"lng":-123.12}}},
			{"name":"Near","place_id":"p1","geometry":{"location":{"lat":49.2810,"lng":-123.12}}}
		]}`)
	})

	places, err := client.Search(context.Background(), domain.Coordinates{Lat: 49.28, Lng: -123.12}, domain.CategorySchools, 1000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(places) != 2 {
		t.Fatalf("expected 2 places within radius, got %d", len(places))
	}
	if places[0].Name != "Near" || places[1].Name != "Mid" {
		t.Fatalf("unexpected order: %q, %q", places[0].Name, places[1].Name)
	}
	for _, p := range places {
		if p.DistanceMeters > 1000 {
			t.Errorf("%s at %.0fm is outside radius", p.Name, p.DistanceMeters)
		}
	}
}

func TestSearchZeroResultsIsEmpty(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"status":"ZERO_RESULTS","results":[]}`)
	})

	places, err := client.Search(context.Background(), domain.Coordinates{Lat: 1, Lng: 1}, domain.CategoryParks, 500)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(places) != 0 {
		t.Fatalf("expected no places, got %d", len(places))
	}
}

func TestRequestDeniedIsNotConfigured(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"status":"REQUEST_DENIED","error_message":"bad key"}`)
	})

	_, err := client.Search(context.Background(), domain.Coordinates{Lat: 1, Lng: 1}, domain.CategoryParks, 500)
	if !errors.Is(err, domain.ErrProviderNotConfigured) {
		t.Fatalf("expected ErrProviderNotConfigured, got %v", err)
	}
}

func TestMissingKeyIsNotConfigured(t *testing.T) {
	client := NewClient("")
	if client.Configured() {
		t.Fatal("client without key reports configured")
	}
	_, err := client.Geocode(context.Background(), "1 Main St")
	if !errors.Is(err, domain.ErrProviderNotConfigured) {
		t.Fatalf("expected ErrProviderNotConfigured, got %v", err)
	}
}

func TestRetriesServerErrors(t *testing.T) {
	var calls int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			http.Error(w, "boom", http.StatusServiceUnavailable)
			return
		}
		fmt.Fprint(w, `{"status":"OK","results":[{"formatted_address":"1 Main St","geometry":{"location":{"lat":10,"lng":20}}}]}`)
	})

	got, err := client.Geocode(context.Background(), "1   Main St")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Lat != 10 || got.Lng != 20 {
		t.Fatalf("unexpected coordinates %+v", got)
	}
	if n := atomic.LoadInt32(&calls); n != 3 {
		t.Fatalf("calls = %d, want 3", n)
	}
}

func TestExhaustedRetriesAreUnavailable(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusBadGateway)
	})

	_, err := client.ReverseGeocode(context.Background(), domain.Coordinates{Lat: 1, Lng: 2})
	if !errors.Is(err, domain.ErrProviderUnavailable) {
		t.Fatalf("expected ErrProviderUnavailable, got %v", err)
	}
}

func TestGeocodeNoResult(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"status":"ZERO_RESULTS","results":[]}`)
	})

	_, err := client.Geocode(context.Background(), "nowhere")
	if !errors.Is(err, domain.ErrNoGeocodeResult) {
		t.Fatalf("expected ErrNoGeocodeResult, got %v", err)
	}
	if errors.Is(err, domain.ErrProviderUnavailable) {
		t.Fatal("no result must be distinct from provider failure")
	}
}

func TestReverseGeocode(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("latlng"); got != "49.280000,-123.120000" {
			t.Errorf("latlng = %q", got)
		}
		fmt.Fprint(w, `{"status":"OK","results":[{"formatted_address":"800 Robson St, Vancouver"}]}`)
	})

	addr, err := client.ReverseGeocode(context.Background(), domain.Coordinates{Lat: 49.28, Lng: -123.12})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if addr != "800 Robson St, Vancouver" {
		t.Fatalf("address = %q", addr)
	}
}
