package placescache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gdugdh24/location-insights/internal/domain"
	"github.com/redis/go-redis/v9"
)

type countingProvider struct {
	calls  int
	places []domain.Place
	err    error
}

func (p *countingProvider) Search(ctx context.Context, point domain.Coordinates, category domain.Category, radiusMeters int) ([]domain.Place, error) {
	p.calls++
	return p.places, p.err
}

func newCache(t *testing.T, next *countingProvider) (*RedisPlacesCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisPlacesCache(next, client, time.Hour), mr
}

func TestSearchIsReadThrough(t *testing.T) {
	next := &countingProvider{places: []domain.Place{{Name: "Lord Roberts Elementary", DistanceMeters: 420}}}
	cache, mr := newCache(t, next)
	ctx := context.Background()
	point := domain.Coordinates{Lat: 49.28, Lng: -123.12}

	for i := 0; i < 3; i++ {
		places, err := cache.Search(ctx, point, domain.CategorySchools, 1000)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(places) != 1 || places[0].Name != "Lord Roberts Elementary" {
			t.Fatalf("unexpected places %+v", places)
		}
	}
	if next.calls != 1 {
		t.Fatalf("provider calls = %d, want 1", next.calls)
	}

	key := cacheKey(point, domain.CategorySchools, 1000)
	if !mr.Exists(key) {
		t.Fatalf("expected key %s in redis", key)
	}
	if ttl := mr.TTL(key); ttl != time.Hour {
		t.Fatalf("ttl = %v, want 1h", ttl)
	}
}

func TestDifferentRadiusMisses(t *testing.T) {
	next := &countingProvider{}
	cache, _ := newCache(t, next)
	ctx := context.Background()
	point := domain.Coordinates{Lat: 49.28, Lng: -123.12}

	_, _ = cache.Search(ctx, point, domain.CategoryParks, 1000)
	_, _ = cache.Search(ctx, point, domain.CategoryParks, 2000)
	if next.calls != 2 {
		t.Fatalf("provider calls = %d, want 2", next.calls)
	}
}

func TestProviderErrorIsNotCached(t *testing.T) {
	next := &countingProvider{err: domain.ErrProviderUnavailable}
	cache, mr := newCache(t, next)
	point := domain.Coordinates{Lat: 1, Lng: 1}

	_, err := cache.Search(context.Background(), point, domain.CategoryBanks, 500)
	if !errors.Is(err, domain.ErrProviderUnavailable) {
		t.Fatalf("expected provider error, got %v", err)
	}
	if mr.Exists(cacheKey(point, domain.CategoryBanks, 500)) {
		t.Fatal("failed search must not be cached")
	}
}

func TestRedisDownFallsThrough(t *testing.T) {
	next := &countingProvider{places: []domain.Place{{Name: "Cafe"}}}
	cache, mr := newCache(t, next)
	mr.Close()

	places, err := cache.Search(context.Background(), domain.Coordinates{Lat: 1, Lng: 1}, domain.CategoryCafes, 500)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(places) != 1 {
		t.Fatalf("expected provider result, got %+v", places)
	}
}

func TestInvalidate(t *testing.T) {
	next := &countingProvider{}
	cache, _ := newCache(t, next)
	ctx := context.Background()
	point := domain.Coordinates{Lat: 1, Lng: 1}

	_, _ = cache.Search(ctx, point, domain.CategoryGyms, 800)
	if err := cache.Invalidate(ctx, point, domain.CategoryGyms, 800); err != nil {
		t.Fatalf("invalidate: %v", err)
	}
	_, _ = cache.Search(ctx, point, domain.CategoryGyms, 800)
	if next.calls != 2 {
		t.Fatalf("provider calls = %d, want 2", next.calls)
	}
}
