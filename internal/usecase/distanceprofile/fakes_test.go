package distanceprofile

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/gdugdh24/location-insights/internal/domain"
)

// testClock advances one second per reading so timestamps are ordered.
type testClock struct {
	mu sync.Mutex
	t  time.Time
}

func newTestClock() *testClock {
	return &testClock{t: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(time.Second)
	return c.t
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

// memoryProfileRepo mirrors the transactional behavior of the Postgres
// repository.
type memoryProfileRepo struct {
	mu       sync.Mutex
	clock    *testClock
	profiles map[string]*domain.DistanceProfile
}

func newMemoryProfileRepo(clock *testClock) *memoryProfileRepo {
	return &memoryProfileRepo{clock: clock, profiles: map[string]*domain.DistanceProfile{}}
}

func cloneProfile(p *domain.DistanceProfile) *domain.DistanceProfile {
	out := *p
	out.Categories = make(domain.CategorySet, len(p.Categories))
	for k, v := range p.Categories {
		out.Categories[k] = v
	}
	out.Distances = make(domain.RadiusMap, len(p.Distances))
	for k, v := range p.Distances {
		out.Distances[k] = v
	}
	out.FailedCategories = append(domain.CategoryList{}, p.FailedCategories...)
	out.LineItems = append([]domain.LineItem{}, p.LineItems...)
	return &out
}

func (r *memoryProfileRepo) Create(ctx context.Context, profile *domain.DistanceProfile) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.profiles[profile.ID]; exists {
		return domain.ErrConflict
	}
	now := r.clock.Now()
	if profile.PropertyID != nil && profile.IsActive {
		for _, p := range r.profiles {
			if p.PropertyID != nil && *p.PropertyID == *profile.PropertyID && p.IsActive {
				p.IsActive = false
				p.UpdatedAt = now
			}
		}
	}
	profile.CreatedAt = now
	profile.UpdatedAt = now
	r.profiles[profile.ID] = cloneProfile(profile)
	return nil
}

func (r *memoryProfileRepo) GetByID(ctx context.Context, id string) (*domain.DistanceProfile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.profiles[id]
	if !ok {
		return nil, domain.ErrProfileNotFound
	}
	return cloneProfile(p), nil
}

func (r *memoryProfileRepo) GetActiveByPropertyID(ctx context.Context, propertyID string) (*domain.DistanceProfile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, p := range r.profiles {
		if p.BoundTo(propertyID) && p.IsActive {
			return cloneProfile(p), nil
		}
	}
	return nil, domain.ErrProfileNotFound
}

func (r *memoryProfileRepo) list(keep func(*domain.DistanceProfile) bool) []*domain.DistanceProfile {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := []*domain.DistanceProfile{}
	for _, p := range r.profiles {
		if keep(p) {
			out = append(out, cloneProfile(p))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (r *memoryProfileRepo) ListByPropertyID(ctx context.Context, propertyID string) ([]*domain.DistanceProfile, error) {
	return r.list(func(p *domain.DistanceProfile) bool { return p.BoundTo(propertyID) }), nil
}

func (r *memoryProfileRepo) ListAdHocByRealtorID(ctx context.Context, realtorID string) ([]*domain.DistanceProfile, error) {
	return r.list(func(p *domain.DistanceProfile) bool { return p.IsAdHoc && p.RealtorID == realtorID }), nil
}

func (r *memoryProfileRepo) Update(ctx context.Context, profile *domain.DistanceProfile, replaced []domain.Category) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.profiles[profile.ID]
	if !ok {
		return domain.ErrProfileNotFound
	}

	want := map[domain.Category]bool{}
	for _, c := range replaced {
		want[c] = true
	}
	var items []domain.LineItem
	for _, item := range stored.LineItems {
		if !want[item.Category] {
			items = append(items, item)
		}
	}
	for _, item := range profile.LineItems {
		if want[item.Category] {
			items = append(items, item)
		}
	}

	profile.UpdatedAt = r.clock.Now()
	next := cloneProfile(profile)
	next.CreatedAt = stored.CreatedAt
	next.LineItems = items
	sortItems(next.LineItems)
	r.profiles[profile.ID] = next
	return nil
}

func sortItems(items []domain.LineItem) {
	pos := map[domain.Category]int{}
	for i, info := range domain.Vocabulary {
		pos[info.Category] = i
	}
	sort.SliceStable(items, func(i, j int) bool { return pos[items[i].Category] < pos[items[j].Category] })
}

func (r *memoryProfileRepo) UpdateSummary(ctx context.Context, id string, summary string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.profiles[id]
	if !ok {
		return domain.ErrProfileNotFound
	}
	p.Summary = &summary
	return nil
}

func (r *memoryProfileRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.profiles[id]; !ok {
		return domain.ErrProfileNotFound
	}
	delete(r.profiles, id)
	return nil
}

func (r *memoryProfileRepo) DeactivateAdHocOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var n int64
	now := r.clock.Now()
	for _, p := range r.profiles {
		if p.IsAdHoc && p.IsActive && p.UpdatedAt.Before(cutoff) {
			p.IsActive = false
			p.UpdatedAt = now
			n++
		}
	}
	return n, nil
}

func (r *memoryProfileRepo) DeleteInactiveOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var n int64
	for id, p := range r.profiles {
		if !p.IsActive && p.UpdatedAt.Before(cutoff) {
			delete(r.profiles, id)
			n++
		}
	}
	return n, nil
}

func (r *memoryProfileRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.profiles)
}

type memoryPropertyRepo struct {
	properties map[string]*domain.Property
}

func (r *memoryPropertyRepo) GetByID(ctx context.Context, id string) (*domain.Property, error) {
	p, ok := r.properties[id]
	if !ok {
		return nil, domain.ErrPropertyNotFound
	}
	out := *p
	return &out, nil
}

// fakePlaces returns three places per search: one beyond the radius and two
// inside it, unordered.
type fakePlaces struct {
	mu          sync.Mutex
	calls       map[domain.Category]int
	fail        map[domain.Category]error
	block       map[domain.Category]bool
	invalidated []domain.Category
}

func newFakePlaces() *fakePlaces {
	return &fakePlaces{
		calls: map[domain.Category]int{},
		fail:  map[domain.Category]error{},
		block: map[domain.Category]bool{},
	}
}

func (f *fakePlaces) Search(ctx context.Context, point domain.Coordinates, category domain.Category, radiusMeters int) ([]domain.Place, error) {
	f.mu.Lock()
	f.calls[category]++
	err := f.fail[category]
	block := f.block[category]
	f.mu.Unlock()

	if block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if err != nil {
		return nil, err
	}

	r := float64(radiusMeters)
	return []domain.Place{
		{Name: string(category) + " far", DistanceMeters: r + 250, Latitude: point.Lat, Longitude: point.Lng},
		{Name: string(category) + " mid", DistanceMeters: r * 0.75, Latitude: point.Lat, Longitude: point.Lng},
		{Name: string(category) + " near", DistanceMeters: r * 0.25, Latitude: point.Lat, Longitude: point.Lng},
	}, nil
}

func (f *fakePlaces) Invalidate(ctx context.Context, point domain.Coordinates, category domain.Category, radiusMeters int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.invalidated = append(f.invalidated, category)
	return nil
}

func (f *fakePlaces) callsFor(c domain.Category) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[c]
}

func (f *fakePlaces) totalCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, v := range f.calls {
		n += v
	}
	return n
}

type fakeGeocoder struct {
	point      domain.Coordinates
	address    string
	geocodeErr error
	reverseErr error
}

func (g *fakeGeocoder) Geocode(ctx context.Context, address string) (domain.Coordinates, error) {
	if g.geocodeErr != nil {
		return domain.Coordinates{}, g.geocodeErr
	}
	return g.point, nil
}

func (g *fakeGeocoder) ReverseGeocode(ctx context.Context, point domain.Coordinates) (string, error) {
	if g.reverseErr != nil {
		return "", g.reverseErr
	}
	return g.address, nil
}

type fakeSummarizer struct {
	text string
}

func (s *fakeSummarizer) SummarizeLocation(ctx context.Context, profile *domain.DistanceProfile) (string, error) {
	return s.text, nil
}
