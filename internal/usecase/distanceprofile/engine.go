package distanceprofile

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/gdugdh24/location-insights/internal/domain"
	"github.com/gdugdh24/location-insights/internal/infrastructure/obs"
	"github.com/gdugdh24/location-insights/internal/ports"
	"github.com/gdugdh24/location-insights/internal/repository"
	"github.com/google/uuid"
)

const (
	defaultPlacesTimeout = 8 * time.Second
	defaultConcurrency   = 4
	defaultRetention     = 90 * 24 * time.Hour
	defaultAdHocTTL      = 30 * 24 * time.Hour
)

type Options struct {
	PlacesTimeout time.Duration
	Concurrency   int
	Retention     time.Duration
	AdHocTTL      time.Duration
	Now           func() time.Time
}

func (o Options) withDefaults() Options {
	if o.PlacesTimeout <= 0 {
		o.PlacesTimeout = defaultPlacesTimeout
	}
	if o.Concurrency <= 0 {
		o.Concurrency = defaultConcurrency
	}
	if o.Retention <= 0 {
		o.Retention = defaultRetention
	}
	if o.AdHocTTL <= 0 {
		o.AdHocTTL = defaultAdHocTTL
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}

// Caller is the authenticated user an operation runs for.
type Caller struct {
	RealtorID string
	IsAdmin   bool
}

// Scope restricts an id lookup to one property or to ad-hoc profiles.
// The zero Scope matches every profile.
type Scope struct {
	PropertyID string
	AdHoc      bool
}

func (s Scope) matches(p *domain.DistanceProfile) bool {
	switch {
	case s.PropertyID != "":
		return p.BoundTo(s.PropertyID)
	case s.AdHoc:
		return p.IsAdHoc
	}
	return true
}

type GenerateParams struct {
	PropertyID string

	IsAdHoc        bool
	AdHocAddress   string
	AdHocLatitude  *float64
	AdHocLongitude *float64

	ProfileName string
	Categories  domain.CategorySet
	Distances   domain.RadiusMap
	Priorities  []string
	Refresh     bool
}

type CleanupResult struct {
	Deleted     int64 `json:"deleted"`
	Deactivated int64 `json:"deactivated"`
}

// Engine generates, stores and retires distance profiles.
type Engine struct {
	profiles   repository.DistanceProfileRepository
	properties repository.PropertyRepository
	places     ports.PlacesProvider
	geocoder   ports.GeocodingProvider
	summarizer ports.Summarizer
	opts       Options
}

// NewEngine wires the engine. geocoder and summarizer may be nil.
func NewEngine(
	profiles repository.DistanceProfileRepository,
	properties repository.PropertyRepository,
	places ports.PlacesProvider,
	geocoder ports.GeocodingProvider,
	summarizer ports.Summarizer,
	opts Options,
) *Engine {
	return &Engine{
		profiles:   profiles,
		properties: properties,
		places:     places,
		geocoder:   geocoder,
		summarizer: summarizer,
		opts:       opts.withDefaults(),
	}
}

// Generate computes a new report for a property or an ad-hoc point.
func (e *Engine) Generate(ctx context.Context, caller Caller, params GenerateParams) (_ *domain.DistanceProfile, err error) {
	defer obs.Time(ctx, "distanceprofile.Generate")(&err)

	if params.IsAdHoc {
		return e.generateAdHoc(ctx, caller, params)
	}
	if params.PropertyID == "" {
		return nil, fmt.Errorf("%w: property id is required", domain.ErrValidation)
	}
	return e.generateForProperty(ctx, caller, params)
}

func (e *Engine) generateForProperty(ctx context.Context, caller Caller, params GenerateParams) (*domain.DistanceProfile, error) {
	property, err := e.authorizeProperty(ctx, caller, params.PropertyID)
	if err != nil {
		return nil, err
	}
	if !property.HasCoordinates() {
		return nil, domain.ErrMissingCoordinates
	}
	point := domain.Coordinates{Lat: *property.Latitude, Lng: *property.Longitude}

	if params.Refresh {
		active, err := e.profiles.GetActiveByPropertyID(ctx, property.ID)
		switch {
		case err == nil:
			return e.refreshInPlace(ctx, active, point, params)
		case !errors.Is(err, domain.ErrProfileNotFound):
			return nil, err
		}
	}

	categories, err := resolveCategories(params.Categories, params.Priorities)
	if err != nil {
		return nil, err
	}
	distances, err := resolveDistances(nil, params.Distances)
	if err != nil {
		return nil, err
	}

	profile := e.newProfile(caller, point, categories, distances, params.ProfileName)
	profile.PropertyID = &property.ID

	if err := e.fill(ctx, profile, categories.EnabledList(), params.Refresh); err != nil {
		return nil, err
	}
	if err := e.profiles.Create(ctx, profile); err != nil {
		return nil, fmt.Errorf("failed to create distance profile: %w", err)
	}
	return profile, nil
}

// refreshInPlace re-aggregates the active profile keeping its id and
// active flag. Categories and distances from params are overlaid onto the
// stored ones.
func (e *Engine) refreshInPlace(
	ctx context.Context,
	active *domain.DistanceProfile,
	point domain.Coordinates,
	params GenerateParams,
) (*domain.DistanceProfile, error) {
	categories, err := mergeCategories(active.Categories, params.Categories, params.Priorities)
	if err != nil {
		return nil, err
	}
	distances, err := resolveDistances(active.Distances, params.Distances)
	if err != nil {
		return nil, err
	}

	active.Latitude = point.Lat
	active.Longitude = point.Lng
	active.Categories = categories
	active.Distances = distances
	if params.ProfileName != "" {
		active.ProfileName = &params.ProfileName
	}
	active.LineItems = nil
	active.Summary = nil

	if err := e.fill(ctx, active, categories.EnabledList(), true); err != nil {
		return nil, err
	}

	// Every vocabulary category is replaced so disabled ones lose stale items.
	all := make([]domain.Category, 0, len(domain.Vocabulary))
	for _, info := range domain.Vocabulary {
		all = append(all, info.Category)
	}
	if err := e.profiles.Update(ctx, active, all); err != nil {
		return nil, fmt.Errorf("failed to refresh distance profile: %w", err)
	}
	return active, nil
}

func (e *Engine) generateAdHoc(ctx context.Context, caller Caller, params GenerateParams) (*domain.DistanceProfile, error) {
	if params.PropertyID != "" {
		return nil, fmt.Errorf("%w: ad-hoc profiles cannot be bound to a property", domain.ErrValidation)
	}

	point, address, err := e.resolveAdHocPoint(ctx, params)
	if err != nil {
		return nil, err
	}

	categories, err := resolveCategories(params.Categories, params.Priorities)
	if err != nil {
		return nil, err
	}
	distances, err := resolveDistances(nil, params.Distances)
	if err != nil {
		return nil, err
	}

	profile := e.newProfile(caller, point, categories, distances, params.ProfileName)
	profile.IsAdHoc = true
	profile.AdHocLatitude = &point.Lat
	profile.AdHocLongitude = &point.Lng
	if address != "" {
		profile.AdHocAddress = &address
	}

	if err := e.fill(ctx, profile, categories.EnabledList(), false); err != nil {
		return nil, err
	}
	if err := e.profiles.Create(ctx, profile); err != nil {
		return nil, fmt.Errorf("failed to create ad-hoc profile: %w", err)
	}
	return profile, nil
}

// resolveAdHocPoint prefers supplied coordinates and falls back to geocoding
// the address. A missing address is looked up best-effort.
func (e *Engine) resolveAdHocPoint(ctx context.Context, params GenerateParams) (domain.Coordinates, string, error) {
	address := strings.TrimSpace(params.AdHocAddress)

	if params.AdHocLatitude != nil && params.AdHocLongitude != nil {
		point := domain.Coordinates{Lat: *params.AdHocLatitude, Lng: *params.AdHocLongitude}
		if !point.Valid() {
			return domain.Coordinates{}, "", fmt.Errorf("%w: coordinates out of range", domain.ErrValidation)
		}
		if address == "" && e.geocoder != nil {
			found, err := e.geocoder.ReverseGeocode(ctx, point)
			if err != nil {
				log.Printf("req_id=%s reverse geocode skipped lat=%f lng=%f err=%v", obs.RequestID(ctx), point.Lat, point.Lng, err)
			} else {
				address = found
			}
		}
		return point, address, nil
	}

	if address == "" {
		return domain.Coordinates{}, "", domain.ErrMissingCoordinates
	}
	if e.geocoder == nil {
		return domain.Coordinates{}, "", domain.ErrProviderNotConfigured
	}

	point, err := e.geocoder.Geocode(ctx, address)
	if err != nil {
		if errors.Is(err, domain.ErrNoGeocodeResult) {
			return domain.Coordinates{}, "", fmt.Errorf("%w: %q", domain.ErrMissingCoordinates, address)
		}
		return domain.Coordinates{}, "", err
	}
	return point, address, nil
}

func (e *Engine) newProfile(
	caller Caller,
	point domain.Coordinates,
	categories domain.CategorySet,
	distances domain.RadiusMap,
	name string,
) *domain.DistanceProfile {
	profile := &domain.DistanceProfile{
		ID:         uuid.NewString(),
		RealtorID:  caller.RealtorID,
		Latitude:   point.Lat,
		Longitude:  point.Lng,
		IsActive:   true,
		Categories: categories,
		Distances:  distances,
	}
	if name = strings.TrimSpace(name); name != "" {
		profile.ProfileName = &name
	}
	return profile
}

// fill queries every category and sets line items, failed categories and
// the generation time on profile.
func (e *Engine) fill(ctx context.Context, profile *domain.DistanceProfile, categories []domain.Category, bypassCache bool) error {
	point := domain.Coordinates{Lat: profile.Latitude, Lng: profile.Longitude}
	items, failed, err := e.aggregate(ctx, profile.ID, point, categories, profile.Distances, bypassCache)
	if err != nil {
		return err
	}
	profile.LineItems = items
	profile.FailedCategories = failed
	profile.GeneratedAt = e.opts.Now().UTC()
	return nil
}

// GetActive returns the active profile of a property.
func (e *Engine) GetActive(ctx context.Context, caller Caller, propertyID string) (*domain.DistanceProfile, error) {
	if _, err := e.authorizeProperty(ctx, caller, propertyID); err != nil {
		return nil, err
	}
	return e.profiles.GetActiveByPropertyID(ctx, propertyID)
}

// GetByID returns any profile, active or not, visible to caller in scope.
func (e *Engine) GetByID(ctx context.Context, caller Caller, scope Scope, id string) (*domain.DistanceProfile, error) {
	profile, err := e.profiles.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !scope.matches(profile) {
		return nil, domain.ErrProfileNotFound
	}
	if err := e.authorizeProfile(ctx, caller, profile); err != nil {
		return nil, err
	}
	return profile, nil
}

// ListByProperty returns the full history of a property, newest first.
func (e *Engine) ListByProperty(ctx context.Context, caller Caller, propertyID string) ([]*domain.DistanceProfile, error) {
	if _, err := e.authorizeProperty(ctx, caller, propertyID); err != nil {
		return nil, err
	}
	return e.profiles.ListByPropertyID(ctx, propertyID)
}

// ListAdHoc returns the caller's ad-hoc profiles, newest first.
func (e *Engine) ListAdHoc(ctx context.Context, caller Caller) ([]*domain.DistanceProfile, error) {
	return e.profiles.ListAdHocByRealtorID(ctx, caller.RealtorID)
}

// UpdateRadius merges distances into the profile and re-queries only the
// categories whose radius changed, or every supplied one when refresh is set.
func (e *Engine) UpdateRadius(
	ctx context.Context,
	caller Caller,
	scope Scope,
	id string,
	distances domain.RadiusMap,
	refresh bool,
) (_ *domain.DistanceProfile, err error) {
	defer obs.Time(ctx, "distanceprofile.UpdateRadius")(&err)

	profile, err := e.GetByID(ctx, caller, scope, id)
	if err != nil {
		return nil, err
	}
	if err := validateDistances(distances); err != nil {
		return nil, err
	}

	failedBefore := make(map[domain.Category]bool, len(profile.FailedCategories))
	for _, c := range profile.FailedCategories {
		failedBefore[c] = true
	}

	var affected []domain.Category
	switch {
	case refresh && len(distances) == 0:
		affected = profile.Categories.EnabledList()
	default:
		for c, r := range distances {
			if !profile.Categories.Enabled(c) {
				continue
			}
			if refresh || failedBefore[c] || profile.Distances.RadiusFor(c) != r {
				affected = append(affected, c)
			}
		}
		domain.SortCategories(affected)
	}

	previous := profile.Distances
	merged, err := resolveDistances(previous, distances)
	if err != nil {
		return nil, err
	}
	profile.Distances = merged

	if len(affected) == 0 {
		if err := e.profiles.Update(ctx, profile, nil); err != nil {
			return nil, fmt.Errorf("failed to update radius: %w", err)
		}
		return profile, nil
	}

	point := domain.Coordinates{Lat: profile.Latitude, Lng: profile.Longitude}
	items, failed, err := e.aggregate(ctx, profile.ID, point, affected, merged, refresh)
	if err != nil {
		return nil, err
	}

	// A failed category keeps its old line item, so it keeps its old radius.
	for _, c := range failed {
		merged[c] = previous.RadiusFor(c)
	}

	replaced := make([]domain.Category, 0, len(items))
	for _, item := range items {
		replaced = append(replaced, item.Category)
	}
	profile.LineItems = mergeLineItems(profile.LineItems, items)
	profile.FailedCategories = mergeFailed(profile.FailedCategories, affected, failed)
	profile.GeneratedAt = e.opts.Now().UTC()

	if err := e.profiles.Update(ctx, profile, replaced); err != nil {
		return nil, fmt.Errorf("failed to update radius: %w", err)
	}
	return profile, nil
}

// DeleteActive removes the active profile of a property. Missing profiles
// are not an error.
func (e *Engine) DeleteActive(ctx context.Context, caller Caller, propertyID string) (err error) {
	defer obs.Time(ctx, "distanceprofile.DeleteActive")(&err)

	if _, err := e.authorizeProperty(ctx, caller, propertyID); err != nil {
		if errors.Is(err, domain.ErrPropertyNotFound) {
			return nil
		}
		return err
	}

	active, err := e.profiles.GetActiveByPropertyID(ctx, propertyID)
	if err != nil {
		if errors.Is(err, domain.ErrProfileNotFound) {
			return nil
		}
		return err
	}
	return ignoreNotFound(e.profiles.Delete(ctx, active.ID))
}

// DeleteByID removes one profile. Missing profiles are not an error.
func (e *Engine) DeleteByID(ctx context.Context, caller Caller, scope Scope, id string) (err error) {
	defer obs.Time(ctx, "distanceprofile.DeleteByID")(&err)

	profile, err := e.GetByID(ctx, caller, scope, id)
	if err != nil {
		return ignoreNotFound(err)
	}
	return ignoreNotFound(e.profiles.Delete(ctx, profile.ID))
}

// CleanupOldDeactivated deactivates stale ad-hoc profiles, then deletes
// inactive profiles past the retention window. Active profiles are never
// deleted.
func (e *Engine) CleanupOldDeactivated(ctx context.Context, caller Caller) (_ CleanupResult, err error) {
	defer obs.Time(ctx, "distanceprofile.CleanupOldDeactivated")(&err)

	if !caller.IsAdmin {
		return CleanupResult{}, domain.ErrForbidden
	}

	now := e.opts.Now()
	deactivated, err := e.profiles.DeactivateAdHocOlderThan(ctx, now.Add(-e.opts.AdHocTTL))
	if err != nil {
		return CleanupResult{}, fmt.Errorf("failed to deactivate ad-hoc profiles: %w", err)
	}
	deleted, err := e.profiles.DeleteInactiveOlderThan(ctx, now.Add(-e.opts.Retention))
	if err != nil {
		return CleanupResult{Deactivated: deactivated}, fmt.Errorf("failed to delete inactive profiles: %w", err)
	}

	log.Printf("req_id=%s cleanup deleted=%d deactivated=%d", obs.RequestID(ctx), deleted, deactivated)
	return CleanupResult{Deleted: deleted, Deactivated: deactivated}, nil
}

// Summarize writes a narrative for the profile and stores it.
func (e *Engine) Summarize(ctx context.Context, caller Caller, scope Scope, id string) (_ *domain.DistanceProfile, err error) {
	defer obs.Time(ctx, "distanceprofile.Summarize")(&err)

	if e.summarizer == nil {
		return nil, domain.ErrProviderNotConfigured
	}

	profile, err := e.GetByID(ctx, caller, scope, id)
	if err != nil {
		return nil, err
	}

	summary, err := e.summarizer.SummarizeLocation(ctx, profile)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrProviderUnavailable, err)
	}
	if err := e.profiles.UpdateSummary(ctx, profile.ID, summary); err != nil {
		return nil, err
	}
	profile.Summary = &summary
	return profile, nil
}

func (e *Engine) authorizeProperty(ctx context.Context, caller Caller, propertyID string) (*domain.Property, error) {
	property, err := e.properties.GetByID(ctx, propertyID)
	if err != nil {
		return nil, err
	}
	if !caller.IsAdmin && property.RealtorID != caller.RealtorID {
		return nil, domain.ErrForbidden
	}
	return property, nil
}

func (e *Engine) authorizeProfile(ctx context.Context, caller Caller, profile *domain.DistanceProfile) error {
	if caller.IsAdmin || profile.OwnedBy(caller.RealtorID) {
		return nil
	}
	if profile.PropertyID != nil {
		_, err := e.authorizeProperty(ctx, caller, *profile.PropertyID)
		if errors.Is(err, domain.ErrPropertyNotFound) {
			return domain.ErrForbidden
		}
		return err
	}
	return domain.ErrForbidden
}

func ignoreNotFound(err error) error {
	if errors.Is(err, domain.ErrProfileNotFound) {
		return nil
	}
	return err
}
