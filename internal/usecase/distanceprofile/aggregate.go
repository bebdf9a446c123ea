package distanceprofile

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"

	"github.com/gdugdh24/location-insights/internal/domain"
	"github.com/gdugdh24/location-insights/internal/infrastructure/obs"
	"github.com/gdugdh24/location-insights/internal/ports"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

type categoryResult struct {
	category domain.Category
	radius   int
	places   []domain.Place
	err      error
}

// aggregate searches every category concurrently and joins the results.
// Failed categories are skipped and returned separately. The call fails
// only when the provider is not configured or every category failed.
func (e *Engine) aggregate(
	ctx context.Context,
	profileID string,
	point domain.Coordinates,
	categories []domain.Category,
	distances domain.RadiusMap,
	bypassCache bool,
) ([]domain.LineItem, domain.CategoryList, error) {
	items := []domain.LineItem{}
	failed := domain.CategoryList{}
	if len(categories) == 0 {
		return items, failed, nil
	}

	results := make([]categoryResult, len(categories))
	var g errgroup.Group
	g.SetLimit(e.opts.Concurrency)
	for i, c := range categories {
		g.Go(func() error {
			results[i] = e.searchCategory(ctx, point, c, distances.RadiusFor(c), bypassCache)
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	var firstErr error
	fetchedAt := e.opts.Now().UTC()
	for _, r := range results {
		if r.err != nil {
			if errors.Is(r.err, domain.ErrProviderNotConfigured) {
				return nil, nil, r.err
			}
			log.Printf("req_id=%s category search failed category=%s radius=%d err=%v",
				obs.RequestID(ctx), r.category, r.radius, r.err)
			if firstErr == nil {
				firstErr = r.err
			}
			failed = append(failed, r.category)
			continue
		}
		items = append(items, domain.LineItem{
			ID:           uuid.NewString(),
			ProfileID:    profileID,
			Category:     r.category,
			RadiusMeters: r.radius,
			Places:       r.places,
			FetchedAt:    fetchedAt,
		})
	}

	if len(failed) == len(categories) {
		return nil, nil, fmt.Errorf("%w: every category search failed: %v", domain.ErrProviderUnavailable, firstErr)
	}
	return items, failed, nil
}

func (e *Engine) searchCategory(
	ctx context.Context,
	point domain.Coordinates,
	category domain.Category,
	radius int,
	bypassCache bool,
) categoryResult {
	result := categoryResult{category: category, radius: radius}

	if bypassCache {
		if inv, ok := e.places.(ports.PlacesCacheInvalidator); ok {
			if err := inv.Invalidate(ctx, point, category, radius); err != nil {
				log.Printf("req_id=%s places cache invalidate failed category=%s err=%v", obs.RequestID(ctx), category, err)
			}
		}
	}

	callCtx, cancel := context.WithTimeout(ctx, e.opts.PlacesTimeout)
	defer cancel()

	places, err := e.places.Search(callCtx, point, category, radius)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(callCtx.Err(), context.DeadlineExceeded) {
			err = fmt.Errorf("%w: %s search timed out", domain.ErrProviderUnavailable, category)
		}
		result.err = err
		return result
	}

	within := make(domain.Places, 0, len(places))
	for _, p := range places {
		if p.DistanceMeters <= float64(radius) {
			within = append(within, p)
		}
	}
	sort.SliceStable(within, func(i, j int) bool {
		return within[i].DistanceMeters < within[j].DistanceMeters
	})
	result.places = within
	return result
}

// resolveCategories builds a complete enabled map over the vocabulary.
// Explicit entries win over priorities, priorities over defaults.
func resolveCategories(explicit domain.CategorySet, priorities []string) (domain.CategorySet, error) {
	for c := range explicit {
		if _, ok := c.Info(); !ok {
			return nil, fmt.Errorf("%w: %q", domain.ErrUnknownCategory, c)
		}
	}

	base := domain.DefaultCategories()
	if len(priorities) > 0 {
		fromPriorities := domain.CategoriesForPriorities(priorities)
		for c := range base {
			base[c] = fromPriorities[c]
		}
	}
	for c, on := range explicit {
		base[c] = on
	}
	return base, nil
}

// mergeCategories overlays explicit entries onto stored. Priorities replace
// stored as the base when given.
func mergeCategories(stored, explicit domain.CategorySet, priorities []string) (domain.CategorySet, error) {
	if len(priorities) > 0 {
		return resolveCategories(explicit, priorities)
	}

	out := domain.DefaultCategories()
	for c, on := range stored {
		if _, ok := out[c]; ok {
			out[c] = on
		}
	}
	if _, err := resolveCategories(explicit, nil); err != nil {
		return nil, err
	}
	for c, on := range explicit {
		out[c] = on
	}
	return out, nil
}

// resolveDistances layers overrides on top of base on top of the defaults.
func resolveDistances(base, overrides domain.RadiusMap) (domain.RadiusMap, error) {
	if err := validateDistances(overrides); err != nil {
		return nil, err
	}

	out := domain.DefaultDistances()
	for c, r := range base {
		if r > 0 {
			out[c] = r
		}
	}
	for c, r := range overrides {
		out[c] = r
	}
	return out, nil
}

func validateDistances(distances domain.RadiusMap) error {
	for c, r := range distances {
		if _, ok := c.Info(); !ok {
			return fmt.Errorf("%w: %q", domain.ErrUnknownCategory, c)
		}
		if r < domain.MinRadiusMeters || r > domain.MaxRadiusMeters {
			return fmt.Errorf("%w: %s radius %d outside %d..%d",
				domain.ErrInvalidRadius, c, r, domain.MinRadiusMeters, domain.MaxRadiusMeters)
		}
	}
	return nil
}

// mergeLineItems replaces items of the same category with fresh ones.
func mergeLineItems(existing, fresh []domain.LineItem) []domain.LineItem {
	byCat := make(map[domain.Category]domain.LineItem, len(existing)+len(fresh))
	for _, item := range existing {
		byCat[item.Category] = item
	}
	for _, item := range fresh {
		byCat[item.Category] = item
	}

	cats := make([]domain.Category, 0, len(byCat))
	for c := range byCat {
		cats = append(cats, c)
	}
	domain.SortCategories(cats)

	out := make([]domain.LineItem, 0, len(cats))
	for _, c := range cats {
		out = append(out, byCat[c])
	}
	return out
}

// mergeFailed keeps earlier failures outside the re-queried categories.
func mergeFailed(previous domain.CategoryList, requeried []domain.Category, failed domain.CategoryList) domain.CategoryList {
	skip := make(map[domain.Category]bool, len(requeried))
	for _, c := range requeried {
		skip[c] = true
	}

	out := domain.CategoryList{}
	for _, c := range previous {
		if !skip[c] {
			out = append(out, c)
		}
	}
	out = append(out, failed...)
	domain.SortCategories(out)
	return out
}
