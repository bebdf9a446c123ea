package repository

import (
	"context"
	"time"

	"github.com/gdugdh24/location-insights/internal/domain"
)

type DistanceProfileRepository interface {
	// Create inserts the profile with its line items. For a property-bound
	// profile every other active profile of the property is deactivated in
	// the same transaction.
	Create(ctx context.Context, profile *domain.DistanceProfile) error
	GetByID(ctx context.Context, id string) (*domain.DistanceProfile, error)
	GetActiveByPropertyID(ctx context.Context, propertyID string) (*domain.DistanceProfile, error)
	ListByPropertyID(ctx context.Context, propertyID string) ([]*domain.DistanceProfile, error)
	ListAdHocByRealtorID(ctx context.Context, realtorID string) ([]*domain.DistanceProfile, error)
	// Update persists the profile row and replaces the line items of the
	// given categories only.
	Update(ctx context.Context, profile *domain.DistanceProfile, replaced []domain.Category) error
	UpdateSummary(ctx context.Context, id string, summary string) error
	Delete(ctx context.Context, id string) error
	DeactivateAdHocOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
	DeleteInactiveOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

type PropertyRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Property, error)
}
