package handler

import (
	"context"
	"fmt"

	"github.com/gdugdh24/location-insights/internal/domain"
	"github.com/gdugdh24/location-insights/internal/usecase/distanceprofile"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// DistanceProfileService is the engine as seen by the handlers.
type DistanceProfileService interface {
	Generate(ctx context.Context, caller distanceprofile.Caller, params distanceprofile.GenerateParams) (*domain.DistanceProfile, error)
	GetActive(ctx context.Context, caller distanceprofile.Caller, propertyID string) (*domain.DistanceProfile, error)
	GetByID(ctx context.Context, caller distanceprofile.Caller, scope distanceprofile.Scope, id string) (*domain.DistanceProfile, error)
	ListByProperty(ctx context.Context, caller distanceprofile.Caller, propertyID string) ([]*domain.DistanceProfile, error)
	ListAdHoc(ctx context.Context, caller distanceprofile.Caller) ([]*domain.DistanceProfile, error)
	UpdateRadius(ctx context.Context, caller distanceprofile.Caller, scope distanceprofile.Scope, id string, distances domain.RadiusMap, refresh bool) (*domain.DistanceProfile, error)
	DeleteActive(ctx context.Context, caller distanceprofile.Caller, propertyID string) error
	DeleteByID(ctx context.Context, caller distanceprofile.Caller, scope distanceprofile.Scope, id string) error
	CleanupOldDeactivated(ctx context.Context, caller distanceprofile.Caller) (distanceprofile.CleanupResult, error)
	Summarize(ctx context.Context, caller distanceprofile.Caller, scope distanceprofile.Scope, id string) (*domain.DistanceProfile, error)
}

// GenerateProfileRequest represents a property-bound generation request
type GenerateProfileRequest struct {
	Refresh     bool            `json:"refresh"`
	Categories  map[string]bool `json:"categories" binding:"omitempty,dive,keys,category,endkeys"`
	Distances   map[string]int  `json:"distances" binding:"omitempty,dive,keys,category,endkeys,min=50,max=50000"`
	Priorities  []string        `json:"priorities" binding:"omitempty,max=20,dive,min=1,max=50"`
	ProfileName string          `json:"profileName" binding:"omitempty,max=200"`
}

// AdHocProfileRequest represents an ad-hoc generation request
type AdHocProfileRequest struct {
	Address     string          `json:"address" binding:"omitempty,max=500"`
	Latitude    *float64        `json:"latitude" binding:"omitempty,min=-90,max=90"`
	Longitude   *float64        `json:"longitude" binding:"omitempty,min=-180,max=180"`
	Categories  map[string]bool `json:"categories" binding:"omitempty,dive,keys,category,endkeys"`
	Distances   map[string]int  `json:"distances" binding:"omitempty,dive,keys,category,endkeys,min=50,max=50000"`
	Priorities  []string        `json:"priorities" binding:"omitempty,max=20,dive,min=1,max=50"`
	ProfileName string          `json:"profileName" binding:"omitempty,max=200"`
}

// UpdateRadiusRequest represents a radius update request
type UpdateRadiusRequest struct {
	Distances map[string]int `json:"distances" binding:"omitempty,dive,keys,category,endkeys,min=50,max=50000"`
	Refresh   bool           `json:"refresh"`
}

// ProfileListResponse wraps a list of profiles
type ProfileListResponse struct {
	Profiles []*domain.DistanceProfile `json:"profiles"`
	Total    int                       `json:"total"`
}

func newProfileList(profiles []*domain.DistanceProfile) ProfileListResponse {
	if profiles == nil {
		profiles = []*domain.DistanceProfile{}
	}
	return ProfileListResponse{Profiles: profiles, Total: len(profiles)}
}

// RegisterValidators adds the category tag to gin's validator.
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return fmt.Errorf("unexpected validator engine %T", binding.Validator.Engine())
	}
	return v.RegisterValidation("category", func(fl validator.FieldLevel) bool {
		return domain.IsKnownCategory(fl.Field().String())
	})
}

func toCategorySet(in map[string]bool) (domain.CategorySet, error) {
	if in == nil {
		return nil, nil
	}
	out := make(domain.CategorySet, len(in))
	for name, on := range in {
		c, err := domain.ParseCategory(name)
		if err != nil {
			return nil, err
		}
		out[c] = on
	}
	return out, nil
}

func toRadiusMap(in map[string]int) (domain.RadiusMap, error) {
	if in == nil {
		return nil, nil
	}
	out := make(domain.RadiusMap, len(in))
	for name, r := range in {
		c, err := domain.ParseCategory(name)
		if err != nil {
			return nil, err
		}
		out[c] = r
	}
	return out, nil
}
