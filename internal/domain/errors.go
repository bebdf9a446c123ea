package domain

import (
	"errors"
	"fmt"
)

var (
	ErrValidation          = errors.New("validation failed")
	ErrNotFound            = errors.New("not found")
	ErrUnauthorized        = errors.New("unauthorized")
	ErrForbidden           = errors.New("forbidden")
	ErrProviderUnavailable = errors.New("provider unavailable")
	ErrConflict            = errors.New("conflict")
)

var (
	ErrMissingCoordinates = fmt.Errorf("%w: coordinates could not be resolved", ErrValidation)
	ErrUnknownCategory    = fmt.Errorf("%w: unknown category", ErrValidation)
	ErrInvalidRadius      = fmt.Errorf("%w: invalid radius", ErrValidation)

	ErrProfileNotFound  = fmt.Errorf("distance profile %w", ErrNotFound)
	ErrPropertyNotFound = fmt.Errorf("property %w", ErrNotFound)

	ErrProviderNotConfigured = fmt.Errorf("%w: not configured", ErrProviderUnavailable)
	// ErrNoGeocodeResult means the provider answered but found nothing.
	ErrNoGeocodeResult = errors.New("no geocoding result")
)
