package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/gdugdh24/location-insights/internal/domain"
	"github.com/gdugdh24/location-insights/internal/repository"
	"github.com/jmoiron/sqlx"
)

type propertyRepository struct {
	db *sqlx.DB
}

func NewPropertyRepository(db *sqlx.DB) repository.PropertyRepository {
	return &propertyRepository{db: db}
}

func (r *propertyRepository) GetByID(ctx context.Context, id string) (*domain.Property, error) {
	var property domain.Property
	query := `
		SELECT id, realtor_id, address, latitude, longitude, created_at, updated_at
		FROM properties WHERE id = $1
	`
	err := r.db.GetContext(ctx, &property, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrPropertyNotFound
		}
		return nil, err
	}
	return &property, nil
}
