package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/gdugdh24/location-insights/internal/domain"
	"github.com/gdugdh24/location-insights/internal/repository"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

const profileColumns = `
	id, property_id, realtor_id, is_ad_hoc, ad_hoc_address, ad_hoc_latitude, ad_hoc_longitude,
	profile_name, latitude, longitude, is_active, categories, distances, failed_categories,
	summary, generated_at, created_at, updated_at`

const lineItemColumns = `id, profile_id, category, radius_meters, places, fetched_at`

type distanceProfileRepository struct {
	db *sqlx.DB
}

func NewDistanceProfileRepository(db *sqlx.DB) repository.DistanceProfileRepository {
	return &distanceProfileRepository{db: db}
}

func (r *distanceProfileRepository) Create(ctx context.Context, profile *domain.DistanceProfile) error {
	return r.withTx(ctx, func(tx *sqlx.Tx) error {
		if profile.PropertyID != nil && profile.IsActive {
			// Serializes concurrent generations for the same property.
			var locked string
			err := tx.QueryRowContext(ctx, `SELECT id FROM properties WHERE id = $1 FOR UPDATE`, *profile.PropertyID).Scan(&locked)
			if err != nil {
				if errors.Is(err, sql.ErrNoRows) {
					return domain.ErrPropertyNotFound
				}
				return fmt.Errorf("lock property: %w", err)
			}

			_, err = tx.ExecContext(ctx, `
				UPDATE distance_profiles
				SET is_active = false, updated_at = CURRENT_TIMESTAMP
				WHERE property_id = $1 AND is_active = true
			`, *profile.PropertyID)
			if err != nil {
				return fmt.Errorf("deactivate previous profiles: %w", err)
			}
		}

		query := `
			INSERT INTO distance_profiles (
				id, property_id, realtor_id, is_ad_hoc, ad_hoc_address, ad_hoc_latitude, ad_hoc_longitude,
				profile_name, latitude, longitude, is_active, categories, distances, failed_categories,
				summary, generated_at
			)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
			RETURNING created_at, updated_at
		`
		err := tx.QueryRowContext(
			ctx, query,
			profile.ID, profile.PropertyID, profile.RealtorID, profile.IsAdHoc,
			profile.AdHocAddress, profile.AdHocLatitude, profile.AdHocLongitude,
			profile.ProfileName, profile.Latitude, profile.Longitude, profile.IsActive,
			profile.Categories, profile.Distances, profile.FailedCategories,
			profile.Summary, profile.GeneratedAt,
		).Scan(&profile.CreatedAt, &profile.UpdatedAt)
		if err != nil {
			return mapWriteError(err)
		}

		return insertLineItems(ctx, tx, profile.LineItems)
	})
}

func (r *distanceProfileRepository) GetByID(ctx context.Context, id string) (*domain.DistanceProfile, error) {
	var profile domain.DistanceProfile
	query := `SELECT ` + profileColumns + ` FROM distance_profiles WHERE id = $1`
	if err := r.db.GetContext(ctx, &profile, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrProfileNotFound
		}
		return nil, err
	}
	if err := r.attachLineItems(ctx, []*domain.DistanceProfile{&profile}); err != nil {
		return nil, err
	}
	return &profile, nil
}

func (r *distanceProfileRepository) GetActiveByPropertyID(ctx context.Context, propertyID string) (*domain.DistanceProfile, error) {
	var profile domain.DistanceProfile
	query := `
		SELECT ` + profileColumns + `
		FROM distance_profiles
		WHERE property_id = $1 AND is_active = true
		ORDER BY created_at DESC
		LIMIT 1
	`
	if err := r.db.GetContext(ctx, &profile, query, propertyID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrProfileNotFound
		}
		return nil, err
	}
	if err := r.attachLineItems(ctx, []*domain.DistanceProfile{&profile}); err != nil {
		return nil, err
	}
	return &profile, nil
}

func (r *distanceProfileRepository) ListByPropertyID(ctx context.Context, propertyID string) ([]*domain.DistanceProfile, error) {
	var profiles []*domain.DistanceProfile
	query := `
		SELECT ` + profileColumns + `
		FROM distance_profiles
		WHERE property_id = $1
		ORDER BY created_at DESC, id DESC
	`
	if err := r.db.SelectContext(ctx, &profiles, query, propertyID); err != nil {
		return nil, err
	}
	if err := r.attachLineItems(ctx, profiles); err != nil {
		return nil, err
	}
	return profiles, nil
}

func (r *distanceProfileRepository) ListAdHocByRealtorID(ctx context.Context, realtorID string) ([]*domain.DistanceProfile, error) {
	var profiles []*domain.DistanceProfile
	query := `
		SELECT ` + profileColumns + `
		FROM distance_profiles
		WHERE realtor_id = $1 AND is_ad_hoc = true
		ORDER BY created_at DESC, id DESC
	`
	if err := r.db.SelectContext(ctx, &profiles, query, realtorID); err != nil {
		return nil, err
	}
	if err := r.attachLineItems(ctx, profiles); err != nil {
		return nil, err
	}
	return profiles, nil
}

func (r *distanceProfileRepository) Update(ctx context.Context, profile *domain.DistanceProfile, replaced []domain.Category) error {
	return r.withTx(ctx, func(tx *sqlx.Tx) error {
		query := `
			UPDATE distance_profiles
			SET ad_hoc_address = $1, profile_name = $2, latitude = $3, longitude = $4,
			    is_active = $5, categories = $6, distances = $7, failed_categories = $8,
			    summary = $9, generated_at = $10, updated_at = CURRENT_TIMESTAMP
			WHERE id = $11
			RETURNING updated_at
		`
		err := tx.QueryRowContext(
			ctx, query,
			profile.AdHocAddress, profile.ProfileName, profile.Latitude, profile.Longitude,
			profile.IsActive, profile.Categories, profile.Distances, profile.FailedCategories,
			profile.Summary, profile.GeneratedAt,
			profile.ID,
		).Scan(&profile.UpdatedAt)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return domain.ErrProfileNotFound
			}
			return mapWriteError(err)
		}

		if len(replaced) == 0 {
			return nil
		}

		names := make([]string, 0, len(replaced))
		want := make(map[domain.Category]bool, len(replaced))
		for _, c := range replaced {
			names = append(names, string(c))
			want[c] = true
		}

		_, err = tx.ExecContext(ctx, `
			DELETE FROM distance_profile_line_items
			WHERE profile_id = $1 AND category = ANY($2)
		`, profile.ID, pq.Array(names))
		if err != nil {
			return fmt.Errorf("delete replaced line items: %w", err)
		}

		items := make([]domain.LineItem, 0, len(replaced))
		for _, item := range profile.LineItems {
			if want[item.Category] {
				items = append(items, item)
			}
		}
		return insertLineItems(ctx, tx, items)
	})
}

func (r *distanceProfileRepository) UpdateSummary(ctx context.Context, id string, summary string) error {
	result, err := r.db.ExecContext(ctx, `UPDATE distance_profiles SET summary = $1 WHERE id = $2`, summary, id)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrProfileNotFound
	}
	return nil
}

func (r *distanceProfileRepository) Delete(ctx context.Context, id string) error {
	return r.withTx(ctx, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM distance_profile_line_items WHERE profile_id = $1`, id); err != nil {
			return fmt.Errorf("delete line items: %w", err)
		}
		result, err := tx.ExecContext(ctx, `DELETE FROM distance_profiles WHERE id = $1`, id)
		if err != nil {
			return err
		}
		rows, err := result.RowsAffected()
		if err != nil {
			return err
		}
		if rows == 0 {
			return domain.ErrProfileNotFound
		}
		return nil
	})
}

func (r *distanceProfileRepository) DeactivateAdHocOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	query := `
		UPDATE distance_profiles
		SET is_active = false, updated_at = CURRENT_TIMESTAMP
		WHERE is_ad_hoc = true AND is_active = true AND updated_at < $1
	`
	result, err := r.db.ExecContext(ctx, query, cutoff)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func (r *distanceProfileRepository) DeleteInactiveOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	var deleted int64
	err := r.withTx(ctx, func(tx *sqlx.Tx) error {
		var ids []string
		err := tx.SelectContext(ctx, &ids, `
			SELECT id FROM distance_profiles
			WHERE is_active = false AND updated_at < $1
			FOR UPDATE
		`, cutoff)
		if err != nil {
			return fmt.Errorf("select expired profiles: %w", err)
		}
		if len(ids) == 0 {
			return nil
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM distance_profile_line_items WHERE profile_id = ANY($1)`, pq.Array(ids)); err != nil {
			return fmt.Errorf("delete expired line items: %w", err)
		}
		// is_active is re-checked so a row reactivated meanwhile survives.
		result, err := tx.ExecContext(ctx, `DELETE FROM distance_profiles WHERE id = ANY($1) AND is_active = false`, pq.Array(ids))
		if err != nil {
			return fmt.Errorf("delete expired profiles: %w", err)
		}
		deleted, err = result.RowsAffected()
		return err
	})
	return deleted, err
}

func (r *distanceProfileRepository) attachLineItems(ctx context.Context, profiles []*domain.DistanceProfile) error {
	if len(profiles) == 0 {
		return nil
	}

	ids := make([]string, 0, len(profiles))
	byID := make(map[string]*domain.DistanceProfile, len(profiles))
	for _, p := range profiles {
		ids = append(ids, p.ID)
		byID[p.ID] = p
		p.LineItems = []domain.LineItem{}
	}

	var items []domain.LineItem
	query := `
		SELECT ` + lineItemColumns + `
		FROM distance_profile_line_items
		WHERE profile_id = ANY($1)
		ORDER BY profile_id, category
	`
	if err := r.db.SelectContext(ctx, &items, query, pq.Array(ids)); err != nil {
		return fmt.Errorf("load line items: %w", err)
	}

	for _, item := range items {
		if p, ok := byID[item.ProfileID]; ok {
			p.LineItems = append(p.LineItems, item)
		}
	}
	for _, p := range profiles {
		sortLineItems(p.LineItems)
	}
	return nil
}

func (r *distanceProfileRepository) withTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", mapWriteError(err))
	}
	return nil
}

func insertLineItems(ctx context.Context, tx *sqlx.Tx, items []domain.LineItem) error {
	query := `
		INSERT INTO distance_profile_line_items (` + lineItemColumns + `)
		VALUES (:id, :profile_id, :category, :radius_meters, :places, :fetched_at)
	`
	for i := range items {
		if _, err := tx.NamedExecContext(ctx, query, &items[i]); err != nil {
			return fmt.Errorf("insert line item %s: %w", items[i].Category, mapWriteError(err))
		}
	}
	return nil
}

func sortLineItems(items []domain.LineItem) {
	cats := make([]domain.Category, len(items))
	byCat := make(map[domain.Category]domain.LineItem, len(items))
	for i, item := range items {
		cats[i] = item.Category
		byCat[item.Category] = item
	}
	domain.SortCategories(cats)
	for i, c := range cats {
		items[i] = byCat[c]
	}
}

// mapWriteError turns unique violations into domain.ErrConflict.
func mapWriteError(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		return fmt.Errorf("%w: %s", domain.ErrConflict, pqErr.Constraint)
	}
	return err
}
