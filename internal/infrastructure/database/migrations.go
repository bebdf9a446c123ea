package database

import (
	"context"
	"fmt"
	"log"

	"github.com/jmoiron/sqlx"
)

// Migration is one versioned schema change.
type Migration struct {
	Version int
	Name    string
	SQL     string
}

var migrations = []Migration{
	{
		Version: 1,
		Name:    "properties",
		SQL: `
			CREATE TABLE IF NOT EXISTS properties (
				id          TEXT PRIMARY KEY,
				realtor_id  TEXT NOT NULL,
				address     TEXT,
				latitude    DOUBLE PRECISION,
				longitude   DOUBLE PRECISION,
				created_at  TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
				updated_at  TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
			);
		`,
	},
	{
		Version: 2,
		Name:    "distance_profiles",
		SQL: `
			CREATE TABLE IF NOT EXISTS distance_profiles (
				id                TEXT PRIMARY KEY,
				property_id       TEXT REFERENCES properties(id),
				realtor_id        TEXT NOT NULL,
				is_ad_hoc         BOOLEAN NOT NULL DEFAULT false,
				ad_hoc_address    TEXT,
				ad_hoc_latitude   DOUBLE PRECISION,
				ad_hoc_longitude  DOUBLE PRECISION,
				profile_name      TEXT,
				latitude          DOUBLE PRECISION NOT NULL,
				longitude         DOUBLE PRECISION NOT NULL,
				is_active         BOOLEAN NOT NULL DEFAULT true,
				categories        JSONB NOT NULL DEFAULT '{}',
				distances         JSONB NOT NULL DEFAULT '{}',
				failed_categories JSONB NOT NULL DEFAULT '[]',
				summary           TEXT,
				generated_at      TIMESTAMPTZ NOT NULL,
				created_at        TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
				updated_at        TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
				CONSTRAINT distance_profiles_binding CHECK (
					(is_ad_hoc AND property_id IS NULL) OR (NOT is_ad_hoc AND property_id IS NOT NULL)
				)
			);
			CREATE UNIQUE INDEX IF NOT EXISTS distance_profiles_one_active_per_property
				ON distance_profiles (property_id) WHERE is_active;
			CREATE INDEX IF NOT EXISTS distance_profiles_property_created
				ON distance_profiles (property_id, created_at DESC);
			CREATE INDEX IF NOT EXISTS distance_profiles_realtor_adhoc
				ON distance_profiles (realtor_id) WHERE is_ad_hoc;
			CREATE INDEX IF NOT EXISTS distance_profiles_inactive_updated
				ON distance_profiles (updated_at) WHERE NOT is_active;
		`,
	},
	{
		Version: 3,
		Name:    "distance_profile_line_items",
		SQL: `
			CREATE TABLE IF NOT EXISTS distance_profile_line_items (
				id             TEXT PRIMARY KEY,
				profile_id     TEXT NOT NULL REFERENCES distance_profiles(id),
				category       TEXT NOT NULL,
				radius_meters  INTEGER NOT NULL,
				places         JSONB NOT NULL DEFAULT '[]',
				fetched_at     TIMESTAMPTZ NOT NULL,
				UNIQUE (profile_id, category)
			);
		`,
	},
}

// Migrate applies every migration that has not been recorded yet.
func Migrate(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version    INTEGER PRIMARY KEY,
			name       TEXT NOT NULL,
			applied_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	var applied []int
	if err := db.SelectContext(ctx, &applied, `SELECT version FROM schema_migrations`); err != nil {
		return fmt.Errorf("failed to query migrations: %w", err)
	}
	done := make(map[int]bool, len(applied))
	for _, v := range applied {
		done[v] = true
	}

	for _, m := range migrations {
		if done[m.Version] {
			continue
		}
		tx, err := db.BeginTxx(ctx, nil)
		if err != nil {
			return fmt.Errorf("failed to begin migration %d: %w", m.Version, err)
		}
		if _, err := tx.ExecContext(ctx, m.SQL); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to apply migration %d (%s): %w", m.Version, m.Name, err)
		}
		if _, err := tx.ExecContext(ctx, `INSERT INTO schema_migrations (version, name) VALUES ($1, $2)`, m.Version, m.Name); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to record migration %d: %w", m.Version, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("failed to commit migration %d: %w", m.Version, err)
		}
		log.Printf("migration applied version=%d name=%s", m.Version, m.Name)
	}

	return nil
}
