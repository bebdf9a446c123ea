package domain

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// CategorySet maps a category to its enabled flag.
type CategorySet map[Category]bool

// Enabled reports whether c is on. Absent categories count as enabled, a
// category is skipped only when explicitly set to false.
func (s CategorySet) Enabled(c Category) bool {
	on, ok := s[c]
	return !ok || on
}

// EnabledList returns the vocabulary categories that are on, in vocabulary
// order.
func (s CategorySet) EnabledList() []Category {
	out := make([]Category, 0, len(Vocabulary))
	for _, info := range Vocabulary {
		if s.Enabled(info.Category) {
			out = append(out, info.Category)
		}
	}
	return out
}

func (s CategorySet) Value() (driver.Value, error) { return jsonValue(s) }
func (s *CategorySet) Scan(src any) error       { return jsonScan(src, s) }

// RadiusMap maps a category to its search radius in meters.
type RadiusMap map[Category]int

// RadiusFor returns the radius for c, falling back to the category default.
func (m RadiusMap) RadiusFor(c Category) int {
	if r, ok := m[c]; ok && r > 0 {
		return r
	}
	return c.DefaultRadius()
}

func (m RadiusMap) Value() (driver.Value, error) { return jsonValue(m) }
func (m *RadiusMap) Scan(src any) error       { return jsonScan(src, m) }

// CategoryList is a JSON-encoded list of categories.
type CategoryList []Category

func (l CategoryList) Value() (driver.Value, error) {
	if l == nil {
		return []byte("[]"), nil
	}
	return jsonValue(l)
}
func (l *CategoryList) Scan(src any) error { return jsonScan(src, l) }

// Place is a point of interest found near a profile's coordinates.
type Place struct {
	Name           string   `json:"name"`
	DistanceMeters float64  `json:"distance_meters"`
	Latitude       float64  `json:"lat"`
	Longitude      float64  `json:"lng"`
	PlaceID        string   `json:"place_id,omitempty"`
	Address        string   `json:"address,omitempty"`
	Rating         float64  `json:"rating,omitempty"`
	Types          []string `json:"types,omitempty"`
}

// Places is a JSON-encoded list of places.
type Places []Place

func (p Places) Value() (driver.Value, error) {
	if p == nil {
		return []byte("[]"), nil
	}
	return jsonValue(p)
}
func (p *Places) Scan(src any) error { return jsonScan(src, p) }

// LineItem is the aggregated search result for one category of a profile.
type LineItem struct {
	ID           string    `json:"id" db:"id"`
	ProfileID    string    `json:"profile_id" db:"profile_id"`
	Category     Category  `json:"category" db:"category"`
	RadiusMeters int       `json:"radius_meters" db:"radius_meters"`
	Places       Places    `json:"places" db:"places"`
	FetchedAt    time.Time `json:"fetched_at" db:"fetched_at"`
}

// DistanceProfile is a location-insights report for a property or an
// arbitrary coordinate.
type DistanceProfile struct {
	ID               string       `json:"id" db:"id"`
	PropertyID       *string      `json:"property_id,omitempty" db:"property_id"`
	RealtorID        string       `json:"realtor_id" db:"realtor_id"`
	IsAdHoc          bool         `json:"is_ad_hoc" db:"is_ad_hoc"`
	AdHocAddress     *string      `json:"ad_hoc_address,omitempty" db:"ad_hoc_address"`
	AdHocLatitude    *float64     `json:"ad_hoc_latitude,omitempty" db:"ad_hoc_latitude"`
	AdHocLongitude   *float64     `json:"ad_hoc_longitude,omitempty" db:"ad_hoc_longitude"`
	ProfileName      *string      `json:"profile_name,omitempty" db:"profile_name"`
	Latitude         float64      `json:"latitude" db:"latitude"`
	Longitude        float64      `json:"longitude" db:"longitude"`
	IsActive         bool         `json:"is_active" db:"is_active"`
	Categories       CategorySet  `json:"categories" db:"categories"`
	Distances        RadiusMap    `json:"distances" db:"distances"`
	FailedCategories CategoryList `json:"failed_categories" db:"failed_categories"`
	Summary          *string      `json:"summary,omitempty" db:"summary"`
	GeneratedAt      time.Time    `json:"generated_at" db:"generated_at"`
	CreatedAt        time.Time    `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time    `json:"updated_at" db:"updated_at"`

	LineItems []LineItem `json:"line_items" db:"-"`
}

// LineItem returns the line item for c, if present.
func (p *DistanceProfile) LineItem(c Category) (*LineItem, bool) {
	for i := range p.LineItems {
		if p.LineItems[i].Category == c {
			return &p.LineItems[i], true
		}
	}
	return nil, false
}

// OwnedBy reports whether realtorID owns the profile.
func (p *DistanceProfile) OwnedBy(realtorID string) bool {
	return p.RealtorID != "" && p.RealtorID == realtorID
}

// BoundTo reports whether the profile belongs to propertyID.
func (p *DistanceProfile) BoundTo(propertyID string) bool {
	return !p.IsAdHoc && p.PropertyID != nil && *p.PropertyID == propertyID
}

func jsonValue(v any) (driver.Value, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return b, nil
}

func jsonScan(src any, dst any) error {
	switch v := src.(type) {
	case nil:
		return nil
	case []byte:
		return json.Unmarshal(v, dst)
	case string:
		return json.Unmarshal([]byte(v), dst)
	default:
		return fmt.Errorf("unsupported json column type %T", src)
	}
}
