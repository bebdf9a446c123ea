package domain

import "time"

// Property is a stored listing. It is owned by the listings service and is
// read-only here.
type Property struct {
	ID        string    `json:"id" db:"id"`
	RealtorID string    `json:"realtor_id" db:"realtor_id"`
	Address   *string   `json:"address" db:"address"`
	Latitude  *float64  `json:"latitude" db:"latitude"`
	Longitude *float64  `json:"longitude" db:"longitude"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// HasCoordinates reports whether both latitude and longitude are set.
func (p *Property) HasCoordinates() bool {
	return p.Latitude != nil && p.Longitude != nil
}
