package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Client represents a coffee client (exporter, importer or roaster)
type Client struct {
	ID                   uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	CompanyName          string         `gorm:"size:200;not null" json:"company_name"`
	DisplayName          string         `gorm:"size:100" json:"display_name"`
	Email                string         `gorm:"size:255" json:"email"`
	Phone                string         `gorm:"size:30" json:"phone"`
	Country              string         `gorm:"size:2" json:"country"` // ISO 3166-1 alpha-2
	PricePerSample       float64        `gorm:"default:0" json:"price_per_sample"`
	Currency             string         `gorm:"size:3;default:'USD'" json:"currency"` // ISO 4217
	TrackingNumberFormat string         `gorm:"size:100" json:"tracking_number_format"`
	Active               bool           `gorm:"default:true" json:"active"`
	CreatedAt            time.Time      `json:"created_at"`
	UpdatedAt            time.Time      `json:"updated_at"`
	DeletedAt            gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	OriginPricing []ClientOriginPricing `gorm:"foreignKey:ClientID" json:"origin_pricing,omitempty"`
}

// ClientOriginPricing is a per-origin price override for a client.
// The (client_id, origin) pair is unique.
type ClientOriginPricing struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	ClientID       uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_client_origin" json:"client_id"`
	Origin         string    `gorm:"size:100;not null;uniqueIndex:idx_client_origin" json:"origin"`
	PricePerSample float64   `gorm:"not null" json:"price_per_sample"`
	Currency       string    `gorm:"size:3;default:'USD'" json:"currency"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// ClientSearchResult is one ranked row returned by the fuzzy client search
type ClientSearchResult struct {
	ID          uuid.UUID `json:"id"`
	CompanyName string    `json:"company_name"`
	DisplayName string    `json:"display_name"`
	Country     string    `json:"country"`
	Rank        float64   `json:"rank"`
}
