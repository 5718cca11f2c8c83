package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Sample statuses
const (
	SampleStatusReceived   = "received"
	SampleStatusInProgress = "in_progress"
	SampleStatusCompleted  = "completed"
)

// Sample represents a physical coffee sample received at a laboratory
type Sample struct {
	ID             uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	ClientID       uuid.UUID      `gorm:"type:uuid;not null;index" json:"client_id"`
	LaboratoryID   uuid.UUID      `gorm:"type:uuid;not null;index" json:"laboratory_id"`
	TrackingNumber string         `gorm:"size:60;not null;uniqueIndex" json:"tracking_number"`
	Origin         string         `gorm:"size:100" json:"origin"`
	Supplier       string         `gorm:"size:200" json:"supplier"`
	SampleType     string         `gorm:"size:50" json:"sample_type"` // pre-shipment, offer, arrival, ...
	Status         string         `gorm:"size:20;default:'received'" json:"status"`
	Quantity       int            `gorm:"default:1" json:"quantity"`
	PositionID     *uuid.UUID     `gorm:"type:uuid" json:"position_id"`
	ReceivedAt     time.Time      `json:"received_at"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	Client     Client           `gorm:"foreignKey:ClientID" json:"client,omitempty"`
	Laboratory Laboratory       `gorm:"foreignKey:LaboratoryID" json:"laboratory,omitempty"`
	Position   *StoragePosition `gorm:"foreignKey:PositionID" json:"position,omitempty"`
}

// TrackingCounter backs tracking-number allocation. One row per
// (client, laboratory, year); LastValue only moves forward, under a
// single-statement atomic upsert.
type TrackingCounter struct {
	ClientID     uuid.UUID `gorm:"type:uuid;primaryKey" json:"client_id"`
	LaboratoryID uuid.UUID `gorm:"type:uuid;primaryKey" json:"laboratory_id"`
	Year         int       `gorm:"primaryKey" json:"year"`
	LastValue    int       `gorm:"not null;default:0" json:"last_value"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// TrackingAllocation is the client-facing echo of a freshly allocated number
type TrackingAllocation struct {
	TrackingNumber string `json:"tracking_number"`
	ClientName     string `json:"client_name"`
	FormatUsed     string `json:"format_used"`
	Sequence       int    `json:"sequence"`
}

// TrackingLookup is the result of validating an existing tracking number
type TrackingLookup struct {
	Exists    bool       `json:"exists"`
	Valid     bool       `json:"valid"`
	SampleID  *uuid.UUID `json:"sample_id,omitempty"`
	CreatedAt *time.Time `json:"created_at,omitempty"`
}
