package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Laboratory represents a physical quality-control laboratory
type Laboratory struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	Name      string         `gorm:"size:100;not null" json:"name"`
	Code      string         `gorm:"size:10;not null;uniqueIndex" json:"code"` // short code used in tracking numbers, e.g. SAN
	Location  string         `gorm:"size:200" json:"location"`
	Country   string         `gorm:"size:2" json:"country"`
	EntranceX float64        `json:"entrance_x"` // floor-plan entrance coordinates
	EntranceY float64        `json:"entrance_y"`
	Active    bool           `gorm:"default:true" json:"active"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	Shelves []Shelf `gorm:"foreignKey:LaboratoryID" json:"shelves,omitempty"`
}

// Shelf is a storage unit inside a laboratory, laid out as a rows x columns
// grid of positions, each holding up to SamplesPerPosition samples.
type Shelf struct {
	ID                 uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	LaboratoryID       uuid.UUID  `gorm:"type:uuid;not null;index" json:"laboratory_id"`
	Name               string     `gorm:"size:50;not null" json:"name"`
	Rows               int        `gorm:"not null" json:"rows"`
	Columns            int        `gorm:"not null" json:"columns"`
	SamplesPerPosition int        `gorm:"not null;default:1" json:"samples_per_position"`
	ClientID           *uuid.UUID `gorm:"type:uuid" json:"client_id"` // optional exclusive assignment
	AllowClientView    bool       `gorm:"default:false" json:"allow_client_view"`
	FloorX             float64    `json:"floor_x"` // floor-plan placement
	FloorY             float64    `json:"floor_y"`
	Rotation           int        `gorm:"default:0" json:"rotation"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`

	// Relationships
	Laboratory Laboratory        `gorm:"foreignKey:LaboratoryID" json:"laboratory,omitempty"`
	Client     *Client           `gorm:"foreignKey:ClientID" json:"client,omitempty"`
	Positions  []StoragePosition `gorm:"foreignKey:ShelfID" json:"positions,omitempty"`
}

// StoragePosition is one addressable slot in a shelf grid
type StoragePosition struct {
	ID              uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	ShelfID         uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_shelf_coord" json:"shelf_id"`
	RowNumber       int        `gorm:"not null;uniqueIndex:idx_shelf_coord" json:"row_number"`
	ColumnNumber    int        `gorm:"not null;uniqueIndex:idx_shelf_coord" json:"column_number"`
	PositionCode    string     `gorm:"size:30;not null" json:"position_code"` // e.g. INT-R2-C3
	CurrentCount    int        `gorm:"not null;default:0" json:"current_count"`
	ClientID        *uuid.UUID `gorm:"type:uuid" json:"client_id"`
	AllowClientView bool       `gorm:"default:false" json:"allow_client_view"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`

	// Relationships
	Shelf  Shelf   `gorm:"foreignKey:ShelfID" json:"shelf,omitempty"`
	Client *Client `gorm:"foreignKey:ClientID" json:"client,omitempty"`
}

// ShelfUtilization is the aggregate occupancy of a single shelf
type ShelfUtilization struct {
	TotalPositions        int     `json:"total_positions"`
	OccupiedPositions     int     `json:"occupied_positions"`
	TotalCapacity         int     `json:"total_capacity"`
	CurrentCount          int     `json:"current_count"`
	UtilizationPercentage float64 `json:"utilization_percentage"`
}

// ShelfLayout is a shelf with its utilization and assigned-client echo
type ShelfLayout struct {
	Shelf            Shelf            `json:"shelf"`
	AssignedClient   *Client          `json:"assigned_client,omitempty"`
	DerivedCapacity  int              `json:"derived_capacity"` // rows * columns * samples_per_position cross-check
	Utilization      ShelfUtilization `json:"utilization"`
}

// LaboratoryLayout is the full floor plan response for a laboratory
type LaboratoryLayout struct {
	Laboratory            Laboratory    `json:"laboratory"`
	Shelves               []ShelfLayout `json:"shelves"`
	TotalCapacity         int           `json:"total_capacity"`
	CurrentCount          int           `json:"current_count"`
	UtilizationPercentage float64       `json:"utilization_percentage"`
}

// RegenerateResult reports the outcome of a position-grid regeneration
type RegenerateResult struct {
	PositionsGenerated int   `json:"positions_generated"`
	Shelf              Shelf `json:"shelf"`
}
