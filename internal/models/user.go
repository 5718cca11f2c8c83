package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User roles
const (
	RoleAdmin        = "admin"
	RoleLabDirector  = "lab_director"
	RoleLabManager   = "lab_manager"
	RoleStaff        = "staff"
	RoleFinance      = "finance"
	RoleClientViewer = "client_viewer"
)

// User is an authenticated operator of the quality service
type User struct {
	ID           uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	Email        string         `gorm:"size:255;not null;uniqueIndex" json:"email"`
	Name         string         `gorm:"size:100" json:"name"`
	PasswordHash string         `gorm:"size:100;not null" json:"-"`
	Role         string         `gorm:"size:20;not null;default:'staff'" json:"role"`
	LaboratoryID *uuid.UUID     `gorm:"type:uuid" json:"laboratory_id"` // scope for lab_manager / lab_director
	ClientID     *uuid.UUID     `gorm:"type:uuid" json:"client_id"`     // scope for client_viewer
	Active       bool           `gorm:"default:true" json:"active"`
	LastLoginAt  *time.Time     `json:"last_login_at"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

// AuthContext carries the resolved session identity through a request
type AuthContext struct {
	UserID       uuid.UUID  `json:"user_id"`
	Role         string     `json:"role"`
	LaboratoryID *uuid.UUID `json:"laboratory_id,omitempty"`
	ClientID     *uuid.UUID `json:"client_id,omitempty"`
	SessionID    uuid.UUID  `json:"session_id"`
}

// HasRole reports whether the context role is one of the given roles
func (a AuthContext) HasRole(roles ...string) bool {
	for _, r := range roles {
		if a.Role == r {
			return true
		}
	}
	return false
}
