package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UserRole is the authorization role of a profile.
type UserRole string

const (
	RoleCitizen  UserRole = "citizen"
	RoleOfficial UserRole = "official"
	RoleAdmin    UserRole = "admin"
)

// Valid reports whether r is a known role.
func (r UserRole) Valid() bool {
	switch r {
	case RoleCitizen, RoleOfficial, RoleAdmin:
		return true
	}
	return false
}

// IsStaff reports whether the role may run workflow operations.
func (r UserRole) IsStaff() bool {
	return r == RoleAdmin || r == RoleOfficial
}

// Profile is a registered user of the portal.
type Profile struct {
	ID           string    `gorm:"type:uuid;primaryKey" json:"id"`
	Username     string    `gorm:"type:varchar(50);uniqueIndex;not null" json:"username"`
	FullName     string    `gorm:"type:text" json:"full_name"`
	AvatarURL    *string   `gorm:"type:text" json:"avatar_url"`
	Role         UserRole  `gorm:"type:text;not null;default:citizen;index" json:"role"`
	PasswordHash string    `gorm:"type:text;not null" json:"-"`
	CreatedAt    time.Time `gorm:"index" json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// BeforeCreate generates the UUID primary key and defaults the role.
func (p *Profile) BeforeCreate(tx *gorm.DB) (err error) {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	if p.Role == "" {
		p.Role = RoleCitizen
	}
	return
}
