package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/pageza/recipekeeper/backend/internal/model"
)

// User is an account that owns recipes.
type User struct {
	ID                  uuid.UUID        `gorm:"type:uuid;primaryKey" json:"_id"`
	Email               string           `gorm:"size:255;uniqueIndex;not null" json:"email"`
	Username            string           `gorm:"size:50;uniqueIndex;not null" json:"username"`
	PasswordHash        string           `gorm:"not null" json:"-"`
	FullName            *string          `gorm:"size:255" json:"full_name,omitempty"`
	AvatarURL           *string          `gorm:"size:500" json:"avatar_url,omitempty"`
	IsActive            bool             `gorm:"not null;default:true" json:"is_active"`
	IsVerified          bool             `gorm:"not null;default:false" json:"is_verified"`
	PreferredCuisines   model.StringList `gorm:"type:jsonb;not null" json:"preferred_cuisines"`
	DietaryRestrictions model.StringList `gorm:"type:jsonb;not null" json:"dietary_restrictions"`
	CreatedAt           time.Time        `json:"created_at"`
	UpdatedAt           time.Time        `json:"updated_at"`
	LastLogin           *time.Time       `json:"last_login,omitempty"`
}

func (User) TableName() string {
	return "users"
}
