// Package models contains domain entities and business models for the lead management system
package models

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID   uint      `gorm:"primaryKey" json:"id"`
	UUID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uk_users_uuid" json:"uuid"`

	Name  string `gorm:"size:255;not null" json:"name"`
	Email string `gorm:"size:255;not null;uniqueIndex:idx_users_email" json:"email"`

	// PasswordHash is null for accounts created through an OAuth provider
	PasswordHash *string `gorm:"size:255" json:"-"`

	// OAuth provider linkage (populated by the external auth collaborator)
	ProviderID        *string `gorm:"size:64;index:idx_users_provider_id" json:"provider_id,omitempty"`
	ProviderAccountID *string `gorm:"size:255" json:"provider_account_id,omitempty"`

	Image           *string `gorm:"type:text" json:"image,omitempty"`
	IsEmailVerified *bool   `gorm:"default:false" json:"is_email_verified"`
	IsActive        *bool   `gorm:"default:true;index:idx_users_is_active" json:"is_active"`

	CreatedAt       time.Time  `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC');index:idx_users_created_at" json:"created_at"`
	UpdatedAt       time.Time  `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"updated_at"`
	EmailVerifiedAt *time.Time `json:"email_verified_at,omitempty"`
	LastLoginAt     *time.Time `gorm:"index:idx_users_last_login_at" json:"last_login_at,omitempty"`

	// Relations
	Sessions  []UserSession `gorm:"foreignKey:UserID" json:"-"`
	Campaigns []Campaign    `gorm:"foreignKey:UserID" json:"-"`
	AuditLogs []AuditLog    `gorm:"foreignKey:UserID" json:"-"`
}

func (User) TableName() string {
	return "users"
}

// UserFilter represents filter criteria for user queries
type UserFilter struct {
	ID              *uint
	UUID            *uuid.UUID
	Email           *string
	ProviderID      *string
	IsEmailVerified *bool
	IsActive        *bool
	CreatedAfter    *time.Time
	CreatedBefore   *time.Time
}

// HasPassword reports whether the account can authenticate with email/password
func (u *User) HasPassword() bool {
	return u.PasswordHash != nil && *u.PasswordHash != ""
}

func (u *User) IsOAuthAccount() bool {
	return u.ProviderID != nil && *u.ProviderID != ""
}
