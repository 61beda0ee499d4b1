package models

import (
	"database/sql/driver"
	"fmt"
	"time"

	"leadboard/utils"

	"gorm.io/gorm"
)

// CampaignStatus represents the lifecycle status of a campaign
type CampaignStatus string

const (
	CampaignStatusDraft     CampaignStatus = "Draft"
	CampaignStatusActive    CampaignStatus = "Active"
	CampaignStatusPaused    CampaignStatus = "Paused"
	CampaignStatusCompleted CampaignStatus = "Completed"
	CampaignStatusInactive  CampaignStatus = "Inactive"
)

// String returns the string representation of the status
func (s CampaignStatus) String() string {
	return string(s)
}

// Valid checks if the status is valid
func (s CampaignStatus) Valid() bool {
	switch s {
	case CampaignStatusDraft, CampaignStatusActive, CampaignStatusPaused,
		CampaignStatusCompleted, CampaignStatusInactive:
		return true
	default:
		return false
	}
}

// Scan implements the sql.Scanner interface for CampaignStatus
func (s *CampaignStatus) Scan(value any) error {
	if value == nil {
		*s = ""
		return nil
	}

	switch v := value.(type) {
	case string:
		*s = CampaignStatus(v)
	case []byte:
		*s = CampaignStatus(string(v))
	default:
		return fmt.Errorf("cannot scan %T into CampaignStatus", value)
	}

	return nil
}

// Value implements the driver.Valuer interface for CampaignStatus
func (s CampaignStatus) Value() (driver.Value, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("invalid CampaignStatus: %s", s)
	}
	return string(s), nil
}

// Campaign represents a named grouping of leads owned by a user
type Campaign struct {
	ID     uint           `gorm:"primaryKey" json:"id"`
	Name   string         `gorm:"size:255;not null;index:idx_campaigns_name" json:"name"`
	UserID uint           `gorm:"not null;index:idx_campaigns_user_id" json:"user_id"`
	Status CampaignStatus `gorm:"type:campaign_status;not null;default:'Draft';index:idx_campaigns_status" json:"status"`

	// Aggregate counters, recomputed from the leads table (see RecomputeCounters)
	TotalLeads      int64   `gorm:"not null;default:0" json:"total_leads"`
	SuccessfulLeads int64   `gorm:"not null;default:0" json:"successful_leads"`
	ResponseRate    float64 `gorm:"type:numeric(5,2);not null;default:0" json:"response_rate"`

	CreatedAt time.Time  `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC');index:idx_campaigns_created_at" json:"created_at"`
	UpdatedAt *time.Time `gorm:"index:idx_campaigns_updated_at" json:"updated_at,omitempty"`

	// Relations
	User  *User  `gorm:"foreignKey:UserID;references:ID" json:"user,omitempty"`
	Leads []Lead `gorm:"foreignKey:CampaignID" json:"-"`
}

// TableName returns the table name for the model
func (Campaign) TableName() string {
	return "campaigns"
}

// BeforeCreate is called before creating a new record
func (c *Campaign) BeforeCreate(tx *gorm.DB) error {
	if c.Status == "" {
		c.Status = CampaignStatusDraft
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = utils.UTCNow()
	}
	return nil
}

// BeforeUpdate is called before updating a record
func (c *Campaign) BeforeUpdate(tx *gorm.DB) error {
	now := utils.UTCNow()
	c.UpdatedAt = &now
	return nil
}

// CampaignFilter represents filter criteria for campaigns
type CampaignFilter struct {
	ID            *uint
	Name          *string
	UserID        *uint
	Status        *CampaignStatus
	CreatedAfter  *time.Time
	CreatedBefore *time.Time
	UpdatedAfter  *time.Time
	UpdatedBefore *time.Time
}
