package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"leadboard/utils"

	"gorm.io/gorm"
)

// LeadStatus represents the contact lifecycle status of a lead
type LeadStatus string

const (
	LeadStatusPending   LeadStatus = "Pending"
	LeadStatusContacted LeadStatus = "Contacted"
	LeadStatusResponded LeadStatus = "Responded"
	LeadStatusConverted LeadStatus = "Converted"
)

// String returns the string representation of the status
func (s LeadStatus) String() string {
	return string(s)
}

// Valid checks if the status is valid
func (s LeadStatus) Valid() bool {
	switch s {
	case LeadStatusPending, LeadStatusContacted, LeadStatusResponded, LeadStatusConverted:
		return true
	default:
		return false
	}
}

// Scan implements the sql.Scanner interface for LeadStatus
func (s *LeadStatus) Scan(value any) error {
	if value == nil {
		*s = ""
		return nil
	}

	switch v := value.(type) {
	case string:
		*s = LeadStatus(v)
	case []byte:
		*s = LeadStatus(string(v))
	default:
		return fmt.Errorf("cannot scan %T into LeadStatus", value)
	}

	return nil
}

// Value implements the driver.Valuer interface for LeadStatus
func (s LeadStatus) Value() (driver.Value, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("invalid LeadStatus: %s", s)
	}
	return string(s), nil
}

// InteractionEvent is one entry of a lead's contact history.
// Date marshals as an ISO-8601 (RFC 3339) timestamp string.
type InteractionEvent struct {
	Date        time.Time `json:"date"`
	Type        string    `json:"type"`
	Description string    `json:"description"`
}

// InteractionHistory is the ordered sequence of interaction events stored
// denormalized on the lead row. Consumers must tolerate an empty or absent
// sequence.
type InteractionHistory []InteractionEvent

// Value implements the driver.Valuer interface for InteractionHistory
func (h InteractionHistory) Value() (driver.Value, error) {
	if h == nil {
		h = InteractionHistory{}
	}
	b, err := json.Marshal(h)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements the sql.Scanner interface for InteractionHistory
func (h *InteractionHistory) Scan(value any) error {
	if value == nil {
		*h = InteractionHistory{}
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into InteractionHistory", value)
	}

	if len(bytes) == 0 {
		*h = InteractionHistory{}
		return nil
	}

	return json.Unmarshal(bytes, h)
}

// Append returns a copy of the history with the event added at the end
func (h InteractionHistory) Append(event InteractionEvent) InteractionHistory {
	out := make(InteractionHistory, 0, len(h)+1)
	out = append(out, h...)
	out = append(out, event)
	return out
}

// Lead represents a prospective contact tracked under a campaign
type Lead struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	Name       string     `gorm:"size:255;not null;index:idx_leads_name" json:"name"`
	Email      *string    `gorm:"size:255" json:"email,omitempty"`
	Company    *string    `gorm:"size:255" json:"company,omitempty"`
	CampaignID uint       `gorm:"not null;index:idx_leads_campaign_id" json:"campaign_id"`
	Status     LeadStatus `gorm:"type:lead_status;not null;default:'Pending';index:idx_leads_status" json:"status"`

	LastContactDate    *time.Time         `json:"last_contact_date,omitempty"`
	InteractionHistory InteractionHistory `gorm:"type:text" json:"interaction_history"`

	CreatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC');index:idx_leads_created_at" json:"created_at"`
	UpdatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC');index:idx_leads_updated_at" json:"updated_at"`

	// Relations
	Campaign *Campaign `gorm:"foreignKey:CampaignID;references:ID" json:"campaign,omitempty"`
}

// TableName returns the table name for the model
func (Lead) TableName() string {
	return "leads"
}

// BeforeCreate is called before creating a new record
func (l *Lead) BeforeCreate(tx *gorm.DB) error {
	if l.Status == "" {
		l.Status = LeadStatusPending
	}
	if l.InteractionHistory == nil {
		l.InteractionHistory = InteractionHistory{}
	}
	if l.CreatedAt.IsZero() {
		l.CreatedAt = utils.UTCNow()
	}
	if l.UpdatedAt.IsZero() {
		l.UpdatedAt = l.CreatedAt
	}
	return nil
}

// BeforeUpdate is called before updating a record
func (l *Lead) BeforeUpdate(tx *gorm.DB) error {
	l.UpdatedAt = utils.UTCNow()
	return nil
}

// LeadWithCampaign is a lead row joined with its owning campaign's current
// name. The name is computed fresh on every read and never stored.
type LeadWithCampaign struct {
	Lead
	CampaignName *string `gorm:"column:campaign_name" json:"campaign_name"`
}

// LeadFilter represents filter criteria for lead queries.
// Search matches case-insensitively as a substring against lead name, email,
// company, and the joined campaign name. CampaignName is an exact match on the
// campaign's name, not its id. All provided fields are AND-combined.
type LeadFilter struct {
	ID            *uint
	Search        *string
	Status        *LeadStatus
	CampaignID    *uint
	CampaignName  *string
	CreatedAfter  *time.Time
	CreatedBefore *time.Time
	UpdatedAfter  *time.Time
	UpdatedBefore *time.Time
}
