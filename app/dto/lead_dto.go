// Package dto contains Data Transfer Objects for API request and response structures
package dto

import (
	"time"
)

// InteractionEventDTO is one entry of a lead's interaction history as it
// travels over the API. Date is an ISO-8601 timestamp string.
type InteractionEventDTO struct {
	Date        time.Time `json:"date"`
	Type        string    `json:"type"`
	Description string    `json:"description"`
}

// LeadDTO represents a lead row joined with its campaign's current name
type LeadDTO struct {
	ID                 uint                  `json:"id"`
	Name               string                `json:"name"`
	Email              *string               `json:"email,omitempty"`
	Company            *string               `json:"company,omitempty"`
	CampaignID         uint                  `json:"campaign_id"`
	CampaignName       *string               `json:"campaign_name"`
	Status             string                `json:"status"`
	LastContactDate    *time.Time            `json:"last_contact_date,omitempty"`
	InteractionHistory []InteractionEventDTO `json:"interaction_history"`
	CreatedAt          time.Time             `json:"created_at"`
	UpdatedAt          time.Time             `json:"updated_at"`
}

// ListLeadsRequest represents the lead listing query. All filters are
// optional and AND-combined; absent filters impose no restriction.
type ListLeadsRequest struct {
	Search   string `json:"search" query:"search"`
	Status   string `json:"status" query:"status" validate:"omitempty,oneof=Pending Contacted Responded Converted"`
	Campaign string `json:"campaign" query:"campaign"`
	Page     int    `json:"page" query:"page" validate:"omitempty,gte=1"`
	Limit    int    `json:"limit" query:"limit" validate:"omitempty,gte=1"`
}

// ListLeadsResponse represents a paginated page of leads
type ListLeadsResponse struct {
	Items      []LeadDTO      `json:"items"`
	Pagination PaginationInfo `json:"pagination"`
}

// CreateLeadRequest represents the request to create a new lead
type CreateLeadRequest struct {
	Name       string  `json:"name" validate:"required,max=255"`
	Email      *string `json:"email,omitempty" validate:"omitempty,email,max=255"`
	Company    *string `json:"company,omitempty" validate:"omitempty,max=255"`
	CampaignID uint    `json:"campaign_id" validate:"required"`
	Status     *string `json:"status,omitempty" validate:"omitempty,oneof=Pending Contacted Responded Converted"`
}

// CreateLeadResponse represents the created lead
type CreateLeadResponse struct {
	Message string  `json:"message"`
	Lead    LeadDTO `json:"lead"`
}

// UpdateLeadRequest represents a partial lead update. Omitted fields are left
// unchanged; InteractionHistory, when present, replaces the whole stored
// sequence.
type UpdateLeadRequest struct {
	ID                 uint                   `json:"id" validate:"required"`
	Name               *string                `json:"name,omitempty" validate:"omitempty,max=255"`
	Email              *string                `json:"email,omitempty" validate:"omitempty,email,max=255"`
	Company            *string                `json:"company,omitempty" validate:"omitempty,max=255"`
	Status             *string                `json:"status,omitempty" validate:"omitempty,oneof=Pending Contacted Responded Converted"`
	InteractionHistory *[]InteractionEventDTO `json:"interaction_history,omitempty"`
}

// UpdateLeadResponse represents the updated lead
type UpdateLeadResponse struct {
	Message string  `json:"message"`
	Lead    LeadDTO `json:"lead"`
}

// RecordInteractionRequest appends one interaction event to a lead's history
// and optionally moves its status in the same transaction
type RecordInteractionRequest struct {
	LeadID      uint    `json:"lead_id" validate:"required"`
	Type        string  `json:"type" validate:"required,max=64"`
	Description string  `json:"description" validate:"required"`
	Status      *string `json:"status,omitempty" validate:"omitempty,oneof=Pending Contacted Responded Converted"`
}

// RecordInteractionResponse represents the lead after the interaction was recorded
type RecordInteractionResponse struct {
	Message string  `json:"message"`
	Lead    LeadDTO `json:"lead"`
}

// ExportLeadsRequest mirrors ListLeadsRequest without pagination: the export
// covers the whole filtered set
type ExportLeadsRequest struct {
	Search   string `json:"search" query:"search"`
	Status   string `json:"status" query:"status" validate:"omitempty,oneof=Pending Contacted Responded Converted"`
	Campaign string `json:"campaign" query:"campaign"`
}

// ExportLeadsResult carries the rendered workbook back to the handler
type ExportLeadsResult struct {
	Filename string `json:"filename"`
	Content  []byte `json:"-"`
}
