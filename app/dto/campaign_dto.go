// Package dto contains Data Transfer Objects for API request and response structures
package dto

import (
	"time"
)

// CreateCampaignRequest represents the request to create a new campaign
type CreateCampaignRequest struct {
	UserID uint    `json:"-"`
	Name   string  `json:"name" validate:"required,max=255"`
	Status *string `json:"status,omitempty" validate:"omitempty,oneof=Draft Active Paused Completed Inactive"`
}

// CreateCampaignResponse represents the response to create a new campaign
type CreateCampaignResponse struct {
	Message   string `json:"message"`
	ID        uint   `json:"id"`
	Name      string `json:"name"`
	Status    string `json:"status"`
	CreatedAt string `json:"created_at"`
}

// GetCampaignResponse represents a campaign with its aggregate lead counters
type GetCampaignResponse struct {
	ID              uint       `json:"id"`
	Name            string     `json:"name"`
	Status          string     `json:"status"`
	TotalLeads      int64      `json:"total_leads"`
	SuccessfulLeads int64      `json:"successful_leads"`
	ResponseRate    float64    `json:"response_rate"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       *time.Time `json:"updated_at,omitempty"`
}

// ListCampaignsFilter represents filter criteria for listing campaigns
type ListCampaignsFilter struct {
	Name   *string `json:"name,omitempty"`
	Status *string `json:"status,omitempty" validate:"omitempty,oneof=Draft Active Paused Completed Inactive"`
}

// ListCampaignsRequest represents a paginated list request for user's campaigns
type ListCampaignsRequest struct {
	UserID  uint                 `json:"-"`
	Page    int                  `json:"page" query:"page"`
	Limit   int                  `json:"limit" query:"limit"`
	OrderBy string               `json:"orderby" query:"orderby"` // newest, oldest
	Filter  *ListCampaignsFilter `json:"filter,omitempty"`
}

// ListCampaignsResponse represents a paginated list of campaigns
type ListCampaignsResponse struct {
	Message    string                `json:"message"`
	Items      []GetCampaignResponse `json:"items"`
	Pagination PaginationInfo        `json:"pagination"`
}

// UpdateCampaignStatusRequest moves a campaign to a new lifecycle status
type UpdateCampaignStatusRequest struct {
	UserID uint   `json:"-"`
	ID     uint   `json:"id" validate:"required"`
	Status string `json:"status" validate:"required,oneof=Draft Active Paused Completed Inactive"`
}

// UpdateCampaignStatusResponse represents the response after a status change
type UpdateCampaignStatusResponse struct {
	Message string `json:"message"`
	Status  string `json:"status"`
}

// DashboardSummaryResponse aggregates per-user campaign and lead counts for
// the dashboard header
type DashboardSummaryResponse struct {
	TotalCampaigns int64            `json:"total_campaigns"`
	TotalLeads     int64            `json:"total_leads"`
	LeadsByStatus  map[string]int64 `json:"leads_by_status"`
	GeneratedAt    time.Time        `json:"generated_at"`
}
