// Package businessflow contains the core business logic and use cases for the lead dashboard
package businessflow

import (
	"time"

	"leadboard/app/dto"
	"leadboard/models"
)

// ClientMetadata holds all client-related information for audit logging and session tracking
type ClientMetadata struct {
	IPAddress  string            `json:"ip_address"`
	UserAgent  string            `json:"user_agent"`
	DeviceInfo map[string]string `json:"device_info,omitempty"`
	RequestID  string            `json:"request_id,omitempty"`
	SessionID  string            `json:"session_id,omitempty"`
}

// NewClientMetadata creates a new ClientMetadata instance with basic information
func NewClientMetadata(ipAddress, userAgent string) *ClientMetadata {
	return &ClientMetadata{
		IPAddress:  ipAddress,
		UserAgent:  userAgent,
		DeviceInfo: make(map[string]string),
	}
}

// AddDeviceInfo adds device information to the metadata
func (cm *ClientMetadata) AddDeviceInfo(key, value string) {
	if cm.DeviceInfo == nil {
		cm.DeviceInfo = make(map[string]string)
	}
	cm.DeviceInfo[key] = value
}

// SetRequestID sets the request ID
func (cm *ClientMetadata) SetRequestID(requestID string) {
	cm.RequestID = requestID
}

// SetSessionID sets the session ID
func (cm *ClientMetadata) SetSessionID(sessionID string) {
	cm.SessionID = sessionID
}

// ToAuthUserDTO converts a user model to AuthUserDTO for authentication responses
func ToAuthUserDTO(user models.User) dto.AuthUserDTO {
	return dto.AuthUserDTO{
		ID:              user.ID,
		UUID:            user.UUID.String(),
		Name:            user.Name,
		Email:           user.Email,
		Image:           user.Image,
		IsEmailVerified: user.IsEmailVerified,
		IsActive:        user.IsActive,
		CreatedAt:       user.CreatedAt.Format(time.RFC3339),
	}
}

// ToSessionInfoDTO converts a session model to the token payload returned on
// signup and login
func ToSessionInfoDTO(session models.UserSession) dto.SessionInfoDTO {
	return dto.SessionInfoDTO{
		SessionToken: session.SessionToken,
		RefreshToken: session.RefreshToken,
		TokenType:    "Bearer",
		ExpiresIn:    int(time.Until(session.ExpiresAt).Seconds()),
		CreatedAt:    session.CreatedAt.Format(time.RFC3339),
	}
}

// ToLeadDTO converts a campaign-joined lead row to its API representation.
// The interaction history always serializes as a sequence, never null.
func ToLeadDTO(row models.LeadWithCampaign) dto.LeadDTO {
	history := make([]dto.InteractionEventDTO, 0, len(row.InteractionHistory))
	for _, event := range row.InteractionHistory {
		history = append(history, dto.InteractionEventDTO{
			Date:        event.Date,
			Type:        event.Type,
			Description: event.Description,
		})
	}

	return dto.LeadDTO{
		ID:                 row.ID,
		Name:               row.Name,
		Email:              row.Email,
		Company:            row.Company,
		CampaignID:         row.CampaignID,
		CampaignName:       row.CampaignName,
		Status:             row.Status.String(),
		LastContactDate:    row.LastContactDate,
		InteractionHistory: history,
		CreatedAt:          row.CreatedAt,
		UpdatedAt:          row.UpdatedAt,
	}
}

// ToCampaignDTO converts a campaign model with its counters to the API shape
func ToCampaignDTO(campaign models.Campaign) dto.GetCampaignResponse {
	return dto.GetCampaignResponse{
		ID:              campaign.ID,
		Name:            campaign.Name,
		Status:          campaign.Status.String(),
		TotalLeads:      campaign.TotalLeads,
		SuccessfulLeads: campaign.SuccessfulLeads,
		ResponseRate:    campaign.ResponseRate,
		CreatedAt:       campaign.CreatedAt,
		UpdatedAt:       campaign.UpdatedAt,
	}
}

// NewPaginationInfo builds page metadata from the full filtered count.
// TotalPages is the ceiling of total over limit; a zero total yields zero pages.
func NewPaginationInfo(page, limit int, total int64) dto.PaginationInfo {
	totalPages := int((total + int64(limit) - 1) / int64(limit))

	return dto.PaginationInfo{
		Page:        page,
		Limit:       limit,
		Total:       total,
		TotalPages:  totalPages,
		HasNextPage: page < totalPages,
		HasPrevPage: page > 1,
	}
}
