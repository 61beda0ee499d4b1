// Package businessflow contains the core business logic and use cases for the lead dashboard
package businessflow

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"leadboard/app/dto"
	"leadboard/models"
	"leadboard/repository"
	"leadboard/utils"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const dashboardSummaryTTL = 60 * time.Second

// CampaignFlow handles campaign management and dashboard aggregation
type CampaignFlow interface {
	CreateCampaign(ctx context.Context, request *dto.CreateCampaignRequest, metadata *ClientMetadata) (*dto.CreateCampaignResponse, error)
	ListCampaigns(ctx context.Context, request *dto.ListCampaignsRequest) (*dto.ListCampaignsResponse, error)
	UpdateCampaignStatus(ctx context.Context, request *dto.UpdateCampaignStatusRequest, metadata *ClientMetadata) (*dto.UpdateCampaignStatusResponse, error)
	DashboardSummary(ctx context.Context, userID uint) (*dto.DashboardSummaryResponse, error)
}

// CampaignFlowImpl implements the campaign business flow
type CampaignFlowImpl struct {
	campaignRepo repository.CampaignRepository
	leadRepo     repository.LeadRepository
	auditRepo    repository.AuditLogRepository
	cache        redis.UniversalClient
	db           *gorm.DB
}

// NewCampaignFlow creates a new campaign flow instance. cache may be nil; the
// dashboard summary then always computes fresh.
func NewCampaignFlow(
	campaignRepo repository.CampaignRepository,
	leadRepo repository.LeadRepository,
	auditRepo repository.AuditLogRepository,
	cache redis.UniversalClient,
	db *gorm.DB,
) CampaignFlow {
	return &CampaignFlowImpl{
		campaignRepo: campaignRepo,
		leadRepo:     leadRepo,
		auditRepo:    auditRepo,
		cache:        cache,
		db:           db,
	}
}

// CreateCampaign creates a new campaign for the user. Status defaults to Draft.
func (cf *CampaignFlowImpl) CreateCampaign(ctx context.Context, request *dto.CreateCampaignRequest, metadata *ClientMetadata) (*dto.CreateCampaignResponse, error) {
	if strings.TrimSpace(request.Name) == "" {
		return nil, NewBusinessError("CREATE_CAMPAIGN_VALIDATION_FAILED", "Create campaign validation failed", ErrCampaignNameRequired)
	}

	status := models.CampaignStatusDraft
	if request.Status != nil {
		status = models.CampaignStatus(*request.Status)
		if !status.Valid() {
			return nil, NewBusinessError("CREATE_CAMPAIGN_VALIDATION_FAILED", "Create campaign validation failed", ErrInvalidCampaignStatus)
		}
	}

	campaign := &models.Campaign{
		Name:      strings.TrimSpace(request.Name),
		UserID:    request.UserID,
		Status:    status,
		CreatedAt: utils.UTCNow(),
	}

	if err := cf.campaignRepo.Save(ctx, campaign); err != nil {
		errMsg := fmt.Sprintf("Campaign creation failed: %s", err.Error())
		_ = cf.LogCampaignAction(ctx, request.UserID, models.AuditActionCampaignCreateFailed, errMsg, false, &errMsg, metadata)

		return nil, NewBusinessError("CREATE_CAMPAIGN_FAILED", "Campaign creation failed", err)
	}

	msg := fmt.Sprintf("Campaign created: %d", campaign.ID)
	_ = cf.LogCampaignAction(ctx, request.UserID, models.AuditActionCampaignCreated, msg, true, nil, metadata)

	cf.invalidateDashboard(ctx, request.UserID)

	return &dto.CreateCampaignResponse{
		Message:   "Campaign created successfully",
		ID:        campaign.ID,
		Name:      campaign.Name,
		Status:    campaign.Status.String(),
		CreatedAt: campaign.CreatedAt.Format(time.RFC3339),
	}, nil
}

// ListCampaigns returns one page of the user's campaigns, newest first
func (cf *CampaignFlowImpl) ListCampaigns(ctx context.Context, request *dto.ListCampaignsRequest) (*dto.ListCampaignsResponse, error) {
	page := request.Page
	if page < 1 {
		page = 1
	}
	limit := request.Limit
	if limit < 1 {
		limit = utils.DefaultPageSize
	}
	if limit > utils.MaxPageSize {
		limit = utils.MaxPageSize
	}

	filter := models.CampaignFilter{UserID: &request.UserID}
	if request.Filter != nil {
		if request.Filter.Name != nil && *request.Filter.Name != "" {
			filter.Name = request.Filter.Name
		}
		if request.Filter.Status != nil && *request.Filter.Status != "" {
			status := models.CampaignStatus(*request.Filter.Status)
			if !status.Valid() {
				return nil, NewBusinessError("LIST_CAMPAIGNS_VALIDATION_FAILED", "List campaigns validation failed", ErrInvalidCampaignStatus)
			}
			filter.Status = &status
		}
	}

	total, err := cf.campaignRepo.Count(ctx, filter)
	if err != nil {
		return nil, NewBusinessError("LIST_CAMPAIGNS_FAILED", "Failed to count campaigns", err)
	}

	orderBy := "created_at DESC, id DESC"
	if request.OrderBy == "oldest" {
		orderBy = "created_at ASC, id ASC"
	}

	offset := (page - 1) * limit
	campaigns, err := cf.campaignRepo.ByFilter(ctx, filter, orderBy, limit, offset)
	if err != nil {
		return nil, NewBusinessError("LIST_CAMPAIGNS_FAILED", "Failed to list campaigns", err)
	}

	items := make([]dto.GetCampaignResponse, 0, len(campaigns))
	for _, campaign := range campaigns {
		items = append(items, ToCampaignDTO(*campaign))
	}

	return &dto.ListCampaignsResponse{
		Message:    "Campaigns retrieved successfully",
		Items:      items,
		Pagination: NewPaginationInfo(page, limit, total),
	}, nil
}

// UpdateCampaignStatus moves a campaign owned by the user to a new status
func (cf *CampaignFlowImpl) UpdateCampaignStatus(ctx context.Context, request *dto.UpdateCampaignStatusRequest, metadata *ClientMetadata) (*dto.UpdateCampaignStatusResponse, error) {
	status := models.CampaignStatus(request.Status)
	if !status.Valid() {
		return nil, NewBusinessError("UPDATE_CAMPAIGN_VALIDATION_FAILED", "Update campaign validation failed", ErrInvalidCampaignStatus)
	}

	campaign, err := cf.campaignRepo.ByID(ctx, request.ID)
	if err != nil {
		return nil, NewBusinessError("UPDATE_CAMPAIGN_FAILED", "Failed to load campaign", err)
	}
	if campaign == nil {
		return nil, NewBusinessError("UPDATE_CAMPAIGN_FAILED", "Campaign not found", ErrCampaignNotFound)
	}
	if campaign.UserID != request.UserID {
		return nil, NewBusinessError("UPDATE_CAMPAIGN_FAILED", "Campaign access denied", ErrCampaignAccessDenied)
	}

	if err := cf.campaignRepo.UpdateStatus(ctx, campaign.ID, status); err != nil {
		return nil, NewBusinessError("UPDATE_CAMPAIGN_FAILED", "Failed to update campaign status", err)
	}

	cf.invalidateDashboard(ctx, request.UserID)

	return &dto.UpdateCampaignStatusResponse{
		Message: "Campaign status updated successfully",
		Status:  status.String(),
	}, nil
}

// DashboardSummary aggregates per-user campaign and lead counts. The result is
// cached for a short window; lead list and mutation paths never touch the
// cache, so a stale summary only lasts until the TTL lapses.
func (cf *CampaignFlowImpl) DashboardSummary(ctx context.Context, userID uint) (*dto.DashboardSummaryResponse, error) {
	cacheKey := dashboardCacheKey(userID)

	if cf.cache != nil {
		if raw, err := cf.cache.Get(ctx, cacheKey).Bytes(); err == nil {
			var cached dto.DashboardSummaryResponse
			if err := json.Unmarshal(raw, &cached); err == nil {
				return &cached, nil
			}
		}
	}

	totalCampaigns, err := cf.campaignRepo.Count(ctx, models.CampaignFilter{UserID: &userID})
	if err != nil {
		return nil, NewBusinessError("DASHBOARD_SUMMARY_FAILED", "Failed to count campaigns", err)
	}

	statusCounts, err := cf.leadRepo.StatusCountsByUser(ctx, userID)
	if err != nil {
		return nil, NewBusinessError("DASHBOARD_SUMMARY_FAILED", "Failed to count leads", err)
	}

	var totalLeads int64
	leadsByStatus := make(map[string]int64, len(statusCounts))
	for status, count := range statusCounts {
		leadsByStatus[status.String()] = count
		totalLeads += count
	}

	summary := &dto.DashboardSummaryResponse{
		TotalCampaigns: totalCampaigns,
		TotalLeads:     totalLeads,
		LeadsByStatus:  leadsByStatus,
		GeneratedAt:    utils.UTCNow(),
	}

	if cf.cache != nil {
		if raw, err := json.Marshal(summary); err == nil {
			_ = cf.cache.Set(ctx, cacheKey, raw, dashboardSummaryTTL).Err()
		}
	}

	return summary, nil
}

func (cf *CampaignFlowImpl) invalidateDashboard(ctx context.Context, userID uint) {
	if cf.cache == nil {
		return
	}
	_ = cf.cache.Del(ctx, dashboardCacheKey(userID)).Err()
}

func dashboardCacheKey(userID uint) string {
	return fmt.Sprintf("leadboard:dashboard:summary:%d", userID)
}

func (cf *CampaignFlowImpl) LogCampaignAction(ctx context.Context, userID uint, action string, description string, success bool, errMsg *string, metadata *ClientMetadata) error {
	ipAddress := "127.0.0.1"
	userAgent := ""
	if metadata != nil {
		ipAddress = metadata.IPAddress
		userAgent = metadata.UserAgent
	}

	audit := &models.AuditLog{
		UserID:       &userID,
		Action:       action,
		Description:  &description,
		Success:      utils.ToPtr(success),
		IPAddress:    &ipAddress,
		UserAgent:    &userAgent,
		ErrorMessage: errMsg,
	}

	requestID := ctx.Value(utils.RequestIDKey)
	if requestID != nil {
		requestIDStr, ok := requestID.(string)
		if ok {
			audit.RequestID = &requestIDStr
		}
	}

	return cf.auditRepo.Save(ctx, audit)
}
