// Package businessflow contains the core business logic and use cases for the lead dashboard
package businessflow

import (
	"context"
	"fmt"
	"strings"
	"time"

	"leadboard/app/dto"
	"leadboard/models"
	"leadboard/repository"
	"leadboard/utils"

	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

// LeadFlow handles lead listing, creation, and mutation operations
type LeadFlow interface {
	ListLeads(ctx context.Context, request *dto.ListLeadsRequest) (*dto.ListLeadsResponse, error)
	CreateLead(ctx context.Context, request *dto.CreateLeadRequest, metadata *ClientMetadata) (*dto.CreateLeadResponse, error)
	UpdateLead(ctx context.Context, request *dto.UpdateLeadRequest, metadata *ClientMetadata) (*dto.UpdateLeadResponse, error)
	RecordInteraction(ctx context.Context, request *dto.RecordInteractionRequest, metadata *ClientMetadata) (*dto.RecordInteractionResponse, error)
	ExportLeads(ctx context.Context, request *dto.ExportLeadsRequest) (*dto.ExportLeadsResult, error)
}

// LeadFlowImpl implements the lead business flow
type LeadFlowImpl struct {
	leadRepo     repository.LeadRepository
	campaignRepo repository.CampaignRepository
	auditRepo    repository.AuditLogRepository
	db           *gorm.DB
}

// NewLeadFlow creates a new lead flow instance
func NewLeadFlow(
	leadRepo repository.LeadRepository,
	campaignRepo repository.CampaignRepository,
	auditRepo repository.AuditLogRepository,
	db *gorm.DB,
) LeadFlow {
	return &LeadFlowImpl{
		leadRepo:     leadRepo,
		campaignRepo: campaignRepo,
		auditRepo:    auditRepo,
		db:           db,
	}
}

// ListLeads returns one page of leads matching the request's filters, joined
// with each lead's campaign name. Filters are AND-combined; the total in the
// pagination metadata counts the whole filtered set.
func (lf *LeadFlowImpl) ListLeads(ctx context.Context, request *dto.ListLeadsRequest) (*dto.ListLeadsResponse, error) {
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

	filter, err := lf.buildListFilter(request.Search, request.Status, request.Campaign)
	if err != nil {
		return nil, NewBusinessError("LIST_LEADS_VALIDATION_FAILED", "List leads validation failed", err)
	}

	total, err := lf.leadRepo.CountWithCampaign(ctx, filter)
	if err != nil {
		return nil, NewBusinessError("LIST_LEADS_FAILED", "Failed to count leads", err)
	}

	offset := (page - 1) * limit
	rows, err := lf.leadRepo.ListWithCampaign(ctx, filter, limit, offset)
	if err != nil {
		return nil, NewBusinessError("LIST_LEADS_FAILED", "Failed to list leads", err)
	}

	items := make([]dto.LeadDTO, 0, len(rows))
	for _, row := range rows {
		items = append(items, ToLeadDTO(*row))
	}

	return &dto.ListLeadsResponse{
		Items:      items,
		Pagination: NewPaginationInfo(page, limit, total),
	}, nil
}

// CreateLead creates a new lead under an existing campaign. Status defaults to
// Pending and the interaction history starts empty. The owning campaign's
// counters are recomputed in the same transaction.
func (lf *LeadFlowImpl) CreateLead(ctx context.Context, request *dto.CreateLeadRequest, metadata *ClientMetadata) (*dto.CreateLeadResponse, error) {
	if err := lf.validateCreateLeadRequest(request); err != nil {
		return nil, NewBusinessError("CREATE_LEAD_VALIDATION_FAILED", "Create lead validation failed", err)
	}

	var lead *models.Lead

	resp, err := lf.WithCreateLeadTransaction(ctx, func(ctx context.Context) (*dto.CreateLeadResponse, error) {
		campaign, err := lf.campaignRepo.ByID(ctx, request.CampaignID)
		if err != nil {
			return nil, err
		}
		if campaign == nil {
			return nil, ErrCampaignNotFound
		}

		status := models.LeadStatusPending
		if request.Status != nil {
			status = models.LeadStatus(*request.Status)
			if !status.Valid() {
				return nil, ErrInvalidLeadStatus
			}
		}

		lead = &models.Lead{
			Name:               strings.TrimSpace(request.Name),
			Email:              request.Email,
			Company:            request.Company,
			CampaignID:         request.CampaignID,
			Status:             status,
			InteractionHistory: models.InteractionHistory{},
			CreatedAt:          utils.UTCNow(),
			UpdatedAt:          utils.UTCNow(),
		}

		if err := lf.leadRepo.Save(ctx, lead); err != nil {
			return nil, err
		}

		if err := lf.campaignRepo.RecomputeCounters(ctx, campaign.ID); err != nil {
			return nil, err
		}

		row := models.LeadWithCampaign{Lead: *lead, CampaignName: &campaign.Name}

		return &dto.CreateLeadResponse{
			Message: "Lead created successfully",
			Lead:    ToLeadDTO(row),
		}, nil
	})

	if err != nil {
		errMsg := fmt.Sprintf("Lead creation failed: %s", err.Error())
		_ = lf.LogLeadAction(ctx, nil, models.AuditActionLeadCreateFailed, errMsg, false, &errMsg, metadata)

		return nil, NewBusinessError("CREATE_LEAD_FAILED", "Lead creation failed", err)
	}

	msg := fmt.Sprintf("Lead created: %d", resp.Lead.ID)
	_ = lf.LogLeadAction(ctx, &resp.Lead.ID, models.AuditActionLeadCreated, msg, true, nil, metadata)

	return resp, nil
}

// UpdateLead applies a partial update to a lead. Omitted fields stay unchanged;
// a provided interaction history replaces the stored one wholesale. Moving a
// lead to Contacted stamps its last contact date, and updated_at is stamped on
// every update whether or not any field changed.
func (lf *LeadFlowImpl) UpdateLead(ctx context.Context, request *dto.UpdateLeadRequest, metadata *ClientMetadata) (*dto.UpdateLeadResponse, error) {
	resp, err := lf.WithUpdateLeadTransaction(ctx, func(ctx context.Context) (*dto.UpdateLeadResponse, error) {
		lead, err := lf.leadRepo.ByID(ctx, request.ID)
		if err != nil {
			return nil, err
		}
		if lead == nil {
			return nil, ErrLeadNotFound
		}

		fields := map[string]any{}

		if request.Name != nil {
			name := strings.TrimSpace(*request.Name)
			if name == "" {
				return nil, ErrLeadNameRequired
			}
			fields["name"] = name
		}
		if request.Email != nil {
			fields["email"] = *request.Email
		}
		if request.Company != nil {
			fields["company"] = *request.Company
		}

		statusChanged := false
		if request.Status != nil {
			status := models.LeadStatus(*request.Status)
			if !status.Valid() {
				return nil, ErrInvalidLeadStatus
			}
			fields["status"] = status
			statusChanged = status != lead.Status

			if status == models.LeadStatusContacted {
				fields["last_contact_date"] = utils.UTCNow()
			}
		}

		if request.InteractionHistory != nil {
			history := make(models.InteractionHistory, 0, len(*request.InteractionHistory))
			for _, event := range *request.InteractionHistory {
				history = append(history, models.InteractionEvent{
					Date:        event.Date,
					Type:        event.Type,
					Description: event.Description,
				})
			}
			fields["interaction_history"] = history
		}

		// updated_at is stamped by the repository even when fields is empty
		if err := lf.leadRepo.UpdateFields(ctx, lead.ID, fields); err != nil {
			return nil, err
		}

		if statusChanged {
			if err := lf.campaignRepo.RecomputeCounters(ctx, lead.CampaignID); err != nil {
				return nil, err
			}
		}

		row, err := lf.loadLeadWithCampaign(ctx, lead.ID)
		if err != nil {
			return nil, err
		}

		return &dto.UpdateLeadResponse{
			Message: "Lead updated successfully",
			Lead:    ToLeadDTO(*row),
		}, nil
	})

	if err != nil {
		errMsg := fmt.Sprintf("Lead update failed: %s", err.Error())
		_ = lf.LogLeadAction(ctx, &request.ID, models.AuditActionLeadUpdateFailed, errMsg, false, &errMsg, metadata)

		return nil, NewBusinessError("UPDATE_LEAD_FAILED", "Lead update failed", err)
	}

	msg := fmt.Sprintf("Lead updated: %d", request.ID)
	_ = lf.LogLeadAction(ctx, &request.ID, models.AuditActionLeadUpdated, msg, true, nil, metadata)

	return resp, nil
}

// RecordInteraction appends one event to a lead's interaction history and
// optionally moves its status, atomically. The read takes a row lock inside
// the transaction so concurrent appends serialize and none are dropped.
func (lf *LeadFlowImpl) RecordInteraction(ctx context.Context, request *dto.RecordInteractionRequest, metadata *ClientMetadata) (*dto.RecordInteractionResponse, error) {
	if err := lf.validateRecordInteractionRequest(request); err != nil {
		return nil, NewBusinessError("RECORD_INTERACTION_VALIDATION_FAILED", "Record interaction validation failed", err)
	}

	resp, err := lf.WithRecordInteractionTransaction(ctx, func(ctx context.Context) (*dto.RecordInteractionResponse, error) {
		lead, err := lf.leadRepo.ByIDForUpdate(ctx, request.LeadID)
		if err != nil {
			return nil, err
		}
		if lead == nil {
			return nil, ErrLeadNotFound
		}

		event := models.InteractionEvent{
			Date:        utils.UTCNow(),
			Type:        request.Type,
			Description: request.Description,
		}

		fields := map[string]any{
			"interaction_history": lead.InteractionHistory.Append(event),
		}

		statusChanged := false
		if request.Status != nil {
			status := models.LeadStatus(*request.Status)
			if !status.Valid() {
				return nil, ErrInvalidLeadStatus
			}
			fields["status"] = status
			statusChanged = status != lead.Status

			if status == models.LeadStatusContacted {
				fields["last_contact_date"] = utils.UTCNow()
			}
		}

		if err := lf.leadRepo.UpdateFields(ctx, lead.ID, fields); err != nil {
			return nil, err
		}

		if statusChanged {
			if err := lf.campaignRepo.RecomputeCounters(ctx, lead.CampaignID); err != nil {
				return nil, err
			}
		}

		row, err := lf.loadLeadWithCampaign(ctx, lead.ID)
		if err != nil {
			return nil, err
		}

		return &dto.RecordInteractionResponse{
			Message: "Interaction recorded successfully",
			Lead:    ToLeadDTO(*row),
		}, nil
	})

	if err != nil {
		return nil, NewBusinessError("RECORD_INTERACTION_FAILED", "Record interaction failed", err)
	}

	msg := fmt.Sprintf("Interaction recorded for lead: %d", request.LeadID)
	_ = lf.LogLeadAction(ctx, &request.LeadID, models.AuditActionLeadInteraction, msg, true, nil, metadata)

	return resp, nil
}

// ExportLeads writes the whole filtered lead set to an xlsx workbook
func (lf *LeadFlowImpl) ExportLeads(ctx context.Context, request *dto.ExportLeadsRequest) (*dto.ExportLeadsResult, error) {
	filter, err := lf.buildListFilter(request.Search, request.Status, request.Campaign)
	if err != nil {
		return nil, NewBusinessError("EXPORT_LEADS_VALIDATION_FAILED", "Export leads validation failed", err)
	}

	rows, err := lf.leadRepo.ListWithCampaign(ctx, filter, 0, 0)
	if err != nil {
		return nil, NewBusinessError("EXPORT_LEADS_FAILED", "Failed to list leads for export", err)
	}

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	const sheet = "Leads"
	index, err := f.NewSheet(sheet)
	if err != nil {
		return nil, NewBusinessError("EXPORT_LEADS_FAILED", "Failed to create export sheet", err)
	}
	f.SetActiveSheet(index)
	_ = f.DeleteSheet("Sheet1")

	headers := []string{"ID", "Name", "Email", "Company", "Campaign", "Status", "Last Contact", "Interactions", "Created At", "Updated At"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	for i, row := range rows {
		values := []any{
			row.ID,
			row.Name,
			stringOrEmpty(row.Email),
			stringOrEmpty(row.Company),
			stringOrEmpty(row.CampaignName),
			row.Status.String(),
			formatTimePtr(row.LastContactDate),
			len(row.InteractionHistory),
			row.CreatedAt.Format(time.RFC3339),
			row.UpdatedAt.Format(time.RFC3339),
		}
		for j, v := range values {
			cell, _ := excelize.CoordinatesToCellName(j+1, i+2)
			_ = f.SetCellValue(sheet, cell, v)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, NewBusinessError("EXPORT_LEADS_FAILED", "Failed to serialize export", err)
	}

	return &dto.ExportLeadsResult{
		Filename: fmt.Sprintf("leads-%s.xlsx", utils.UTCNow().Format("2006-01-02")),
		Content:  buf.Bytes(),
	}, nil
}

// buildListFilter translates the query-level filters into a repository filter
func (lf *LeadFlowImpl) buildListFilter(search, status, campaign string) (models.LeadFilter, error) {
	filter := models.LeadFilter{}

	if search = strings.TrimSpace(search); search != "" {
		filter.Search = &search
	}
	if status != "" {
		st := models.LeadStatus(status)
		if !st.Valid() {
			return filter, ErrInvalidLeadStatus
		}
		filter.Status = &st
	}
	if campaign != "" {
		filter.CampaignName = &campaign
	}

	return filter, nil
}

func (lf *LeadFlowImpl) loadLeadWithCampaign(ctx context.Context, id uint) (*models.LeadWithCampaign, error) {
	rows, err := lf.leadRepo.ListWithCampaign(ctx, models.LeadFilter{ID: &id}, 1, 0)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrLeadNotFound
	}
	return rows[0], nil
}

func (lf *LeadFlowImpl) validateCreateLeadRequest(request *dto.CreateLeadRequest) error {
	if strings.TrimSpace(request.Name) == "" {
		return ErrLeadNameRequired
	}
	if request.CampaignID == 0 {
		return ErrLeadCampaignRequired
	}
	return nil
}

func (lf *LeadFlowImpl) validateRecordInteractionRequest(request *dto.RecordInteractionRequest) error {
	if strings.TrimSpace(request.Type) == "" {
		return ErrInteractionTypeEmpty
	}
	if strings.TrimSpace(request.Description) == "" {
		return ErrInteractionDescEmpty
	}
	return nil
}

func (lf *LeadFlowImpl) LogLeadAction(ctx context.Context, leadID *uint, action string, description string, success bool, errMsg *string, metadata *ClientMetadata) error {
	ipAddress := "127.0.0.1"
	userAgent := ""
	if metadata != nil {
		ipAddress = metadata.IPAddress
		userAgent = metadata.UserAgent
	}

	desc := description
	if leadID != nil {
		desc = fmt.Sprintf("%s (lead_id=%d)", description, *leadID)
	}

	audit := &models.AuditLog{
		Action:       action,
		Description:  &desc,
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

	return lf.auditRepo.Save(ctx, audit)
}

func (lf *LeadFlowImpl) WithCreateLeadTransaction(ctx context.Context, fn func(context.Context) (*dto.CreateLeadResponse, error)) (*dto.CreateLeadResponse, error) {
	var result *dto.CreateLeadResponse
	var fnErr error

	err := repository.WithTransaction(ctx, lf.db, func(ctx context.Context) error {
		result, fnErr = fn(ctx)
		return fnErr
	})

	if err != nil {
		return nil, err
	}
	return result, fnErr
}

func (lf *LeadFlowImpl) WithUpdateLeadTransaction(ctx context.Context, fn func(context.Context) (*dto.UpdateLeadResponse, error)) (*dto.UpdateLeadResponse, error) {
	var result *dto.UpdateLeadResponse
	var fnErr error

	err := repository.WithTransaction(ctx, lf.db, func(ctx context.Context) error {
		result, fnErr = fn(ctx)
		return fnErr
	})

	if err != nil {
		return nil, err
	}
	return result, fnErr
}

func (lf *LeadFlowImpl) WithRecordInteractionTransaction(ctx context.Context, fn func(context.Context) (*dto.RecordInteractionResponse, error)) (*dto.RecordInteractionResponse, error) {
	var result *dto.RecordInteractionResponse
	var fnErr error

	err := repository.WithTransaction(ctx, lf.db, func(ctx context.Context) error {
		result, fnErr = fn(ctx)
		return fnErr
	})

	if err != nil {
		return nil, err
	}
	return result, fnErr
}

func stringOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func formatTimePtr(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(time.RFC3339)
}
