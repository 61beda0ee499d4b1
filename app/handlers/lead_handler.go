// Package handlers contains HTTP request handlers and presentation layer logic for the API endpoints
package handlers

import (
	"context"
	"log"
	"strconv"
	"time"

	"leadboard/app/dto"
	businessflow "leadboard/business_flow"
	"leadboard/utils"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
)

// LeadHandlerInterface defines the contract for lead handlers
type LeadHandlerInterface interface {
	ListLeads(c fiber.Ctx) error
	CreateLead(c fiber.Ctx) error
	UpdateLead(c fiber.Ctx) error
	RecordInteraction(c fiber.Ctx) error
	ExportLeads(c fiber.Ctx) error
}

// LeadHandler handles lead-related HTTP requests
type LeadHandler struct {
	leadFlow  businessflow.LeadFlow
	validator *validator.Validate
}

// NewLeadHandler creates a new lead handler
func NewLeadHandler(leadFlow businessflow.LeadFlow) *LeadHandler {
	return &LeadHandler{
		leadFlow:  leadFlow,
		validator: validator.New(),
	}
}

func (h *LeadHandler) ErrorResponse(c fiber.Ctx, statusCode int, message, errorCode string, details any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error: dto.ErrorDetail{
			Code:    errorCode,
			Details: details,
		},
	})
}

func (h *LeadHandler) SuccessResponse(c fiber.Ctx, statusCode int, message string, data any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// ListLeads returns one page of leads matching the query filters
// @Summary List Leads
// @Description List leads with optional search, status and campaign filters, joined with campaign names
// @Tags Leads
// @Produce json
// @Security BearerAuth
// @Param search query string false "Case-insensitive substring match against lead name, email, company and campaign name"
// @Param status query string false "Exact lead status" Enums(Pending, Contacted, Responded, Converted)
// @Param campaign query string false "Exact campaign name"
// @Param page query int false "Page number, 1-based"
// @Param limit query int false "Page size"
// @Success 200 {object} dto.APIResponse{data=dto.ListLeadsResponse} "Leads retrieved successfully"
// @Failure 400 {object} dto.APIResponse "Validation error"
// @Failure 401 {object} dto.APIResponse "Unauthorized"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/leads [get]
func (h *LeadHandler) ListLeads(c fiber.Ctx) error {
	req := dto.ListLeadsRequest{
		Search:   c.Query("search"),
		Status:   c.Query("status"),
		Campaign: c.Query("campaign"),
		Page:     1,
		Limit:    utils.DefaultPageSize,
	}
	if v, err := strconv.Atoi(c.Query("page", "1")); err == nil && v > 0 {
		req.Page = v
	}
	if v, err := strconv.Atoi(c.Query("limit", strconv.Itoa(utils.DefaultPageSize))); err == nil && v > 0 {
		req.Limit = v
	}

	if err := h.validator.Struct(&req); err != nil {
		var validationErrors []string
		for _, err := range err.(validator.ValidationErrors) {
			validationErrors = append(validationErrors, getValidationErrorMessage(err))
		}
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationErrors)
	}

	result, err := h.leadFlow.ListLeads(h.createRequestContext(c, "/api/v1/leads"), &req)
	if err != nil {
		if businessflow.IsValidationError(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid filter", "VALIDATION_ERROR", err.Error())
		}

		log.Println("List leads failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to list leads", "LIST_LEADS_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Leads retrieved successfully", result)
}

// CreateLead creates a new lead under a campaign
// @Summary Create Lead
// @Description Create a new lead; status defaults to Pending and the interaction history starts empty
// @Tags Leads
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateLeadRequest true "Lead creation data"
// @Success 201 {object} dto.APIResponse{data=dto.CreateLeadResponse} "Lead created successfully"
// @Failure 400 {object} dto.APIResponse "Validation error or invalid request"
// @Failure 401 {object} dto.APIResponse "Unauthorized"
// @Failure 404 {object} dto.APIResponse "Campaign not found"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/leads [post]
func (h *LeadHandler) CreateLead(c fiber.Ctx) error {
	var req dto.CreateLeadRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}

	if err := h.validator.Struct(&req); err != nil {
		var validationErrors []string
		for _, err := range err.(validator.ValidationErrors) {
			validationErrors = append(validationErrors, getValidationErrorMessage(err))
		}
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationErrors)
	}

	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))

	result, err := h.leadFlow.CreateLead(h.createRequestContext(c, "/api/v1/leads"), &req, metadata)
	if err != nil {
		if businessflow.IsCampaignNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Campaign not found", "CAMPAIGN_NOT_FOUND", nil)
		}
		if businessflow.IsValidationError(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid lead data", "VALIDATION_ERROR", err.Error())
		}

		log.Println("Lead creation failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Lead creation failed", "CREATE_LEAD_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusCreated, "Lead created successfully", result)
}

// UpdateLead applies a partial update to a lead
// @Summary Update Lead
// @Description Partially update a lead; omitted fields are unchanged, a provided interaction history replaces the stored one, and moving to Contacted stamps the last contact date
// @Tags Leads
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.UpdateLeadRequest true "Lead update data"
// @Success 200 {object} dto.APIResponse{data=dto.UpdateLeadResponse} "Lead updated successfully"
// @Failure 400 {object} dto.APIResponse "Validation error or invalid request"
// @Failure 401 {object} dto.APIResponse "Unauthorized"
// @Failure 404 {object} dto.APIResponse "Lead not found"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/leads [put]
func (h *LeadHandler) UpdateLead(c fiber.Ctx) error {
	var req dto.UpdateLeadRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}

	if err := h.validator.Struct(&req); err != nil {
		var validationErrors []string
		for _, err := range err.(validator.ValidationErrors) {
			validationErrors = append(validationErrors, getValidationErrorMessage(err))
		}
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationErrors)
	}

	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))

	result, err := h.leadFlow.UpdateLead(h.createRequestContext(c, "/api/v1/leads"), &req, metadata)
	if err != nil {
		if businessflow.IsLeadNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Lead not found", "LEAD_NOT_FOUND", nil)
		}
		if businessflow.IsValidationError(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid lead data", "VALIDATION_ERROR", err.Error())
		}

		log.Println("Lead update failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Lead update failed", "UPDATE_LEAD_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Lead updated successfully", result)
}

// RecordInteraction appends one interaction event to a lead's history
// @Summary Record Interaction
// @Description Append one interaction event to a lead's history and optionally move its status, atomically
// @Tags Leads
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Lead ID"
// @Param request body dto.RecordInteractionRequest true "Interaction data"
// @Success 200 {object} dto.APIResponse{data=dto.RecordInteractionResponse} "Interaction recorded successfully"
// @Failure 400 {object} dto.APIResponse "Validation error or invalid request"
// @Failure 401 {object} dto.APIResponse "Unauthorized"
// @Failure 404 {object} dto.APIResponse "Lead not found"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/leads/{id}/interactions [post]
func (h *LeadHandler) RecordInteraction(c fiber.Ctx) error {
	leadID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil || leadID == 0 {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid lead ID", "INVALID_LEAD_ID", nil)
	}

	var req dto.RecordInteractionRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}
	req.LeadID = uint(leadID)

	if err := h.validator.Struct(&req); err != nil {
		var validationErrors []string
		for _, err := range err.(validator.ValidationErrors) {
			validationErrors = append(validationErrors, getValidationErrorMessage(err))
		}
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationErrors)
	}

	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))

	result, err := h.leadFlow.RecordInteraction(h.createRequestContext(c, "/api/v1/leads/"+c.Params("id")+"/interactions"), &req, metadata)
	if err != nil {
		if businessflow.IsLeadNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Lead not found", "LEAD_NOT_FOUND", nil)
		}
		if businessflow.IsValidationError(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid interaction data", "VALIDATION_ERROR", err.Error())
		}

		log.Println("Record interaction failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Record interaction failed", "RECORD_INTERACTION_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Interaction recorded successfully", result)
}

// ExportLeads streams the filtered lead set as an xlsx workbook
// @Summary Export Leads
// @Description Export the whole filtered lead set as an xlsx workbook
// @Tags Leads
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security BearerAuth
// @Param search query string false "Case-insensitive substring filter"
// @Param status query string false "Exact lead status" Enums(Pending, Contacted, Responded, Converted)
// @Param campaign query string false "Exact campaign name"
// @Success 200 {file} binary "Workbook"
// @Failure 400 {object} dto.APIResponse "Validation error"
// @Failure 401 {object} dto.APIResponse "Unauthorized"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/leads/export [get]
func (h *LeadHandler) ExportLeads(c fiber.Ctx) error {
	req := dto.ExportLeadsRequest{
		Search:   c.Query("search"),
		Status:   c.Query("status"),
		Campaign: c.Query("campaign"),
	}

	if err := h.validator.Struct(&req); err != nil {
		var validationErrors []string
		for _, err := range err.(validator.ValidationErrors) {
			validationErrors = append(validationErrors, getValidationErrorMessage(err))
		}
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationErrors)
	}

	result, err := h.leadFlow.ExportLeads(h.createRequestContext(c, "/api/v1/leads/export"), &req)
	if err != nil {
		if businessflow.IsValidationError(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid filter", "VALIDATION_ERROR", err.Error())
		}

		log.Println("Export leads failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Export leads failed", "EXPORT_LEADS_FAILED", nil)
	}

	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+result.Filename+`"`)
	c.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")

	return c.Send(result.Content)
}

func (h *LeadHandler) createRequestContext(c fiber.Ctx, endpoint string) context.Context {
	return h.createRequestContextWithTimeout(c, endpoint, 30*time.Second)
}

func (h *LeadHandler) createRequestContextWithTimeout(c fiber.Ctx, endpoint string, timeout time.Duration) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)

	ctx = context.WithValue(ctx, utils.RequestIDKey, c.Get("X-Request-ID"))
	ctx = context.WithValue(ctx, utils.UserAgentKey, c.Get("User-Agent"))
	ctx = context.WithValue(ctx, utils.IPAddressKey, c.IP())
	ctx = context.WithValue(ctx, utils.EndpointKey, endpoint)
	ctx = context.WithValue(ctx, utils.TimeoutKey, timeout)
	ctx = context.WithValue(ctx, utils.CancelFuncKey, cancel)

	return ctx
}
