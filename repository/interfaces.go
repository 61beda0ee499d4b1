// Package repository provides data access layer implementations and interfaces for database operations
package repository

import (
	"context"
	"time"

	"leadboard/models"

	"github.com/google/uuid"
)

// RepositoryContext key for transaction in context
type contextKey string

const TxContextKey contextKey = "tx"

type Repository[T any, F any] interface {
	ByID(ctx context.Context, id uint) (*T, error)
	ByFilter(ctx context.Context, filter F, orderBy string, limit, offset int) ([]*T, error)
	Save(ctx context.Context, entity *T) error
	SaveBatch(ctx context.Context, entities []*T) error
	Count(ctx context.Context, filter F) (int64, error)
	Exists(ctx context.Context, filter F) (bool, error)
}

// UserRepository defines operations for user accounts
type UserRepository interface {
	Repository[models.User, models.UserFilter]
	ByEmail(ctx context.Context, email string) (*models.User, error)
	ByUUID(ctx context.Context, uuid string) (*models.User, error)
	UpdateLastLogin(ctx context.Context, userID uint, at time.Time) error
}

// UserSessionRepository defines operations for user sessions
type UserSessionRepository interface {
	Repository[models.UserSession, models.UserSessionFilter]
	BySessionToken(ctx context.Context, token string) (*models.UserSession, error)
	ByRefreshToken(ctx context.Context, token string) (*models.UserSession, error)
	ListActiveSessionsByUser(ctx context.Context, userID uint) ([]*models.UserSession, error)
	RevokeSession(ctx context.Context, sessionID uint) error
	RevokeAllUserSessions(ctx context.Context, userID uint) error
	GetLatestByCorrelationID(ctx context.Context, correlationID uuid.UUID) (*models.UserSession, error)
}

// CampaignRepository defines operations for campaigns
type CampaignRepository interface {
	Repository[models.Campaign, models.CampaignFilter]
	ByName(ctx context.Context, name string) (*models.Campaign, error)
	ByUserID(ctx context.Context, userID uint, limit, offset int) ([]*models.Campaign, error)
	Update(ctx context.Context, campaign models.Campaign) error
	UpdateStatus(ctx context.Context, id uint, status models.CampaignStatus) error
	RecomputeCounters(ctx context.Context, id uint) error
}

// LeadRepository defines operations for leads, including the campaign-joined
// listing the dashboard is built on
type LeadRepository interface {
	Repository[models.Lead, models.LeadFilter]
	ByIDForUpdate(ctx context.Context, id uint) (*models.Lead, error)
	ListWithCampaign(ctx context.Context, filter models.LeadFilter, limit, offset int) ([]*models.LeadWithCampaign, error)
	CountWithCampaign(ctx context.Context, filter models.LeadFilter) (int64, error)
	UpdateFields(ctx context.Context, id uint, fields map[string]any) error
	CountByCampaignAndStatus(ctx context.Context, campaignID uint, status models.LeadStatus) (int64, error)
	StatusCountsByUser(ctx context.Context, userID uint) (map[models.LeadStatus]int64, error)
}

// AuditLogRepository defines operations for audit logs
type AuditLogRepository interface {
	Repository[models.AuditLog, models.AuditLogFilter]
	ListByUser(ctx context.Context, userID uint, limit, offset int) ([]*models.AuditLog, error)
	ListByAction(ctx context.Context, action string, limit, offset int) ([]*models.AuditLog, error)
	ListFailedActions(ctx context.Context, limit, offset int) ([]*models.AuditLog, error)
}
