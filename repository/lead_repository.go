package repository

import (
	"context"
	"errors"
	"fmt"

	"leadboard/models"
	"leadboard/utils"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// LeadRepositoryImpl implements the LeadRepository interface
type LeadRepositoryImpl struct {
	*BaseRepository[models.Lead, models.LeadFilter]
}

// NewLeadRepository creates a new lead repository
func NewLeadRepository(db *gorm.DB) LeadRepository {
	return &LeadRepositoryImpl{
		BaseRepository: NewBaseRepository[models.Lead, models.LeadFilter](db),
	}
}

// ByFilter retrieves leads based on filter criteria
func (r *LeadRepositoryImpl) ByFilter(ctx context.Context, filter models.LeadFilter, orderBy string, limit, offset int) ([]*models.Lead, error) {
	db := r.getDB(ctx)

	var leads []*models.Lead
	query := r.applyFilter(db.Model(&models.Lead{}).
		Select("leads.*").
		Joins("LEFT JOIN campaigns ON campaigns.id = leads.campaign_id"), filter)

	if orderBy != "" {
		query = query.Order(orderBy)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	err := query.Find(&leads).Error
	if err != nil {
		return nil, err
	}

	return leads, nil
}

// ByIDForUpdate retrieves a lead and locks its row until the surrounding
// transaction ends. Read-modify-write sequences must use this instead of ByID
// so concurrent writers serialize instead of overwriting each other.
func (r *LeadRepositoryImpl) ByIDForUpdate(ctx context.Context, id uint) (*models.Lead, error) {
	db := r.getDB(ctx)

	var lead models.Lead
	err := db.Clauses(clause.Locking{Strength: "UPDATE"}).Last(&lead, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to lock lead %d: %w", id, err)
	}

	return &lead, nil
}

// ListWithCampaign retrieves a page of leads joined with their owning
// campaign's current name. Ordering is newest-updated first with id as a
// stable secondary key so pagination stays deterministic across ties.
func (r *LeadRepositoryImpl) ListWithCampaign(ctx context.Context, filter models.LeadFilter, limit, offset int) ([]*models.LeadWithCampaign, error) {
	db := r.getDB(ctx)

	var rows []*models.LeadWithCampaign
	query := r.applyFilter(db.Model(&models.Lead{}).
		Select("leads.*, campaigns.name AS campaign_name").
		Joins("LEFT JOIN campaigns ON campaigns.id = leads.campaign_id"), filter).
		Order("leads.updated_at DESC, leads.id DESC")

	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	err := query.Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	return rows, nil
}

// CountWithCampaign counts the leads matching the filter using the exact
// predicate of ListWithCampaign. The pair of round-trips is intentionally not
// wrapped in a transaction; callers must not assume atomicity across them.
func (r *LeadRepositoryImpl) CountWithCampaign(ctx context.Context, filter models.LeadFilter) (int64, error) {
	db := r.getDB(ctx)

	var count int64
	query := r.applyFilter(db.Model(&models.Lead{}).
		Joins("LEFT JOIN campaigns ON campaigns.id = leads.campaign_id"), filter)

	err := query.Count(&count).Error
	if err != nil {
		return 0, err
	}

	return count, nil
}

// Count returns the number of leads matching the filter
func (r *LeadRepositoryImpl) Count(ctx context.Context, filter models.LeadFilter) (int64, error) {
	return r.CountWithCampaign(ctx, filter)
}

// Exists checks if any lead matching the filter exists
func (r *LeadRepositoryImpl) Exists(ctx context.Context, filter models.LeadFilter) (bool, error) {
	count, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}

	return count > 0, nil
}

// UpdateFields applies a partial update to a single lead row. Only the given
// columns change; updated_at is always stamped.
func (r *LeadRepositoryImpl) UpdateFields(ctx context.Context, id uint, fields map[string]any) error {
	db, shouldCommit, err := r.getDBForWrite(ctx)
	if err != nil {
		return err
	}

	if shouldCommit {
		defer func() {
			if err != nil {
				db.Rollback()
			} else {
				db.Commit()
			}
		}()
	}

	if _, ok := fields["updated_at"]; !ok {
		fields["updated_at"] = utils.UTCNow()
	}

	err = db.Model(&models.Lead{}).
		Where("id = ?", id).
		Updates(fields).Error
	if err != nil {
		return err
	}

	return nil
}

// CountByCampaignAndStatus counts a campaign's leads in the given status
func (r *LeadRepositoryImpl) CountByCampaignAndStatus(ctx context.Context, campaignID uint, status models.LeadStatus) (int64, error) {
	db := r.getDB(ctx)

	var count int64
	err := db.Model(&models.Lead{}).
		Where("campaign_id = ? AND status = ?", campaignID, status).
		Count(&count).Error
	if err != nil {
		return 0, err
	}

	return count, nil
}

// StatusCountsByUser returns per-status lead counts across all of a user's campaigns
func (r *LeadRepositoryImpl) StatusCountsByUser(ctx context.Context, userID uint) (map[models.LeadStatus]int64, error) {
	out := make(map[models.LeadStatus]int64)

	type row struct {
		Status models.LeadStatus
		Total  int64
	}
	var rows []row

	db := r.getDB(ctx)
	err := db.Model(&models.Lead{}).
		Select("leads.status, COUNT(*) AS total").
		Joins("JOIN campaigns ON campaigns.id = leads.campaign_id").
		Where("campaigns.user_id = ?", userID).
		Group("leads.status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	for _, r := range rows {
		out[r.Status] = r.Total
	}
	return out, nil
}

// applyFilter applies filter conditions to the GORM query. The query must
// already carry the campaigns join: search and campaign-name predicates
// reference the joined table.
func (r *LeadRepositoryImpl) applyFilter(db *gorm.DB, filter models.LeadFilter) *gorm.DB {
	if filter.ID != nil {
		db = db.Where("leads.id = ?", *filter.ID)
	}
	if filter.Search != nil && *filter.Search != "" {
		pattern := "%" + *filter.Search + "%"
		db = db.Where(
			"leads.name ILIKE ? OR leads.email ILIKE ? OR leads.company ILIKE ? OR campaigns.name ILIKE ?",
			pattern, pattern, pattern, pattern,
		)
	}
	if filter.Status != nil {
		db = db.Where("leads.status = ?", *filter.Status)
	}
	if filter.CampaignID != nil {
		db = db.Where("leads.campaign_id = ?", *filter.CampaignID)
	}
	if filter.CampaignName != nil {
		db = db.Where("campaigns.name = ?", *filter.CampaignName)
	}
	if filter.CreatedAfter != nil {
		db = db.Where("leads.created_at >= ?", *filter.CreatedAfter)
	}
	if filter.CreatedBefore != nil {
		db = db.Where("leads.created_at < ?", *filter.CreatedBefore)
	}
	if filter.UpdatedAfter != nil {
		db = db.Where("leads.updated_at > ?", *filter.UpdatedAfter)
	}
	if filter.UpdatedBefore != nil {
		db = db.Where("leads.updated_at < ?", *filter.UpdatedBefore)
	}

	return db
}
