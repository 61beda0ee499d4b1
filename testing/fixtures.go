// Package testing provides test utilities and database setup for testing the lead dashboard
package testing

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	mrand "math/rand"
	"time"

	"leadboard/models"
	"leadboard/utils"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// TestFixtures provides helper methods for creating test data
type TestFixtures struct {
	DB *TestDB
}

// NewTestFixtures creates a new test fixtures instance
func NewTestFixtures(db *TestDB) *TestFixtures {
	return &TestFixtures{DB: db}
}

// CreateTestUser creates a test user with a bcrypt-hashed password
func (tf *TestFixtures) CreateTestUser() (*models.User, error) {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte("TestPass123!"), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	hash := string(hashedPassword)
	user := &models.User{
		UUID:            uuid.New(),
		Name:            "John Doe",
		Email:           fmt.Sprintf("john.doe.%d@example.com", mrand.Intn(100000000)),
		PasswordHash:    &hash,
		IsActive:        utils.ToPtr(true),
		IsEmailVerified: utils.ToPtr(false),
	}

	if err := tf.DB.DB.Create(user).Error; err != nil {
		return nil, fmt.Errorf("failed to create test user: %w", err)
	}

	return user, nil
}

// CreateTestOAuthUser creates a test user linked to an external provider,
// with no password hash stored
func (tf *TestFixtures) CreateTestOAuthUser(providerID string) (*models.User, error) {
	accountID := fmt.Sprintf("acct-%d", mrand.Intn(100000000))
	user := &models.User{
		UUID:              uuid.New(),
		Name:              "John Doe",
		Email:             fmt.Sprintf("john.doe.%d@example.com", mrand.Intn(100000000)),
		ProviderID:        &providerID,
		ProviderAccountID: &accountID,
		IsActive:          utils.ToPtr(true),
		IsEmailVerified:   utils.ToPtr(true),
	}

	if err := tf.DB.DB.Create(user).Error; err != nil {
		return nil, fmt.Errorf("failed to create test oauth user: %w", err)
	}

	return user, nil
}

// CreateTestCampaign creates a test campaign owned by the given user
func (tf *TestFixtures) CreateTestCampaign(userID uint, name string, status models.CampaignStatus) (*models.Campaign, error) {
	if name == "" {
		name = fmt.Sprintf("Test Campaign %d", mrand.Intn(100000))
	}
	if status == "" {
		status = models.CampaignStatusActive
	}

	campaign := &models.Campaign{
		Name:   name,
		UserID: userID,
		Status: status,
	}

	if err := tf.DB.DB.Create(campaign).Error; err != nil {
		return nil, fmt.Errorf("failed to create test campaign: %w", err)
	}

	return campaign, nil
}

// CreateTestLead creates a test lead under the given campaign
func (tf *TestFixtures) CreateTestLead(campaignID uint, name string, status models.LeadStatus) (*models.Lead, error) {
	if name == "" {
		name = fmt.Sprintf("Test Lead %d", mrand.Intn(100000))
	}
	if status == "" {
		status = models.LeadStatusPending
	}

	email := fmt.Sprintf("lead.%d@example.com", mrand.Intn(100000000))
	company := "Test Company Ltd"

	lead := &models.Lead{
		Name:               name,
		Email:              &email,
		Company:            &company,
		CampaignID:         campaignID,
		Status:             status,
		InteractionHistory: models.InteractionHistory{},
	}

	if err := tf.DB.DB.Create(lead).Error; err != nil {
		return nil, fmt.Errorf("failed to create test lead: %w", err)
	}

	return lead, nil
}

// GenerateSecureToken returns a URL-safe random token
func GenerateSecureToken(length int) (string, error) {
	b := make([]byte, length)
	_, err := rand.Read(b)
	if err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b), nil
}

// CreateTestSession creates a test user session
func (tf *TestFixtures) CreateTestSession(userID uint) (*models.UserSession, error) {
	sessionToken, err := GenerateSecureToken(32)
	if err != nil {
		return nil, fmt.Errorf("failed to generate secure session token: %w", err)
	}

	refreshToken, err := GenerateSecureToken(32)
	if err != nil {
		return nil, fmt.Errorf("failed to generate secure refresh token: %w", err)
	}

	ipAddress := "127.0.0.1"
	userAgent := "Test User Agent"

	session := &models.UserSession{
		CorrelationID: uuid.New(),
		UserID:        userID,
		SessionToken:  sessionToken,
		RefreshToken:  &refreshToken,
		ExpiresAt:     time.Now().Add(24 * time.Hour),
		IsActive:      utils.ToPtr(true),
		IPAddress:     &ipAddress,
		UserAgent:     &userAgent,
	}

	if err := tf.DB.DB.Create(session).Error; err != nil {
		return nil, fmt.Errorf("failed to create test session: %w", err)
	}

	return session, nil
}

// CreateTestAuditLog creates a test audit log entry
func (tf *TestFixtures) CreateTestAuditLog(userID *uint, action string, success bool) (*models.AuditLog, error) {
	description := fmt.Sprintf("Test %s action", action)
	ipAddress := "127.0.0.1"
	userAgent := "Test User Agent"

	audit := &models.AuditLog{
		UserID:      userID,
		Action:      action,
		Description: &description,
		Success:     &success,
		IPAddress:   &ipAddress,
		UserAgent:   &userAgent,
	}

	if !success {
		errorMessage := "Test failed action"
		audit.ErrorMessage = &errorMessage
	}

	if err := tf.DB.DB.Create(audit).Error; err != nil {
		return nil, fmt.Errorf("failed to create test audit log: %w", err)
	}

	return audit, nil
}

// SeedCampaignWithLeads creates a campaign and count leads cycling through
// all lead statuses, returning the campaign and the created leads in order.
func (tf *TestFixtures) SeedCampaignWithLeads(userID uint, campaignName string, count int) (*models.Campaign, []*models.Lead, error) {
	campaign, err := tf.CreateTestCampaign(userID, campaignName, models.CampaignStatusActive)
	if err != nil {
		return nil, nil, err
	}

	statuses := []models.LeadStatus{
		models.LeadStatusPending,
		models.LeadStatusContacted,
		models.LeadStatusResponded,
		models.LeadStatusConverted,
	}

	leads := make([]*models.Lead, 0, count)
	for i := 0; i < count; i++ {
		lead, err := tf.CreateTestLead(campaign.ID, fmt.Sprintf("%s Lead %03d", campaignName, i), statuses[i%len(statuses)])
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create lead %d: %w", i, err)
		}
		leads = append(leads, lead)
	}

	return campaign, leads, nil
}
