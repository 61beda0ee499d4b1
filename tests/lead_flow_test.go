// Package tests contains database-backed test cases for the business flows
package tests

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"leadboard/app/dto"
	businessflow "leadboard/business_flow"
	"leadboard/models"
	"leadboard/repository"
	testingutil "leadboard/testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLeadFlow(testDB *testingutil.TestDB) businessflow.LeadFlow {
	return businessflow.NewLeadFlow(
		repository.NewLeadRepository(testDB.DB),
		repository.NewCampaignRepository(testDB.DB),
		repository.NewAuditLogRepository(testDB.DB),
		testDB.DB,
	)
}

func strPtr(s string) *string { return &s }

func TestCreateLeadFlow(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		flow := newLeadFlow(testDB)
		campaignRepo := repository.NewCampaignRepository(testDB.DB)
		fixtures := testingutil.NewTestFixtures(testDB)
		ctx := testingutil.CreateTestContext()
		metadata := businessflow.NewClientMetadata("127.0.0.1", "test-agent")

		user, err := fixtures.CreateTestUser()
		require.NoError(t, err)
		campaign, err := fixtures.CreateTestCampaign(user.ID, "Summer Launch", models.CampaignStatusActive)
		require.NoError(t, err)

		t.Run("DefaultsToPendingWithEmptyHistory", func(t *testing.T) {
			resp, err := flow.CreateLead(ctx, &dto.CreateLeadRequest{
				Name:       "Ada Lovelace",
				Email:      strPtr("ada@example.com"),
				Company:    strPtr("Analytical Engines"),
				CampaignID: campaign.ID,
			}, metadata)
			require.NoError(t, err)

			assert.Equal(t, "Ada Lovelace", resp.Lead.Name)
			assert.Equal(t, "Pending", resp.Lead.Status)
			assert.Nil(t, resp.Lead.LastContactDate)
			require.NotNil(t, resp.Lead.InteractionHistory)
			assert.Len(t, resp.Lead.InteractionHistory, 0)
			require.NotNil(t, resp.Lead.CampaignName)
			assert.Equal(t, "Summer Launch", *resp.Lead.CampaignName)
		})

		t.Run("RecomputesCampaignCounters", func(t *testing.T) {
			found, err := campaignRepo.ByID(ctx, campaign.ID)
			require.NoError(t, err)
			assert.Equal(t, int64(1), found.TotalLeads)
		})

		t.Run("ExplicitStatus", func(t *testing.T) {
			resp, err := flow.CreateLead(ctx, &dto.CreateLeadRequest{
				Name:       "Grace Hopper",
				CampaignID: campaign.ID,
				Status:     strPtr("Contacted"),
			}, metadata)
			require.NoError(t, err)
			assert.Equal(t, "Contacted", resp.Lead.Status)
		})

		t.Run("UnknownCampaign", func(t *testing.T) {
			_, err := flow.CreateLead(ctx, &dto.CreateLeadRequest{
				Name:       "No Campaign",
				CampaignID: 999999,
			}, metadata)
			require.Error(t, err)
			assert.True(t, businessflow.IsCampaignNotFound(err))
		})

		t.Run("EmptyName", func(t *testing.T) {
			_, err := flow.CreateLead(ctx, &dto.CreateLeadRequest{
				Name:       "   ",
				CampaignID: campaign.ID,
			}, metadata)
			require.Error(t, err)
			assert.True(t, businessflow.IsValidationError(err))
		})

		return nil
	})
	require.NoError(t, err)
}

func TestUpdateLeadFlow(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		flow := newLeadFlow(testDB)
		leadRepo := repository.NewLeadRepository(testDB.DB)
		campaignRepo := repository.NewCampaignRepository(testDB.DB)
		fixtures := testingutil.NewTestFixtures(testDB)
		ctx := testingutil.CreateTestContext()
		metadata := businessflow.NewClientMetadata("127.0.0.1", "test-agent")

		user, err := fixtures.CreateTestUser()
		require.NoError(t, err)
		campaign, err := fixtures.CreateTestCampaign(user.ID, "Winter Retention", models.CampaignStatusActive)
		require.NoError(t, err)
		lead, err := fixtures.CreateTestLead(campaign.ID, "Ada Lovelace", models.LeadStatusPending)
		require.NoError(t, err)

		t.Run("PartialUpdateLeavesOtherFields", func(t *testing.T) {
			resp, err := flow.UpdateLead(ctx, &dto.UpdateLeadRequest{
				ID:   lead.ID,
				Name: strPtr("Ada King"),
			}, metadata)
			require.NoError(t, err)

			assert.Equal(t, "Ada King", resp.Lead.Name)
			assert.Equal(t, lead.Email, resp.Lead.Email)
			assert.Equal(t, "Pending", resp.Lead.Status)
		})

		t.Run("ContactedStampsLastContactDate", func(t *testing.T) {
			resp, err := flow.UpdateLead(ctx, &dto.UpdateLeadRequest{
				ID:     lead.ID,
				Status: strPtr("Contacted"),
			}, metadata)
			require.NoError(t, err)

			assert.Equal(t, "Contacted", resp.Lead.Status)
			require.NotNil(t, resp.Lead.LastContactDate)
			assert.WithinDuration(t, time.Now().UTC(), *resp.Lead.LastContactDate, 5*time.Second)
		})

		t.Run("OtherStatusesLeaveLastContactDate", func(t *testing.T) {
			before, err := leadRepo.ByID(ctx, lead.ID)
			require.NoError(t, err)
			require.NotNil(t, before.LastContactDate)

			resp, err := flow.UpdateLead(ctx, &dto.UpdateLeadRequest{
				ID:     lead.ID,
				Status: strPtr("Responded"),
			}, metadata)
			require.NoError(t, err)

			assert.Equal(t, "Responded", resp.Lead.Status)
			require.NotNil(t, resp.Lead.LastContactDate)
			assert.True(t, before.LastContactDate.Equal(*resp.Lead.LastContactDate))
		})

		t.Run("StatusChangeRecomputesCounters", func(t *testing.T) {
			found, err := campaignRepo.ByID(ctx, campaign.ID)
			require.NoError(t, err)
			assert.Equal(t, int64(1), found.TotalLeads)
			assert.InDelta(t, 1.0, found.ResponseRate, 0.01)
		})

		t.Run("HistoryReplacement", func(t *testing.T) {
			history := []dto.InteractionEventDTO{
				{Date: time.Now().UTC().Add(-time.Hour), Type: "email", Description: "Intro"},
				{Date: time.Now().UTC(), Type: "call", Description: "Follow up"},
			}

			resp, err := flow.UpdateLead(ctx, &dto.UpdateLeadRequest{
				ID:                 lead.ID,
				InteractionHistory: &history,
			}, metadata)
			require.NoError(t, err)
			require.Len(t, resp.Lead.InteractionHistory, 2)
			assert.Equal(t, "Intro", resp.Lead.InteractionHistory[0].Description)

			// A second replacement drops the previous sequence wholesale
			shorter := []dto.InteractionEventDTO{
				{Date: time.Now().UTC(), Type: "note", Description: "Reset"},
			}
			resp, err = flow.UpdateLead(ctx, &dto.UpdateLeadRequest{
				ID:                 lead.ID,
				InteractionHistory: &shorter,
			}, metadata)
			require.NoError(t, err)
			require.Len(t, resp.Lead.InteractionHistory, 1)
			assert.Equal(t, "Reset", resp.Lead.InteractionHistory[0].Description)
		})

		t.Run("EmptyUpdateStillStampsUpdatedAt", func(t *testing.T) {
			before, err := leadRepo.ByID(ctx, lead.ID)
			require.NoError(t, err)

			time.Sleep(10 * time.Millisecond)
			resp, err := flow.UpdateLead(ctx, &dto.UpdateLeadRequest{ID: lead.ID}, metadata)
			require.NoError(t, err)
			assert.True(t, resp.Lead.UpdatedAt.After(before.UpdatedAt))
		})

		t.Run("NotFound", func(t *testing.T) {
			_, err := flow.UpdateLead(ctx, &dto.UpdateLeadRequest{
				ID:   999999,
				Name: strPtr("Ghost"),
			}, metadata)
			require.Error(t, err)
			assert.True(t, businessflow.IsLeadNotFound(err))
		})

		t.Run("BlankNameRejected", func(t *testing.T) {
			_, err := flow.UpdateLead(ctx, &dto.UpdateLeadRequest{
				ID:   lead.ID,
				Name: strPtr("  "),
			}, metadata)
			require.Error(t, err)
			assert.True(t, businessflow.IsValidationError(err))
		})

		return nil
	})
	require.NoError(t, err)
}

func TestRecordInteractionFlow(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		flow := newLeadFlow(testDB)
		fixtures := testingutil.NewTestFixtures(testDB)
		ctx := testingutil.CreateTestContext()
		metadata := businessflow.NewClientMetadata("127.0.0.1", "test-agent")

		user, err := fixtures.CreateTestUser()
		require.NoError(t, err)
		campaign, err := fixtures.CreateTestCampaign(user.ID, "", models.CampaignStatusActive)
		require.NoError(t, err)
		lead, err := fixtures.CreateTestLead(campaign.ID, "Alan Turing", models.LeadStatusPending)
		require.NoError(t, err)

		t.Run("AppendsToHistory", func(t *testing.T) {
			resp, err := flow.RecordInteraction(ctx, &dto.RecordInteractionRequest{
				LeadID:      lead.ID,
				Type:        "email",
				Description: "Sent intro email",
			}, metadata)
			require.NoError(t, err)
			require.Len(t, resp.Lead.InteractionHistory, 1)
			assert.Equal(t, "email", resp.Lead.InteractionHistory[0].Type)

			resp, err = flow.RecordInteraction(ctx, &dto.RecordInteractionRequest{
				LeadID:      lead.ID,
				Type:        "call",
				Description: "Discovery call",
			}, metadata)
			require.NoError(t, err)
			require.Len(t, resp.Lead.InteractionHistory, 2)
			assert.Equal(t, "Sent intro email", resp.Lead.InteractionHistory[0].Description)
			assert.Equal(t, "Discovery call", resp.Lead.InteractionHistory[1].Description)
		})

		t.Run("OptionalStatusMove", func(t *testing.T) {
			resp, err := flow.RecordInteraction(ctx, &dto.RecordInteractionRequest{
				LeadID:      lead.ID,
				Type:        "call",
				Description: "Qualified",
				Status:      strPtr("Contacted"),
			}, metadata)
			require.NoError(t, err)
			assert.Equal(t, "Contacted", resp.Lead.Status)
			require.NotNil(t, resp.Lead.LastContactDate)
		})

		t.Run("EmptyTypeRejected", func(t *testing.T) {
			_, err := flow.RecordInteraction(ctx, &dto.RecordInteractionRequest{
				LeadID:      lead.ID,
				Type:        "",
				Description: "Missing type",
			}, metadata)
			require.Error(t, err)
			assert.True(t, businessflow.IsValidationError(err))
		})

		t.Run("NotFound", func(t *testing.T) {
			_, err := flow.RecordInteraction(ctx, &dto.RecordInteractionRequest{
				LeadID:      999999,
				Type:        "email",
				Description: "Ghost",
			}, metadata)
			require.Error(t, err)
			assert.True(t, businessflow.IsLeadNotFound(err))
		})

		return nil
	})
	require.NoError(t, err)
}

func TestRecordInteractionConcurrentAppends(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		flow := newLeadFlow(testDB)
		leadRepo := repository.NewLeadRepository(testDB.DB)
		fixtures := testingutil.NewTestFixtures(testDB)
		ctx := testingutil.CreateTestContext()
		metadata := businessflow.NewClientMetadata("127.0.0.1", "test-agent")

		user, err := fixtures.CreateTestUser()
		require.NoError(t, err)
		campaign, err := fixtures.CreateTestCampaign(user.ID, "", models.CampaignStatusActive)
		require.NoError(t, err)
		lead, err := fixtures.CreateTestLead(campaign.ID, "Busy Lead", models.LeadStatusPending)
		require.NoError(t, err)

		const writers = 8
		var wg sync.WaitGroup
		errs := make(chan error, writers)

		for i := 0; i < writers; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				_, err := flow.RecordInteraction(ctx, &dto.RecordInteractionRequest{
					LeadID:      lead.ID,
					Type:        "call",
					Description: fmt.Sprintf("Touch %d", i),
				}, metadata)
				errs <- err
			}(i)
		}
		wg.Wait()
		close(errs)
		for err := range errs {
			require.NoError(t, err)
		}

		// The row lock serializes the appends, so every event survives
		stored, err := leadRepo.ByID(ctx, lead.ID)
		require.NoError(t, err)
		require.NotNil(t, stored)
		require.Len(t, stored.InteractionHistory, writers)

		seen := make(map[string]bool, writers)
		for _, event := range stored.InteractionHistory {
			seen[event.Description] = true
		}
		assert.Len(t, seen, writers)

		return nil
	})
	require.NoError(t, err)
}

func TestListLeadsFlow(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		flow := newLeadFlow(testDB)
		fixtures := testingutil.NewTestFixtures(testDB)
		ctx := testingutil.CreateTestContext()

		user, err := fixtures.CreateTestUser()
		require.NoError(t, err)

		_, _, err = fixtures.SeedCampaignWithLeads(user.ID, "Bulk Import", 120)
		require.NoError(t, err)

		t.Run("DefaultsApplied", func(t *testing.T) {
			resp, err := flow.ListLeads(ctx, &dto.ListLeadsRequest{})
			require.NoError(t, err)

			assert.Len(t, resp.Items, 50)
			assert.Equal(t, 1, resp.Pagination.Page)
			assert.Equal(t, 50, resp.Pagination.Limit)
			assert.Equal(t, int64(120), resp.Pagination.Total)
			assert.Equal(t, 3, resp.Pagination.TotalPages)
			assert.True(t, resp.Pagination.HasNextPage)
			assert.False(t, resp.Pagination.HasPrevPage)
		})

		t.Run("MiddlePage", func(t *testing.T) {
			resp, err := flow.ListLeads(ctx, &dto.ListLeadsRequest{Page: 2, Limit: 50})
			require.NoError(t, err)

			assert.Len(t, resp.Items, 50)
			assert.True(t, resp.Pagination.HasNextPage)
			assert.True(t, resp.Pagination.HasPrevPage)
		})

		t.Run("LastPage", func(t *testing.T) {
			resp, err := flow.ListLeads(ctx, &dto.ListLeadsRequest{Page: 3, Limit: 50})
			require.NoError(t, err)

			assert.Len(t, resp.Items, 20)
			assert.False(t, resp.Pagination.HasNextPage)
			assert.True(t, resp.Pagination.HasPrevPage)
		})

		t.Run("StatusFilter", func(t *testing.T) {
			resp, err := flow.ListLeads(ctx, &dto.ListLeadsRequest{Status: "Converted", Limit: 200})
			require.NoError(t, err)

			// Seeder cycles four statuses over 120 leads
			assert.Equal(t, int64(30), resp.Pagination.Total)
			for _, item := range resp.Items {
				assert.Equal(t, "Converted", item.Status)
			}
		})

		t.Run("LimitClampedToMax", func(t *testing.T) {
			resp, err := flow.ListLeads(ctx, &dto.ListLeadsRequest{Limit: 10000})
			require.NoError(t, err)
			assert.Equal(t, 200, resp.Pagination.Limit)
		})

		t.Run("InvalidStatusRejected", func(t *testing.T) {
			_, err := flow.ListLeads(ctx, &dto.ListLeadsRequest{Status: "Archived"})
			require.Error(t, err)
			assert.True(t, businessflow.IsValidationError(err))
		})

		return nil
	})
	require.NoError(t, err)
}

func TestListLeadsSearchPagination(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		flow := newLeadFlow(testDB)
		fixtures := testingutil.NewTestFixtures(testDB)
		ctx := testingutil.CreateTestContext()

		user, err := fixtures.CreateTestUser()
		require.NoError(t, err)

		_, _, err = fixtures.SeedCampaignWithLeads(user.ID, "Bulk Import", 120)
		require.NoError(t, err)
		// Leads that must not match the search
		_, _, err = fixtures.SeedCampaignWithLeads(user.ID, "Spring Promo", 10)
		require.NoError(t, err)

		resp, err := flow.ListLeads(ctx, &dto.ListLeadsRequest{
			Search: "bulk import",
			Page:   2,
			Limit:  50,
		})
		require.NoError(t, err)

		// The count shares the search predicate with the paged slice
		assert.Equal(t, int64(120), resp.Pagination.Total)
		assert.Equal(t, 3, resp.Pagination.TotalPages)
		require.Len(t, resp.Items, 50)
		assert.True(t, resp.Pagination.HasNextPage)
		assert.True(t, resp.Pagination.HasPrevPage)

		for _, item := range resp.Items {
			require.NotNil(t, item.CampaignName)
			assert.Equal(t, "Bulk Import", *item.CampaignName)
		}

		return nil
	})
	require.NoError(t, err)
}

func TestExportLeadsFlow(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		flow := newLeadFlow(testDB)
		fixtures := testingutil.NewTestFixtures(testDB)
		ctx := testingutil.CreateTestContext()

		user, err := fixtures.CreateTestUser()
		require.NoError(t, err)
		_, _, err = fixtures.SeedCampaignWithLeads(user.ID, "Export Me", 5)
		require.NoError(t, err)

		result, err := flow.ExportLeads(ctx, &dto.ExportLeadsRequest{})
		require.NoError(t, err)

		assert.Contains(t, result.Filename, "leads-")
		assert.Contains(t, result.Filename, ".xlsx")
		assert.NotEmpty(t, result.Content)

		// xlsx files are zip archives
		assert.Equal(t, []byte{0x50, 0x4b}, result.Content[:2])

		return nil
	})
	require.NoError(t, err)
}
