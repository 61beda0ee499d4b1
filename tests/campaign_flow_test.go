package tests

import (
	"testing"

	"leadboard/app/dto"
	businessflow "leadboard/business_flow"
	"leadboard/models"
	"leadboard/repository"
	testingutil "leadboard/testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCampaignFlow(testDB *testingutil.TestDB) businessflow.CampaignFlow {
	// Nil cache: the flow falls back to direct queries
	return businessflow.NewCampaignFlow(
		repository.NewCampaignRepository(testDB.DB),
		repository.NewLeadRepository(testDB.DB),
		repository.NewAuditLogRepository(testDB.DB),
		nil,
		testDB.DB,
	)
}

func TestCreateCampaignFlow(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		flow := newCampaignFlow(testDB)
		fixtures := testingutil.NewTestFixtures(testDB)
		ctx := testingutil.CreateTestContext()
		metadata := businessflow.NewClientMetadata("127.0.0.1", "test-agent")

		user, err := fixtures.CreateTestUser()
		require.NoError(t, err)

		t.Run("DefaultsToDraft", func(t *testing.T) {
			resp, err := flow.CreateCampaign(ctx, &dto.CreateCampaignRequest{
				UserID: user.ID,
				Name:   "Q3 Outreach",
			}, metadata)
			require.NoError(t, err)

			assert.Equal(t, "Q3 Outreach", resp.Name)
			assert.Equal(t, "Draft", resp.Status)
			assert.NotZero(t, resp.ID)
		})

		t.Run("ExplicitStatus", func(t *testing.T) {
			resp, err := flow.CreateCampaign(ctx, &dto.CreateCampaignRequest{
				UserID: user.ID,
				Name:   "Q4 Outreach",
				Status: strPtr("Active"),
			}, metadata)
			require.NoError(t, err)
			assert.Equal(t, "Active", resp.Status)
		})

		t.Run("EmptyNameRejected", func(t *testing.T) {
			_, err := flow.CreateCampaign(ctx, &dto.CreateCampaignRequest{
				UserID: user.ID,
				Name:   "   ",
			}, metadata)
			require.Error(t, err)
			assert.True(t, businessflow.IsValidationError(err))
		})

		return nil
	})
	require.NoError(t, err)
}

func TestListCampaignsFlow(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		flow := newCampaignFlow(testDB)
		fixtures := testingutil.NewTestFixtures(testDB)
		ctx := testingutil.CreateTestContext()

		user, err := fixtures.CreateTestUser()
		require.NoError(t, err)
		other, err := fixtures.CreateTestUser()
		require.NoError(t, err)

		for _, name := range []string{"Alpha", "Beta", "Gamma"} {
			_, err := fixtures.CreateTestCampaign(user.ID, name, models.CampaignStatusActive)
			require.NoError(t, err)
		}
		_, err = fixtures.CreateTestCampaign(other.ID, "Theirs", models.CampaignStatusActive)
		require.NoError(t, err)

		t.Run("ScopedToUser", func(t *testing.T) {
			resp, err := flow.ListCampaigns(ctx, &dto.ListCampaignsRequest{UserID: user.ID})
			require.NoError(t, err)

			assert.Equal(t, int64(3), resp.Pagination.Total)
			for _, item := range resp.Items {
				assert.NotEqual(t, "Theirs", item.Name)
			}
		})

		t.Run("NewestFirstByDefault", func(t *testing.T) {
			resp, err := flow.ListCampaigns(ctx, &dto.ListCampaignsRequest{UserID: user.ID})
			require.NoError(t, err)
			require.Len(t, resp.Items, 3)
			assert.Equal(t, "Gamma", resp.Items[0].Name)
		})

		t.Run("OldestFirst", func(t *testing.T) {
			resp, err := flow.ListCampaigns(ctx, &dto.ListCampaignsRequest{UserID: user.ID, OrderBy: "oldest"})
			require.NoError(t, err)
			require.Len(t, resp.Items, 3)
			assert.Equal(t, "Alpha", resp.Items[0].Name)
		})

		t.Run("StatusFilter", func(t *testing.T) {
			_, err := fixtures.CreateTestCampaign(user.ID, "Paused One", models.CampaignStatusPaused)
			require.NoError(t, err)

			resp, err := flow.ListCampaigns(ctx, &dto.ListCampaignsRequest{
				UserID: user.ID,
				Filter: &dto.ListCampaignsFilter{Status: strPtr("Paused")},
			})
			require.NoError(t, err)
			require.Len(t, resp.Items, 1)
			assert.Equal(t, "Paused One", resp.Items[0].Name)
		})

		return nil
	})
	require.NoError(t, err)
}

func TestUpdateCampaignStatusFlow(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		flow := newCampaignFlow(testDB)
		fixtures := testingutil.NewTestFixtures(testDB)
		ctx := testingutil.CreateTestContext()
		metadata := businessflow.NewClientMetadata("127.0.0.1", "test-agent")

		user, err := fixtures.CreateTestUser()
		require.NoError(t, err)
		other, err := fixtures.CreateTestUser()
		require.NoError(t, err)

		campaign, err := fixtures.CreateTestCampaign(user.ID, "Lifecycle", models.CampaignStatusDraft)
		require.NoError(t, err)

		t.Run("Success", func(t *testing.T) {
			resp, err := flow.UpdateCampaignStatus(ctx, &dto.UpdateCampaignStatusRequest{
				UserID: user.ID,
				ID:     campaign.ID,
				Status: "Active",
			}, metadata)
			require.NoError(t, err)
			assert.Equal(t, "Active", resp.Status)
		})

		t.Run("OwnershipEnforced", func(t *testing.T) {
			_, err := flow.UpdateCampaignStatus(ctx, &dto.UpdateCampaignStatusRequest{
				UserID: other.ID,
				ID:     campaign.ID,
				Status: "Paused",
			}, metadata)
			require.Error(t, err)
			assert.True(t, businessflow.IsCampaignAccessDenied(err))
		})

		t.Run("NotFound", func(t *testing.T) {
			_, err := flow.UpdateCampaignStatus(ctx, &dto.UpdateCampaignStatusRequest{
				UserID: user.ID,
				ID:     999999,
				Status: "Paused",
			}, metadata)
			require.Error(t, err)
			assert.True(t, businessflow.IsCampaignNotFound(err))
		})

		return nil
	})
	require.NoError(t, err)
}

func TestDashboardSummaryFlow(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		flow := newCampaignFlow(testDB)
		fixtures := testingutil.NewTestFixtures(testDB)
		ctx := testingutil.CreateTestContext()

		user, err := fixtures.CreateTestUser()
		require.NoError(t, err)

		campaign, err := fixtures.CreateTestCampaign(user.ID, "Dash", models.CampaignStatusActive)
		require.NoError(t, err)
		_, err = fixtures.CreateTestLead(campaign.ID, "One", models.LeadStatusPending)
		require.NoError(t, err)
		_, err = fixtures.CreateTestLead(campaign.ID, "Two", models.LeadStatusConverted)
		require.NoError(t, err)

		summary, err := flow.DashboardSummary(ctx, user.ID)
		require.NoError(t, err)

		assert.Equal(t, int64(1), summary.TotalCampaigns)
		assert.Equal(t, int64(2), summary.TotalLeads)
		assert.Equal(t, int64(1), summary.LeadsByStatus["Pending"])
		assert.Equal(t, int64(1), summary.LeadsByStatus["Converted"])
		assert.False(t, summary.GeneratedAt.IsZero())

		return nil
	})
	require.NoError(t, err)
}
