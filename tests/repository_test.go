// Package tests contains database-backed test cases for the repository layer
package tests

import (
	"fmt"
	"testing"
	"time"

	"leadboard/models"
	"leadboard/repository"
	testingutil "leadboard/testing"
	"leadboard/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserRepository(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		repo := repository.NewUserRepository(testDB.DB)
		fixtures := testingutil.NewTestFixtures(testDB)
		ctx := testingutil.CreateTestContext()

		user, err := fixtures.CreateTestUser()
		require.NoError(t, err)

		t.Run("ByEmail", func(t *testing.T) {
			found, err := repo.ByEmail(ctx, user.Email)
			require.NoError(t, err)
			require.NotNil(t, found)
			assert.Equal(t, user.ID, found.ID)
			assert.Equal(t, user.Email, found.Email)
		})

		t.Run("ByEmailNotFound", func(t *testing.T) {
			found, err := repo.ByEmail(ctx, "nobody@example.com")
			assert.NoError(t, err)
			assert.Nil(t, found)
		})

		t.Run("ByUUID", func(t *testing.T) {
			found, err := repo.ByUUID(ctx, user.UUID.String())
			require.NoError(t, err)
			require.NotNil(t, found)
			assert.Equal(t, user.ID, found.ID)
		})

		t.Run("UpdateLastLogin", func(t *testing.T) {
			at := time.Now().UTC().Truncate(time.Second)
			require.NoError(t, repo.UpdateLastLogin(ctx, user.ID, at))

			found, err := repo.ByID(ctx, user.ID)
			require.NoError(t, err)
			require.NotNil(t, found)
			require.NotNil(t, found.LastLoginAt)
			assert.WithinDuration(t, at, *found.LastLoginAt, time.Second)
		})

		return nil
	})
	require.NoError(t, err)
}

func TestUserSessionRepository(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		repo := repository.NewUserSessionRepository(testDB.DB)
		fixtures := testingutil.NewTestFixtures(testDB)
		ctx := testingutil.CreateTestContext()

		user, err := fixtures.CreateTestUser()
		require.NoError(t, err)

		session, err := fixtures.CreateTestSession(user.ID)
		require.NoError(t, err)

		t.Run("BySessionToken", func(t *testing.T) {
			found, err := repo.BySessionToken(ctx, session.SessionToken)
			require.NoError(t, err)
			require.NotNil(t, found)
			assert.Equal(t, session.ID, found.ID)
		})

		t.Run("ListActiveSessionsByUser", func(t *testing.T) {
			sessions, err := repo.ListActiveSessionsByUser(ctx, user.ID)
			require.NoError(t, err)
			assert.Len(t, sessions, 1)
		})

		t.Run("RevokeAllUserSessions", func(t *testing.T) {
			require.NoError(t, repo.RevokeAllUserSessions(ctx, user.ID))

			sessions, err := repo.ListActiveSessionsByUser(ctx, user.ID)
			require.NoError(t, err)
			assert.Len(t, sessions, 0)
		})

		return nil
	})
	require.NoError(t, err)
}

func TestCampaignRepository(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		repo := repository.NewCampaignRepository(testDB.DB)
		fixtures := testingutil.NewTestFixtures(testDB)
		ctx := testingutil.CreateTestContext()

		user, err := fixtures.CreateTestUser()
		require.NoError(t, err)

		campaign, err := fixtures.CreateTestCampaign(user.ID, "Spring Outreach", models.CampaignStatusActive)
		require.NoError(t, err)

		t.Run("ByID", func(t *testing.T) {
			found, err := repo.ByID(ctx, campaign.ID)
			require.NoError(t, err)
			require.NotNil(t, found)
			assert.Equal(t, "Spring Outreach", found.Name)
			assert.Equal(t, models.CampaignStatusActive, found.Status)
		})

		t.Run("ByIDNotFound", func(t *testing.T) {
			found, err := repo.ByID(ctx, 999999)
			assert.NoError(t, err)
			assert.Nil(t, found)
		})

		t.Run("UpdateStatus", func(t *testing.T) {
			require.NoError(t, repo.UpdateStatus(ctx, campaign.ID, models.CampaignStatusPaused))

			found, err := repo.ByID(ctx, campaign.ID)
			require.NoError(t, err)
			assert.Equal(t, models.CampaignStatusPaused, found.Status)
			assert.NotNil(t, found.UpdatedAt)
		})

		t.Run("RecomputeCounters", func(t *testing.T) {
			// 2 Converted, 1 Responded, 1 Pending out of 4
			_, err := fixtures.CreateTestLead(campaign.ID, "Lead A", models.LeadStatusConverted)
			require.NoError(t, err)
			_, err = fixtures.CreateTestLead(campaign.ID, "Lead B", models.LeadStatusConverted)
			require.NoError(t, err)
			_, err = fixtures.CreateTestLead(campaign.ID, "Lead C", models.LeadStatusResponded)
			require.NoError(t, err)
			_, err = fixtures.CreateTestLead(campaign.ID, "Lead D", models.LeadStatusPending)
			require.NoError(t, err)

			require.NoError(t, repo.RecomputeCounters(ctx, campaign.ID))

			found, err := repo.ByID(ctx, campaign.ID)
			require.NoError(t, err)
			assert.Equal(t, int64(4), found.TotalLeads)
			assert.Equal(t, int64(2), found.SuccessfulLeads)
			assert.InDelta(t, 0.75, found.ResponseRate, 0.01)
		})

		t.Run("ByFilterStatus", func(t *testing.T) {
			status := models.CampaignStatusPaused
			campaigns, err := repo.ByFilter(ctx, models.CampaignFilter{UserID: &user.ID, Status: &status}, "", 0, 0)
			require.NoError(t, err)
			require.Len(t, campaigns, 1)
			assert.Equal(t, campaign.ID, campaigns[0].ID)
		})

		return nil
	})
	require.NoError(t, err)
}

func TestLeadRepositoryListWithCampaign(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		repo := repository.NewLeadRepository(testDB.DB)
		fixtures := testingutil.NewTestFixtures(testDB)
		ctx := testingutil.CreateTestContext()

		user, err := fixtures.CreateTestUser()
		require.NoError(t, err)

		summer, err := fixtures.CreateTestCampaign(user.ID, "Summer Launch", models.CampaignStatusActive)
		require.NoError(t, err)
		winter, err := fixtures.CreateTestCampaign(user.ID, "Winter Retention", models.CampaignStatusActive)
		require.NoError(t, err)

		ada, err := fixtures.CreateTestLead(summer.ID, "Ada Lovelace", models.LeadStatusContacted)
		require.NoError(t, err)
		grace, err := fixtures.CreateTestLead(summer.ID, "Grace Hopper", models.LeadStatusPending)
		require.NoError(t, err)
		alan, err := fixtures.CreateTestLead(winter.ID, "Alan Turing", models.LeadStatusConverted)
		require.NoError(t, err)

		t.Run("NoFilterReturnsAll", func(t *testing.T) {
			rows, err := repo.ListWithCampaign(ctx, models.LeadFilter{}, 0, 0)
			require.NoError(t, err)
			assert.Len(t, rows, 3)

			// Newest updated first, id as tiebreak
			assert.Equal(t, alan.ID, rows[0].ID)
			assert.Equal(t, ada.ID, rows[2].ID)
		})

		t.Run("CampaignNameJoined", func(t *testing.T) {
			rows, err := repo.ListWithCampaign(ctx, models.LeadFilter{ID: &ada.ID}, 1, 0)
			require.NoError(t, err)
			require.Len(t, rows, 1)
			require.NotNil(t, rows[0].CampaignName)
			assert.Equal(t, "Summer Launch", *rows[0].CampaignName)
		})

		t.Run("SearchMatchesLeadName", func(t *testing.T) {
			search := "lovelace"
			rows, err := repo.ListWithCampaign(ctx, models.LeadFilter{Search: &search}, 0, 0)
			require.NoError(t, err)
			require.Len(t, rows, 1)
			assert.Equal(t, ada.ID, rows[0].ID)
		})

		t.Run("SearchMatchesCampaignName", func(t *testing.T) {
			search := "summer"
			rows, err := repo.ListWithCampaign(ctx, models.LeadFilter{Search: &search}, 0, 0)
			require.NoError(t, err)
			assert.Len(t, rows, 2)
		})

		t.Run("SearchMatchesCompany", func(t *testing.T) {
			search := "test company"
			rows, err := repo.ListWithCampaign(ctx, models.LeadFilter{Search: &search}, 0, 0)
			require.NoError(t, err)
			assert.Len(t, rows, 3)
		})

		t.Run("StatusAndCampaignAreANDCombined", func(t *testing.T) {
			status := models.LeadStatusPending
			name := "Summer Launch"
			rows, err := repo.ListWithCampaign(ctx, models.LeadFilter{Status: &status, CampaignName: &name}, 0, 0)
			require.NoError(t, err)
			require.Len(t, rows, 1)
			assert.Equal(t, grace.ID, rows[0].ID)
		})

		t.Run("CountMatchesListPredicate", func(t *testing.T) {
			search := "summer"
			filter := models.LeadFilter{Search: &search}

			count, err := repo.CountWithCampaign(ctx, filter)
			require.NoError(t, err)

			rows, err := repo.ListWithCampaign(ctx, filter, 0, 0)
			require.NoError(t, err)
			assert.Equal(t, count, int64(len(rows)))
		})

		return nil
	})
	require.NoError(t, err)
}

func TestLeadRepositoryPagination(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		repo := repository.NewLeadRepository(testDB.DB)
		fixtures := testingutil.NewTestFixtures(testDB)
		ctx := testingutil.CreateTestContext()

		user, err := fixtures.CreateTestUser()
		require.NoError(t, err)

		_, leads, err := fixtures.SeedCampaignWithLeads(user.ID, "Bulk Import", 120)
		require.NoError(t, err)
		require.Len(t, leads, 120)

		limit := utils.DefaultPageSize

		t.Run("PageTwo", func(t *testing.T) {
			rows, err := repo.ListWithCampaign(ctx, models.LeadFilter{}, limit, limit)
			require.NoError(t, err)
			require.Len(t, rows, 50)

			// Reverse creation order: page two starts at the 51st newest lead
			assert.Equal(t, leads[69].ID, rows[0].ID)
			assert.Equal(t, leads[20].ID, rows[49].ID)
		})

		t.Run("LastPageIsPartial", func(t *testing.T) {
			rows, err := repo.ListWithCampaign(ctx, models.LeadFilter{}, limit, 2*limit)
			require.NoError(t, err)
			assert.Len(t, rows, 20)
		})

		t.Run("BeyondLastPageIsEmpty", func(t *testing.T) {
			rows, err := repo.ListWithCampaign(ctx, models.LeadFilter{}, limit, 3*limit)
			require.NoError(t, err)
			assert.Len(t, rows, 0)
		})

		t.Run("CountCoversWholeSet", func(t *testing.T) {
			count, err := repo.CountWithCampaign(ctx, models.LeadFilter{})
			require.NoError(t, err)
			assert.Equal(t, int64(120), count)
		})

		t.Run("PagesAreDisjoint", func(t *testing.T) {
			seen := make(map[uint]bool)
			for page := 0; page < 3; page++ {
				rows, err := repo.ListWithCampaign(ctx, models.LeadFilter{}, limit, page*limit)
				require.NoError(t, err)
				for _, row := range rows {
					assert.False(t, seen[row.ID], "lead %d appeared on two pages", row.ID)
					seen[row.ID] = true
				}
			}
			assert.Len(t, seen, 120)
		})

		return nil
	})
	require.NoError(t, err)
}

func TestLeadRepositoryUpdateFields(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		repo := repository.NewLeadRepository(testDB.DB)
		fixtures := testingutil.NewTestFixtures(testDB)
		ctx := testingutil.CreateTestContext()

		user, err := fixtures.CreateTestUser()
		require.NoError(t, err)
		campaign, err := fixtures.CreateTestCampaign(user.ID, "", models.CampaignStatusActive)
		require.NoError(t, err)
		lead, err := fixtures.CreateTestLead(campaign.ID, "Original Name", models.LeadStatusPending)
		require.NoError(t, err)

		t.Run("PartialUpdateLeavesOtherColumns", func(t *testing.T) {
			require.NoError(t, repo.UpdateFields(ctx, lead.ID, map[string]any{"name": "New Name"}))

			found, err := repo.ByID(ctx, lead.ID)
			require.NoError(t, err)
			assert.Equal(t, "New Name", found.Name)
			assert.Equal(t, lead.Email, found.Email)
			assert.Equal(t, models.LeadStatusPending, found.Status)
		})

		t.Run("EmptyMapStillStampsUpdatedAt", func(t *testing.T) {
			before, err := repo.ByID(ctx, lead.ID)
			require.NoError(t, err)

			time.Sleep(10 * time.Millisecond)
			require.NoError(t, repo.UpdateFields(ctx, lead.ID, map[string]any{}))

			after, err := repo.ByID(ctx, lead.ID)
			require.NoError(t, err)
			assert.True(t, after.UpdatedAt.After(before.UpdatedAt))
		})

		t.Run("HistoryColumnRoundTrips", func(t *testing.T) {
			history := models.InteractionHistory{
				{Date: time.Now().UTC(), Type: "email", Description: "Sent proposal"},
			}
			require.NoError(t, repo.UpdateFields(ctx, lead.ID, map[string]any{"interaction_history": history}))

			found, err := repo.ByID(ctx, lead.ID)
			require.NoError(t, err)
			require.Len(t, found.InteractionHistory, 1)
			assert.Equal(t, "Sent proposal", found.InteractionHistory[0].Description)
		})

		return nil
	})
	require.NoError(t, err)
}

func TestLeadRepositoryStatusCountsByUser(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		repo := repository.NewLeadRepository(testDB.DB)
		fixtures := testingutil.NewTestFixtures(testDB)
		ctx := testingutil.CreateTestContext()

		user, err := fixtures.CreateTestUser()
		require.NoError(t, err)
		other, err := fixtures.CreateTestUser()
		require.NoError(t, err)

		campaign, err := fixtures.CreateTestCampaign(user.ID, "", models.CampaignStatusActive)
		require.NoError(t, err)
		otherCampaign, err := fixtures.CreateTestCampaign(other.ID, "", models.CampaignStatusActive)
		require.NoError(t, err)

		for i := 0; i < 3; i++ {
			_, err := fixtures.CreateTestLead(campaign.ID, fmt.Sprintf("Mine %d", i), models.LeadStatusPending)
			require.NoError(t, err)
		}
		_, err = fixtures.CreateTestLead(campaign.ID, "Mine Converted", models.LeadStatusConverted)
		require.NoError(t, err)
		_, err = fixtures.CreateTestLead(otherCampaign.ID, "Theirs", models.LeadStatusPending)
		require.NoError(t, err)

		counts, err := repo.StatusCountsByUser(ctx, user.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(3), counts[models.LeadStatusPending])
		assert.Equal(t, int64(1), counts[models.LeadStatusConverted])
		assert.Zero(t, counts[models.LeadStatusContacted])

		return nil
	})
	require.NoError(t, err)
}
