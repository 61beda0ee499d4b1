package tests

import (
	"testing"
	"time"

	"leadboard/app/dto"
	"leadboard/app/services"
	businessflow "leadboard/business_flow"
	"leadboard/repository"
	testingutil "leadboard/testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAuthFlow(t *testing.T, testDB *testingutil.TestDB) businessflow.AuthFlow {
	t.Helper()

	tokenService, err := services.NewTokenService(
		24*time.Hour,
		7*24*time.Hour,
		"leadboard",
		"leadboard-api",
		false,
		"",
		"",
		"test-secret-key-at-least-32-characters-long",
	)
	require.NoError(t, err)

	return businessflow.NewAuthFlow(
		repository.NewUserRepository(testDB.DB),
		repository.NewUserSessionRepository(testDB.DB),
		repository.NewAuditLogRepository(testDB.DB),
		tokenService,
		testDB.DB,
	)
}

func TestSignupFlow(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		flow := newAuthFlow(t, testDB)
		userRepo := repository.NewUserRepository(testDB.DB)
		ctx := testingutil.CreateTestContext()
		metadata := businessflow.NewClientMetadata("127.0.0.1", "test-agent")

		t.Run("Success", func(t *testing.T) {
			resp, err := flow.Signup(ctx, &dto.SignupRequest{
				Name:            "Jane Smith",
				Email:           "Jane.Smith@Example.com",
				Password:        "SecurePass123!",
				ConfirmPassword: "SecurePass123!",
			}, metadata)
			require.NoError(t, err)

			// Email is normalized to lowercase
			assert.Equal(t, "jane.smith@example.com", resp.User.Email)
			assert.Equal(t, "Jane Smith", resp.User.Name)
			assert.NotEmpty(t, resp.User.UUID)
			assert.NotEmpty(t, resp.Session.SessionToken)
			require.NotNil(t, resp.Session.RefreshToken)
			assert.NotEqual(t, resp.Session.SessionToken, *resp.Session.RefreshToken)
			assert.Equal(t, "Bearer", resp.Session.TokenType)

			// Password hash is stored, never the raw password
			stored, err := userRepo.ByEmail(ctx, "jane.smith@example.com")
			require.NoError(t, err)
			require.NotNil(t, stored)
			require.NotNil(t, stored.PasswordHash)
			assert.NotEqual(t, "SecurePass123!", *stored.PasswordHash)
		})

		t.Run("DuplicateEmail", func(t *testing.T) {
			_, err := flow.Signup(ctx, &dto.SignupRequest{
				Name:            "Jane Clone",
				Email:           "jane.smith@example.com",
				Password:        "AnotherPass123!",
				ConfirmPassword: "AnotherPass123!",
			}, metadata)
			require.Error(t, err)
			assert.True(t, businessflow.IsEmailAlreadyExists(err))
		})

		t.Run("DuplicateEmailIsCaseInsensitive", func(t *testing.T) {
			_, err := flow.Signup(ctx, &dto.SignupRequest{
				Name:            "Jane Upper",
				Email:           "JANE.SMITH@EXAMPLE.COM",
				Password:        "AnotherPass123!",
				ConfirmPassword: "AnotherPass123!",
			}, metadata)
			require.Error(t, err)
			assert.True(t, businessflow.IsEmailAlreadyExists(err))
		})

		return nil
	})
	require.NoError(t, err)
}

func TestLoginFlow(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		flow := newAuthFlow(t, testDB)
		userRepo := repository.NewUserRepository(testDB.DB)
		fixtures := testingutil.NewTestFixtures(testDB)
		ctx := testingutil.CreateTestContext()
		metadata := businessflow.NewClientMetadata("127.0.0.1", "test-agent")

		_, err := flow.Signup(ctx, &dto.SignupRequest{
			Name:            "Login User",
			Email:           "login.user@example.com",
			Password:        "SecurePass123!",
			ConfirmPassword: "SecurePass123!",
		}, metadata)
		require.NoError(t, err)

		t.Run("Success", func(t *testing.T) {
			resp, err := flow.Login(ctx, &dto.LoginRequest{
				Email:    "login.user@example.com",
				Password: "SecurePass123!",
			}, metadata)
			require.NoError(t, err)

			assert.Equal(t, "login.user@example.com", resp.User.Email)
			assert.NotEmpty(t, resp.Session.SessionToken)

			stored, err := userRepo.ByEmail(ctx, "login.user@example.com")
			require.NoError(t, err)
			assert.NotNil(t, stored.LastLoginAt)
		})

		t.Run("WrongPassword", func(t *testing.T) {
			_, err := flow.Login(ctx, &dto.LoginRequest{
				Email:    "login.user@example.com",
				Password: "WrongPass123!",
			}, metadata)
			require.Error(t, err)
			assert.True(t, businessflow.IsIncorrectPassword(err))
		})

		t.Run("UnknownEmail", func(t *testing.T) {
			_, err := flow.Login(ctx, &dto.LoginRequest{
				Email:    "nobody@example.com",
				Password: "SecurePass123!",
			}, metadata)
			require.Error(t, err)
			assert.True(t, businessflow.IsUserNotFound(err))
		})

		t.Run("ProviderOnlyAccount", func(t *testing.T) {
			oauthUser, err := fixtures.CreateTestOAuthUser("google")
			require.NoError(t, err)

			_, err = flow.Login(ctx, &dto.LoginRequest{
				Email:    oauthUser.Email,
				Password: "SecurePass123!",
			}, metadata)
			require.Error(t, err)
			assert.True(t, businessflow.IsPasswordLoginOnly(err))
		})

		return nil
	})
	require.NoError(t, err)
}

func TestLogoutFlow(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		flow := newAuthFlow(t, testDB)
		sessionRepo := repository.NewUserSessionRepository(testDB.DB)
		userRepo := repository.NewUserRepository(testDB.DB)
		ctx := testingutil.CreateTestContext()
		metadata := businessflow.NewClientMetadata("127.0.0.1", "test-agent")

		_, err := flow.Signup(ctx, &dto.SignupRequest{
			Name:            "Logout User",
			Email:           "logout.user@example.com",
			Password:        "SecurePass123!",
			ConfirmPassword: "SecurePass123!",
		}, metadata)
		require.NoError(t, err)

		user, err := userRepo.ByEmail(ctx, "logout.user@example.com")
		require.NoError(t, err)
		require.NotNil(t, user)

		sessions, err := sessionRepo.ListActiveSessionsByUser(ctx, user.ID)
		require.NoError(t, err)
		require.Len(t, sessions, 1)

		resp, err := flow.Logout(ctx, &dto.LogoutRequest{UserID: user.ID}, metadata)
		require.NoError(t, err)
		assert.NotEmpty(t, resp.Message)

		sessions, err = sessionRepo.ListActiveSessionsByUser(ctx, user.ID)
		require.NoError(t, err)
		assert.Len(t, sessions, 0)

		return nil
	})
	require.NoError(t, err)
}
