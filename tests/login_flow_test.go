// Package tests contains integration tests for the token flows
package tests

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kubousky/dotmap/app/dto"
	"github.com/kubousky/dotmap/app/services"
	businessflow "github.com/kubousky/dotmap/business_flow"
	"github.com/kubousky/dotmap/repository"
	testingutil "github.com/kubousky/dotmap/testing"
)

func newTestAuthFlow(t *testing.T, testDB *testingutil.TestDB) (businessflow.AuthFlow, repository.UserRepository) {
	t.Helper()

	userRepo := repository.NewUserRepository(testDB.DB)
	tokenService, err := services.NewTokenService(
		1*time.Hour,
		24*time.Hour,
		"test-issuer",
		"test-audience",
		false,
		"",
		"",
		"test-secret-key-for-jwt-signing-32-chars",
		services.NewMemoryRevocationStore(),
	)
	require.NoError(t, err)

	return businessflow.NewAuthFlow(userRepo, tokenService, testDB.DB), userRepo
}

func TestObtainToken(t *testing.T) {
	requirePostgres(t)

	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		fixtures := testingutil.NewTestFixtures(testDB)
		authFlow, userRepo := newTestAuthFlow(t, testDB)
		metadata := businessflow.NewClientMetadata("127.0.0.1", "test-agent")
		ctx := context.Background()

		t.Run("SuccessfulLogin", func(t *testing.T) {
			user, err := fixtures.CreateTestUser()
			require.NoError(t, err)

			result, err := authFlow.ObtainToken(ctx, &dto.ObtainTokenRequest{
				Email:    user.Email,
				Password: testingutil.DefaultTestPassword,
			}, metadata)
			require.NoError(t, err)
			require.NotNil(t, result)
			assert.NotEmpty(t, result.Access)
			assert.NotEmpty(t, result.Refresh)
			assert.Equal(t, "Bearer", result.TokenType)
			assert.Positive(t, result.ExpiresIn)

			// Last login timestamp is recorded
			stored, err := userRepo.ByID(ctx, user.ID)
			require.NoError(t, err)
			assert.NotNil(t, stored.LastLoginAt)
		})

		t.Run("UppercasedEmailStillLogsIn", func(t *testing.T) {
			user, err := fixtures.CreateTestUser()
			require.NoError(t, err)

			_, err = authFlow.ObtainToken(ctx, &dto.ObtainTokenRequest{
				Email:    "  " + user.Email + " ",
				Password: testingutil.DefaultTestPassword,
			}, metadata)
			assert.NoError(t, err)
		})

		t.Run("WrongPassword", func(t *testing.T) {
			user, err := fixtures.CreateTestUser()
			require.NoError(t, err)

			_, err = authFlow.ObtainToken(ctx, &dto.ObtainTokenRequest{
				Email:    user.Email,
				Password: "WrongPass999!",
			}, metadata)
			require.Error(t, err)
			assert.True(t, businessflow.IsIncorrectPassword(err))
		})

		t.Run("UnknownEmail", func(t *testing.T) {
			_, err := authFlow.ObtainToken(ctx, &dto.ObtainTokenRequest{
				Email:    "ghost@example.com",
				Password: "Whatever123!",
			}, metadata)
			require.Error(t, err)
			assert.True(t, businessflow.IsUserNotFound(err))
		})

		t.Run("InactiveAccount", func(t *testing.T) {
			user, err := fixtures.CreateInactiveTestUser()
			require.NoError(t, err)

			_, err = authFlow.ObtainToken(ctx, &dto.ObtainTokenRequest{
				Email:    user.Email,
				Password: testingutil.DefaultTestPassword,
			}, metadata)
			require.Error(t, err)
			assert.True(t, businessflow.IsAccountInactive(err))
		})

		return nil
	})
	require.NoError(t, err)
}

func TestVerifyToken(t *testing.T) {
	requirePostgres(t)

	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		fixtures := testingutil.NewTestFixtures(testDB)
		authFlow, _ := newTestAuthFlow(t, testDB)
		metadata := businessflow.NewClientMetadata("127.0.0.1", "test-agent")
		ctx := context.Background()

		user, err := fixtures.CreateTestUser()
		require.NoError(t, err)

		pair, err := authFlow.ObtainToken(ctx, &dto.ObtainTokenRequest{
			Email:    user.Email,
			Password: testingutil.DefaultTestPassword,
		}, metadata)
		require.NoError(t, err)

		t.Run("ValidAccessToken", func(t *testing.T) {
			result, err := authFlow.VerifyToken(ctx, &dto.VerifyTokenRequest{Token: pair.Access})
			require.NoError(t, err)
			assert.Equal(t, user.ID, result.ID)
			assert.Equal(t, user.Email, result.Email)
		})

		t.Run("GarbageToken", func(t *testing.T) {
			_, err := authFlow.VerifyToken(ctx, &dto.VerifyTokenRequest{Token: "not-a-jwt"})
			assert.Error(t, err)
		})

		return nil
	})
	require.NoError(t, err)
}

func TestRefreshTokenFlow(t *testing.T) {
	requirePostgres(t)

	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		fixtures := testingutil.NewTestFixtures(testDB)
		authFlow, _ := newTestAuthFlow(t, testDB)
		metadata := businessflow.NewClientMetadata("127.0.0.1", "test-agent")
		ctx := context.Background()

		user, err := fixtures.CreateTestUser()
		require.NoError(t, err)

		pair, err := authFlow.ObtainToken(ctx, &dto.ObtainTokenRequest{
			Email:    user.Email,
			Password: testingutil.DefaultTestPassword,
		}, metadata)
		require.NoError(t, err)

		t.Run("RefreshYieldsNewPair", func(t *testing.T) {
			fresh, err := authFlow.RefreshToken(ctx, pair.Refresh)
			require.NoError(t, err)
			assert.NotEmpty(t, fresh.Access)
			assert.NotEmpty(t, fresh.Refresh)

			result, err := authFlow.VerifyToken(ctx, &dto.VerifyTokenRequest{Token: fresh.Access})
			require.NoError(t, err)
			assert.Equal(t, user.ID, result.ID)
		})

		t.Run("AccessTokenCannotRefresh", func(t *testing.T) {
			_, err := authFlow.RefreshToken(ctx, pair.Access)
			assert.Error(t, err)
		})

		return nil
	})
	require.NoError(t, err)
}
