package tests

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/kubousky/dotmap/app/dto"
	businessflow "github.com/kubousky/dotmap/business_flow"
	"github.com/kubousky/dotmap/repository"
	testingutil "github.com/kubousky/dotmap/testing"
	"github.com/kubousky/dotmap/utils"
)

func TestCreateUser(t *testing.T) {
	requirePostgres(t)

	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		userRepo := repository.NewUserRepository(testDB.DB)
		signupFlow := businessflow.NewSignupFlow(userRepo, bcrypt.MinCost, testDB.DB)
		metadata := businessflow.NewClientMetadata("127.0.0.1", "test-agent")
		ctx := context.Background()

		t.Run("SuccessfulSignup", func(t *testing.T) {
			req := &dto.CreateUserRequest{
				Email:    "jane.doe@example.com",
				Password: "SecurePass123!",
				Name:     "Jane Doe",
			}

			result, err := signupFlow.CreateUser(ctx, req, metadata)
			require.NoError(t, err)
			require.NotNil(t, result)
			assert.NotZero(t, result.ID)
			assert.NotEmpty(t, result.UUID)
			assert.Equal(t, "jane.doe@example.com", result.Email)
			assert.Equal(t, "Jane Doe", result.Name)
			assert.True(t, utils.IsTrue(result.IsActive))

			stored, err := userRepo.ByEmail(ctx, "jane.doe@example.com")
			require.NoError(t, err)
			require.NotNil(t, stored)
			assert.NoError(t, bcrypt.CompareHashAndPassword(
				[]byte(stored.PasswordHash), []byte("SecurePass123!")))
		})

		t.Run("EmailIsNormalized", func(t *testing.T) {
			req := &dto.CreateUserRequest{
				Email:    "  MiXeD.Case@Example.COM ",
				Password: "SecurePass123!",
			}

			result, err := signupFlow.CreateUser(ctx, req, metadata)
			require.NoError(t, err)
			assert.Equal(t, "mixed.case@example.com", result.Email)
		})

		t.Run("DuplicateEmailRejected", func(t *testing.T) {
			req := &dto.CreateUserRequest{
				Email:    "taken@example.com",
				Password: "SecurePass123!",
			}

			_, err := signupFlow.CreateUser(ctx, req, metadata)
			require.NoError(t, err)

			// Same address with different casing is still a duplicate
			req2 := &dto.CreateUserRequest{
				Email:    "TAKEN@example.com",
				Password: "OtherPass456!",
			}
			_, err = signupFlow.CreateUser(ctx, req2, metadata)
			require.Error(t, err)
			assert.True(t, businessflow.IsEmailAlreadyExists(err))
		})

		t.Run("InvalidEmailRejected", func(t *testing.T) {
			for _, email := range []string{"", "not-an-email", "missing@domain@twice"} {
				req := &dto.CreateUserRequest{
					Email:    email,
					Password: "SecurePass123!",
				}
				_, err := signupFlow.CreateUser(ctx, req, metadata)
				require.Error(t, err, "email %q should be rejected", email)
				assert.True(t, businessflow.IsInvalidEmail(err))
			}
		})

		return nil
	})
	require.NoError(t, err)
}

func TestCreateSuperuser(t *testing.T) {
	requirePostgres(t)

	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		userRepo := repository.NewUserRepository(testDB.DB)
		signupFlow := businessflow.NewSignupFlow(userRepo, bcrypt.MinCost, testDB.DB)
		ctx := context.Background()

		result, err := signupFlow.CreateSuperuser(ctx, "admin@example.com", "AdminPass123!")
		require.NoError(t, err)
		require.NotNil(t, result)

		stored, err := userRepo.ByEmail(ctx, "admin@example.com")
		require.NoError(t, err)
		require.NotNil(t, stored)
		assert.True(t, utils.IsTrue(stored.IsStaff))
		assert.True(t, utils.IsTrue(stored.IsSuperuser))
		assert.True(t, utils.IsTrue(stored.IsActive))

		return nil
	})
	require.NoError(t, err)
}

func TestGetAndUpdateUser(t *testing.T) {
	requirePostgres(t)

	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		fixtures := testingutil.NewTestFixtures(testDB)
		userRepo := repository.NewUserRepository(testDB.DB)
		signupFlow := businessflow.NewSignupFlow(userRepo, bcrypt.MinCost, testDB.DB)
		metadata := businessflow.NewClientMetadata("127.0.0.1", "test-agent")
		ctx := context.Background()

		t.Run("GetUser", func(t *testing.T) {
			user, err := fixtures.CreateTestUser()
			require.NoError(t, err)

			result, err := signupFlow.GetUser(ctx, user.ID)
			require.NoError(t, err)
			assert.Equal(t, user.Email, result.Email)
			assert.Equal(t, user.UUID.String(), result.UUID)
		})

		t.Run("GetUnknownUser", func(t *testing.T) {
			_, err := signupFlow.GetUser(ctx, 999999)
			require.Error(t, err)
			assert.True(t, businessflow.IsUserNotFound(err))
		})

		t.Run("GetInactiveUser", func(t *testing.T) {
			user, err := fixtures.CreateInactiveTestUser()
			require.NoError(t, err)

			_, err = signupFlow.GetUser(ctx, user.ID)
			require.Error(t, err)
			assert.True(t, businessflow.IsAccountInactive(err))
		})

		t.Run("UpdateName", func(t *testing.T) {
			user, err := fixtures.CreateTestUser()
			require.NoError(t, err)

			result, err := signupFlow.UpdateUser(ctx, user.ID, &dto.UpdateUserRequest{
				Name: utils.ToPtr("Renamed"),
			}, metadata)
			require.NoError(t, err)
			assert.Equal(t, "Renamed", result.Name)
		})

		t.Run("UpdatePassword", func(t *testing.T) {
			user, err := fixtures.CreateTestUser()
			require.NoError(t, err)

			_, err = signupFlow.UpdateUser(ctx, user.ID, &dto.UpdateUserRequest{
				Password: utils.ToPtr("BrandNewPass1!"),
			}, metadata)
			require.NoError(t, err)

			stored, err := userRepo.ByID(ctx, user.ID)
			require.NoError(t, err)
			assert.NoError(t, bcrypt.CompareHashAndPassword(
				[]byte(stored.PasswordHash), []byte("BrandNewPass1!")))
		})

		t.Run("FailedUpdateRollsBackNameChange", func(t *testing.T) {
			user, err := fixtures.CreateTestUser()
			require.NoError(t, err)
			originalName := user.Name

			// bcrypt refuses passwords longer than 72 bytes, which makes
			// the password branch fail after the name was already written
			// inside the same transaction.
			_, err = signupFlow.UpdateUser(ctx, user.ID, &dto.UpdateUserRequest{
				Name:     utils.ToPtr("Half Applied"),
				Password: utils.ToPtr(strings.Repeat("p", 80)),
			}, metadata)
			require.Error(t, err)

			stored, err := userRepo.ByID(ctx, user.ID)
			require.NoError(t, err)
			assert.Equal(t, originalName, stored.Name)
		})

		return nil
	})
	require.NoError(t, err)
}
