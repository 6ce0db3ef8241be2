package tests

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/kubousky/dotmap/models"
	testingutil "github.com/kubousky/dotmap/testing"
	"github.com/kubousky/dotmap/utils"
)

func TestUserModel(t *testing.T) {
	requirePostgres(t)

	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		fixtures := testingutil.NewTestFixtures(testDB)

		t.Run("TableName", func(t *testing.T) {
			assert.Equal(t, "users", models.User{}.TableName())
		})

		t.Run("CreateUser", func(t *testing.T) {
			user, err := fixtures.CreateTestUser()
			require.NoError(t, err)
			assert.NotZero(t, user.ID)
			assert.NotEqual(t, uuid.Nil, user.UUID)
			assert.True(t, utils.IsTrue(user.IsActive))
			assert.False(t, utils.IsTrue(user.IsStaff))
			assert.False(t, utils.IsTrue(user.IsSuperuser))
			assert.NotZero(t, user.CreatedAt)
			assert.Nil(t, user.LastLoginAt)

			err = bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(testingutil.DefaultTestPassword))
			assert.NoError(t, err)
		})

		t.Run("UUIDAssignedOnCreate", func(t *testing.T) {
			user := &models.User{
				Email:        "uuid.check@example.com",
				PasswordHash: "x",
				IsActive:     utils.ToPtr(true),
			}
			require.NoError(t, testDB.DB.Create(user).Error)
			assert.NotEqual(t, uuid.Nil, user.UUID)
		})

		t.Run("DuplicateEmailRejected", func(t *testing.T) {
			user, err := fixtures.CreateTestUser()
			require.NoError(t, err)

			dup := &models.User{
				Email:        user.Email,
				PasswordHash: "x",
			}
			assert.Error(t, testDB.DB.Create(dup).Error)
		})

		return nil
	})
	require.NoError(t, err)
}

func TestTagModel(t *testing.T) {
	requirePostgres(t)

	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		fixtures := testingutil.NewTestFixtures(testDB)

		t.Run("TableName", func(t *testing.T) {
			assert.Equal(t, "tags", models.Tag{}.TableName())
		})

		t.Run("CreateTag", func(t *testing.T) {
			user, err := fixtures.CreateTestUser()
			require.NoError(t, err)

			tag, err := fixtures.CreateTestTag(user.ID, "coffee")
			require.NoError(t, err)
			assert.NotZero(t, tag.ID)
			assert.Equal(t, user.ID, tag.UserID)
			assert.Equal(t, "coffee", tag.Name)
		})

		t.Run("DuplicateNamesAllowedPerOwner", func(t *testing.T) {
			user, err := fixtures.CreateTestUser()
			require.NoError(t, err)

			_, err = fixtures.CreateTestTag(user.ID, "park")
			require.NoError(t, err)
			_, err = fixtures.CreateTestTag(user.ID, "park")
			assert.NoError(t, err)
		})

		return nil
	})
	require.NoError(t, err)
}

func TestDotModel(t *testing.T) {
	requirePostgres(t)

	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		fixtures := testingutil.NewTestFixtures(testDB)

		t.Run("FieldLimits", func(t *testing.T) {
			assert.Equal(t, 350, models.MaxDotDescriptionLen)
			assert.Equal(t, 20, models.MaxDotCoordinateLen)
			assert.Equal(t, 0.0, models.MinDotRating)
			assert.Equal(t, 5.0, models.MaxDotRating)
		})

		t.Run("TableName", func(t *testing.T) {
			assert.Equal(t, "dots", models.Dot{}.TableName())
		})

		t.Run("CreateDotWithTags", func(t *testing.T) {
			user, err := fixtures.CreateTestUser()
			require.NoError(t, err)

			tag1, err := fixtures.CreateTestTag(user.ID, "cafe")
			require.NoError(t, err)
			tag2, err := fixtures.CreateTestTag(user.ID, "wifi")
			require.NoError(t, err)

			dot, err := fixtures.CreateTestDot(user.ID, "Corner Cafe", *tag1, *tag2)
			require.NoError(t, err)
			assert.NotZero(t, dot.ID)

			var loaded models.Dot
			require.NoError(t, testDB.DB.Preload("Tags").First(&loaded, dot.ID).Error)
			assert.Len(t, loaded.Tags, 2)
			assert.ElementsMatch(t, []uint{tag1.ID, tag2.ID}, loaded.TagIDs())
		})

		t.Run("CoordinatesKeepExactText", func(t *testing.T) {
			user, err := fixtures.CreateTestUser()
			require.NoError(t, err)

			dot := &models.Dot{
				UserID: user.ID,
				Name:   "Precise",
				Lon:    "30.00000000000100",
				Lat:    "-0.5000",
			}
			require.NoError(t, testDB.DB.Create(dot).Error)

			var loaded models.Dot
			require.NoError(t, testDB.DB.First(&loaded, dot.ID).Error)
			assert.Equal(t, "30.00000000000100", loaded.Lon)
			assert.Equal(t, "-0.5000", loaded.Lat)
		})

		return nil
	})
	require.NoError(t, err)
}
