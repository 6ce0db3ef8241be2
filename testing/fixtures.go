// Package testing provides test utilities and database setup for the catalog test suite
package testing

import (
	"fmt"
	"math/rand"

	"github.com/kubousky/dotmap/models"
	"github.com/kubousky/dotmap/utils"
	"golang.org/x/crypto/bcrypt"
)

// DefaultTestPassword is the plaintext behind every fixture user's hash
const DefaultTestPassword = "TestPass123!"

// TestFixtures provides helper methods for creating test data
type TestFixtures struct {
	DB *TestDB
}

// NewTestFixtures creates a new test fixtures instance
func NewTestFixtures(db *TestDB) *TestFixtures {
	return &TestFixtures{DB: db}
}

// CreateTestUser creates an active user with a unique email
func (tf *TestFixtures) CreateTestUser() (*models.User, error) {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(DefaultTestPassword), bcrypt.MinCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Email:        fmt.Sprintf("user.%d@example.com", rand.Intn(100000000)),
		Name:         "Test User",
		PasswordHash: string(hashedPassword),
		IsActive:     utils.ToPtr(true),
		IsStaff:      utils.ToPtr(false),
		IsSuperuser:  utils.ToPtr(false),
	}

	if err := tf.DB.DB.Create(user).Error; err != nil {
		return nil, fmt.Errorf("failed to create test user: %w", err)
	}

	return user, nil
}

// CreateInactiveTestUser creates a user whose account is disabled
func (tf *TestFixtures) CreateInactiveTestUser() (*models.User, error) {
	user, err := tf.CreateTestUser()
	if err != nil {
		return nil, err
	}

	if err := tf.DB.DB.Model(user).Update("is_active", false).Error; err != nil {
		return nil, fmt.Errorf("failed to deactivate test user: %w", err)
	}
	user.IsActive = utils.ToPtr(false)

	return user, nil
}

// CreateTestTag creates a tag owned by the given user
func (tf *TestFixtures) CreateTestTag(userID uint, name string) (*models.Tag, error) {
	if name == "" {
		name = fmt.Sprintf("tag-%d", rand.Intn(100000))
	}

	tag := &models.Tag{
		UserID: userID,
		Name:   name,
	}

	if err := tf.DB.DB.Create(tag).Error; err != nil {
		return nil, fmt.Errorf("failed to create test tag: %w", err)
	}

	return tag, nil
}

// CreateTestDot creates a dot owned by the given user, optionally attached
// to the given tags
func (tf *TestFixtures) CreateTestDot(userID uint, name string, tags ...models.Tag) (*models.Dot, error) {
	if name == "" {
		name = fmt.Sprintf("dot-%d", rand.Intn(100000))
	}

	dot := &models.Dot{
		UserID:      userID,
		Name:        name,
		Description: "A place worth remembering",
		Lon:         "30.3158",
		Lat:         "59.9343",
		Rating:      4.0,
		Link:        "https://example.com/place",
		Tags:        tags,
	}

	if err := tf.DB.DB.Create(dot).Error; err != nil {
		return nil, fmt.Errorf("failed to create test dot: %w", err)
	}

	return dot, nil
}
