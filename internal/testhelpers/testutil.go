package testhelpers

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/pageza/recipekeeper/backend/internal/model"
	"github.com/pageza/recipekeeper/backend/internal/models"
	"github.com/pageza/recipekeeper/backend/internal/service"
	"github.com/pageza/recipekeeper/backend/internal/types"
)

const (
	TestJWTSecret = "test-jwt-secret"
	TestPassword  = "password123"
)

// NewAuthService returns an AuthService with test settings.
func NewAuthService(db *gorm.DB) *service.AuthService {
	return service.NewAuthService(db, TestJWTSecret, 30*time.Minute, 24*time.Hour, nil)
}

// CreateTestUser inserts an active user whose password is TestPassword.
func CreateTestUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(TestPassword), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}
	id := uuid.New()
	now := time.Now().UTC()
	user := &models.User{
		ID:                  id,
		Email:               fmt.Sprintf("user-%s@example.com", id.String()[:8]),
		Username:            "user-" + id.String()[:8],
		PasswordHash:        string(hash),
		IsActive:            true,
		PreferredCuisines:   model.StringList{},
		DietaryRestrictions: model.StringList{},
		CreatedAt:           now,
		UpdatedAt:           now,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// CreateTestUserAndToken creates a user and signs an access token for it.
func CreateTestUserAndToken(t *testing.T, db *gorm.DB) (*models.User, string) {
	t.Helper()

	user := CreateTestUser(t, db)
	tokens, err := NewAuthService(db).GenerateTokenPair(user)
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}
	return user, tokens.AccessToken
}

// CreateTestRecipe saves a recipe for user through the service.
func CreateTestRecipe(t *testing.T, svc *service.RecipeService, userID uuid.UUID, url string, tags ...string) *model.Recipe {
	t.Helper()

	recipe, err := svc.CreateRecipe(context.Background(), userID, &types.RecipeCreate{URL: url, Tags: tags})
	if err != nil {
		t.Fatalf("failed to create test recipe: %v", err)
	}
	return recipe
}
