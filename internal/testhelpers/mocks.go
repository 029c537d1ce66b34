package testhelpers

import (
	"context"
	"io"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/pageza/recipekeeper/backend/internal/model"
	"github.com/pageza/recipekeeper/backend/internal/types"
)

// MockTokenValidator is a mock implementation of middleware.TokenValidator
type MockTokenValidator struct {
	mock.Mock
}

func (m *MockTokenValidator) ValidateToken(token string) (*types.TokenClaims, error) {
	args := m.Called(token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.TokenClaims), args.Error(1)
}

// MockRecipeService is a mock implementation of service.IRecipeService
type MockRecipeService struct {
	mock.Mock
}

func (m *MockRecipeService) CreateRecipe(ctx context.Context, userID uuid.UUID, req *types.RecipeCreate) (*model.Recipe, error) {
	args := m.Called(ctx, userID, req)
	return recipeResult(args)
}

func (m *MockRecipeService) GetRecipe(ctx context.Context, userID, id uuid.UUID) (*model.Recipe, error) {
	args := m.Called(ctx, userID, id)
	return recipeResult(args)
}

func (m *MockRecipeService) ListRecipes(ctx context.Context, userID uuid.UUID, q *types.ListRecipesQuery) (*types.RecipeList, error) {
	args := m.Called(ctx, userID, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.RecipeList), args.Error(1)
}

func (m *MockRecipeService) UpdateRecipe(ctx context.Context, userID, id uuid.UUID, upd *types.RecipeUpdate) (*model.Recipe, error) {
	args := m.Called(ctx, userID, id, upd)
	return recipeResult(args)
}

func (m *MockRecipeService) SetFavorite(ctx context.Context, userID, id uuid.UUID, favorite bool) (*model.Recipe, error) {
	args := m.Called(ctx, userID, id, favorite)
	return recipeResult(args)
}

func (m *MockRecipeService) DeleteRecipe(ctx context.Context, userID, id uuid.UUID) error {
	args := m.Called(ctx, userID, id)
	return args.Error(0)
}

// MockImageService is a mock implementation of service.IImageService
type MockImageService struct {
	mock.Mock
}

func (m *MockImageService) UploadRecipeImage(ctx context.Context, userID, recipeID uuid.UUID, r io.Reader) (*model.Recipe, error) {
	args := m.Called(ctx, userID, recipeID, r)
	return recipeResult(args)
}

// MockObjectStore is a mock implementation of service.ObjectStore
type MockObjectStore struct {
	mock.Mock
}

func (m *MockObjectStore) PutObject(ctx context.Context, key, contentType string, body []byte) (string, error) {
	args := m.Called(ctx, key, contentType, body)
	return args.String(0), args.Error(1)
}

func recipeResult(args mock.Arguments) (*model.Recipe, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Recipe), args.Error(1)
}
