package service

import (
	"context"
	"io"

	"github.com/google/uuid"

	"github.com/pageza/recipekeeper/backend/internal/model"
	"github.com/pageza/recipekeeper/backend/internal/models"
	"github.com/pageza/recipekeeper/backend/internal/types"
)

// IAuthService defines the interface for authentication operations
type IAuthService interface {
	Register(ctx context.Context, req *types.RegisterRequest) (*models.User, error)
	Login(ctx context.Context, req *types.LoginRequest) (*models.User, *types.TokenResponse, error)
	Refresh(ctx context.Context, refreshToken string) (*types.TokenResponse, error)
	ValidateToken(token string) (*types.TokenClaims, error)
	GenerateTokenPair(user *models.User) (*types.TokenResponse, error)
}

// IUserService defines the interface for account operations
type IUserService interface {
	GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	UpdateUser(ctx context.Context, id uuid.UUID, req *types.UserUpdate) (*models.User, error)
	DeleteUser(ctx context.Context, id uuid.UUID) error
}

// IRecipeService defines the interface for recipe operations
type IRecipeService interface {
	CreateRecipe(ctx context.Context, userID uuid.UUID, req *types.RecipeCreate) (*model.Recipe, error)
	GetRecipe(ctx context.Context, userID, id uuid.UUID) (*model.Recipe, error)
	ListRecipes(ctx context.Context, userID uuid.UUID, q *types.ListRecipesQuery) (*types.RecipeList, error)
	UpdateRecipe(ctx context.Context, userID, id uuid.UUID, upd *types.RecipeUpdate) (*model.Recipe, error)
	SetFavorite(ctx context.Context, userID, id uuid.UUID, favorite bool) (*model.Recipe, error)
	DeleteRecipe(ctx context.Context, userID, id uuid.UUID) error
}

// IImageService defines the interface for recipe image uploads
type IImageService interface {
	UploadRecipeImage(ctx context.Context, userID, recipeID uuid.UUID, r io.Reader) (*model.Recipe, error)
}

var (
	_ IAuthService   = (*AuthService)(nil)
	_ IUserService   = (*UserService)(nil)
	_ IRecipeService = (*RecipeService)(nil)
	_ IImageService  = (*ImageService)(nil)
)
