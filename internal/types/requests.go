package types

import "github.com/pageza/recipekeeper/backend/internal/models"

// RegisterRequest represents the request body for creating an account
type RegisterRequest struct {
	Email    string  `json:"email" binding:"required,email"`
	Username string  `json:"username" binding:"required,min=3,max=50"`
	Password string  `json:"password" binding:"required,min=8,max=72"`
	FullName *string `json:"full_name,omitempty"`
}

// LoginRequest accepts either the username or the email in Username.
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// RefreshRequest exchanges a refresh token for a new token pair
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// TokenResponse is returned by login and refresh
type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
}

// AuthResponse is returned by register and login.
type AuthResponse struct {
	User *models.User `json:"user"`
	*TokenResponse
}

// UserUpdate patches the caller's profile. Nil fields are left unchanged.
type UserUpdate struct {
	FullName            *string   `json:"full_name,omitempty"`
	AvatarURL           *string   `json:"avatar_url,omitempty" binding:"omitempty,url"`
	PreferredCuisines   *[]string `json:"preferred_cuisines,omitempty"`
	DietaryRestrictions *[]string `json:"dietary_restrictions,omitempty"`
}

// RecipeTypeInfo describes one recipe type for display
type RecipeTypeInfo struct {
	Value       string `json:"value"`
	Label       string `json:"label"`
	Description string `json:"description"`
}
