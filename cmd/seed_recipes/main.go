package main

import (
	"context"
	"errors"
	"flag"
	"log"

	"go.uber.org/zap"

	"github.com/pageza/recipekeeper/backend/config"
	"github.com/pageza/recipekeeper/backend/internal/database"
	"github.com/pageza/recipekeeper/backend/internal/logger"
	"github.com/pageza/recipekeeper/backend/internal/model"
	"github.com/pageza/recipekeeper/backend/internal/models"
	"github.com/pageza/recipekeeper/backend/internal/service"
	"github.com/pageza/recipekeeper/backend/internal/types"
)

type seedRecipe struct {
	URL    string
	Tags   []string
	Detail *types.RecipeUpdate
}

func intPtr(n int) *int { return &n }

var seedRecipes = []seedRecipe{
	{
		URL:  "https://www.seriouseats.com/the-best-slow-cooked-bolognese-sauce-recipe",
		Tags: []string{"italian", "pasta", "weekend"},
		Detail: &types.RecipeUpdate{
			Title:       types.Some("Slow-Cooked Bolognese Sauce"),
			Description: types.Some("A rich ragù simmered for hours."),
			RecipeType:  types.Some(model.RecipeTypeSauce),
			Cuisine:     types.Some("Italian"),
			PrepTime:    types.Some(30),
			CookTime:    types.Some(240),
			TotalTime:   types.Some(270),
			Servings:    types.Some(8),
			Difficulty:  types.Some(model.DifficultyMedium),
			Ingredients: types.Some(model.Ingredients{
				{Name: "ground beef", Quantity: "1", Unit: "lb"},
				{Name: "pancetta", Quantity: "4", Unit: "oz"},
				{Name: "whole milk", Quantity: "1", Unit: "cup"},
				{Name: "crushed tomatoes", Quantity: "28", Unit: "oz"},
			}),
			Instructions: types.Some(model.Instructions{
				{StepNumber: 1, Instruction: "Render the pancetta, then brown the beef."},
				{StepNumber: 2, Instruction: "Add milk and reduce until nearly dry."},
				{StepNumber: 3, Instruction: "Add tomatoes and simmer gently for four hours.", Time: intPtr(240)},
			}),
		},
	},
	{
		URL:  "https://www.youtube.com/watch?v=dQw4w9WgXcQ",
		Tags: []string{"video", "dessert"},
	},
	{
		URL:  "https://www.instagram.com/p/C0ffee/",
		Tags: []string{"snack"},
	},
	{
		URL: "https://cooking.nytimes.com/recipes/1017937-mississippi-roast",
	},
}

func main() {
	username := flag.String("username", "demo", "Username of the demo account")
	password := flag.String("password", "password123", "Password of the demo account")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	zl, err := logger.New(cfg.LogLevel, true)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer func() { _ = zl.Sync() }()

	ctx := context.Background()
	db, err := database.New(ctx, cfg, zl)
	if err != nil {
		zl.Fatal("failed to connect to database", zap.Error(err))
	}
	if err := database.Migrate(ctx, db, zl); err != nil {
		zl.Fatal("failed to migrate database", zap.Error(err))
	}

	auth := service.NewAuthService(db, cfg.JWTSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL, zl)
	recipes := service.NewRecipeService(db, nil, nil, nil, zl)

	user, err := demoUser(ctx, auth, *username, *password)
	if err != nil {
		zl.Fatal("failed to prepare demo user", zap.Error(err))
	}

	for _, seed := range seedRecipes {
		recipe, err := recipes.CreateRecipe(ctx, user.ID, &types.RecipeCreate{URL: seed.URL, Tags: seed.Tags})
		if err != nil {
			zl.Fatal("failed to create recipe", zap.String("url", seed.URL), zap.Error(err))
		}
		if seed.Detail != nil {
			if recipe, err = recipes.UpdateRecipe(ctx, user.ID, recipe.ID, seed.Detail); err != nil {
				zl.Fatal("failed to fill in recipe", zap.String("url", seed.URL), zap.Error(err))
			}
		}
		zl.Info("seeded recipe", zap.String("id", recipe.ID.String()), zap.String("title", recipe.Title))
	}
	zl.Info("seeding complete", zap.String("username", user.Username), zap.Int("recipes", len(seedRecipes)))
}

// demoUser registers the demo account, or logs in when it already exists.
func demoUser(ctx context.Context, auth *service.AuthService, username, password string) (*models.User, error) {
	user, err := auth.Register(ctx, &types.RegisterRequest{
		Email:    username + "@example.com",
		Username: username,
		Password: password,
	})
	if errors.Is(err, service.ErrUserExists) {
		user, _, err = auth.Login(ctx, &types.LoginRequest{Username: username, Password: password})
	}
	return user, err
}
