package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gorm.io/gorm"

	"github.com/pageza/recipekeeper/backend/internal/model"
	"github.com/pageza/recipekeeper/backend/internal/models"
	"github.com/pageza/recipekeeper/backend/internal/types"
)

// UserService manages the caller's own account.
type UserService struct {
	db    *gorm.DB
	cache *RecipeCache
	log   *zap.Logger
}

func NewUserService(db *gorm.DB, cache *RecipeCache, log *zap.Logger) *UserService {
	if log == nil {
		log = zap.NewNop()
	}
	return &UserService{db: db, cache: cache, log: log.With(zap.String("component", "users"))}
}

// GetUserByID loads an account.
func (s *UserService) GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return findUser(s.db.WithContext(ctx), "id = ?", id)
}

// UpdateUser patches profile fields. Nil fields are left as they are.
func (s *UserService) UpdateUser(ctx context.Context, id uuid.UUID, req *types.UserUpdate) (*models.User, error) {
	var user *models.User
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		u, err := findUser(tx, "id = ?", id)
		if err != nil {
			return err
		}
		if req.FullName != nil {
			u.FullName = optionalString(*req.FullName)
		}
		if req.AvatarURL != nil {
			u.AvatarURL = optionalString(*req.AvatarURL)
		}
		if req.PreferredCuisines != nil {
			u.PreferredCuisines = cuisineNames(*req.PreferredCuisines)
		}
		if req.DietaryRestrictions != nil {
			u.DietaryRestrictions = model.CleanList(*req.DietaryRestrictions)
		}
		u.UpdatedAt = time.Now().UTC()

		if err := tx.Model(u).Select("full_name", "avatar_url", "preferred_cuisines", "dietary_restrictions", "updated_at").
			Updates(u).Error; err != nil {
			return fmt.Errorf("failed to update user: %w", err)
		}
		user = u
		return nil
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

// DeleteUser removes the account and every recipe it owns.
func (s *UserService) DeleteUser(ctx context.Context, id uuid.UUID) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", id).Delete(&model.Recipe{}).Error; err != nil {
			return fmt.Errorf("failed to delete recipes: %w", err)
		}
		res := tx.Where("id = ?", id).Delete(&models.User{})
		if res.Error != nil {
			return fmt.Errorf("failed to delete user: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrUserNotFound
		}
		return nil
	})
	if err != nil {
		return err
	}

	if s.cache != nil {
		if err := s.cache.InvalidateUser(ctx, id); err != nil {
			s.log.Warn("failed to drop cached recipes", zap.String("user_id", id.String()), zap.Error(err))
		}
	}
	s.log.Info("user deleted", zap.String("user_id", id.String()))
	return nil
}

func findUser(db *gorm.DB, query string, args ...interface{}) (*models.User, error) {
	var user models.User
	err := db.Where(query, args...).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	if user.PreferredCuisines == nil {
		user.PreferredCuisines = model.StringList{}
	}
	if user.DietaryRestrictions == nil {
		user.DietaryRestrictions = model.StringList{}
	}
	return &user, nil
}

// cuisineNames title-cases cuisines so "thai" and "Thai" collapse into one
// entry.
func cuisineNames(names []string) model.StringList {
	caser := cases.Title(language.English)
	titled := make([]string, len(names))
	for i, n := range names {
		titled[i] = caser.String(strings.TrimSpace(n))
	}
	return model.CleanList(titled)
}

// optionalString maps a blank string to nil.
func optionalString(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
