package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/pageza/recipekeeper/backend/internal/database"
	"github.com/pageza/recipekeeper/backend/internal/metrics"
	"github.com/pageza/recipekeeper/backend/internal/model"
	"github.com/pageza/recipekeeper/backend/internal/types"
)

// RecipeService handles recipe operations. Every operation is scoped to the
// owning user; recipes of other users behave as if they did not exist.
type RecipeService struct {
	db      *gorm.DB
	cache   *RecipeCache
	queue   *IngestQueue
	metrics *metrics.Metrics
	log     *zap.Logger
}

// NewRecipeService creates a new RecipeService instance. cache, queue and m
// may be nil.
func NewRecipeService(db *gorm.DB, cache *RecipeCache, queue *IngestQueue, m *metrics.Metrics, log *zap.Logger) *RecipeService {
	if log == nil {
		log = zap.NewNop()
	}
	return &RecipeService{
		db:      db,
		cache:   cache,
		queue:   queue,
		metrics: m,
		log:     log.With(zap.String("component", "recipes")),
	}
}

// CreateRecipe saves a recipe from a URL. The stored recipe starts with a
// placeholder title and empty content; the ingest job fills the rest in.
func (s *RecipeService) CreateRecipe(ctx context.Context, userID uuid.UUID, req *types.RecipeCreate) (*model.Recipe, error) {
	u, err := model.ParseSourceURL(req.URL)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC().Truncate(time.Microsecond)
	source := model.DetectSource(u)

	recipe := model.NewRecipe(userID, model.PlaceholderTitle(u))
	recipe.ID = uuid.New()
	recipe.Source = &source
	recipe.Tags = model.CleanList(req.Tags)
	if req.Notes != nil {
		notes := *req.Notes
		recipe.Notes = &notes
	}
	recipe.CreatedAt = now
	recipe.UpdatedAt = now

	if err := recipe.Validate(); err != nil {
		return nil, err
	}
	s.embed(recipe)

	if err := s.db.WithContext(ctx).Create(recipe).Error; err != nil {
		return nil, fmt.Errorf("failed to create recipe: %w", err)
	}
	s.metrics.RecipeCreated(source.Type)

	s.enqueue(ctx, recipe)
	return recipe, nil
}

func (s *RecipeService) enqueue(ctx context.Context, r *model.Recipe) {
	if s.queue == nil || r.Source == nil || r.Source.URL == nil {
		return
	}
	job := IngestJob{
		RecipeID:   r.ID,
		UserID:     r.UserID,
		URL:        *r.Source.URL,
		SourceType: r.Source.Type,
		EnqueuedAt: time.Now().UTC(),
	}
	if err := s.queue.Enqueue(ctx, job); err != nil {
		s.metrics.IngestFailed()
		s.log.Warn("could not queue recipe for ingest",
			zap.String("recipe_id", r.ID.String()), zap.Error(err))
		return
	}
	s.metrics.IngestQueued()
}

// GetRecipe returns one of the user's recipes, reading through the cache.
func (s *RecipeService) GetRecipe(ctx context.Context, userID, id uuid.UUID) (*model.Recipe, error) {
	cacheable := false
	var version int64
	if s.cache != nil {
		cached, err := s.cache.Get(ctx, userID, id)
		if err != nil {
			s.log.Warn("recipe cache read failed", zap.Error(err))
		} else if cached != nil {
			s.metrics.CacheHit()
			return cached, nil
		}
		s.metrics.CacheMiss()

		if version, err = s.cache.Version(ctx, userID, id); err != nil {
			s.log.Warn("recipe cache version read failed", zap.Error(err))
		} else {
			cacheable = true
		}
	}

	recipe, err := s.find(s.db.WithContext(ctx), userID, id)
	if err != nil {
		return nil, err
	}

	if cacheable {
		if err := s.cache.Set(ctx, recipe, version); err != nil {
			s.log.Warn("recipe cache write failed", zap.Error(err))
		}
	}
	return recipe, nil
}

func (s *RecipeService) find(db *gorm.DB, userID, id uuid.UUID) (*model.Recipe, error) {
	var recipe model.Recipe
	err := db.Where("id = ? AND user_id = ?", id, userID).First(&recipe).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrRecipeNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load recipe: %w", err)
	}
	recipe.Normalize()
	return &recipe, nil
}

// ListRecipes returns one page of the user's recipes, newest first. With a
// search term on PostgreSQL, matches are ordered by embedding distance.
func (s *RecipeService) ListRecipes(ctx context.Context, userID uuid.UUID, q *types.ListRecipesQuery) (*types.RecipeList, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	postgres := database.IsPostgres(s.db)
	query := s.db.WithContext(ctx).Model(&model.Recipe{}).Where("user_id = ?", userID)

	search := strings.ToLower(strings.TrimSpace(q.Search))
	if search != "" {
		like := "%" + escapeLike(search) + "%"
		tagLike := "%" + escapeLike(jsonText(search)) + "%"
		tags := "LOWER(tags)"
		if postgres {
			tags = "LOWER(tags::text)"
		}
		query = query.Where(
			"(LOWER(title) LIKE ? ESCAPE '\\' OR LOWER(COALESCE(description, '')) LIKE ? ESCAPE '\\' OR "+tags+" LIKE ? ESCAPE '\\')",
			like, like, tagLike)
	}
	if q.RecipeType != "" {
		query = query.Where("recipe_type = ?", q.RecipeType)
	}
	if cuisine := strings.TrimSpace(q.Cuisine); cuisine != "" {
		query = query.Where("LOWER(cuisine) = ?", strings.ToLower(cuisine))
	}
	if q.IsFavorite != nil {
		query = query.Where("is_favorite = ?", *q.IsFavorite)
	}
	if tags := model.CleanList(q.Tags); len(tags) > 0 {
		column := "tags"
		if postgres {
			column = "tags::text"
		}
		match := s.db.Where(column+" LIKE ? ESCAPE '\\'", tagPattern(tags[0]))
		for _, tag := range tags[1:] {
			match = match.Or(column+" LIKE ? ESCAPE '\\'", tagPattern(tag))
		}
		query = query.Where(match)
	}
	query = query.Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count recipes: %w", err)
	}

	page := query.Limit(q.PerPage).Offset(q.Offset())
	if search != "" && postgres {
		vec := GenerateEmbedding(search)
		page = page.Order(clause.OrderBy{Expression: clause.Expr{SQL: "embedding <-> ?", Vars: []interface{}{vec}}})
	}
	page = page.Order("created_at DESC").Order("id")

	var recipes []*model.Recipe
	if err := page.Find(&recipes).Error; err != nil {
		return nil, fmt.Errorf("failed to list recipes: %w", err)
	}
	for _, r := range recipes {
		r.Normalize()
	}
	return types.NewRecipeList(recipes, total, q.Page, q.PerPage), nil
}

// UpdateRecipe applies a partial update. _id, user_id and created_at never
// change; updated_at always moves forward.
func (s *RecipeService) UpdateRecipe(ctx context.Context, userID, id uuid.UUID, upd *types.RecipeUpdate) (*model.Recipe, error) {
	recipe, err := s.mutate(ctx, userID, id, func(r *model.Recipe) error {
		return upd.Apply(r, time.Now())
	})
	if err != nil {
		return nil, err
	}
	s.metrics.RecipeUpdated()
	return recipe, nil
}

// SetFavorite marks or unmarks a recipe as favorite.
func (s *RecipeService) SetFavorite(ctx context.Context, userID, id uuid.UUID, favorite bool) (*model.Recipe, error) {
	return s.UpdateRecipe(ctx, userID, id, &types.RecipeUpdate{IsFavorite: types.Some(favorite)})
}

// AddImage appends an image URL to the recipe.
func (s *RecipeService) AddImage(ctx context.Context, userID, id uuid.UUID, imageURL string) (*model.Recipe, error) {
	return s.mutate(ctx, userID, id, func(r *model.Recipe) error {
		images := append(append([]string{}, r.Images...), imageURL)
		upd := types.RecipeUpdate{Images: types.Some(images)}
		return upd.Apply(r, time.Now())
	})
}

// mutate loads the recipe inside a transaction, applies fn and writes every
// mutable column back.
func (s *RecipeService) mutate(ctx context.Context, userID, id uuid.UUID, fn func(*model.Recipe) error) (*model.Recipe, error) {
	var recipe *model.Recipe
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		load := tx
		if database.IsPostgres(tx) {
			load = tx.Clauses(clause.Locking{Strength: "UPDATE"})
		}
		r, err := s.find(load, userID, id)
		if err != nil {
			return err
		}
		if err := fn(r); err != nil {
			return err
		}
		s.embed(r)

		res := tx.Model(r).
			Where("user_id = ?", userID).
			Select("*").
			Omit("id", "user_id", "created_at").
			Updates(r)
		if res.Error != nil {
			return fmt.Errorf("failed to update recipe: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrRecipeNotFound
		}
		recipe = r
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, userID, id)
	return recipe, nil
}

// DeleteRecipe permanently removes a recipe.
func (s *RecipeService) DeleteRecipe(ctx context.Context, userID, id uuid.UUID) error {
	res := s.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).Delete(&model.Recipe{})
	if res.Error != nil {
		return fmt.Errorf("failed to delete recipe: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrRecipeNotFound
	}
	s.invalidate(ctx, userID, id)
	s.metrics.RecipeDeleted()
	return nil
}

func (s *RecipeService) invalidate(ctx context.Context, userID, id uuid.UUID) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, userID, id); err != nil {
		s.log.Warn("recipe cache invalidation failed",
			zap.String("recipe_id", id.String()), zap.Error(err))
	}
}

// embed refreshes the search embedding. Only PostgreSQL has a vector column
// worth filling.
func (s *RecipeService) embed(r *model.Recipe) {
	if !database.IsPostgres(s.db) {
		return
	}
	vec := GenerateEmbedding(r.SearchText())
	r.Embedding = &vec
}

// jsonText is s as it appears between the quotes of a stored JSON string.
func jsonText(s string) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(s)
	quoted := strings.TrimSuffix(buf.String(), "\n")
	return quoted[1 : len(quoted)-1]
}

// tagPattern matches one whole element of a stored tag array.
func tagPattern(tag string) string {
	return `%"` + escapeLike(jsonText(tag)) + `"%`
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
