package service_test

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/recipekeeper/backend/internal/metrics"
	"github.com/pageza/recipekeeper/backend/internal/model"
	"github.com/pageza/recipekeeper/backend/internal/models"
	"github.com/pageza/recipekeeper/backend/internal/service"
	"github.com/pageza/recipekeeper/backend/internal/testhelpers"
	"github.com/pageza/recipekeeper/backend/internal/types"
	"gorm.io/gorm"
)

const ingestKey = "recipes:ingest"

type recipeFixture struct {
	db      *gorm.DB
	redis   *miniredis.Miniredis
	metrics *metrics.Metrics
	svc     *service.RecipeService
	user    *models.User
}

func setupRecipes(t *testing.T) *recipeFixture {
	t.Helper()
	db := testhelpers.SetupSQLite(t)
	mr, rdb := testhelpers.SetupRedis(t)
	m := metrics.New()
	svc := service.NewRecipeService(db,
		service.NewRecipeCache(rdb, time.Minute),
		service.NewIngestQueue(rdb, ingestKey),
		m, nil)
	return &recipeFixture{db: db, redis: mr, metrics: m, svc: svc, user: testhelpers.CreateTestUser(t, db)}
}

func decodeUpdate(t *testing.T, body string) *types.RecipeUpdate {
	t.Helper()
	upd, err := types.DecodeRecipeUpdate(strings.NewReader(body))
	require.NoError(t, err)
	return upd
}

func TestCreateRecipe(t *testing.T) {
	f := setupRecipes(t)
	ctx := context.Background()

	recipe, err := f.svc.CreateRecipe(ctx, f.user.ID, &types.RecipeCreate{URL: "https://example.com/recipe/123"})
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, recipe.ID)
	assert.Equal(t, f.user.ID, recipe.UserID)
	assert.Equal(t, "example.com/recipe/123", recipe.Title)
	assert.Empty(t, recipe.Ingredients)
	assert.Empty(t, recipe.Instructions)
	assert.Empty(t, recipe.Tags)
	assert.Empty(t, recipe.Images)
	assert.False(t, recipe.IsFavorite)
	assert.False(t, recipe.CreatedAt.IsZero())
	assert.True(t, recipe.CreatedAt.Equal(recipe.UpdatedAt))
	require.NotNil(t, recipe.Source)
	assert.Equal(t, model.SourceWebsite, recipe.Source.Type)

	data, err := json.Marshal(recipe)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"ingredients":[]`)
	assert.Contains(t, string(data), `"is_favorite":false`)

	stored, err := f.svc.GetRecipe(ctx, f.user.ID, recipe.ID)
	require.NoError(t, err)
	assert.Equal(t, recipe.Title, stored.Title)
	assert.True(t, recipe.CreatedAt.Equal(stored.CreatedAt))

	jobs, err := f.redis.List(ingestKey)
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	var job service.IngestJob
	require.NoError(t, json.Unmarshal([]byte(jobs[0]), &job))
	assert.Equal(t, recipe.ID, job.RecipeID)
	assert.Equal(t, "https://example.com/recipe/123", job.URL)
	assert.Equal(t, model.SourceWebsite, job.SourceType)

	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.RecipesCreated.WithLabelValues(model.SourceWebsite)))
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.IngestEnqueued))
}

func TestCreateRecipeWithNotesAndTags(t *testing.T) {
	f := setupRecipes(t)
	notes := "try with less sugar"

	recipe, err := f.svc.CreateRecipe(context.Background(), f.user.ID, &types.RecipeCreate{
		URL:   "https://www.youtube.com/watch?v=abc123",
		Notes: &notes,
		Tags:  []string{" quick ", "dessert", "quick", ""},
	})
	require.NoError(t, err)
	assert.Equal(t, model.StringList{"quick", "dessert"}, recipe.Tags)
	require.NotNil(t, recipe.Notes)
	assert.Equal(t, notes, *recipe.Notes)
	assert.Equal(t, model.SourceYouTube, recipe.Source.Type)
}

func TestCreateRecipeRejectsBadURL(t *testing.T) {
	f := setupRecipes(t)

	for _, raw := range []string{"", "not a url", "ftp://example.com/x"} {
		_, err := f.svc.CreateRecipe(context.Background(), f.user.ID, &types.RecipeCreate{URL: raw})
		assert.True(t, errors.Is(err, model.ErrInvalidInput), raw)
	}

	var count int64
	require.NoError(t, f.db.Model(&model.Recipe{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestCreateRecipeSurvivesQueueOutage(t *testing.T) {
	db := testhelpers.SetupSQLite(t)
	user := testhelpers.CreateTestUser(t, db)
	m := metrics.New()
	down := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", MaxRetries: -1, DialTimeout: 100 * time.Millisecond})
	t.Cleanup(func() { _ = down.Close() })

	svc := service.NewRecipeService(db, nil, service.NewIngestQueue(down, ingestKey), m, nil)
	recipe, err := svc.CreateRecipe(context.Background(), user.ID, &types.RecipeCreate{URL: "https://example.com/a"})
	require.NoError(t, err)
	assert.NotNil(t, recipe)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.IngestFailures))
}

func TestGetRecipeReadsThroughCache(t *testing.T) {
	f := setupRecipes(t)
	ctx := context.Background()
	recipe := testhelpers.CreateTestRecipe(t, f.svc, f.user.ID, "https://example.com/soup")
	key := "recipe:" + f.user.ID.String() + ":" + recipe.ID.String()

	_, err := f.svc.GetRecipe(ctx, f.user.ID, recipe.ID)
	require.NoError(t, err)
	assert.True(t, f.redis.Exists(key))

	got, err := f.svc.GetRecipe(ctx, f.user.ID, recipe.ID)
	require.NoError(t, err)
	assert.Equal(t, recipe.ID, got.ID)

	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.CacheMisses))
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.CacheHits))

	// Changes drop the cached copy.
	_, err = f.svc.SetFavorite(ctx, f.user.ID, recipe.ID, true)
	require.NoError(t, err)
	assert.False(t, f.redis.Exists(key))
}

func TestRecipeCacheIgnoresWritesFromBeforeInvalidation(t *testing.T) {
	f := setupRecipes(t)
	ctx := context.Background()
	recipe := testhelpers.CreateTestRecipe(t, f.svc, f.user.ID, "https://example.com/soup")
	key := "recipe:" + f.user.ID.String() + ":" + recipe.ID.String()
	cache := service.NewRecipeCache(redis.NewClient(&redis.Options{Addr: f.redis.Addr()}), time.Minute)

	// A reader loads the row, then a writer commits and invalidates before
	// the reader stores what it loaded.
	version, err := cache.Version(ctx, f.user.ID, recipe.ID)
	require.NoError(t, err)
	stale := *recipe
	_, err = f.svc.UpdateRecipe(ctx, f.user.ID, recipe.ID, decodeUpdate(t, `{"title":"Fresh"}`))
	require.NoError(t, err)

	require.NoError(t, cache.Set(ctx, &stale, version))
	assert.False(t, f.redis.Exists(key))

	got, err := f.svc.GetRecipe(ctx, f.user.ID, recipe.ID)
	require.NoError(t, err)
	assert.Equal(t, "Fresh", got.Title)
	assert.True(t, f.redis.Exists(key))

	cached, err := cache.Get(ctx, f.user.ID, recipe.ID)
	require.NoError(t, err)
	require.NotNil(t, cached)
	assert.Equal(t, "Fresh", cached.Title)
}

func TestRecipesAreScopedToOwner(t *testing.T) {
	f := setupRecipes(t)
	ctx := context.Background()
	recipe := testhelpers.CreateTestRecipe(t, f.svc, f.user.ID, "https://example.com/private")
	other := testhelpers.CreateTestUser(t, f.db)

	_, err := f.svc.GetRecipe(ctx, other.ID, recipe.ID)
	assert.True(t, errors.Is(err, service.ErrRecipeNotFound))

	_, err = f.svc.UpdateRecipe(ctx, other.ID, recipe.ID, decodeUpdate(t, `{"title":"Mine now"}`))
	assert.True(t, errors.Is(err, service.ErrRecipeNotFound))

	assert.True(t, errors.Is(f.svc.DeleteRecipe(ctx, other.ID, recipe.ID), service.ErrRecipeNotFound))

	list, err := f.svc.ListRecipes(ctx, other.ID, &types.ListRecipesQuery{Page: 1, PerPage: 20})
	require.NoError(t, err)
	assert.Zero(t, list.Total)
}

func TestUpdateRecipeTitleOnly(t *testing.T) {
	f := setupRecipes(t)
	ctx := context.Background()
	notes := "keep me"
	created, err := f.svc.CreateRecipe(ctx, f.user.ID, &types.RecipeCreate{
		URL: "https://example.com/stew", Notes: &notes, Tags: []string{"stew"},
	})
	require.NoError(t, err)

	updated, err := f.svc.UpdateRecipe(ctx, f.user.ID, created.ID, decodeUpdate(t, `{"title":"New Title"}`))
	require.NoError(t, err)
	assert.Equal(t, "New Title", updated.Title)
	assert.True(t, updated.UpdatedAt.After(created.UpdatedAt))

	stored, err := f.svc.GetRecipe(ctx, f.user.ID, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "New Title", stored.Title)
	assert.Equal(t, created.ID, stored.ID)
	assert.Equal(t, created.UserID, stored.UserID)
	assert.True(t, created.CreatedAt.Equal(stored.CreatedAt))
	assert.True(t, stored.UpdatedAt.After(created.UpdatedAt))
	assert.Equal(t, created.Tags, stored.Tags)
	assert.Equal(t, created.Notes, stored.Notes)
	assert.Equal(t, created.Source, stored.Source)
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.RecipesUpdated))
}

func TestUpdateRecipeFillsAndClearsFields(t *testing.T) {
	f := setupRecipes(t)
	ctx := context.Background()
	recipe := testhelpers.CreateTestRecipe(t, f.svc, f.user.ID, "https://example.com/curry")

	_, err := f.svc.UpdateRecipe(ctx, f.user.ID, recipe.ID, decodeUpdate(t, `{
		"description": "Weeknight curry",
		"recipe_type": "main_course",
		"cuisine": "Thai",
		"difficulty": "medium",
		"servings": 4,
		"ingredients": [{"name": "Coconut milk", "quantity": "400", "unit": "ml"}],
		"instructions": [{"step_number": 1, "instruction": "Simmer everything"}],
		"nutrition": {"calories": 550}
	}`))
	require.NoError(t, err)

	stored, err := f.svc.GetRecipe(ctx, f.user.ID, recipe.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.RecipeType)
	assert.Equal(t, model.RecipeTypeMainCourse, *stored.RecipeType)
	assert.Equal(t, "Coconut milk", stored.Ingredients[0].Name)
	assert.Equal(t, 550, *stored.Nutrition.Calories)

	_, err = f.svc.UpdateRecipe(ctx, f.user.ID, recipe.ID, decodeUpdate(t, `{"description": null, "ingredients": null}`))
	require.NoError(t, err)

	stored, err = f.svc.GetRecipe(ctx, f.user.ID, recipe.ID)
	require.NoError(t, err)
	assert.Nil(t, stored.Description)
	assert.Equal(t, model.Ingredients{}, stored.Ingredients)
	assert.Equal(t, "Thai", *stored.Cuisine)
}

func TestUpdateRecipeRejectsInvalidPatch(t *testing.T) {
	f := setupRecipes(t)
	ctx := context.Background()
	recipe := testhelpers.CreateTestRecipe(t, f.svc, f.user.ID, "https://example.com/pie")

	_, err := f.svc.UpdateRecipe(ctx, f.user.ID, recipe.ID, &types.RecipeUpdate{
		Difficulty: types.Some(model.Difficulty("impossible")),
	})
	assert.True(t, errors.Is(err, model.ErrInvalidEnum))

	_, err = f.svc.UpdateRecipe(ctx, f.user.ID, recipe.ID, &types.RecipeUpdate{Title: types.Some("")})
	assert.True(t, errors.Is(err, model.ErrInvalidInput))

	stored, err := f.svc.GetRecipe(ctx, f.user.ID, recipe.ID)
	require.NoError(t, err)
	assert.Nil(t, stored.Difficulty)
	assert.Equal(t, recipe.Title, stored.Title)
	assert.True(t, stored.UpdatedAt.Equal(recipe.UpdatedAt))
}

func TestListRecipes(t *testing.T) {
	f := setupRecipes(t)
	ctx := context.Background()

	soup := testhelpers.CreateTestRecipe(t, f.svc, f.user.ID, "https://example.com/tomato-soup", "vegan", "winter")
	cake := testhelpers.CreateTestRecipe(t, f.svc, f.user.ID, "https://example.com/chocolate-cake", "sweet")
	salad := testhelpers.CreateTestRecipe(t, f.svc, f.user.ID, "https://example.com/greek-salad", "vegan", "summer")

	_, err := f.svc.UpdateRecipe(ctx, f.user.ID, cake.ID, decodeUpdate(t, `{"recipe_type":"dessert","cuisine":"French"}`))
	require.NoError(t, err)
	_, err = f.svc.SetFavorite(ctx, f.user.ID, salad.ID, true)
	require.NoError(t, err)

	ids := func(list *types.RecipeList) []uuid.UUID {
		out := make([]uuid.UUID, len(list.Recipes))
		for i, r := range list.Recipes {
			out[i] = r.ID
		}
		return out
	}
	list := func(q types.ListRecipesQuery) *types.RecipeList {
		t.Helper()
		if q.Page == 0 {
			q.Page = 1
		}
		if q.PerPage == 0 {
			q.PerPage = 20
		}
		res, err := f.svc.ListRecipes(ctx, f.user.ID, &q)
		require.NoError(t, err)
		return res
	}

	all := list(types.ListRecipesQuery{})
	assert.Equal(t, int64(3), all.Total)
	assert.Equal(t, []uuid.UUID{salad.ID, cake.ID, soup.ID}, ids(all))

	page := list(types.ListRecipesQuery{Page: 2, PerPage: 2})
	assert.Equal(t, int64(3), page.Total)
	assert.Equal(t, 2, page.Pages)
	assert.Equal(t, []uuid.UUID{soup.ID}, ids(page))

	assert.Equal(t, []uuid.UUID{cake.ID}, ids(list(types.ListRecipesQuery{Search: "CHOCOLATE"})))
	assert.Equal(t, []uuid.UUID{salad.ID}, ids(list(types.ListRecipesQuery{Search: "summer"})))
	assert.Equal(t, []uuid.UUID{cake.ID}, ids(list(types.ListRecipesQuery{RecipeType: "dessert"})))
	assert.Equal(t, []uuid.UUID{cake.ID}, ids(list(types.ListRecipesQuery{Cuisine: "french"})))

	fav := true
	assert.Equal(t, []uuid.UUID{salad.ID}, ids(list(types.ListRecipesQuery{IsFavorite: &fav})))
	assert.Equal(t, []uuid.UUID{salad.ID, soup.ID}, ids(list(types.ListRecipesQuery{Tags: []string{"vegan"}})))
	assert.Equal(t, []uuid.UUID{salad.ID, cake.ID}, ids(list(types.ListRecipesQuery{Tags: []string{"sweet", "summer"}})))

	empty := list(types.ListRecipesQuery{Search: "100%"})
	assert.Zero(t, empty.Total)
	assert.NotNil(t, empty.Recipes)

	_, err = f.svc.ListRecipes(ctx, f.user.ID, &types.ListRecipesQuery{Page: 1, PerPage: 20, RecipeType: "brunch"})
	assert.True(t, errors.Is(err, model.ErrInvalidEnum))
}

func TestListRecipesMatchesTagsWithSpecialCharacters(t *testing.T) {
	f := setupRecipes(t)
	ctx := context.Background()

	mac := testhelpers.CreateTestRecipe(t, f.svc, f.user.ID, "https://example.com/r/1", "mac&cheese", "<3")
	quoted := testhelpers.CreateTestRecipe(t, f.svc, f.user.ID, "https://example.com/r/2", `say "cheese"`)
	slashed := testhelpers.CreateTestRecipe(t, f.svc, f.user.ID, "https://example.com/r/3", `back\slash`)

	find := func(q types.ListRecipesQuery) []uuid.UUID {
		t.Helper()
		q.Page, q.PerPage = 1, 20
		res, err := f.svc.ListRecipes(ctx, f.user.ID, &q)
		require.NoError(t, err)
		out := make([]uuid.UUID, len(res.Recipes))
		for i, r := range res.Recipes {
			out[i] = r.ID
		}
		return out
	}

	assert.Equal(t, []uuid.UUID{mac.ID}, find(types.ListRecipesQuery{Tags: []string{"mac&cheese"}}))
	assert.Equal(t, []uuid.UUID{mac.ID}, find(types.ListRecipesQuery{Tags: []string{"<3"}}))
	assert.Equal(t, []uuid.UUID{mac.ID}, find(types.ListRecipesQuery{Search: "Mac&Cheese"}))
	assert.Equal(t, []uuid.UUID{quoted.ID}, find(types.ListRecipesQuery{Tags: []string{`say "cheese"`}}))
	assert.Equal(t, []uuid.UUID{quoted.ID}, find(types.ListRecipesQuery{Search: `"cheese"`}))
	assert.Equal(t, []uuid.UUID{slashed.ID}, find(types.ListRecipesQuery{Tags: []string{`back\slash`}}))
	assert.Equal(t, []uuid.UUID{slashed.ID}, find(types.ListRecipesQuery{Search: `k\s`}))
}

func TestUpdateRecipeCleansTags(t *testing.T) {
	f := setupRecipes(t)
	recipe := testhelpers.CreateTestRecipe(t, f.svc, f.user.ID, "https://example.com/stew")

	updated, err := f.svc.UpdateRecipe(context.Background(), f.user.ID, recipe.ID,
		decodeUpdate(t, `{"tags":[" hearty ","winter","hearty",""]}`))
	require.NoError(t, err)
	assert.Equal(t, model.StringList{"hearty", "winter"}, updated.Tags)
}

func TestDeleteRecipe(t *testing.T) {
	f := setupRecipes(t)
	ctx := context.Background()
	recipe := testhelpers.CreateTestRecipe(t, f.svc, f.user.ID, "https://example.com/bread")

	_, err := f.svc.GetRecipe(ctx, f.user.ID, recipe.ID)
	require.NoError(t, err)

	require.NoError(t, f.svc.DeleteRecipe(ctx, f.user.ID, recipe.ID))

	_, err = f.svc.GetRecipe(ctx, f.user.ID, recipe.ID)
	assert.True(t, errors.Is(err, service.ErrRecipeNotFound))
	assert.True(t, errors.Is(f.svc.DeleteRecipe(ctx, f.user.ID, recipe.ID), service.ErrRecipeNotFound))
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.RecipesDeleted))
}
