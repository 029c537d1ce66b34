package service_test

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/pageza/recipekeeper/backend/internal/model"
	"github.com/pageza/recipekeeper/backend/internal/service"
	"github.com/pageza/recipekeeper/backend/internal/testhelpers"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00")

func TestUploadRecipeImage(t *testing.T) {
	db := testhelpers.SetupSQLite(t)
	recipes := service.NewRecipeService(db, nil, nil, nil, nil)
	user := testhelpers.CreateTestUser(t, db)
	recipe := testhelpers.CreateTestRecipe(t, recipes, user.ID, "https://example.com/tart")

	store := new(testhelpers.MockObjectStore)
	prefix := "recipes/" + user.ID.String() + "/" + recipe.ID.String() + "/"
	store.On("PutObject", mock.Anything, mock.MatchedBy(func(key string) bool {
		return strings.HasPrefix(key, prefix) && strings.HasSuffix(key, ".png")
	}), "image/png", pngHeader).Return("https://cdn.example.com/tart.png", nil).Once()

	images := service.NewImageService(store, recipes, nil, nil)
	updated, err := images.UploadRecipeImage(context.Background(), user.ID, recipe.ID, bytes.NewReader(pngHeader))
	require.NoError(t, err)
	assert.Equal(t, model.StringList{"https://cdn.example.com/tart.png"}, updated.Images)
	assert.True(t, updated.UpdatedAt.After(recipe.UpdatedAt))
	store.AssertExpectations(t)
}

func TestUploadRecipeImageRejections(t *testing.T) {
	db := testhelpers.SetupSQLite(t)
	recipes := service.NewRecipeService(db, nil, nil, nil, nil)
	user := testhelpers.CreateTestUser(t, db)
	recipe := testhelpers.CreateTestRecipe(t, recipes, user.ID, "https://example.com/tart")
	store := new(testhelpers.MockObjectStore)
	images := service.NewImageService(store, recipes, nil, nil)
	ctx := context.Background()

	_, err := images.UploadRecipeImage(ctx, user.ID, recipe.ID, strings.NewReader("just some text"))
	assert.True(t, errors.Is(err, model.ErrInvalidInput))

	_, err = images.UploadRecipeImage(ctx, user.ID, recipe.ID, bytes.NewReader(nil))
	assert.True(t, errors.Is(err, model.ErrInvalidInput))

	big := append(append([]byte{}, pngHeader...), make([]byte, service.MaxImageSize)...)
	_, err = images.UploadRecipeImage(ctx, user.ID, recipe.ID, bytes.NewReader(big))
	assert.True(t, errors.Is(err, model.ErrInvalidInput))

	_, err = images.UploadRecipeImage(ctx, user.ID, uuid.New(), bytes.NewReader(pngHeader))
	assert.True(t, errors.Is(err, service.ErrRecipeNotFound))

	store.AssertNotCalled(t, "PutObject", mock.Anything, mock.Anything, mock.Anything, mock.Anything)

	unconfigured := service.NewImageService(nil, recipes, nil, nil)
	_, err = unconfigured.UploadRecipeImage(ctx, user.ID, recipe.ID, bytes.NewReader(pngHeader))
	assert.True(t, errors.Is(err, service.ErrStorageNotConfigured))
}
