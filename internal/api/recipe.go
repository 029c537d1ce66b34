package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pageza/recipekeeper/backend/internal/middleware"
	"github.com/pageza/recipekeeper/backend/internal/model"
	"github.com/pageza/recipekeeper/backend/internal/service"
	"github.com/pageza/recipekeeper/backend/internal/types"
)

// RecipeHandler serves the caller's recipe collection.
type RecipeHandler struct {
	recipeService service.IRecipeService
	log           *zap.Logger
}

func NewRecipeHandler(recipeService service.IRecipeService, log *zap.Logger) *RecipeHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &RecipeHandler{recipeService: recipeService, log: log.With(zap.String("component", "recipe_handler"))}
}

// RegisterRoutes mounts /recipes on an authenticated group. createLimit
// guards recipe creation and may be nil.
func (h *RecipeHandler) RegisterRoutes(router *gin.RouterGroup, createLimit gin.HandlerFunc) {
	recipes := router.Group("/recipes")
	{
		recipes.GET("", h.ListRecipes)
		recipes.POST("", limited(createLimit, h.CreateRecipe)...)
		recipes.GET("/:id", h.GetRecipe)
		recipes.PUT("/:id", h.UpdateRecipe)
		recipes.PATCH("/:id", h.UpdateRecipe)
		recipes.DELETE("/:id", h.DeleteRecipe)
		recipes.POST("/:id/favorite", h.FavoriteRecipe)
		recipes.DELETE("/:id/favorite", h.UnfavoriteRecipe)
	}
}

// caller returns the authenticated user and the :id recipe parameter.
func (h *RecipeHandler) caller(c *gin.Context) (uuid.UUID, uuid.UUID, bool) {
	userID, ok := middleware.UserID(c)
	if !ok {
		respondError(c, h.log, service.ErrInvalidToken)
		return uuid.Nil, uuid.Nil, false
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, h.log, model.InvalidInput("_id", "must be a UUID"))
		return uuid.Nil, uuid.Nil, false
	}
	return userID, id, true
}

func (h *RecipeHandler) ListRecipes(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		respondError(c, h.log, service.ErrInvalidToken)
		return
	}

	var q types.ListRecipesQuery
	if err := bindQuery(c, &q); err != nil {
		respondError(c, h.log, err)
		return
	}

	list, err := h.recipeService.ListRecipes(c.Request.Context(), userID, &q)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *RecipeHandler) CreateRecipe(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		respondError(c, h.log, service.ErrInvalidToken)
		return
	}

	var req types.RecipeCreate
	if err := bindJSON(c, &req); err != nil {
		respondError(c, h.log, err)
		return
	}
	if err := req.Validate(); err != nil {
		respondError(c, h.log, err)
		return
	}

	recipe, err := h.recipeService.CreateRecipe(c.Request.Context(), userID, &req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, recipe)
}

func (h *RecipeHandler) GetRecipe(c *gin.Context) {
	userID, id, ok := h.caller(c)
	if !ok {
		return
	}

	recipe, err := h.recipeService.GetRecipe(c.Request.Context(), userID, id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, recipe)
}

// UpdateRecipe serves both PUT and PATCH; either way only the fields
// present in the body change.
func (h *RecipeHandler) UpdateRecipe(c *gin.Context) {
	userID, id, ok := h.caller(c)
	if !ok {
		return
	}

	upd, err := types.DecodeRecipeUpdate(c.Request.Body)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	recipe, err := h.recipeService.UpdateRecipe(c.Request.Context(), userID, id, upd)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, recipe)
}

func (h *RecipeHandler) DeleteRecipe(c *gin.Context) {
	userID, id, ok := h.caller(c)
	if !ok {
		return
	}

	if err := h.recipeService.DeleteRecipe(c.Request.Context(), userID, id); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *RecipeHandler) FavoriteRecipe(c *gin.Context) {
	h.setFavorite(c, true)
}

func (h *RecipeHandler) UnfavoriteRecipe(c *gin.Context) {
	h.setFavorite(c, false)
}

func (h *RecipeHandler) setFavorite(c *gin.Context, favorite bool) {
	userID, id, ok := h.caller(c)
	if !ok {
		return
	}

	recipe, err := h.recipeService.SetFavorite(c.Request.Context(), userID, id, favorite)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, recipe)
}
