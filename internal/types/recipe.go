package types

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/pageza/recipekeeper/backend/internal/model"
)

// RecipeCreate is the request to save a recipe from a URL. Everything else
// about the recipe is filled in later by the ingest pipeline.
type RecipeCreate struct {
	URL   string   `json:"url"`
	Notes *string  `json:"notes,omitempty"`
	Tags  []string `json:"tags,omitempty"`
}

// Validate rejects an empty or malformed URL with model.ErrInvalidInput.
func (r *RecipeCreate) Validate() error {
	_, err := model.ParseSourceURL(r.URL)
	return err
}

// RecipeUpdate is a partial patch over the mutable fields of a recipe.
// Omitted fields are left unchanged; fields sent as null are cleared.
type RecipeUpdate struct {
	Title        Optional[string]             `json:"title,omitzero"`
	Description  Optional[string]             `json:"description,omitzero"`
	RecipeType   Optional[model.RecipeType]   `json:"recipe_type,omitzero"`
	Cuisine      Optional[string]             `json:"cuisine,omitzero"`
	DietaryInfo  Optional[[]string]           `json:"dietary_info,omitzero"`
	PrepTime     Optional[int]                `json:"prep_time,omitzero"`
	CookTime     Optional[int]                `json:"cook_time,omitzero"`
	TotalTime    Optional[int]                `json:"total_time,omitzero"`
	Servings     Optional[int]                `json:"servings,omitzero"`
	Difficulty   Optional[model.Difficulty]   `json:"difficulty,omitzero"`
	Ingredients  Optional[model.Ingredients]  `json:"ingredients,omitzero"`
	Instructions Optional[model.Instructions] `json:"instructions,omitzero"`
	Nutrition    Optional[model.Nutrition]    `json:"nutrition,omitzero"`
	Images       Optional[[]string]           `json:"images,omitzero"`
	Source       Optional[model.RecipeSource] `json:"source,omitzero"`
	Tags         Optional[[]string]           `json:"tags,omitzero"`
	Notes        Optional[string]             `json:"notes,omitzero"`
	IsFavorite   Optional[bool]               `json:"is_favorite,omitzero"`
}

// DecodeRecipeUpdate reads a RecipeUpdate, rejecting unknown fields. The
// immutable recipe fields (_id, user_id, created_at, updated_at) are unknown
// to RecipeUpdate and are therefore rejected too.
func DecodeRecipeUpdate(r io.Reader) (*RecipeUpdate, error) {
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()

	var upd RecipeUpdate
	if err := dec.Decode(&upd); err != nil {
		return nil, DecodeError(err)
	}
	if dec.More() {
		return nil, model.InvalidInput("", "request body must be a single JSON object")
	}
	return &upd, nil
}

// Empty reports whether the patch carries no fields.
func (u *RecipeUpdate) Empty() bool {
	return !(u.Title.Set || u.Description.Set || u.RecipeType.Set || u.Cuisine.Set ||
		u.DietaryInfo.Set || u.PrepTime.Set || u.CookTime.Set || u.TotalTime.Set ||
		u.Servings.Set || u.Difficulty.Set || u.Ingredients.Set || u.Instructions.Set ||
		u.Nutrition.Set || u.Images.Set || u.Source.Set || u.Tags.Set || u.Notes.Set ||
		u.IsFavorite.Set)
}

// Validate checks the patch on its own, without a target recipe.
func (u *RecipeUpdate) Validate() error {
	if u.Title.Set && (u.Title.Null || strings.TrimSpace(u.Title.Value) == "") {
		return model.InvalidInput("title", "cannot be empty")
	}
	if u.IsFavorite.Set && u.IsFavorite.Null {
		return model.InvalidInput("is_favorite", "cannot be null")
	}
	if u.RecipeType.Set && !u.RecipeType.Null && !u.RecipeType.Value.Valid() {
		return &model.ValidationError{Field: "recipe_type", Message: "is not an allowed value", Kind: model.ErrInvalidEnum}
	}
	if u.Difficulty.Set && !u.Difficulty.Null && !u.Difficulty.Value.Valid() {
		return &model.ValidationError{Field: "difficulty", Message: "is not an allowed value", Kind: model.ErrInvalidEnum}
	}
	return nil
}

// Apply patches r in place. _id, user_id and created_at are never touched;
// updated_at is set to now, or nudged forward if now is not after the
// previous value. The patched recipe is validated before returning; on error
// r is left unchanged.
func (u *RecipeUpdate) Apply(r *model.Recipe, now time.Time) error {
	if err := u.Validate(); err != nil {
		return err
	}

	next := *r
	if u.Title.Set {
		next.Title = u.Title.Value
	}
	applyPtr(u.Description, &next.Description)
	applyPtr(u.RecipeType, &next.RecipeType)
	applyPtr(u.Cuisine, &next.Cuisine)
	applyList(u.DietaryInfo, &next.DietaryInfo)
	applyPtr(u.PrepTime, &next.PrepTime)
	applyPtr(u.CookTime, &next.CookTime)
	applyPtr(u.TotalTime, &next.TotalTime)
	applyPtr(u.Servings, &next.Servings)
	applyPtr(u.Difficulty, &next.Difficulty)
	if u.Ingredients.Set {
		next.Ingredients = model.Ingredients{}
		if !u.Ingredients.Null && u.Ingredients.Value != nil {
			next.Ingredients = u.Ingredients.Value
		}
	}
	if u.Instructions.Set {
		next.Instructions = model.Instructions{}
		if !u.Instructions.Null && u.Instructions.Value != nil {
			next.Instructions = u.Instructions.Value
		}
	}
	applyPtr(u.Nutrition, &next.Nutrition)
	applyList(u.Images, &next.Images)
	applyPtr(u.Source, &next.Source)
	if u.Tags.Set {
		applyList(u.Tags, &next.Tags)
		next.Tags = model.CleanList(next.Tags)
	}
	applyPtr(u.Notes, &next.Notes)
	if u.IsFavorite.Set {
		next.IsFavorite = u.IsFavorite.Value
	}

	if err := next.Validate(); err != nil {
		return err
	}

	now = now.UTC().Truncate(time.Microsecond)
	if !now.After(r.UpdatedAt) {
		now = r.UpdatedAt.Add(time.Microsecond)
	}
	next.UpdatedAt = now

	next.ID, next.UserID, next.CreatedAt = r.ID, r.UserID, r.CreatedAt
	*r = next
	return nil
}

func applyPtr[T any](o Optional[T], dst **T) {
	if o.Set {
		*dst = o.Ptr()
	}
}

func applyList(o Optional[[]string], dst *model.StringList) {
	if !o.Set {
		return
	}
	if o.Null || o.Value == nil {
		*dst = model.StringList{}
		return
	}
	*dst = model.StringList(o.Value)
}

// ListRecipesQuery holds the filters accepted by the recipe listing.
type ListRecipesQuery struct {
	Page       int      `form:"page,default=1" binding:"min=1"`
	PerPage    int      `form:"per_page,default=20" binding:"min=1,max=100"`
	Search     string   `form:"search"`
	RecipeType string   `form:"recipe_type"`
	Cuisine    string   `form:"cuisine"`
	IsFavorite *bool    `form:"is_favorite"`
	Tags       []string `form:"tags"`
}

// Validate checks the enum filter; pagination bounds are enforced by binding.
func (q *ListRecipesQuery) Validate() error {
	if q.RecipeType != "" {
		if _, err := model.ParseRecipeType(q.RecipeType); err != nil {
			return err
		}
	}
	return nil
}

// Offset is the number of rows to skip for the requested page.
func (q *ListRecipesQuery) Offset() int {
	return (q.Page - 1) * q.PerPage
}

// RecipeList is one page of recipes.
type RecipeList struct {
	Recipes []*model.Recipe `json:"recipes"`
	Total   int64           `json:"total"`
	Page    int             `json:"page"`
	PerPage int             `json:"per_page"`
	Pages   int             `json:"pages"`
}

// NewRecipeList computes the page count for total rows.
func NewRecipeList(recipes []*model.Recipe, total int64, page, perPage int) *RecipeList {
	if recipes == nil {
		recipes = []*model.Recipe{}
	}
	pages := 0
	if perPage > 0 {
		pages = int((total + int64(perPage) - 1) / int64(perPage))
	}
	return &RecipeList{Recipes: recipes, Total: total, Page: page, PerPage: perPage, Pages: pages}
}

// DecodeError turns a json decoding failure into a validation error while
// keeping enum failures as model.ErrInvalidEnum.
func DecodeError(err error) error {
	var verr *model.ValidationError
	if errors.As(err, &verr) {
		return verr
	}
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return model.InvalidInput(typeErr.Field, fmt.Sprintf("must be %s", typeErr.Type))
	}
	if errors.Is(err, io.EOF) {
		return model.InvalidInput("", "request body is empty")
	}
	msg := err.Error()
	if field, ok := strings.CutPrefix(msg, "json: unknown field "); ok {
		return model.InvalidInput(strings.Trim(field, `"`), "is not a known or mutable field")
	}
	return model.InvalidInput("", "malformed JSON: "+msg)
}
