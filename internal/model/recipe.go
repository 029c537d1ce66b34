package model

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	pgvector "github.com/pgvector/pgvector-go"
)

// StringList is an ordered list of strings stored in a jsonb column. It
// always serializes as a JSON array, never null.
type StringList []string

// Value implements the driver.Valuer interface
func (a StringList) Value() (driver.Value, error) {
	return jsonValue([]string(a), len(a))
}

// Scan implements the sql.Scanner interface
func (a *StringList) Scan(value interface{}) error {
	return scanJSON(value, a)
}

// CleanList trims entries, drops empty ones and removes duplicates, keeping
// the first occurrence.
func CleanList(items []string) StringList {
	out := StringList{}
	seen := make(map[string]bool, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item == "" || seen[item] {
			continue
		}
		seen[item] = true
		out = append(out, item)
	}
	return out
}

func (a StringList) MarshalJSON() ([]byte, error) {
	if a == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]string(a))
}

// Ingredient is one line of a recipe's ingredient list. Quantity is free text
// so that "1/2", "a pinch" or "2-3" survive unchanged.
type Ingredient struct {
	Name     string  `json:"name" validate:"required"`
	Quantity string  `json:"quantity"`
	Unit     string  `json:"unit"`
	Notes    *string `json:"notes,omitempty"`
}

// Ingredients is stored as a jsonb array.
type Ingredients []Ingredient

func (a Ingredients) Value() (driver.Value, error) {
	return jsonValue([]Ingredient(a), len(a))
}

func (a *Ingredients) Scan(value interface{}) error {
	return scanJSON(value, a)
}

func (a Ingredients) MarshalJSON() ([]byte, error) {
	if a == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]Ingredient(a))
}

// Instruction is a numbered preparation step. Time is in minutes.
type Instruction struct {
	StepNumber  int    `json:"step_number" validate:"gte=0"`
	Instruction string `json:"instruction" validate:"required"`
	Time        *int   `json:"time,omitempty" validate:"omitempty,gte=0"`
}

// Instructions is stored as a jsonb array.
type Instructions []Instruction

func (a Instructions) Value() (driver.Value, error) {
	return jsonValue([]Instruction(a), len(a))
}

func (a *Instructions) Scan(value interface{}) error {
	return scanJSON(value, a)
}

func (a Instructions) MarshalJSON() ([]byte, error) {
	if a == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]Instruction(a))
}

// Nutrition holds per-serving figures. Macros are free text so values like
// "12g" are kept verbatim.
type Nutrition struct {
	Calories *int    `json:"calories,omitempty" validate:"omitempty,gte=0"`
	Protein  *string `json:"protein,omitempty"`
	Carbs    *string `json:"carbs,omitempty"`
	Fat      *string `json:"fat,omitempty"`
}

// RecipeSource records where a recipe was captured from.
type RecipeSource struct {
	Type     string  `json:"type" validate:"required"`
	URL      *string `json:"url,omitempty"`
	Platform *string `json:"platform,omitempty"`
}

// Recipe is a saved recipe owned by a single user.
type Recipe struct {
	ID           uuid.UUID        `gorm:"type:uuid;primaryKey" json:"_id"`
	UserID       uuid.UUID        `gorm:"type:uuid;not null;index" json:"user_id"`
	Title        string           `gorm:"size:500;not null;index" json:"title" validate:"required"`
	Description  *string          `gorm:"type:text" json:"description,omitempty"`
	RecipeType   *RecipeType      `gorm:"size:32;index" json:"recipe_type,omitempty"`
	Cuisine      *string          `gorm:"size:100;index" json:"cuisine,omitempty"`
	DietaryInfo  StringList       `gorm:"type:jsonb;not null" json:"dietary_info"`
	PrepTime     *int             `json:"prep_time,omitempty" validate:"omitempty,gte=0"`
	CookTime     *int             `json:"cook_time,omitempty" validate:"omitempty,gte=0"`
	TotalTime    *int             `json:"total_time,omitempty" validate:"omitempty,gte=0"`
	Servings     *int             `json:"servings,omitempty" validate:"omitempty,gte=0"`
	Difficulty   *Difficulty      `gorm:"size:16" json:"difficulty,omitempty"`
	Ingredients  Ingredients      `gorm:"type:jsonb;not null" json:"ingredients" validate:"dive"`
	Instructions Instructions     `gorm:"type:jsonb;not null" json:"instructions" validate:"dive"`
	Nutrition    *Nutrition       `gorm:"type:jsonb;serializer:json" json:"nutrition,omitempty"`
	Images       StringList       `gorm:"type:jsonb;not null" json:"images"`
	Source       *RecipeSource    `gorm:"type:jsonb;serializer:json" json:"source,omitempty"`
	Tags         StringList       `gorm:"type:jsonb;not null" json:"tags"`
	Notes        *string          `gorm:"type:text" json:"notes,omitempty"`
	IsFavorite   bool             `gorm:"not null;default:false;index" json:"is_favorite"`
	CreatedAt    time.Time        `gorm:"autoCreateTime:false;not null;index" json:"created_at"`
	UpdatedAt    time.Time        `gorm:"autoUpdateTime:false;not null" json:"updated_at"`
	Embedding    *pgvector.Vector `gorm:"type:vector(32)" json:"-"`
}

func (Recipe) TableName() string {
	return "recipes"
}

// NewRecipe returns an empty recipe with every sequence initialised so it
// serializes as [] rather than null.
func NewRecipe(userID uuid.UUID, title string) *Recipe {
	return &Recipe{
		UserID:       userID,
		Title:        title,
		DietaryInfo:  StringList{},
		Ingredients:  Ingredients{},
		Instructions: Instructions{},
		Images:       StringList{},
		Tags:         StringList{},
	}
}

// Normalize replaces nil sequences with empty ones.
func (r *Recipe) Normalize() {
	if r.DietaryInfo == nil {
		r.DietaryInfo = StringList{}
	}
	if r.Ingredients == nil {
		r.Ingredients = Ingredients{}
	}
	if r.Instructions == nil {
		r.Instructions = Instructions{}
	}
	if r.Images == nil {
		r.Images = StringList{}
	}
	if r.Tags == nil {
		r.Tags = StringList{}
	}
}

// SearchText is the text that search embeddings are computed from.
func (r *Recipe) SearchText() string {
	text := r.Title
	if r.Description != nil {
		text += " " + *r.Description
	}
	for _, tag := range r.Tags {
		text += " " + tag
	}
	return text
}

// jsonValue stores v without HTML escaping so the column text holds "&",
// "<" and ">" as written, the same way PostgreSQL renders jsonb.
func jsonValue(v interface{}, n int) (driver.Value, error) {
	if n == 0 {
		return "[]", nil
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}

func scanJSON(value interface{}, dest interface{}) error {
	var bytes []byte
	switch v := value.(type) {
	case nil:
		bytes = []byte("[]")
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return fmt.Errorf("unsupported type %T for json column", value)
	}
	return json.Unmarshal(bytes, dest)
}
