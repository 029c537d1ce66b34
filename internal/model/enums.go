package model

import (
	"encoding/json"
	"fmt"
)

// RecipeType classifies a recipe by the nature of the dish.
type RecipeType string

const (
	RecipeTypeAppetizer  RecipeType = "appetizer"
	RecipeTypeMainCourse RecipeType = "main_course"
	RecipeTypeSideDish   RecipeType = "side_dish"
	RecipeTypeSoup       RecipeType = "soup"
	RecipeTypeSalad      RecipeType = "salad"
	RecipeTypeDessert    RecipeType = "dessert"
	RecipeTypeBeverage   RecipeType = "beverage"
	RecipeTypeSauce      RecipeType = "sauce"
	RecipeTypeBread      RecipeType = "bread"
	RecipeTypeSnack      RecipeType = "snack"
)

// RecipeTypes lists every recipe type in display order.
var RecipeTypes = []RecipeType{
	RecipeTypeAppetizer,
	RecipeTypeMainCourse,
	RecipeTypeSideDish,
	RecipeTypeSoup,
	RecipeTypeSalad,
	RecipeTypeDessert,
	RecipeTypeBeverage,
	RecipeTypeSauce,
	RecipeTypeBread,
	RecipeTypeSnack,
}

var recipeTypeLabels = map[RecipeType]string{
	RecipeTypeAppetizer:  "Appetizer",
	RecipeTypeMainCourse: "Main Course",
	RecipeTypeSideDish:   "Side Dish",
	RecipeTypeSoup:       "Soup",
	RecipeTypeSalad:      "Salad",
	RecipeTypeDessert:    "Dessert",
	RecipeTypeBeverage:   "Beverage",
	RecipeTypeSauce:      "Sauce & Dressing",
	RecipeTypeBread:      "Bread & Baked Goods",
	RecipeTypeSnack:      "Snack",
}

var recipeTypeDescriptions = map[RecipeType]string{
	RecipeTypeAppetizer:  "Small dishes served before the main course",
	RecipeTypeMainCourse: "Primary dish of a meal, usually substantial",
	RecipeTypeSideDish:   "Accompaniments to the main course",
	RecipeTypeSoup:       "Liquid-based dishes, hot or cold",
	RecipeTypeSalad:      "Cold dishes with mixed vegetables, fruits, or proteins",
	RecipeTypeDessert:    "Sweet dishes typically served after a meal",
	RecipeTypeBeverage:   "Drinks including smoothies, cocktails, teas",
	RecipeTypeSauce:      "Condiments, dressings, and sauces",
	RecipeTypeBread:      "Baked goods including breads, rolls, and pastries",
	RecipeTypeSnack:      "Light foods eaten between meals",
}

// Valid reports whether t is one of the known recipe types.
func (t RecipeType) Valid() bool {
	_, ok := recipeTypeLabels[t]
	return ok
}

// Label returns the human readable name of t.
func (t RecipeType) Label() string {
	return recipeTypeLabels[t]
}

// Description returns a one-line explanation of t.
func (t RecipeType) Description() string {
	return recipeTypeDescriptions[t]
}

// ParseRecipeType converts s into a RecipeType. Values outside the closed set
// fail with ErrInvalidEnum.
func ParseRecipeType(s string) (RecipeType, error) {
	t := RecipeType(s)
	if !t.Valid() {
		return "", enumError("recipe_type", s)
	}
	return t, nil
}

func (t *RecipeType) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return &ValidationError{Field: "recipe_type", Message: "must be a string", Kind: ErrInvalidEnum}
	}
	parsed, err := ParseRecipeType(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// Difficulty is the three level effort rating of a recipe.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// Difficulties lists the difficulty levels from easiest to hardest.
var Difficulties = []Difficulty{DifficultyEasy, DifficultyMedium, DifficultyHard}

func (d Difficulty) Valid() bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return true
	}
	return false
}

// ParseDifficulty converts s into a Difficulty.
func ParseDifficulty(s string) (Difficulty, error) {
	d := Difficulty(s)
	if !d.Valid() {
		return "", enumError("difficulty", s)
	}
	return d, nil
}

func (d *Difficulty) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return &ValidationError{Field: "difficulty", Message: "must be a string", Kind: ErrInvalidEnum}
	}
	parsed, err := ParseDifficulty(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// DietaryInfo is the suggested vocabulary for Recipe.DietaryInfo. Recipes may
// carry other values too.
var DietaryInfo = []string{
	"vegetarian",
	"vegan",
	"gluten_free",
	"dairy_free",
	"nut_free",
	"low_carb",
	"keto",
	"paleo",
	"halal",
	"kosher",
	"pescatarian",
}

func enumError(field, value string) error {
	return &ValidationError{
		Field:   field,
		Message: fmt.Sprintf("%q is not an allowed value", value),
		Kind:    ErrInvalidEnum,
	}
}
