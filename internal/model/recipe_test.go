package model

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func fullRecipe() *Recipe {
	created := time.Date(2024, 3, 1, 12, 30, 0, 123456000, time.UTC)
	mainCourse := RecipeTypeMainCourse
	medium := DifficultyMedium
	return &Recipe{
		ID:          uuid.New(),
		UserID:      uuid.New(),
		Title:       "Spaghetti Carbonara",
		Description: ptr("Classic Italian pasta dish"),
		RecipeType:  &mainCourse,
		Cuisine:     ptr("Italian"),
		DietaryInfo: StringList{"gluten-free-optional", "gluten-free-optional"},
		PrepTime:    ptr(15),
		CookTime:    ptr(20),
		TotalTime:   ptr(35),
		Servings:    ptr(4),
		Difficulty:  &medium,
		Ingredients: Ingredients{
			{Name: "Spaghetti", Quantity: "400", Unit: "grams"},
			{Name: "Pecorino", Quantity: "1/2", Unit: "cup", Notes: ptr("finely grated")},
		},
		Instructions: Instructions{
			{StepNumber: 1, Instruction: "Boil water for pasta", Time: ptr(5)},
			{StepNumber: 2, Instruction: "Whisk eggs and cheese"},
		},
		Nutrition:  &Nutrition{Calories: ptr(650), Protein: ptr("28g"), Carbs: ptr("75g"), Fat: ptr("24g")},
		Images:     StringList{"https://cdn.example.com/carbonara.jpg"},
		Source:     &RecipeSource{Type: SourceWebsite, URL: ptr("https://example.com/carbonara"), Platform: ptr("web")},
		Tags:       StringList{"pasta", "italian", "quick"},
		Notes:      ptr("Use guanciale if possible"),
		IsFavorite: true,
		CreatedAt:  created,
		UpdatedAt:  created.Add(time.Hour),
	}
}

func TestRecipeJSONRoundTrip(t *testing.T) {
	t.Run("all fields", func(t *testing.T) {
		in := fullRecipe()
		data, err := json.Marshal(in)
		require.NoError(t, err)

		var out Recipe
		require.NoError(t, json.Unmarshal(data, &out))
		assert.Equal(t, *in, out)
	})

	t.Run("empty sequences and absent optionals", func(t *testing.T) {
		in := NewRecipe(uuid.New(), "Toast")
		in.ID = uuid.New()
		in.CreatedAt = time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
		in.UpdatedAt = in.CreatedAt

		data, err := json.Marshal(in)
		require.NoError(t, err)

		var raw map[string]interface{}
		require.NoError(t, json.Unmarshal(data, &raw))
		for _, key := range []string{"dietary_info", "ingredients", "instructions", "images", "tags"} {
			assert.Equal(t, []interface{}{}, raw[key], key)
		}
		for _, key := range []string{"description", "recipe_type", "cuisine", "prep_time", "cook_time",
			"total_time", "servings", "difficulty", "nutrition", "source", "notes"} {
			assert.NotContains(t, raw, key)
		}
		assert.Equal(t, false, raw["is_favorite"])
		assert.Contains(t, raw, "_id")

		var out Recipe
		require.NoError(t, json.Unmarshal(data, &out))
		assert.Equal(t, *in, out)
	})
}

func TestNilSequencesMarshalAsEmptyArrays(t *testing.T) {
	r := Recipe{Title: "x"}
	data, err := json.Marshal(r)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"tags":[]`)
	assert.Contains(t, string(data), `"ingredients":[]`)
	assert.Contains(t, string(data), `"instructions":[]`)
}

func TestRecipeRejectsUnknownEnumValues(t *testing.T) {
	var r Recipe
	err := json.Unmarshal([]byte(`{"title":"x","recipe_type":"entree"}`), &r)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidEnum))

	err = json.Unmarshal([]byte(`{"title":"x","difficulty":"extreme"}`), &r)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidEnum))
}

func TestStringListColumn(t *testing.T) {
	v, err := StringList{}.Value()
	require.NoError(t, err)
	assert.Equal(t, "[]", v)

	v, err = StringList{"a", "b"}.Value()
	require.NoError(t, err)
	assert.Equal(t, `["a","b"]`, v)

	v, err = StringList{"mac&cheese", "<3", `say "hi"`}.Value()
	require.NoError(t, err)
	assert.Equal(t, `["mac&cheese","<3","say \"hi\""]`, v)

	var out StringList
	require.NoError(t, out.Scan([]byte(`["a","b"]`)))
	assert.Equal(t, StringList{"a", "b"}, out)

	require.NoError(t, out.Scan(nil))
	assert.Equal(t, StringList{}, out)

	assert.Error(t, out.Scan(42))
}

func TestIngredientsColumn(t *testing.T) {
	in := Ingredients{{Name: "salt", Quantity: "a pinch", Unit: ""}}
	v, err := in.Value()
	require.NoError(t, err)

	var out Ingredients
	require.NoError(t, out.Scan(v))
	assert.Equal(t, in, out)
}

func TestSearchText(t *testing.T) {
	r := NewRecipe(uuid.New(), "Pho")
	r.Description = ptr("Vietnamese noodle soup")
	r.Tags = StringList{"soup", "beef"}
	assert.Equal(t, "Pho Vietnamese noodle soup soup beef", r.SearchText())
}

func TestCleanList(t *testing.T) {
	assert.Equal(t, StringList{}, CleanList(nil))
	assert.Equal(t, StringList{"a", "b"}, CleanList([]string{" a", "", "b ", "a", "  "}))
}
