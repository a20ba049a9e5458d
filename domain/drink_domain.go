package domain

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

var (
	MessageSuccessGetDrinks   = "success get drinks"
	MessageSuccessCreateDrink = "drink created successfully"
	MessageSuccessUpdateDrink = "drink updated successfully"
	MessageSuccessDeleteDrink = "drink deleted successfully"

	MessageFailedGetDrinks   = "failed to get drinks"
	MessageFailedCreateDrink = "failed to create drink"
	MessageFailedUpdateDrink = "failed to update drink"
	MessageFailedDeleteDrink = "failed to delete drink"

	ErrDrinkNotFound = errors.New("drink not found")
	ErrMissingTitle  = errors.New("drink title is required")
	ErrInvalidRecipe = errors.New("malformed recipe")
)

type (
	Ingredient struct {
		Color string  `json:"color" validate:"required"`
		Name  string  `json:"name" validate:"required"`
		Parts float64 `json:"parts" validate:"gt=0"`
	}

	ShortIngredient struct {
		Color string  `json:"color"`
		Parts float64 `json:"parts"`
	}

	// Recipe is the ordered ingredient list of a drink. It decodes from a JSON
	// array, a single ingredient object, or a string holding either encoded.
	Recipe []Ingredient

	Drink struct {
		ID     uint
		Title  string
		Recipe Recipe
	}

	DrinkShort struct {
		ID     uint              `json:"id"`
		Title  string            `json:"title"`
		Recipe []ShortIngredient `json:"recipe"`
	}

	DrinkLong struct {
		ID     uint   `json:"id"`
		Title  string `json:"title"`
		Recipe Recipe `json:"recipe"`
	}

	CreateDrinkRequest struct {
		Title  string `json:"title" validate:"required,max=80"`
		Recipe Recipe `json:"recipe" validate:"required,dive"`
	}

	// UpdateDrinkRequest carries a partial update. A nil field was not supplied.
	UpdateDrinkRequest struct {
		Title  *string `json:"title" validate:"omitempty,min=1,max=80"`
		Recipe Recipe  `json:"recipe" validate:"omitempty,dive"`
	}
)

// ParseRecipe decodes the persisted form of a recipe.
func ParseRecipe(encoded string) (Recipe, error) {
	return decodeRecipe([]byte(encoded), false)
}

func (r *Recipe) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if bytes.Equal(trimmed, []byte("null")) {
		return nil
	}
	recipe, err := decodeRecipe(trimmed, true)
	if err != nil {
		return err
	}
	*r = recipe
	return nil
}

func decodeRecipe(data []byte, allowEncoded bool) (Recipe, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, ErrInvalidRecipe
	}

	switch data[0] {
	case '[':
		entries := []Ingredient{}
		if err := json.Unmarshal(data, &entries); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidRecipe, err)
		}
		return Recipe(entries), nil
	case '{':
		var entry Ingredient
		if err := json.Unmarshal(data, &entry); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidRecipe, err)
		}
		return Recipe{entry}, nil
	case '"':
		if !allowEncoded {
			return nil, ErrInvalidRecipe
		}
		var encoded string
		if err := json.Unmarshal(data, &encoded); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidRecipe, err)
		}
		return decodeRecipe([]byte(encoded), false)
	default:
		return nil, ErrInvalidRecipe
	}
}

// Serialize returns the persisted form of the recipe, always a JSON array.
func (r Recipe) Serialize() (string, error) {
	if r == nil {
		r = Recipe{}
	}
	out, err := json.Marshal([]Ingredient(r))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidRecipe, err)
	}
	return string(out), nil
}

func (d Drink) Short() DrinkShort {
	recipe := make([]ShortIngredient, 0, len(d.Recipe))
	for _, ingredient := range d.Recipe {
		recipe = append(recipe, ShortIngredient{
			Color: ingredient.Color,
			Parts: ingredient.Parts,
		})
	}
	return DrinkShort{
		ID:     d.ID,
		Title:  d.Title,
		Recipe: recipe,
	}
}

func (d Drink) Long() DrinkLong {
	recipe := d.Recipe
	if recipe == nil {
		recipe = Recipe{}
	}
	return DrinkLong{
		ID:     d.ID,
		Title:  d.Title,
		Recipe: recipe,
	}
}
