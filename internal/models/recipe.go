package models

import "time"

// Recipe is owned by its author. Deleting it removes every association row that
// references it.
type Recipe struct {
	ID          uint               `gorm:"primaryKey"`
	AuthorID    uint               `gorm:"not null;index"`
	Author      User               `gorm:"constraint:OnDelete:CASCADE"`
	Name        string             `gorm:"type:varchar(200);not null"`
	Image       string             `gorm:"type:varchar(500)"`
	Description string             `gorm:"type:text;not null"`
	CookingTime int                `gorm:"not null"`
	Ingredients []RecipeIngredient `gorm:"foreignKey:RecipeID;constraint:OnDelete:CASCADE"`
	Tags        []RecipeTag        `gorm:"foreignKey:RecipeID;constraint:OnDelete:CASCADE"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// RecipeIngredient binds an ingredient and its amount to a recipe.
// At most one row exists per (recipe, ingredient); the repository enforces it.
type RecipeIngredient struct {
	ID           uint       `gorm:"primaryKey"`
	RecipeID     uint       `gorm:"not null;index"`
	IngredientID uint       `gorm:"not null;index"`
	Ingredient   Ingredient `gorm:"constraint:OnDelete:CASCADE"`
	Amount       int        `gorm:"not null"`
}

// RecipeTag links a recipe to a tag.
type RecipeTag struct {
	ID       uint `gorm:"primaryKey"`
	RecipeID uint `gorm:"not null;index"`
	TagID    uint `gorm:"not null;index"`
	Tag      Tag  `gorm:"constraint:OnDelete:CASCADE"`
}

// IngredientAmount is one entry of a recipe composition as submitted by a client.
type IngredientAmount struct {
	IngredientID uint
	Amount       int
}

// Composition is the full set of ingredient amounts and tags of a recipe.
type Composition struct {
	Ingredients []IngredientAmount
	TagIDs      []uint
}

// ShoppingListItem is one aggregated line of a shopping list.
type ShoppingListItem struct {
	Name            string
	MeasurementUnit string
	Total           int64
}
