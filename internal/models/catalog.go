package models

// Tag labels recipes. Name and slug are unique.
type Tag struct {
	ID    uint   `json:"id" gorm:"primaryKey"`
	Name  string `json:"name" gorm:"uniqueIndex;type:varchar(30);not null"`
	Slug  string `json:"slug" gorm:"uniqueIndex;type:varchar(200);not null"`
	Color string `json:"color" gorm:"type:varchar(7)"`
}

// Ingredient is reference data: a product name and the unit it is measured in.
type Ingredient struct {
	ID              uint   `json:"id" gorm:"primaryKey"`
	Name            string `json:"name" gorm:"index;type:varchar(200);not null"`
	MeasurementUnit string `json:"measurement_unit" gorm:"type:varchar(200);not null"`
}
