// internal/models/common.go
package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Base model with common fields
type BaseModel struct {
	ID        uuid.UUID `json:"_id" gorm:"type:uuid;primaryKey"`
	CreatedAt time.Time `json:"createdAt" gorm:"not null;index"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// BeforeCreate assigns the identifier in Go so the schema does not depend on
// a database-side uuid generator.
func (b *BaseModel) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

// Enums
type Category string

const (
	CategoryTShirts Category = "T-shirts"
	CategoryShorts  Category = "Shorts"
	CategoryShirts  Category = "Shirts"
	CategoryHoodie  Category = "Hoodie"
	CategoryJeans   Category = "Jeans"
)

var Categories = []Category{
	CategoryTShirts,
	CategoryShorts,
	CategoryShirts,
	CategoryHoodie,
	CategoryJeans,
}

func (c Category) IsValid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

type Size string

const (
	SizeXS  Size = "XS"
	SizeS   Size = "S"
	SizeM   Size = "M"
	SizeL   Size = "L"
	SizeXL  Size = "XL"
	SizeXXL Size = "XXL"
)

var Sizes = []Size{SizeXS, SizeS, SizeM, SizeL, SizeXL, SizeXXL}

func (s Size) IsValid() bool {
	for _, known := range Sizes {
		if s == known {
			return true
		}
	}
	return false
}
