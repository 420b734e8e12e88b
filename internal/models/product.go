// internal/models/product.go
package models

import (
	"database/sql/driver"

	"github.com/lib/pq"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

type Discount struct {
	Amount     float64 `json:"amount" gorm:"type:decimal(10,2);not null;default:0"`
	Percentage float64 `json:"percentage" gorm:"type:decimal(5,2);not null;default:0"`
}

type Product struct {
	BaseModel
	Title        string         `json:"title" gorm:"size:255;not null"`
	Description  string         `json:"description" gorm:"type:text;not null"`
	Category     Category       `json:"category" gorm:"type:varchar(50);not null;index"`
	Price        float64        `json:"price" gorm:"type:decimal(10,2);not null;index"`
	Sizes        SizeSet        `json:"sizes" gorm:"not null"`
	Discount     Discount       `json:"discount" gorm:"embedded;embeddedPrefix:discount_"`
	Rating       float64        `json:"rating" gorm:"type:decimal(3,2);default:0"`
	PrimaryImage AssetRef       `json:"primaryImage" gorm:"not null"`
	Gallery      AssetRefs      `json:"gallery" gorm:"not null"`
}

// HasConsistentImages reports whether the primary image is a member of a
// non-empty gallery.
func (p *Product) HasConsistentImages() bool {
	return len(p.Gallery) > 0 && !p.PrimaryImage.IsZero() && p.Gallery.Contains(p.PrimaryImage)
}

// SizeSet is stored as a native text[] on PostgreSQL and as the same array
// literal in a text column elsewhere.
type SizeSet []string

func NewSizeSet(sizes []Size) SizeSet {
	out := make(SizeSet, 0, len(sizes))
	for _, s := range sizes {
		out = append(out, string(s))
	}
	return out
}

func (s SizeSet) Contains(size Size) bool {
	for _, v := range s {
		if v == string(size) {
			return true
		}
	}
	return false
}

func (s SizeSet) Value() (driver.Value, error) {
	if s == nil {
		return "{}", nil
	}
	return pq.StringArray(s).Value()
}

func (s *SizeSet) Scan(value interface{}) error {
	var arr pq.StringArray
	if err := arr.Scan(value); err != nil {
		return err
	}
	*s = SizeSet(arr)
	return nil
}

func (SizeSet) GormDBDataType(db *gorm.DB, _ *schema.Field) string {
	if db.Dialector.Name() == "postgres" {
		return "text[]"
	}
	return "text"
}
