package model

import "time"

// MaxVariantsPerParent caps how many presentation variants a product may carry.
const MaxVariantsPerParent = 100

// Variant is a presentation-only alternative of its parent product.
// Price and stock are never stored here; every effective read joins
// through the parent so the two can never diverge.
type Variant struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	ProductID   uint   `gorm:"not null;index" json:"product_id" validate:"required"`
	Name        string `gorm:"type:varchar(255);not null" json:"name" validate:"required"`
	Description string `json:"description"`
	ImageURL    string `gorm:"type:varchar(500)" json:"image_url"`
	Position    int    `gorm:"default:0" json:"position"`
	Active      bool   `gorm:"default:true" json:"active"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Product *Product `gorm:"foreignKey:ProductID" json:"-" validate:"-"`
}
