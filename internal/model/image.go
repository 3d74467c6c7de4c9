package model

import "time"

// ProductImage is a row in the image directory. Upload and transformation
// live in the image-management subsystem; this side only reads.
type ProductImage struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	ProductID uint   `gorm:"not null;index" json:"product_id"`
	URL       string `gorm:"type:varchar(500);not null" json:"url"`
	Position  int    `gorm:"default:0" json:"position"`
	IsPrimary bool   `gorm:"default:false" json:"is_primary"`

	CreatedAt time.Time `json:"created_at"`
}
