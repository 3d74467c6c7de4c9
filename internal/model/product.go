package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type ProductStatus string

const (
	StatusActive       ProductStatus = "active"
	StatusDiscontinued ProductStatus = "discontinued"
	StatusOutOfStock   ProductStatus = "out_of_stock"
)

// Product is the base catalog row. Stock is authoritative only when the
// product is not composite; set availability is always derived from the
// component rows at read time.
type Product struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	Code        string          `gorm:"type:varchar(50);uniqueIndex;not null" json:"code" validate:"required"`
	Name        string          `gorm:"type:varchar(255);not null;index" json:"name" validate:"required"`
	Description string          `json:"description"`
	Category    string          `gorm:"type:varchar(100);index" json:"category"`
	CostPrice   decimal.Decimal `gorm:"type:decimal(12,2);default:0" json:"cost_price"`
	SalePrice   decimal.Decimal `gorm:"type:decimal(12,2);default:0" json:"sale_price"`
	Currency    string          `gorm:"type:varchar(3);default:'EUR'" json:"currency"`
	Stock       int             `gorm:"default:0" json:"stock"`
	MinStock    int             `gorm:"default:0" json:"min_stock"`
	Status      ProductStatus   `gorm:"type:varchar(20);default:'active'" json:"status"`
	Visible     bool            `gorm:"default:true" json:"visible"`
	// ImageURL is the declared primary image; the image directory may carry more.
	ImageURL string `gorm:"type:varchar(500)" json:"image_url"`

	IsComposite     bool `gorm:"default:false" json:"is_composite"`
	IsVariantParent bool `gorm:"default:false" json:"is_variant_parent"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// User tracking
	CreatedBy string `gorm:"type:varchar(255)" json:"created_by,omitempty"`
	UpdatedBy string `gorm:"type:varchar(255)" json:"updated_by,omitempty"`

	// Relations
	Variants   []Variant      `gorm:"foreignKey:ProductID" json:"variants,omitempty"`
	Components []SetComponent `gorm:"foreignKey:SetID" json:"components,omitempty"`
	Images     []ProductImage `gorm:"foreignKey:ProductID" json:"images,omitempty"`
}

// Sellable reports whether the product may appear on the storefront at all.
func (p *Product) Sellable() bool {
	return p.Status == StatusActive && p.Visible
}

// LowStock applies only to products holding their own counter.
func (p *Product) LowStock() bool {
	return !p.IsComposite && p.Stock < p.MinStock
}
