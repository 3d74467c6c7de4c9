package model

import "time"

// MaxComponentsPerSet caps how many component rows a set may carry.
const MaxComponentsPerSet = 20

// SetComponent links a composite "set" product to one of its components.
// One sold set consumes Quantity units of the component product.
type SetComponent struct {
	ID          uint `gorm:"primaryKey" json:"id"`
	SetID       uint `gorm:"not null;uniqueIndex:idx_set_component" json:"set_id" validate:"required"`
	ComponentID uint `gorm:"not null;uniqueIndex:idx_set_component" json:"component_id" validate:"required"`
	Quantity    int  `gorm:"not null" json:"quantity" validate:"required,gt=0"`
	Position    int  `gorm:"default:0" json:"position"`

	CreatedAt time.Time `json:"created_at"`

	Set       *Product `gorm:"foreignKey:SetID" json:"-" validate:"-"`
	Component *Product `gorm:"foreignKey:ComponentID" json:"component,omitempty" validate:"-"`
}
