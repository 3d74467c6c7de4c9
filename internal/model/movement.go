package model

import "time"

type MovementKind string

const (
	MovementEntry      MovementKind = "entry"
	MovementExit       MovementKind = "exit"
	MovementAdjustment MovementKind = "adjustment"
)

// StockMovement is the append-only ledger of raw stock mutations.
// Exactly one row is written per counter change on a non-composite product;
// a composite sale fans out into one row per component and none for the set
// itself. Rows are never updated or deleted.
type StockMovement struct {
	ID           uint         `gorm:"primaryKey" json:"id"`
	ProductID    uint         `gorm:"not null;index" json:"product_id" validate:"required"`
	Kind         MovementKind `gorm:"type:varchar(20);not null" json:"kind" validate:"required,oneof=entry exit adjustment"`
	Quantity     int          `gorm:"not null" json:"quantity" validate:"required,gt=0"`
	Reason       string       `json:"reason"`
	OperatorID   string       `gorm:"type:varchar(255)" json:"operator_id"`
	OperatorName string       `gorm:"type:varchar(255)" json:"operator_name"`
	StockBefore  int          `gorm:"not null" json:"stock_before"`
	StockAfter   int          `gorm:"not null" json:"stock_after"`

	CreatedAt time.Time `json:"created_at"`

	Product *Product `gorm:"foreignKey:ProductID" json:"product,omitempty" validate:"-"`
}

// TableName keeps the table name out of gorm's default pluralization.
func (StockMovement) TableName() string { return "stock_movements" }
