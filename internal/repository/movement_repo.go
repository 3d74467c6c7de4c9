package repository

import (
	"context"
	"time"

	"go-jewelry-pos/internal/model"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type MovementRepository interface {
	Create(tx *gorm.DB, movement *model.StockMovement) error
	ListByProduct(ctx context.Context, productID uint, limit int) ([]model.StockMovement, error)
	GetDailyFlow(ctx context.Context, startDate, endDate time.Time) ([]DailyFlowData, error)
	GetInventoryStats(ctx context.Context) (*InventoryStats, error)
}

// DailyFlowData feeds the back-office movement chart
type DailyFlowData struct {
	Date     string `json:"date"`
	Inbound  int    `json:"inbound"`
	Outbound int    `json:"outbound"`
}

// InventoryStats feeds the back-office overview
type InventoryStats struct {
	TotalProducts  int64           `json:"total_products"`
	LowStockCount  int64           `json:"low_stock_count"`
	TotalValuation decimal.Decimal `json:"total_valuation"`
}

type movementRepo struct {
	db *gorm.DB
}

func NewMovementRepo(db *gorm.DB) MovementRepository {
	return &movementRepo{db}
}

// Create appends a ledger row. Rows are never updated or deleted afterward;
// it runs on the caller's tx so the row commits with its counter write.
func (r *movementRepo) Create(tx *gorm.DB, movement *model.StockMovement) error {
	return tx.Create(movement).Error
}

func (r *movementRepo) ListByProduct(ctx context.Context, productID uint, limit int) ([]model.StockMovement, error) {
	var movements []model.StockMovement
	query := r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("id DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	err := query.Find(&movements).Error
	return movements, err
}

func (r *movementRepo) GetDailyFlow(ctx context.Context, startDate, endDate time.Time) ([]DailyFlowData, error) {
	var results []DailyFlowData

	// Aggregate ledger rows per day
	rows, err := r.db.WithContext(ctx).Model(&model.StockMovement{}).
		Select(`
			DATE(created_at) as date,
			COALESCE(SUM(CASE WHEN kind = 'entry' THEN quantity ELSE 0 END), 0) as inbound,
			COALESCE(SUM(CASE WHEN kind = 'exit' THEN quantity ELSE 0 END), 0) as outbound
		`).
		Where("created_at BETWEEN ? AND ?", startDate, endDate).
		Group("DATE(created_at)").
		Order("date ASC").
		Rows()

	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var data DailyFlowData
		if err := rows.Scan(&data.Date, &data.Inbound, &data.Outbound); err != nil {
			return nil, err
		}
		results = append(results, data)
	}

	return results, nil
}

func (r *movementRepo) GetInventoryStats(ctx context.Context) (*InventoryStats, error) {
	var stats InventoryStats
	db := r.db.WithContext(ctx)

	// Total Products
	if err := db.Model(&model.Product{}).Count(&stats.TotalProducts).Error; err != nil {
		return nil, err
	}

	// Low Stock Count (composites carry no counter of their own)
	if err := db.Model(&model.Product{}).
		Where("is_composite = false AND stock < min_stock").
		Count(&stats.LowStockCount).Error; err != nil {
		return nil, err
	}

	// Total Valuation (SUM of stock * sale_price), counters only
	if err := db.Model(&model.Product{}).
		Where("is_composite = false").
		Select("COALESCE(SUM(stock * sale_price), 0)").
		Scan(&stats.TotalValuation).Error; err != nil {
		return nil, err
	}

	return &stats, nil
}
