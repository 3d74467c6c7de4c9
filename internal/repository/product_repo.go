package repository

import (
	"context"

	"go-jewelry-pos/internal/model"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CatalogQuery carries the storefront filter set down to the base fetch.
// Offset/Limit page the base rows; expansion happens above this layer.
type CatalogQuery struct {
	Search   string
	Category string
	PriceMin *decimal.Decimal
	PriceMax *decimal.Decimal
	Offset   int
	Limit    int
}

type ProductRepository interface {
	Create(ctx context.Context, product *model.Product) error
	FindByID(ctx context.Context, id uint) (*model.Product, error)
	FindByCode(ctx context.Context, code string) (*model.Product, error)
	FindByIDs(ctx context.Context, ids []uint) ([]model.Product, error)
	Update(ctx context.Context, product *model.Product) error
	FindAll(ctx context.Context) ([]model.Product, error)
	FindLowStock(ctx context.Context) ([]model.Product, error)
	FindVisible(ctx context.Context, q CatalogQuery) ([]model.Product, int64, error)
	LockForUpdate(tx *gorm.DB, ids []uint) ([]model.Product, error)
	UpdateStock(tx *gorm.DB, id uint, newStock int, updatedBy string) error
	SetComposite(tx *gorm.DB, id uint, composite bool) error
	SetVariantParent(tx *gorm.DB, id uint, parent bool) error
}

type productRepo struct {
	db *gorm.DB
}

func NewProductRepo(db *gorm.DB) ProductRepository {
	return &productRepo{db}
}

func (r *productRepo) Create(ctx context.Context, product *model.Product) error {
	return r.db.WithContext(ctx).Create(product).Error
}

func (r *productRepo) FindByID(ctx context.Context, id uint) (*model.Product, error) {
	var product model.Product
	err := r.db.WithContext(ctx).First(&product, "id = ?", id).Error
	return &product, err
}

// FindByCode matches case-insensitively; product codes are unique ignoring case.
func (r *productRepo) FindByCode(ctx context.Context, code string) (*model.Product, error) {
	var product model.Product
	err := r.db.WithContext(ctx).First(&product, "LOWER(code) = LOWER(?)", code).Error
	return &product, err
}

func (r *productRepo) FindByIDs(ctx context.Context, ids []uint) ([]model.Product, error) {
	var products []model.Product
	if len(ids) == 0 {
		return products, nil
	}
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&products).Error
	return products, err
}

func (r *productRepo) Update(ctx context.Context, product *model.Product) error {
	return r.db.WithContext(ctx).Save(product).Error
}

func (r *productRepo) FindAll(ctx context.Context) ([]model.Product, error) {
	var products []model.Product
	err := r.db.WithContext(ctx).Order("created_at DESC").Find(&products).Error
	return products, err
}

func (r *productRepo) FindLowStock(ctx context.Context) ([]model.Product, error) {
	var products []model.Product
	err := r.db.WithContext(ctx).
		Where("is_composite = false AND stock < min_stock AND status = ?", model.StatusActive).
		Order("stock ASC").
		Find(&products).Error
	return products, err
}

// FindVisible pages the public base query. The stock predicate is advisory:
// composite rows carry no authoritative counter, so they pass here and get
// their derived availability checked by the caller.
func (r *productRepo) FindVisible(ctx context.Context, q CatalogQuery) ([]model.Product, int64, error) {
	base := r.db.WithContext(ctx).Model(&model.Product{}).
		Where("status = ? AND visible = true", model.StatusActive).
		Where("is_composite = true OR stock > 0")

	if q.Search != "" {
		pattern := "%" + q.Search + "%"
		base = base.Where("name ILIKE ? OR code ILIKE ? OR description ILIKE ?", pattern, pattern, pattern)
	}
	if q.Category != "" {
		base = base.Where("category = ?", q.Category)
	}
	if q.PriceMin != nil {
		base = base.Where("sale_price >= ?", q.PriceMin)
	}
	if q.PriceMax != nil {
		base = base.Where("sale_price <= ?", q.PriceMax)
	}

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var products []model.Product
	err := base.Order("id ASC").Offset(q.Offset).Limit(q.Limit).Find(&products).Error
	return products, total, err
}

// LockForUpdate takes FOR UPDATE row locks in ascending id order so that
// concurrent composite sales touching overlapping components cannot deadlock.
func (r *productRepo) LockForUpdate(tx *gorm.DB, ids []uint) ([]model.Product, error) {
	var products []model.Product
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id IN ?", ids).
		Order("id ASC").
		Find(&products).Error
	return products, err
}

// UpdateStock runs on the caller's tx so the counter write and the ledger
// append commit as one unit.
func (r *productRepo) UpdateStock(tx *gorm.DB, id uint, newStock int, updatedBy string) error {
	return tx.Model(&model.Product{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"stock":      newStock,
			"updated_by": updatedBy,
		}).Error
}

func (r *productRepo) SetComposite(tx *gorm.DB, id uint, composite bool) error {
	return tx.Model(&model.Product{}).Where("id = ?", id).Update("is_composite", composite).Error
}

func (r *productRepo) SetVariantParent(tx *gorm.DB, id uint, parent bool) error {
	return tx.Model(&model.Product{}).Where("id = ?", id).Update("is_variant_parent", parent).Error
}
