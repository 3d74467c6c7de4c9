package repository

import (
	"context"

	"go-jewelry-pos/internal/model"

	"gorm.io/gorm"
)

type VariantRepository interface {
	Create(tx *gorm.DB, variant *model.Variant) error
	Update(ctx context.Context, variant *model.Variant) error
	Delete(tx *gorm.DB, id uint) error
	FindByID(ctx context.Context, id uint) (*model.Variant, error)
	ListByParent(ctx context.Context, parentID uint, onlyActive bool) ([]model.Variant, error)
	ListActiveByParents(ctx context.Context, parentIDs []uint) ([]model.Variant, error)
	CountByParent(ctx context.Context, parentID uint) (int64, error)
	CountByParentTx(tx *gorm.DB, parentID uint) (int64, error)
}

type variantRepo struct {
	db *gorm.DB
}

func NewVariantRepo(db *gorm.DB) VariantRepository {
	return &variantRepo{db}
}

func (r *variantRepo) Create(tx *gorm.DB, variant *model.Variant) error {
	return tx.Create(variant).Error
}

func (r *variantRepo) Update(ctx context.Context, variant *model.Variant) error {
	return r.db.WithContext(ctx).Save(variant).Error
}

func (r *variantRepo) Delete(tx *gorm.DB, id uint) error {
	return tx.Delete(&model.Variant{}, "id = ?", id).Error
}

func (r *variantRepo) FindByID(ctx context.Context, id uint) (*model.Variant, error) {
	var variant model.Variant
	err := r.db.WithContext(ctx).First(&variant, "id = ?", id).Error
	return &variant, err
}

func (r *variantRepo) ListByParent(ctx context.Context, parentID uint, onlyActive bool) ([]model.Variant, error) {
	var variants []model.Variant
	query := r.db.WithContext(ctx).Where("product_id = ?", parentID)
	if onlyActive {
		query = query.Where("active = true")
	}
	err := query.Order("position ASC, created_at ASC").Find(&variants).Error
	return variants, err
}

// ListActiveByParents bulk-loads variants for a whole catalog page in one query.
func (r *variantRepo) ListActiveByParents(ctx context.Context, parentIDs []uint) ([]model.Variant, error) {
	var variants []model.Variant
	if len(parentIDs) == 0 {
		return variants, nil
	}
	err := r.db.WithContext(ctx).
		Where("product_id IN ? AND active = true", parentIDs).
		Order("product_id ASC, position ASC, created_at ASC").
		Find(&variants).Error
	return variants, err
}

func (r *variantRepo) CountByParent(ctx context.Context, parentID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Variant{}).
		Where("product_id = ?", parentID).
		Count(&count).Error
	return count, err
}

// CountByParentTx counts on the caller's tx so a delete earlier in the same
// transaction is reflected.
func (r *variantRepo) CountByParentTx(tx *gorm.DB, parentID uint) (int64, error) {
	var count int64
	err := tx.Model(&model.Variant{}).
		Where("product_id = ?", parentID).
		Count(&count).Error
	return count, err
}
