package repository

import (
	"context"

	"go-jewelry-pos/internal/model"

	"gorm.io/gorm"
)

type ComponentRepository interface {
	Create(tx *gorm.DB, component *model.SetComponent) error
	Delete(tx *gorm.DB, id uint) error
	FindByID(ctx context.Context, id uint) (*model.SetComponent, error)
	ListBySet(ctx context.Context, setID uint) ([]model.SetComponent, error)
	CountBySet(ctx context.Context, setID uint) (int64, error)
	CountBySetTx(tx *gorm.DB, setID uint) (int64, error)
	Exists(ctx context.Context, setID, componentID uint) (bool, error)
	ComponentIDsOf(ctx context.Context, setID uint) ([]uint, error)
}

type componentRepo struct {
	db *gorm.DB
}

func NewComponentRepo(db *gorm.DB) ComponentRepository {
	return &componentRepo{db}
}

func (r *componentRepo) Create(tx *gorm.DB, component *model.SetComponent) error {
	return tx.Create(component).Error
}

func (r *componentRepo) Delete(tx *gorm.DB, id uint) error {
	return tx.Delete(&model.SetComponent{}, "id = ?", id).Error
}

func (r *componentRepo) FindByID(ctx context.Context, id uint) (*model.SetComponent, error) {
	var component model.SetComponent
	err := r.db.WithContext(ctx).First(&component, "id = ?", id).Error
	return &component, err
}

// ListBySet loads components with their product rows in one query.
func (r *componentRepo) ListBySet(ctx context.Context, setID uint) ([]model.SetComponent, error) {
	var components []model.SetComponent
	err := r.db.WithContext(ctx).
		Preload("Component").
		Where("set_id = ?", setID).
		Order("position ASC, id ASC").
		Find(&components).Error
	return components, err
}

func (r *componentRepo) CountBySet(ctx context.Context, setID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.SetComponent{}).
		Where("set_id = ?", setID).
		Count(&count).Error
	return count, err
}

// CountBySetTx counts on the caller's tx. The pool connection behind
// CountBySet cannot see rows deleted earlier in an open transaction, so
// flag maintenance after a delete must count here.
func (r *componentRepo) CountBySetTx(tx *gorm.DB, setID uint) (int64, error) {
	var count int64
	err := tx.Model(&model.SetComponent{}).
		Where("set_id = ?", setID).
		Count(&count).Error
	return count, err
}

func (r *componentRepo) Exists(ctx context.Context, setID, componentID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.SetComponent{}).
		Where("set_id = ? AND component_id = ?", setID, componentID).
		Count(&count).Error
	return count > 0, err
}

// ComponentIDsOf returns the bare edge list used by the cycle walk.
func (r *componentRepo) ComponentIDsOf(ctx context.Context, setID uint) ([]uint, error) {
	var ids []uint
	err := r.db.WithContext(ctx).Model(&model.SetComponent{}).
		Where("set_id = ?", setID).
		Pluck("component_id", &ids).Error
	return ids, err
}
