package repository

import (
	"context"

	"go-jewelry-pos/internal/model"

	"gorm.io/gorm"
)

// ImageRepository is a read-only view over the image directory; uploads and
// transformations belong to the image-management subsystem.
type ImageRepository interface {
	ListByProduct(ctx context.Context, productID uint) ([]model.ProductImage, error)
	ListByProducts(ctx context.Context, productIDs []uint) ([]model.ProductImage, error)
}

type imageRepo struct {
	db *gorm.DB
}

func NewImageRepo(db *gorm.DB) ImageRepository {
	return &imageRepo{db}
}

func (r *imageRepo) ListByProduct(ctx context.Context, productID uint) ([]model.ProductImage, error) {
	var images []model.ProductImage
	err := r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("is_primary DESC, position ASC").
		Find(&images).Error
	return images, err
}

// ListByProducts bulk-loads a whole catalog page in one query.
func (r *imageRepo) ListByProducts(ctx context.Context, productIDs []uint) ([]model.ProductImage, error) {
	var images []model.ProductImage
	if len(productIDs) == 0 {
		return images, nil
	}
	err := r.db.WithContext(ctx).
		Where("product_id IN ?", productIDs).
		Order("product_id ASC, is_primary DESC, position ASC").
		Find(&images).Error
	return images, err
}
