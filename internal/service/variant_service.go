package service

import (
	"context"
	"errors"

	"go-jewelry-pos/internal/apperr"
	"go-jewelry-pos/internal/model"
	"go-jewelry-pos/internal/repository"
	"go-jewelry-pos/pkg/validator"

	"gorm.io/gorm"
)

type VariantService interface {
	CreateVariant(ctx context.Context, variant *model.Variant) error
	UpdateVariant(ctx context.Context, id uint, req *model.Variant) (*model.Variant, error)
	RemoveVariant(ctx context.Context, id uint) error
	ListVariants(ctx context.Context, parentID uint, onlyActive bool) ([]model.Variant, error)
}

type variantService struct {
	productRepo repository.ProductRepository
	variantRepo repository.VariantRepository
	tx          txRunner
}

func NewVariantService(pRepo repository.ProductRepository, vRepo repository.VariantRepository, db *gorm.DB) VariantService {
	return &variantService{
		productRepo: pRepo,
		variantRepo: vRepo,
		tx:          gormTxRunner{db},
	}
}

// CreateVariant adds a presentation variant under a parent. Price and stock
// are deliberately absent from the variant row; reads join through the
// parent so the two can never diverge.
func (s *variantService) CreateVariant(ctx context.Context, variant *model.Variant) error {
	if errs := validator.ValidateStruct(variant); len(errs) > 0 {
		first := errs[0]
		return apperr.Validation("validation failed: field '%s' failed on tag '%s'", first.FailedField, first.Tag)
	}

	parent, err := s.productRepo.FindByID(ctx, variant.ProductID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("parent product %d not found", variant.ProductID)
		}
		return apperr.Upstream(err)
	}

	count, err := s.variantRepo.CountByParent(ctx, variant.ProductID)
	if err != nil {
		return apperr.Upstream(err)
	}
	if count >= model.MaxVariantsPerParent {
		return apperr.Validation("product %d already has the maximum of %d variants", variant.ProductID, model.MaxVariantsPerParent)
	}

	err = s.tx.Transaction(ctx, func(tx *gorm.DB) error {
		if err := s.variantRepo.Create(tx, variant); err != nil {
			return err
		}
		// First variant flips the parent flag
		if !parent.IsVariantParent {
			return s.productRepo.SetVariantParent(tx, variant.ProductID, true)
		}
		return nil
	})
	if err != nil {
		return apperr.Upstream(err)
	}
	return nil
}

func (s *variantService) UpdateVariant(ctx context.Context, id uint, req *model.Variant) (*model.Variant, error) {
	existing, err := s.variantRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("variant %d not found", id)
		}
		return nil, apperr.Upstream(err)
	}

	if req.Name == "" {
		return nil, apperr.Validation("variant name is required")
	}

	existing.Name = req.Name
	existing.Description = req.Description
	existing.ImageURL = req.ImageURL
	existing.Position = req.Position
	existing.Active = req.Active

	if err := s.variantRepo.Update(ctx, existing); err != nil {
		return nil, apperr.Upstream(err)
	}
	return existing, nil
}

func (s *variantService) RemoveVariant(ctx context.Context, id uint) error {
	variant, err := s.variantRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("variant %d not found", id)
		}
		return apperr.Upstream(err)
	}

	err = s.tx.Transaction(ctx, func(tx *gorm.DB) error {
		if err := s.variantRepo.Delete(tx, id); err != nil {
			return err
		}
		remaining, err := s.variantRepo.CountByParentTx(tx, variant.ProductID)
		if err != nil {
			return err
		}
		// Last variant gone: parent is a plain product again
		if remaining == 0 {
			return s.productRepo.SetVariantParent(tx, variant.ProductID, false)
		}
		return nil
	})
	if err != nil {
		return apperr.Upstream(err)
	}
	return nil
}

func (s *variantService) ListVariants(ctx context.Context, parentID uint, onlyActive bool) ([]model.Variant, error) {
	if _, err := s.productRepo.FindByID(ctx, parentID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("parent product %d not found", parentID)
		}
		return nil, apperr.Upstream(err)
	}
	variants, err := s.variantRepo.ListByParent(ctx, parentID, onlyActive)
	if err != nil {
		return nil, apperr.Upstream(err)
	}
	return variants, nil
}
