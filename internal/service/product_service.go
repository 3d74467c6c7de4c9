package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go-jewelry-pos/internal/apperr"
	"go-jewelry-pos/internal/model"
	"go-jewelry-pos/internal/repository"
	"go-jewelry-pos/internal/ws"
	"go-jewelry-pos/pkg/validator"

	"gorm.io/gorm"
)

type ProductService interface {
	CreateProduct(ctx context.Context, req *model.Product, op Operator) error
	UpdateProduct(ctx context.Context, id uint, req *model.Product, op Operator) (*model.Product, error)
	GetProduct(ctx context.Context, id uint) (*model.Product, error)
	GetAllProducts(ctx context.Context) ([]model.Product, error)
	GetLowStockProducts(ctx context.Context) ([]model.Product, error)
}

type productService struct {
	productRepo repository.ProductRepository
	wsHub       *ws.Hub
}

func NewProductService(pRepo repository.ProductRepository, hub *ws.Hub) ProductService {
	return &productService{
		productRepo: pRepo,
		wsHub:       hub,
	}
}

func (s *productService) CreateProduct(ctx context.Context, req *model.Product, op Operator) error {
	// 1. Struct validation
	if errs := validator.ValidateStruct(req); len(errs) > 0 {
		first := errs[0]
		return apperr.Validation("validation failed: field '%s' failed on tag '%s'", first.FailedField, first.Tag)
	}
	if req.Stock < 0 {
		return apperr.Validation("stock cannot be negative")
	}
	if req.Status == "" {
		req.Status = model.StatusActive
	}

	// 2. Codes are unique ignoring case
	existing, err := s.productRepo.FindByCode(ctx, req.Code)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.Upstream(err)
	}
	if err == nil && existing.ID != 0 {
		return apperr.Conflict("product code %q already exists", req.Code)
	}

	// 3. Composition flags are owned by their managers, never by CRUD
	req.IsComposite = false
	req.IsVariantParent = false

	req.CreatedBy = op.ID
	req.UpdatedBy = op.ID

	if err := s.productRepo.Create(ctx, req); err != nil {
		return apperr.Upstream(err)
	}

	s.broadcastProduct("product_created", req, op)
	return nil
}

func (s *productService) UpdateProduct(ctx context.Context, id uint, req *model.Product, op Operator) (*model.Product, error) {
	existing, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("product %d not found", id)
		}
		return nil, apperr.Upstream(err)
	}

	if req.Name == "" || req.Code == "" {
		return nil, apperr.Validation("name and code are required")
	}

	// Code change must not collide with another product
	if req.Code != existing.Code {
		other, err := s.productRepo.FindByCode(ctx, req.Code)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.Upstream(err)
		}
		if err == nil && other.ID != id {
			return nil, apperr.Conflict("product code %q already exists", req.Code)
		}
	}

	existing.Code = req.Code
	existing.Name = req.Name
	existing.Description = req.Description
	existing.Category = req.Category
	existing.CostPrice = req.CostPrice
	existing.SalePrice = req.SalePrice
	existing.Currency = req.Currency
	existing.MinStock = req.MinStock
	existing.Visible = req.Visible
	existing.ImageURL = req.ImageURL
	if req.Status != "" {
		existing.Status = req.Status
	}
	existing.UpdatedBy = op.ID
	// The raw counter is mutated through the ledger only; CRUD never touches
	// it once the row exists.

	if err := s.productRepo.Update(ctx, existing); err != nil {
		return nil, apperr.Upstream(err)
	}

	s.broadcastProduct("product_updated", existing, op)
	return existing, nil
}

func (s *productService) GetProduct(ctx context.Context, id uint) (*model.Product, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("product %d not found", id)
		}
		return nil, apperr.Upstream(err)
	}
	return product, nil
}

func (s *productService) GetAllProducts(ctx context.Context) ([]model.Product, error) {
	products, err := s.productRepo.FindAll(ctx)
	if err != nil {
		return nil, apperr.Upstream(err)
	}
	return products, nil
}

func (s *productService) GetLowStockProducts(ctx context.Context) ([]model.Product, error) {
	products, err := s.productRepo.FindLowStock(ctx)
	if err != nil {
		return nil, apperr.Upstream(err)
	}
	return products, nil
}

func (s *productService) broadcastProduct(action string, product *model.Product, op Operator) {
	if s.wsHub == nil {
		return
	}
	go func() {
		payload := map[string]interface{}{
			"type":   "stock_update",
			"action": action,
			"product": map[string]interface{}{
				"id":    product.ID,
				"code":  product.Code,
				"name":  product.Name,
				"stock": product.Stock,
				"price": product.SalePrice,
			},
			"user": map[string]interface{}{
				"id":   op.ID,
				"name": op.Name,
			},
			"message": fmt.Sprintf("%s %s '%s'", op.Name, action, product.Name),
		}
		msg, _ := json.Marshal(payload)
		s.wsHub.Broadcast <- msg
	}()
}
