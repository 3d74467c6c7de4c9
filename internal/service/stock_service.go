package service

import (
	"context"
	"errors"
	"math"

	"go-jewelry-pos/internal/apperr"
	"go-jewelry-pos/internal/model"
	"go-jewelry-pos/internal/repository"

	"gorm.io/gorm"
)

// maxCompositionDepth caps the cycle walk over the set graph. Real
// compositions are one or two levels deep; anything beyond the cap is
// rejected outright rather than walked forever.
const maxCompositionDepth = 20

type StockService interface {
	ResolveAvailability(ctx context.Context, productID uint) (int, error)
	ValidateSufficiency(ctx context.Context, productID uint, quantity int) (bool, error)
	AddComponent(ctx context.Context, setID, componentID uint, quantity, position int) (*model.SetComponent, error)
	RemoveComponent(ctx context.Context, relationID uint) error
	ListComponents(ctx context.Context, setID uint) ([]model.SetComponent, error)
}

type stockService struct {
	productRepo   repository.ProductRepository
	componentRepo repository.ComponentRepository
	tx            txRunner
}

func NewStockService(pRepo repository.ProductRepository, cRepo repository.ComponentRepository, db *gorm.DB) StockService {
	return &stockService{
		productRepo:   pRepo,
		componentRepo: cRepo,
		tx:            gormTxRunner{db},
	}
}

// ResolveAvailability returns the sellable quantity for any product id.
// Non-composite products answer with their raw counter; sets derive the
// bottleneck across components at call time, never from a cached value.
func (s *stockService) ResolveAvailability(ctx context.Context, productID uint) (int, error) {
	product, err := s.productRepo.FindByID(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, apperr.NotFound("product %d not found", productID)
		}
		return 0, apperr.Upstream(err)
	}

	if !product.IsComposite {
		return product.Stock, nil
	}

	components, err := s.componentRepo.ListBySet(ctx, productID)
	if err != nil {
		return 0, apperr.Upstream(err)
	}

	return bottleneckAvailability(components), nil
}

func (s *stockService) ValidateSufficiency(ctx context.Context, productID uint, quantity int) (bool, error) {
	available, err := s.ResolveAvailability(ctx, productID)
	if err != nil {
		return false, err
	}
	return available >= quantity, nil
}

// bottleneckAvailability is the resolver core: the scarcest component caps
// the set. Inactive components contribute zero, an empty set sells zero.
func bottleneckAvailability(components []model.SetComponent) int {
	if len(components) == 0 {
		return 0
	}
	available := math.MaxInt
	for _, c := range components {
		contribution := 0
		if c.Component != nil && c.Component.Status == model.StatusActive && c.Quantity > 0 && c.Component.Stock > 0 {
			contribution = c.Component.Stock / c.Quantity
		}
		if contribution < available {
			available = contribution
		}
	}
	return available
}

func (s *stockService) AddComponent(ctx context.Context, setID, componentID uint, quantity, position int) (*model.SetComponent, error) {
	// 1. Input validation, before any read
	if quantity <= 0 {
		return nil, apperr.Validation("component quantity must be positive, got %d", quantity)
	}
	if setID == componentID {
		return nil, apperr.Validation("a set cannot contain itself (product %d)", setID)
	}

	// 2. Both ends must exist
	set, err := s.productRepo.FindByID(ctx, setID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("set product %d not found", setID)
		}
		return nil, apperr.Upstream(err)
	}
	if _, err := s.productRepo.FindByID(ctx, componentID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("component product %d not found", componentID)
		}
		return nil, apperr.Upstream(err)
	}

	// 3. Duplicate relationship
	exists, err := s.componentRepo.Exists(ctx, setID, componentID)
	if err != nil {
		return nil, apperr.Upstream(err)
	}
	if exists {
		return nil, apperr.Conflict("product %d is already a component of set %d", componentID, setID)
	}

	// 4. Component cap
	count, err := s.componentRepo.CountBySet(ctx, setID)
	if err != nil {
		return nil, apperr.Upstream(err)
	}
	if count >= model.MaxComponentsPerSet {
		return nil, apperr.Validation("set %d already has the maximum of %d components", setID, model.MaxComponentsPerSet)
	}

	// 5. Cycle guard over the whole composition graph, not just one hop
	cycle, err := s.createsCycle(ctx, setID, componentID)
	if err != nil {
		return nil, apperr.Upstream(err)
	}
	if cycle {
		return nil, apperr.Conflict("adding product %d to set %d would create a composition cycle", componentID, setID)
	}

	component := &model.SetComponent{
		SetID:       setID,
		ComponentID: componentID,
		Quantity:    quantity,
		Position:    position,
	}

	err = s.tx.Transaction(ctx, func(tx *gorm.DB) error {
		if err := s.componentRepo.Create(tx, component); err != nil {
			return err
		}
		if !set.IsComposite {
			return s.productRepo.SetComposite(tx, setID, true)
		}
		return nil
	})
	if err != nil {
		return nil, apperr.Upstream(err)
	}

	return component, nil
}

// createsCycle walks the set graph depth-first from the candidate component.
// Reaching the target set means the new edge would close a cycle, however
// deep the chain (A contains B contains C contains A).
func (s *stockService) createsCycle(ctx context.Context, setID, componentID uint) (bool, error) {
	visited := make(map[uint]bool)

	var walk func(id uint, depth int) (bool, error)
	walk = func(id uint, depth int) (bool, error) {
		if id == setID {
			return true, nil
		}
		if depth >= maxCompositionDepth || visited[id] {
			return false, nil
		}
		visited[id] = true

		children, err := s.componentRepo.ComponentIDsOf(ctx, id)
		if err != nil {
			return false, err
		}
		for _, child := range children {
			found, err := walk(child, depth+1)
			if err != nil || found {
				return found, err
			}
		}
		return false, nil
	}

	return walk(componentID, 0)
}

func (s *stockService) RemoveComponent(ctx context.Context, relationID uint) error {
	relation, err := s.componentRepo.FindByID(ctx, relationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("component relation %d not found", relationID)
		}
		return apperr.Upstream(err)
	}

	err = s.tx.Transaction(ctx, func(tx *gorm.DB) error {
		if err := s.componentRepo.Delete(tx, relationID); err != nil {
			return err
		}
		remaining, err := s.componentRepo.CountBySetTx(tx, relation.SetID)
		if err != nil {
			return err
		}
		// Last component gone: the set is a plain product again
		if remaining == 0 {
			return s.productRepo.SetComposite(tx, relation.SetID, false)
		}
		return nil
	})
	if err != nil {
		return apperr.Upstream(err)
	}
	return nil
}

func (s *stockService) ListComponents(ctx context.Context, setID uint) ([]model.SetComponent, error) {
	if _, err := s.productRepo.FindByID(ctx, setID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("set product %d not found", setID)
		}
		return nil, apperr.Upstream(err)
	}
	components, err := s.componentRepo.ListBySet(ctx, setID)
	if err != nil {
		return nil, apperr.Upstream(err)
	}
	return components, nil
}
