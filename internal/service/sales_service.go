package service

import (
	"context"
	"encoding/json"
	"fmt"

	"go-jewelry-pos/internal/apperr"
	"go-jewelry-pos/internal/model"
	"go-jewelry-pos/internal/repository"
	"go-jewelry-pos/internal/ws"

	"gorm.io/gorm"
)

// Operator identifies who performed a mutation; it is stamped on every
// ledger row.
type Operator struct {
	ID   string
	Name string
}

type SalesService interface {
	ApplySaleLine(ctx context.Context, productID uint, quantity int, reason string, op Operator) error
	ApplyReturnLine(ctx context.Context, productID uint, quantity int, reason string, op Operator) error
	RecordManualAdjustment(ctx context.Context, productID uint, newStock int, reason string, op Operator) error
	ListMovements(ctx context.Context, productID uint, limit int) ([]model.StockMovement, error)
}

type salesService struct {
	productRepo   repository.ProductRepository
	componentRepo repository.ComponentRepository
	movementRepo  repository.MovementRepository
	tx            txRunner
	wsHub         *ws.Hub
}

func NewSalesService(pRepo repository.ProductRepository, cRepo repository.ComponentRepository, mRepo repository.MovementRepository, db *gorm.DB, hub *ws.Hub) SalesService {
	return &salesService{
		productRepo:   pRepo,
		componentRepo: cRepo,
		movementRepo:  mRepo,
		tx:            gormTxRunner{db},
		wsHub:         hub,
	}
}

// ApplySaleLine decrements stock for one logical sale line. A composite line
// fans out into per-component decrements, each with its own ledger row; the
// set's own counter is never touched. Sufficiency is re-validated after the
// row locks are held, so concurrent lines cannot drive a counter negative.
func (s *salesService) ApplySaleLine(ctx context.Context, productID uint, quantity int, reason string, op Operator) error {
	return s.applyLine(ctx, productID, quantity, reason, op, model.MovementExit)
}

// ApplyReturnLine is the symmetric increment, mirroring the same fan-out.
func (s *salesService) ApplyReturnLine(ctx context.Context, productID uint, quantity int, reason string, op Operator) error {
	return s.applyLine(ctx, productID, quantity, reason, op, model.MovementEntry)
}

func (s *salesService) applyLine(ctx context.Context, productID uint, quantity int, reason string, op Operator, kind model.MovementKind) error {
	if quantity <= 0 {
		return apperr.Validation("quantity must be positive, got %d", quantity)
	}

	var touched []model.StockMovement

	err := s.tx.Transaction(ctx, func(tx *gorm.DB) error {
		locked, err := s.productRepo.LockForUpdate(tx, []uint{productID})
		if err != nil {
			return apperr.Upstream(err)
		}
		if len(locked) == 0 {
			return apperr.NotFound("product %d not found", productID)
		}
		product := locked[0]

		if !product.IsComposite {
			movement, err := s.mutateCounter(tx, &product, quantity, kind, reason, op)
			if err != nil {
				return err
			}
			touched = append(touched, *movement)
			return nil
		}

		// Composite: load the recipe, then lock every component row before
		// checking anything, so the check and the writes see the same state.
		components, err := s.componentRepo.ListBySet(ctx, productID)
		if err != nil {
			return apperr.Upstream(err)
		}

		ids := make([]uint, 0, len(components))
		for _, c := range components {
			ids = append(ids, c.ComponentID)
		}
		lockedRows, err := s.productRepo.LockForUpdate(tx, ids)
		if err != nil {
			return apperr.Upstream(err)
		}
		byID := make(map[uint]model.Product, len(lockedRows))
		for _, row := range lockedRows {
			byID[row.ID] = row
		}

		resolved := make([]model.SetComponent, 0, len(components))
		for _, c := range components {
			row, ok := byID[c.ComponentID]
			if !ok {
				return apperr.Upstream(fmt.Errorf("component product %d of set %d missing", c.ComponentID, productID))
			}
			c.Component = &row
			resolved = append(resolved, c)
		}

		// Full-set sufficiency check before any write
		if kind == model.MovementExit {
			available := bottleneckAvailability(resolved)
			if available < quantity {
				return apperr.Conflict("insufficient stock for set %s: available %d", product.Code, available)
			}
		}

		annotated := fmt.Sprintf("%s (set %s)", reason, product.Code)
		for _, c := range resolved {
			row := *c.Component
			movement, err := s.mutateCounter(tx, &row, c.Quantity*quantity, kind, annotated, op)
			if err != nil {
				return err
			}
			touched = append(touched, *movement)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.broadcastMovements(kind, touched, op)
	return nil
}

// mutateCounter is the one unit of work per raw counter change: read under
// lock, write the counter, append the ledger row on the same tx.
func (s *salesService) mutateCounter(tx *gorm.DB, product *model.Product, quantity int, kind model.MovementKind, reason string, op Operator) (*model.StockMovement, error) {
	before := product.Stock
	var after int
	switch kind {
	case model.MovementExit:
		if before < quantity {
			return nil, apperr.Conflict("insufficient stock for %s: available %d", product.Code, before)
		}
		after = before - quantity
	case model.MovementEntry:
		after = before + quantity
	default:
		return nil, apperr.Validation("unsupported movement kind %q", kind)
	}

	if err := s.productRepo.UpdateStock(tx, product.ID, after, op.ID); err != nil {
		return nil, apperr.Upstream(err)
	}

	movement := &model.StockMovement{
		ProductID:    product.ID,
		Kind:         kind,
		Quantity:     quantity,
		Reason:       reason,
		OperatorID:   op.ID,
		OperatorName: op.Name,
		StockBefore:  before,
		StockAfter:   after,
	}
	if err := s.movementRepo.Create(tx, movement); err != nil {
		return nil, apperr.Upstream(err)
	}

	product.Stock = after
	return movement, nil
}

// RecordManualAdjustment sets the raw counter of a non-composite product to
// an exact value, capturing the before/after pair in one ledger row.
func (s *salesService) RecordManualAdjustment(ctx context.Context, productID uint, newStock int, reason string, op Operator) error {
	if newStock < 0 {
		return apperr.Validation("stock cannot be negative, got %d", newStock)
	}

	var touched []model.StockMovement

	err := s.tx.Transaction(ctx, func(tx *gorm.DB) error {
		locked, err := s.productRepo.LockForUpdate(tx, []uint{productID})
		if err != nil {
			return apperr.Upstream(err)
		}
		if len(locked) == 0 {
			return apperr.NotFound("product %d not found", productID)
		}
		product := locked[0]

		if product.IsComposite {
			return apperr.Validation("stock of set %s is derived from its components and cannot be adjusted directly", product.Code)
		}

		delta := newStock - product.Stock
		if delta == 0 {
			return nil
		}
		quantity := delta
		if quantity < 0 {
			quantity = -quantity
		}

		if err := s.productRepo.UpdateStock(tx, product.ID, newStock, op.ID); err != nil {
			return apperr.Upstream(err)
		}
		movement := &model.StockMovement{
			ProductID:    product.ID,
			Kind:         model.MovementAdjustment,
			Quantity:     quantity,
			Reason:       reason,
			OperatorID:   op.ID,
			OperatorName: op.Name,
			StockBefore:  product.Stock,
			StockAfter:   newStock,
		}
		if err := s.movementRepo.Create(tx, movement); err != nil {
			return apperr.Upstream(err)
		}
		touched = append(touched, *movement)
		return nil
	})
	if err != nil {
		return err
	}

	s.broadcastMovements(model.MovementAdjustment, touched, op)
	return nil
}

func (s *salesService) ListMovements(ctx context.Context, productID uint, limit int) ([]model.StockMovement, error) {
	movements, err := s.movementRepo.ListByProduct(ctx, productID, limit)
	if err != nil {
		return nil, apperr.Upstream(err)
	}
	return movements, nil
}

// broadcastMovements pushes a stock_update to connected back-office clients.
func (s *salesService) broadcastMovements(kind model.MovementKind, movements []model.StockMovement, op Operator) {
	if s.wsHub == nil || len(movements) == 0 {
		return
	}
	go func() {
		rows := make([]map[string]interface{}, 0, len(movements))
		for _, m := range movements {
			rows = append(rows, map[string]interface{}{
				"product_id": m.ProductID,
				"quantity":   m.Quantity,
				"new_stock":  m.StockAfter,
			})
		}
		payload := map[string]interface{}{
			"type":      "stock_update",
			"action":    string(kind),
			"movements": rows,
			"user": map[string]interface{}{
				"id":   op.ID,
				"name": op.Name,
			},
			"message": fmt.Sprintf("%s recorded a stock %s touching %d product(s)", op.Name, kind, len(movements)),
		}
		msg, _ := json.Marshal(payload)
		s.wsHub.Broadcast <- msg
	}()
}
