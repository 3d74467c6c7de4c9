package service

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"go-jewelry-pos/internal/model"
	"go-jewelry-pos/internal/repository"

	"gorm.io/gorm"
)

// memStore backs the fake repositories; everything service-level runs
// against it without a live database.
type memStore struct {
	products   map[uint]*model.Product
	components map[uint]*model.SetComponent
	variants   map[uint]*model.Variant
	movements  []model.StockMovement
	images     map[uint][]model.ProductImage

	nextComponentID uint
	nextVariantID   uint

	// Deletes issued on a tx stay pending until the runner commits; the
	// ctx-scoped count methods still see pending rows, mirroring what a
	// separate pool connection observes under READ COMMITTED.
	pendingComponentDeletes map[uint]bool
	pendingVariantDeletes   map[uint]bool

	failImages   bool
	failVariants bool
}

func newMemStore() *memStore {
	return &memStore{
		products:                make(map[uint]*model.Product),
		components:              make(map[uint]*model.SetComponent),
		variants:                make(map[uint]*model.Variant),
		images:                  make(map[uint][]model.ProductImage),
		pendingComponentDeletes: make(map[uint]bool),
		pendingVariantDeletes:   make(map[uint]bool),
	}
}

func (s *memStore) addProduct(p model.Product) *model.Product {
	if p.Status == "" {
		p.Status = model.StatusActive
	}
	cp := p
	s.products[cp.ID] = &cp
	return &cp
}

func (s *memStore) addComponent(setID, componentID uint, quantity, position int) *model.SetComponent {
	s.nextComponentID++
	c := &model.SetComponent{
		ID:          s.nextComponentID,
		SetID:       setID,
		ComponentID: componentID,
		Quantity:    quantity,
		Position:    position,
	}
	s.components[c.ID] = c
	s.products[setID].IsComposite = true
	return c
}

func (s *memStore) addVariant(v model.Variant) *model.Variant {
	s.nextVariantID++
	cp := v
	cp.ID = s.nextVariantID
	cp.CreatedAt = time.Unix(int64(cp.ID), 0)
	s.variants[cp.ID] = &cp
	s.products[cp.ProductID].IsVariantParent = true
	return &cp
}

// --- tx runner ---

type fakeTxRunner struct{ store *memStore }

func (r fakeTxRunner) Transaction(_ context.Context, fn func(tx *gorm.DB) error) error {
	err := fn(nil)
	if err == nil {
		for id := range r.store.pendingComponentDeletes {
			delete(r.store.components, id)
		}
		for id := range r.store.pendingVariantDeletes {
			delete(r.store.variants, id)
		}
	}
	r.store.pendingComponentDeletes = make(map[uint]bool)
	r.store.pendingVariantDeletes = make(map[uint]bool)
	return err
}

// --- product repo ---

type fakeProductRepo struct{ store *memStore }

func (r *fakeProductRepo) Create(_ context.Context, p *model.Product) error {
	if p.ID == 0 {
		p.ID = uint(len(r.store.products) + 1)
	}
	cp := *p
	r.store.products[p.ID] = &cp
	return nil
}

func (r *fakeProductRepo) FindByID(_ context.Context, id uint) (*model.Product, error) {
	p, ok := r.store.products[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *fakeProductRepo) FindByCode(_ context.Context, code string) (*model.Product, error) {
	for _, p := range r.store.products {
		if strings.EqualFold(p.Code, code) {
			cp := *p
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeProductRepo) FindByIDs(_ context.Context, ids []uint) ([]model.Product, error) {
	var out []model.Product
	for _, id := range ids {
		if p, ok := r.store.products[id]; ok {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *fakeProductRepo) Update(_ context.Context, p *model.Product) error {
	cp := *p
	r.store.products[p.ID] = &cp
	return nil
}

func (r *fakeProductRepo) FindAll(_ context.Context) ([]model.Product, error) {
	return r.sorted(func(p *model.Product) bool { return true }), nil
}

func (r *fakeProductRepo) FindLowStock(_ context.Context) ([]model.Product, error) {
	return r.sorted(func(p *model.Product) bool {
		return !p.IsComposite && p.Stock < p.MinStock && p.Status == model.StatusActive
	}), nil
}

func (r *fakeProductRepo) sorted(keep func(*model.Product) bool) []model.Product {
	var out []model.Product
	for _, p := range r.store.products {
		if keep(p) {
			out = append(out, *p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (r *fakeProductRepo) FindVisible(_ context.Context, q repository.CatalogQuery) ([]model.Product, int64, error) {
	matched := r.sorted(func(p *model.Product) bool {
		if !p.Sellable() {
			return false
		}
		if !p.IsComposite && p.Stock <= 0 {
			return false
		}
		if q.Search != "" {
			needle := strings.ToLower(q.Search)
			if !strings.Contains(strings.ToLower(p.Name), needle) &&
				!strings.Contains(strings.ToLower(p.Code), needle) &&
				!strings.Contains(strings.ToLower(p.Description), needle) {
				return false
			}
		}
		if q.Category != "" && p.Category != q.Category {
			return false
		}
		if q.PriceMin != nil && p.SalePrice.LessThan(*q.PriceMin) {
			return false
		}
		if q.PriceMax != nil && p.SalePrice.GreaterThan(*q.PriceMax) {
			return false
		}
		return true
	})

	total := int64(len(matched))
	if q.Offset >= len(matched) {
		return nil, total, nil
	}
	end := q.Offset + q.Limit
	if q.Limit <= 0 || end > len(matched) {
		end = len(matched)
	}
	return matched[q.Offset:end], total, nil
}

func (r *fakeProductRepo) LockForUpdate(_ *gorm.DB, ids []uint) ([]model.Product, error) {
	sorted := append([]uint(nil), ids...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	var out []model.Product
	for _, id := range sorted {
		if p, ok := r.store.products[id]; ok {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *fakeProductRepo) UpdateStock(_ *gorm.DB, id uint, newStock int, updatedBy string) error {
	p, ok := r.store.products[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	p.Stock = newStock
	p.UpdatedBy = updatedBy
	return nil
}

func (r *fakeProductRepo) SetComposite(_ *gorm.DB, id uint, composite bool) error {
	p, ok := r.store.products[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	p.IsComposite = composite
	return nil
}

func (r *fakeProductRepo) SetVariantParent(_ *gorm.DB, id uint, parent bool) error {
	p, ok := r.store.products[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	p.IsVariantParent = parent
	return nil
}

// --- component repo ---

type fakeComponentRepo struct{ store *memStore }

func (r *fakeComponentRepo) Create(_ *gorm.DB, c *model.SetComponent) error {
	r.store.nextComponentID++
	c.ID = r.store.nextComponentID
	cp := *c
	r.store.components[c.ID] = &cp
	return nil
}

func (r *fakeComponentRepo) Delete(_ *gorm.DB, id uint) error {
	r.store.pendingComponentDeletes[id] = true
	return nil
}

func (r *fakeComponentRepo) FindByID(_ context.Context, id uint) (*model.SetComponent, error) {
	c, ok := r.store.components[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *c
	return &cp, nil
}

func (r *fakeComponentRepo) ListBySet(_ context.Context, setID uint) ([]model.SetComponent, error) {
	var out []model.SetComponent
	for _, c := range r.store.components {
		if c.SetID != setID {
			continue
		}
		cp := *c
		if p, ok := r.store.products[c.ComponentID]; ok {
			prod := *p
			cp.Component = &prod
		}
		out = append(out, cp)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Position != out[j].Position {
			return out[i].Position < out[j].Position
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// CountBySet runs on its own connection: pending tx deletes are still visible.
func (r *fakeComponentRepo) CountBySet(_ context.Context, setID uint) (int64, error) {
	var count int64
	for _, c := range r.store.components {
		if c.SetID == setID {
			count++
		}
	}
	return count, nil
}

func (r *fakeComponentRepo) CountBySetTx(_ *gorm.DB, setID uint) (int64, error) {
	var count int64
	for id, c := range r.store.components {
		if c.SetID == setID && !r.store.pendingComponentDeletes[id] {
			count++
		}
	}
	return count, nil
}

func (r *fakeComponentRepo) Exists(_ context.Context, setID, componentID uint) (bool, error) {
	for _, c := range r.store.components {
		if c.SetID == setID && c.ComponentID == componentID {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeComponentRepo) ComponentIDsOf(_ context.Context, setID uint) ([]uint, error) {
	var ids []uint
	for _, c := range r.store.components {
		if c.SetID == setID {
			ids = append(ids, c.ComponentID)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

// --- variant repo ---

type fakeVariantRepo struct{ store *memStore }

func (r *fakeVariantRepo) Create(_ *gorm.DB, v *model.Variant) error {
	r.store.nextVariantID++
	v.ID = r.store.nextVariantID
	v.CreatedAt = time.Unix(int64(v.ID), 0)
	cp := *v
	r.store.variants[v.ID] = &cp
	return nil
}

func (r *fakeVariantRepo) Update(_ context.Context, v *model.Variant) error {
	cp := *v
	r.store.variants[v.ID] = &cp
	return nil
}

func (r *fakeVariantRepo) Delete(_ *gorm.DB, id uint) error {
	r.store.pendingVariantDeletes[id] = true
	return nil
}

func (r *fakeVariantRepo) FindByID(_ context.Context, id uint) (*model.Variant, error) {
	v, ok := r.store.variants[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *v
	return &cp, nil
}

func (r *fakeVariantRepo) ListByParent(_ context.Context, parentID uint, onlyActive bool) ([]model.Variant, error) {
	var out []model.Variant
	for _, v := range r.store.variants {
		if v.ProductID != parentID {
			continue
		}
		if onlyActive && !v.Active {
			continue
		}
		out = append(out, *v)
	}
	sortVariants(out)
	return out, nil
}

func (r *fakeVariantRepo) ListActiveByParents(_ context.Context, parentIDs []uint) ([]model.Variant, error) {
	if r.store.failVariants {
		return nil, errors.New("variant store unavailable")
	}
	wanted := make(map[uint]bool, len(parentIDs))
	for _, id := range parentIDs {
		wanted[id] = true
	}
	var out []model.Variant
	for _, v := range r.store.variants {
		if wanted[v.ProductID] && v.Active {
			out = append(out, *v)
		}
	}
	sortVariants(out)
	return out, nil
}

func (r *fakeVariantRepo) CountByParent(_ context.Context, parentID uint) (int64, error) {
	var count int64
	for _, v := range r.store.variants {
		if v.ProductID == parentID {
			count++
		}
	}
	return count, nil
}

func (r *fakeVariantRepo) CountByParentTx(_ *gorm.DB, parentID uint) (int64, error) {
	var count int64
	for id, v := range r.store.variants {
		if v.ProductID == parentID && !r.store.pendingVariantDeletes[id] {
			count++
		}
	}
	return count, nil
}

func sortVariants(out []model.Variant) {
	sort.Slice(out, func(i, j int) bool {
		if out[i].ProductID != out[j].ProductID {
			return out[i].ProductID < out[j].ProductID
		}
		if out[i].Position != out[j].Position {
			return out[i].Position < out[j].Position
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
}

// --- movement repo ---

type fakeMovementRepo struct{ store *memStore }

func (r *fakeMovementRepo) Create(_ *gorm.DB, m *model.StockMovement) error {
	m.ID = uint(len(r.store.movements) + 1)
	m.CreatedAt = time.Now()
	r.store.movements = append(r.store.movements, *m)
	return nil
}

func (r *fakeMovementRepo) ListByProduct(_ context.Context, productID uint, limit int) ([]model.StockMovement, error) {
	var out []model.StockMovement
	for i := len(r.store.movements) - 1; i >= 0; i-- {
		if r.store.movements[i].ProductID == productID {
			out = append(out, r.store.movements[i])
			if limit > 0 && len(out) == limit {
				break
			}
		}
	}
	return out, nil
}

func (r *fakeMovementRepo) GetDailyFlow(_ context.Context, _, _ time.Time) ([]repository.DailyFlowData, error) {
	return nil, nil
}

func (r *fakeMovementRepo) GetInventoryStats(_ context.Context) (*repository.InventoryStats, error) {
	return &repository.InventoryStats{}, nil
}

// --- image repo ---

type fakeImageRepo struct{ store *memStore }

func (r *fakeImageRepo) ListByProduct(_ context.Context, productID uint) ([]model.ProductImage, error) {
	if r.store.failImages {
		return nil, errors.New("image store unavailable")
	}
	return r.store.images[productID], nil
}

func (r *fakeImageRepo) ListByProducts(_ context.Context, productIDs []uint) ([]model.ProductImage, error) {
	if r.store.failImages {
		return nil, errors.New("image store unavailable")
	}
	var out []model.ProductImage
	for _, id := range productIDs {
		out = append(out, r.store.images[id]...)
	}
	return out, nil
}

// --- service builders ---

func newStockServiceForTest(store *memStore) StockService {
	return &stockService{
		productRepo:   &fakeProductRepo{store},
		componentRepo: &fakeComponentRepo{store},
		tx:            fakeTxRunner{store},
	}
}

func newSalesServiceForTest(store *memStore) SalesService {
	return &salesService{
		productRepo:   &fakeProductRepo{store},
		componentRepo: &fakeComponentRepo{store},
		movementRepo:  &fakeMovementRepo{store},
		tx:            fakeTxRunner{store},
	}
}

func newVariantServiceForTest(store *memStore) VariantService {
	return &variantService{
		productRepo: &fakeProductRepo{store},
		variantRepo: &fakeVariantRepo{store},
		tx:          fakeTxRunner{store},
	}
}

func newCatalogServiceForTest(store *memStore) CatalogService {
	return &catalogService{
		productRepo: &fakeProductRepo{store},
		variantRepo: &fakeVariantRepo{store},
		imageRepo:   &fakeImageRepo{store},
		stock:       newStockServiceForTest(store),
	}
}
