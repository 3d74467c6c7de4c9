package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"math/rand"
	"strconv"

	"go-jewelry-pos/internal/apperr"
	"go-jewelry-pos/internal/model"
	"go-jewelry-pos/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	defaultPerPage = 24
	maxPerPage     = 100

	// maxCategoryRun caps consecutive same-category listings in a shuffled page.
	maxCategoryRun = 3
)

// CatalogFilters is the caller-supplied filter set for the public catalog.
type CatalogFilters struct {
	Search   string
	Category string
	PriceMin *decimal.Decimal
	PriceMax *decimal.Decimal
	Page     int
	PerPage  int
	Shuffle  bool
	Seed     *int64
}

// VirtualProduct is one catalog-facing listing: either a plain product or
// one specific variant of a variant parent. Key is the pagination and
// deduplication identity from expansion onward.
type VirtualProduct struct {
	Key         string          `json:"key"`
	ProductID   uint            `json:"product_id"`
	VariantID   *uint           `json:"variant_id,omitempty"`
	Code        string          `json:"code"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Category    string          `json:"category"`
	Price       decimal.Decimal `json:"price"`
	Currency    string          `json:"currency"`
	ImageURL    string          `json:"image_url"`
	Images      []string        `json:"images,omitempty"`
	Available   bool            `json:"available"`
}

// CatalogPage is the assembler's response envelope. Total and TotalPages are
// estimates: the expansion ratio of the current page is projected over the
// base row count, which drifts under heavy variant skew. HasMore is exact,
// it follows the base pagination.
type CatalogPage struct {
	Items          []VirtualProduct `json:"items"`
	Page           int              `json:"page"`
	PerPage        int              `json:"per_page"`
	Total          int64            `json:"total"`
	TotalPages     int64            `json:"total_pages"`
	TotalEstimated bool             `json:"total_estimated"`
	HasMore        bool             `json:"has_more"`
	Seed           *int64           `json:"seed,omitempty"`
}

// ProductDetail is the single-item form with the exact counter exposed.
// Cost and internal thresholds never serialize here.
type ProductDetail struct {
	VirtualProduct
	Stock int `json:"stock"`
}

type CatalogService interface {
	Assemble(ctx context.Context, filters CatalogFilters) (*CatalogPage, error)
	GetProductDetail(ctx context.Context, productID uint, variantID *uint) (*ProductDetail, error)
}

type catalogService struct {
	productRepo repository.ProductRepository
	variantRepo repository.VariantRepository
	imageRepo   repository.ImageRepository
	stock       StockService
}

func NewCatalogService(pRepo repository.ProductRepository, vRepo repository.VariantRepository, iRepo repository.ImageRepository, stock StockService) CatalogService {
	return &catalogService{
		productRepo: pRepo,
		variantRepo: vRepo,
		imageRepo:   iRepo,
		stock:       stock,
	}
}

// Assemble runs the storefront pipeline over one request:
// fetch, dedup, enrich, filter sets, expand, shuffle, balance, paginate.
func (s *catalogService) Assemble(ctx context.Context, filters CatalogFilters) (*CatalogPage, error) {
	page := filters.Page
	if page < 1 {
		page = 1
	}
	perPage := filters.PerPage
	if perPage < 1 {
		perPage = defaultPerPage
	}
	if perPage > maxPerPage {
		perPage = maxPerPage
	}

	// 1. Fetch the base page. A failure here is the one fatal path.
	products, baseTotal, err := s.productRepo.FindVisible(ctx, repository.CatalogQuery{
		Search:   filters.Search,
		Category: filters.Category,
		PriceMin: filters.PriceMin,
		PriceMax: filters.PriceMax,
		Offset:   (page - 1) * perPage,
		Limit:    perPage,
	})
	if err != nil {
		return nil, apperr.Upstream(err)
	}

	// 2. Dedup defensively: the same id must never appear twice downstream.
	products = dedupProducts(products)
	baseFetched := len(products)

	// 3. Enrich in bulk, one query per kind. Enrichment failures degrade the
	// affected products only; the page still renders.
	ids := make([]uint, 0, len(products))
	parentIDs := make([]uint, 0)
	for _, p := range products {
		ids = append(ids, p.ID)
		if p.IsVariantParent {
			parentIDs = append(parentIDs, p.ID)
		}
	}

	imagesBy := make(map[uint][]model.ProductImage)
	if images, err := s.imageRepo.ListByProducts(ctx, ids); err != nil {
		log.Printf("catalog: image enrichment failed, degrading: %v", err)
	} else {
		for _, img := range images {
			imagesBy[img.ProductID] = append(imagesBy[img.ProductID], img)
		}
	}

	variantsBy := make(map[uint][]model.Variant)
	if variants, err := s.variantRepo.ListActiveByParents(ctx, parentIDs); err != nil {
		log.Printf("catalog: variant enrichment failed, degrading: %v", err)
	} else {
		for _, v := range variants {
			variantsBy[v.ProductID] = append(variantsBy[v.ProductID], v)
		}
	}

	// 4+5. Filter sets by derived availability, then expand into virtual
	// products.
	items := make([]VirtualProduct, 0, len(products))
	for _, p := range products {
		available := p.Stock > 0
		if p.IsComposite {
			resolved, err := s.stock.ResolveAvailability(ctx, p.ID)
			if err != nil {
				log.Printf("catalog: availability for set %d failed, dropping: %v", p.ID, err)
				continue
			}
			if resolved == 0 {
				continue
			}
			available = true
		}
		items = append(items, expandProduct(p, variantsBy[p.ID], imagesBy[p.ID], available)...)
	}

	// 6. Seeded shuffle. The same seed over the same input set yields the
	// same order, so infinite scroll stays stable across requests.
	var seedOut *int64
	if filters.Shuffle {
		seed := rand.Int63()
		if filters.Seed != nil {
			seed = *filters.Seed
		}
		seedOut = &seed
		rng := rand.New(rand.NewSource(seed))
		rng.Shuffle(len(items), func(i, j int) {
			items[i], items[j] = items[j], items[i]
		})

		// 7. Category balancing only makes sense on a shuffled list.
		balanceCategories(items, maxCategoryRun)
	}

	// 8. Totals are projected from this page's expansion ratio.
	total := baseTotal
	if baseFetched > 0 {
		ratio := float64(len(items)) / float64(baseFetched)
		total = int64(math.Round(float64(baseTotal) * ratio))
	}
	totalPages := int64(0)
	if total > 0 {
		totalPages = (total + int64(perPage) - 1) / int64(perPage)
	}

	return &CatalogPage{
		Items:          items,
		Page:           page,
		PerPage:        perPage,
		Total:          total,
		TotalPages:     totalPages,
		TotalEstimated: true,
		HasMore:        int64(page*perPage) < baseTotal,
		Seed:           seedOut,
	}, nil
}

func dedupProducts(products []model.Product) []model.Product {
	seen := make(map[uint]bool, len(products))
	out := products[:0]
	for _, p := range products {
		if seen[p.ID] {
			continue
		}
		seen[p.ID] = true
		out = append(out, p)
	}
	return out
}

// expandProduct emits the virtual products for one base row. A variant
// parent becomes one listing per active variant and is skipped entirely
// when none remain; anything else becomes exactly one listing.
func expandProduct(p model.Product, variants []model.Variant, images []model.ProductImage, available bool) []VirtualProduct {
	primary := p.ImageURL
	urls := make([]string, 0, len(images))
	for _, img := range images {
		urls = append(urls, img.URL)
	}
	if len(urls) > 0 {
		// ListByProducts orders primary-first
		primary = urls[0]
	}

	if p.IsVariantParent {
		out := make([]VirtualProduct, 0, len(variants))
		for _, v := range variants {
			imageURL := v.ImageURL
			if imageURL == "" {
				imageURL = primary
			}
			variantID := v.ID
			out = append(out, VirtualProduct{
				Key:         fmt.Sprintf("%d:%d", p.ID, v.ID),
				ProductID:   p.ID,
				VariantID:   &variantID,
				Code:        p.Code,
				Name:        v.Name,
				Description: v.Description,
				Category:    p.Category,
				Price:       p.SalePrice,
				Currency:    p.Currency,
				ImageURL:    imageURL,
				Available:   available,
			})
		}
		return out
	}

	return []VirtualProduct{{
		Key:         strconv.FormatUint(uint64(p.ID), 10),
		ProductID:   p.ID,
		Code:        p.Code,
		Name:        p.Name,
		Description: p.Description,
		Category:    p.Category,
		Price:       p.SalePrice,
		Currency:    p.Currency,
		ImageURL:    primary,
		Images:      urls,
		Available:   available,
	}}
}

// balanceCategories bounds same-category runs at maxRun with a single
// forward pass: when an item would start run maxRun+1, the nearest later
// item of a different category is swapped into its place. The multiset of
// items is preserved. A uniform tail has no swap candidate and is left as
// is.
func balanceCategories(items []VirtualProduct, maxRun int) {
	run := 1
	for i := 1; i < len(items); i++ {
		if items[i].Category == items[i-1].Category {
			run++
		} else {
			run = 1
		}
		if run <= maxRun {
			continue
		}

		swapped := false
		for j := i + 1; j < len(items); j++ {
			if items[j].Category != items[i].Category {
				items[i], items[j] = items[j], items[i]
				run = 1
				swapped = true
				break
			}
		}
		if !swapped {
			return
		}
	}
}

// GetProductDetail returns one virtual product with its exact stock number.
// The list form only ever exposes a boolean.
func (s *catalogService) GetProductDetail(ctx context.Context, productID uint, variantID *uint) (*ProductDetail, error) {
	product, err := s.productRepo.FindByID(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("product %d not found", productID)
		}
		return nil, apperr.Upstream(err)
	}
	if !product.Sellable() {
		return nil, apperr.NotFound("product %d not found", productID)
	}

	stock := product.Stock
	if product.IsComposite {
		stock, err = s.stock.ResolveAvailability(ctx, productID)
		if err != nil {
			return nil, err
		}
	}

	var images []model.ProductImage
	if images, err = s.imageRepo.ListByProduct(ctx, productID); err != nil {
		log.Printf("catalog: image enrichment for product %d failed, degrading: %v", productID, err)
		images = nil
	}

	if variantID == nil {
		vp := expandProduct(*product, nil, images, stock > 0)
		if product.IsVariantParent {
			// Parent detail without a chosen variant: present the parent's
			// own material.
			plain := *product
			plain.IsVariantParent = false
			vp = expandProduct(plain, nil, images, stock > 0)
		}
		return &ProductDetail{VirtualProduct: vp[0], Stock: stock}, nil
	}

	variant, err := s.variantRepo.FindByID(ctx, *variantID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("variant %d not found", *variantID)
		}
		return nil, apperr.Upstream(err)
	}
	if variant.ProductID != productID || !variant.Active {
		return nil, apperr.NotFound("variant %d not found for product %d", *variantID, productID)
	}

	vps := expandProduct(*product, []model.Variant{*variant}, images, stock > 0)
	if len(vps) == 0 {
		return nil, apperr.NotFound("variant %d not found for product %d", *variantID, productID)
	}
	return &ProductDetail{VirtualProduct: vps[0], Stock: stock}, nil
}
