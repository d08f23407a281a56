package services

import (
	"strconv"
	"strings"

	"craftyard/internal/cache"
	"craftyard/internal/domain"
	"craftyard/internal/repos"
)

// CatalogService orchestrates the read path (cache → predicate → store) and the
// inventory mutation path (validated domain ops through the store's CAS loop).
// It owns the SearchCache instance; there is no write-through invalidation, so
// search pages are near-real-time within the cache TTL.
type CatalogService struct {
	Products *repos.ProductRepo
	Cats     *repos.CategoryRepo
	Cache    *cache.SearchCache
}

func NewCatalogService(prods *repos.ProductRepo, cats *repos.CategoryRepo, c *cache.SearchCache) *CatalogService {
	return &CatalogService{Products: prods, Cats: cats, Cache: c}
}

type SearchPage struct {
	Products []repos.ProductWithArtisan `json:"products"`
	Count    int                        `json:"count"`
}

func (s *CatalogService) Search(q string, f repos.SearchFilters, sortKey string, page, pageSize int) (SearchPage, error) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 || pageSize > 50 {
		pageSize = 20
	}

	key := cache.Key(q, map[string]string{
		"category":  f.Category,
		"type":      f.ProductType,
		"price_min": trimFloat(f.PriceMin),
		"price_max": trimFloat(f.PriceMax),
		"sort":      sortKey,
		"page":      strconv.Itoa(page),
		"size":      strconv.Itoa(pageSize),
	})
	if v, ok := s.Cache.Get(key); ok {
		if pg, ok := v.(SearchPage); ok {
			return pg, nil
		}
	}

	f.Query = strings.ToLower(strings.TrimSpace(q))
	pred := repos.Merge(repos.InventoryFilter(), repos.FiltersPredicate(f))
	items, err := s.Products.Find(pred, sortKey, pageSize, (page-1)*pageSize)
	if err != nil {
		return SearchPage{}, err
	}

	pg := SearchPage{Products: items, Count: len(items)}
	s.Cache.Set(key, pg)
	return pg, nil
}

// GetByID always reads fresh and applies the inventory filter as a visibility
// gate: products that are not purchasable look like they don't exist.
func (s *CatalogService) GetByID(id string) (*repos.ProductWithArtisan, error) {
	return s.Products.FindOne(repos.Merge(repos.InventoryFilter(), repos.ByID(id)))
}

func (s *CatalogService) Categories() ([]domain.Category, error) {
	return s.Cats.List()
}

// CreateProduct seeds the type-appropriate inventory fields from one quantity.
type CreateProduct struct {
	Title       string
	Description string
	Category    string
	Price       float64
	ProductType domain.ProductType
	Quantity    int64
	// Status may be set explicitly at creation only; afterwards it is always derived.
	Status domain.Status
}

func (s *CatalogService) Create(artisanID string, req CreateProduct) (*domain.Product, error) {
	p := domain.Product{
		ArtisanID:   artisanID,
		Title:       strings.TrimSpace(req.Title),
		Description: strings.TrimSpace(req.Description),
		Category:    req.Category,
		Price:       req.Price,
		ProductType: req.ProductType,
		Active:      true,
	}
	p = domain.ApplySet(p, req.Quantity)
	if req.Status != "" {
		p.Status = req.Status
	}
	return s.Products.Create(p)
}

// SetQuantity is the "set" shorthand (made-to-order reads it as new total capacity).
func (s *CatalogService) SetQuantity(id, artisanID string, q int64) (*domain.Product, error) {
	return s.Products.UpdateInventory(id, artisanID, func(p domain.Product) (domain.Product, error) {
		return domain.ApplySet(p, q), nil
	})
}

// SetStock writes the stock field unconditionally, whatever the product type.
func (s *CatalogService) SetStock(id, artisanID string, q int64) (*domain.Product, error) {
	return s.Products.UpdateInventory(id, artisanID, func(p domain.Product) (domain.Product, error) {
		return domain.ApplyStockSet(p, q), nil
	})
}

// UpdateInventoryFields is the full-field inventory write.
func (s *CatalogService) UpdateInventoryFields(id, artisanID string, u domain.InventoryUpdate) (*domain.Product, error) {
	return s.Products.UpdateInventory(id, artisanID, func(p domain.Product) (domain.Product, error) {
		return domain.ApplyInventoryUpdate(p, u)
	})
}

// Reduce is the sale-time decrement and the contended hot path; conflicts are
// retried inside the store rather than silently dropped.
func (s *CatalogService) Reduce(id, artisanID string, q int64) (*domain.Product, error) {
	return s.Products.UpdateInventory(id, artisanID, func(p domain.Product) (domain.Product, error) {
		return domain.ApplyReduce(p, q)
	})
}

func (s *CatalogService) UpdateDetails(id, artisanID string, d repos.DetailsUpdate) (*domain.Product, error) {
	return s.Products.UpdateDetails(id, artisanID, d)
}

func (s *CatalogService) Deactivate(id, artisanID string) error {
	return s.Products.Deactivate(id, artisanID)
}

func trimFloat(v float64) string {
	if v <= 0 {
		return ""
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
