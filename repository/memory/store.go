// Package memory keeps every repository in process memory. It backs the
// service tests and the STORE=memory mode of the server.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/junaidrashid-git/storefront-api/apperr"
	"github.com/junaidrashid-git/storefront-api/catalog"
	"github.com/junaidrashid-git/storefront-api/models"
	"github.com/junaidrashid-git/storefront-api/pagination"
)

type Store struct {
	mu sync.RWMutex

	categories map[uint]models.Category
	products   map[uint]models.Product
	variants   map[uint]models.ProductVariant
	images     map[uint]models.ProductImage
	users      map[uint]models.User
	profiles   map[uint]models.UserProfile // by user id
	orders     map[uint]models.Order
	items      map[uint][]models.OrderItem // by order id
	payments   map[uint]models.Payment     // by order id

	seq uint
	now func() time.Time
}

func New() *Store {
	return &Store{
		categories: map[uint]models.Category{},
		products:   map[uint]models.Product{},
		variants:   map[uint]models.ProductVariant{},
		images:     map[uint]models.ProductImage{},
		users:      map[uint]models.User{},
		profiles:   map[uint]models.UserProfile{},
		orders:     map[uint]models.Order{},
		items:      map[uint][]models.OrderItem{},
		payments:   map[uint]models.Payment{},
		now:        time.Now,
	}
}

func (s *Store) nextID() uint {
	s.seq++
	return s.seq
}

// tick returns a strictly increasing timestamp so ordering by time is stable.
func (s *Store) tick() time.Time {
	return s.now().Add(time.Duration(s.seq) * time.Microsecond)
}

// Categories

func (s *Store) Categories(_ context.Context) ([]models.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Category, 0, len(s.categories))
	for _, c := range s.categories {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *Store) CategoryBySlug(_ context.Context, slug string) (*models.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, c := range s.categories {
		if c.Slug == slug {
			return &c, nil
		}
	}
	return nil, apperr.NotFound("category")
}

func (s *Store) CreateCategory(_ context.Context, c *models.Category) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.categories {
		if existing.Name == c.Name || existing.Slug == c.Slug {
			return apperr.ErrDuplicate
		}
	}
	c.ID = s.nextID()
	c.CreatedAt = s.tick()
	s.categories[c.ID] = *c
	return nil
}

func (s *Store) CategoryHasProducts(_ context.Context, id uint) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.products {
		if p.CategoryID == id {
			return true, nil
		}
	}
	return false, nil
}

func (s *Store) DeleteCategory(_ context.Context, id uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.categories[id]; !ok {
		return apperr.NotFound("category")
	}
	delete(s.categories, id)
	return nil
}

// Products

func (s *Store) Products(_ context.Context, f catalog.ProductFilter, page pagination.Page) ([]models.Product, int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	search := strings.ToLower(f.Search)
	var matched []models.Product
	for _, p := range s.products {
		if !p.IsActive {
			continue
		}
		c := s.categories[p.CategoryID]
		if f.Category != "" && c.Slug != f.Category {
			continue
		}
		if f.PriceMin != nil && p.Price.LessThan(*f.PriceMin) {
			continue
		}
		if f.PriceMax != nil && p.Price.GreaterThan(*f.PriceMax) {
			continue
		}
		if f.InStock != nil && p.InStock != *f.InStock {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(p.Name), search) &&
			!strings.Contains(strings.ToLower(p.Description), search) &&
			!strings.Contains(strings.ToLower(c.Name), search) {
			continue
		}
		matched = append(matched, p)
	}
	sortProducts(matched, f.SortBy)

	res := pagination.Slice(matched, page)
	out := make([]models.Product, len(res.Items))
	for i, p := range res.Items {
		out[i] = s.hydrate(p, false)
	}
	return out, res.Count, nil
}

func sortProducts(list []models.Product, key catalog.SortKey) {
	sort.Slice(list, func(i, j int) bool {
		a, b := list[i], list[j]
		switch key {
		case catalog.SortPriceAsc:
			if !a.Price.Equal(b.Price) {
				return a.Price.LessThan(b.Price)
			}
		case catalog.SortPriceDesc:
			if !a.Price.Equal(b.Price) {
				return a.Price.GreaterThan(b.Price)
			}
		case catalog.SortNewest:
			if !a.CreatedAt.Equal(b.CreatedAt) {
				return a.CreatedAt.After(b.CreatedAt)
			}
		default:
			if a.Name != b.Name {
				return a.Name < b.Name
			}
		}
		return a.ID < b.ID
	})
}

// hydrate attaches category and images, and variants when asked. Callers hold the lock.
func (s *Store) hydrate(p models.Product, withVariants bool) models.Product {
	p.Category = s.categories[p.CategoryID]
	p.Images = nil
	for _, img := range s.images {
		if img.ProductID == p.ID {
			p.Images = append(p.Images, img)
		}
	}
	sort.Slice(p.Images, func(i, j int) bool { return p.Images[i].ID < p.Images[j].ID })
	p.Variants = nil
	if withVariants {
		for _, v := range s.variants {
			if v.ProductID == p.ID {
				p.Variants = append(p.Variants, v)
			}
		}
		sort.Slice(p.Variants, func(i, j int) bool { return p.Variants[i].ID < p.Variants[j].ID })
	}
	return p
}

func (s *Store) ProductBySlug(_ context.Context, slug string, activeOnly bool) (*models.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.products {
		if p.Slug == slug && (p.IsActive || !activeOnly) {
			out := s.hydrate(p, true)
			return &out, nil
		}
	}
	return nil, apperr.NotFound("product")
}

func (s *Store) AllProducts(_ context.Context) ([]models.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Product, 0, len(s.products))
	for _, p := range s.products {
		out = append(out, s.hydrate(p, true))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Store) CreateProduct(_ context.Context, p *models.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.products {
		if existing.Slug == p.Slug {
			return apperr.ErrDuplicate
		}
	}
	if _, ok := s.categories[p.CategoryID]; !ok {
		return apperr.NotFound("category")
	}
	p.ID = s.nextID()
	p.CreatedAt = s.tick()
	p.UpdatedAt = p.CreatedAt
	s.products[p.ID] = stripProduct(*p)
	return nil
}

func (s *Store) UpdateProduct(_ context.Context, p *models.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.products[p.ID]; !ok {
		return apperr.NotFound("product")
	}
	p.UpdatedAt = s.tick()
	s.products[p.ID] = stripProduct(*p)
	return nil
}

func stripProduct(p models.Product) models.Product {
	p.Category = models.Category{}
	p.Images = nil
	p.Variants = nil
	return p
}

func (s *Store) UpsertVariant(_ context.Context, v *models.ProductVariant) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	var existingID uint
	for _, other := range s.variants {
		if other.ProductID == v.ProductID && other.Color == v.Color && other.Size == v.Size {
			existingID = other.ID
			continue
		}
		if other.SKU == v.SKU {
			return apperr.ErrDuplicate
		}
	}
	if existingID == 0 {
		existingID = s.nextID()
	}
	v.ID = existingID
	s.variants[v.ID] = *v
	return nil
}

func (s *Store) AddImage(_ context.Context, img *models.ProductImage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.products[img.ProductID]; !ok {
		return apperr.NotFound("product")
	}
	img.ID = s.nextID()
	s.images[img.ID] = *img
	return nil
}

func (s *Store) ProductsByIDs(_ context.Context, ids []uint) (map[uint]models.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[uint]models.Product, len(ids))
	for _, id := range ids {
		if p, ok := s.products[id]; ok {
			out[id] = s.hydrate(p, false)
		}
	}
	return out, nil
}

func (s *Store) VariantsByIDs(_ context.Context, ids []uint) (map[uint]models.ProductVariant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[uint]models.ProductVariant, len(ids))
	for _, id := range ids {
		if v, ok := s.variants[id]; ok {
			out[id] = v
		}
	}
	return out, nil
}
