// Package catalog answers product and category queries and carries the
// staff operations that maintain the catalog.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/gosimple/slug"
	"github.com/junaidrashid-git/storefront-api/apperr"
	"github.com/junaidrashid-git/storefront-api/cache"
	"github.com/junaidrashid-git/storefront-api/models"
	"github.com/junaidrashid-git/storefront-api/pagination"
	"github.com/junaidrashid-git/storefront-api/storage"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

const (
	FeaturedLimit = 8

	categoriesKey = "categories"
	featuredKey   = "featured"
)

// Repository is the persistence the catalog needs. Implementations return
// errors matching apperr.ErrNotFound for unknown rows and apperr.ErrDuplicate
// for unique violations.
type Repository interface {
	Categories(ctx context.Context) ([]models.Category, error)
	CategoryBySlug(ctx context.Context, slug string) (*models.Category, error)
	CreateCategory(ctx context.Context, c *models.Category) error
	CategoryHasProducts(ctx context.Context, id uint) (bool, error)
	DeleteCategory(ctx context.Context, id uint) error

	// Products returns one page of active products matching f, with category
	// and images loaded, plus the total match count.
	Products(ctx context.Context, f ProductFilter, page pagination.Page) ([]models.Product, int64, error)
	// ProductBySlug loads category, images and variants.
	ProductBySlug(ctx context.Context, slug string, activeOnly bool) (*models.Product, error)
	AllProducts(ctx context.Context) ([]models.Product, error)
	CreateProduct(ctx context.Context, p *models.Product) error
	UpdateProduct(ctx context.Context, p *models.Product) error
	// UpsertVariant inserts v or updates stock and sku of the variant with the
	// same product, color and size.
	UpsertVariant(ctx context.Context, v *models.ProductVariant) error
	AddImage(ctx context.Context, img *models.ProductImage) error
}

type Service struct {
	repo     Repository
	cache    cache.Cache
	files    storage.Storage
	cacheTTL time.Duration
}

func NewService(repo Repository, c cache.Cache, files storage.Storage, cacheTTL time.Duration) *Service {
	if c == nil {
		c = cache.Nop{}
	}
	return &Service{repo: repo, cache: c, files: files, cacheTTL: cacheTTL}
}

func (s *Service) ListCategories(ctx context.Context) ([]models.Category, error) {
	var cached []models.Category
	if s.cacheGet(ctx, categoriesKey, &cached) {
		return cached, nil
	}
	categories, err := s.repo.Categories(ctx)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	s.cacheSet(ctx, categoriesKey, categories)
	return categories, nil
}

func (s *Service) GetCategory(ctx context.Context, slug string) (*models.Category, error) {
	c, err := s.repo.CategoryBySlug(ctx, slug)
	if err != nil {
		return nil, fmt.Errorf("get category %q: %w", slug, err)
	}
	return c, nil
}

func (s *Service) ListProducts(ctx context.Context, f ProductFilter, page pagination.Page) (pagination.Result[models.Product], error) {
	products, count, err := s.repo.Products(ctx, f, page)
	if err != nil {
		return pagination.Result[models.Product]{}, fmt.Errorf("list products: %w", err)
	}
	return pagination.Result[models.Product]{Items: products, Count: count, Page: page}, nil
}

// GetProduct only returns active products.
func (s *Service) GetProduct(ctx context.Context, slug string) (*models.Product, error) {
	p, err := s.repo.ProductBySlug(ctx, slug, true)
	if err != nil {
		return nil, fmt.Errorf("get product %q: %w", slug, err)
	}
	return p, nil
}

// Featured returns the first in-stock products in default listing order.
func (s *Service) Featured(ctx context.Context) ([]models.Product, error) {
	var cached []models.Product
	if s.cacheGet(ctx, featuredKey, &cached) {
		return cached, nil
	}
	inStock := true
	products, _, err := s.repo.Products(ctx, ProductFilter{InStock: &inStock, SortBy: SortName},
		pagination.Page{Number: 1, Size: FeaturedLimit})
	if err != nil {
		return nil, fmt.Errorf("featured products: %w", err)
	}
	s.cacheSet(ctx, featuredKey, products)
	return products, nil
}

type CategoryInput struct {
	Name        string
	Description string
}

func (s *Service) CreateCategory(ctx context.Context, in CategoryInput) (*models.Category, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, apperr.Field("name", "This field is required.")
	}
	c := &models.Category{Name: name, Slug: slug.Make(name), Description: strings.TrimSpace(in.Description)}
	if c.Slug == "" {
		return nil, apperr.Field("name", "Name must contain letters or digits.")
	}
	if err := s.repo.CreateCategory(ctx, c); err != nil {
		if errors.Is(err, apperr.ErrDuplicate) {
			return nil, apperr.Field("name", "Category with this name already exists.")
		}
		return nil, fmt.Errorf("create category: %w", err)
	}
	s.invalidate(ctx)
	return c, nil
}

// DeleteCategory refuses to delete a category that still has products.
func (s *Service) DeleteCategory(ctx context.Context, slug string) error {
	c, err := s.GetCategory(ctx, slug)
	if err != nil {
		return err
	}
	inUse, err := s.repo.CategoryHasProducts(ctx, c.ID)
	if err != nil {
		return fmt.Errorf("check category products: %w", err)
	}
	if inUse {
		return apperr.Field("category", "Category still has products and cannot be deleted.")
	}
	if err := s.repo.DeleteCategory(ctx, c.ID); err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	s.invalidate(ctx)
	return nil
}

type ProductInput struct {
	Name        string
	Description string
	Price       decimal.Decimal
	Category    string // slug
	InStock     bool
	IsActive    bool
	Image       string
}

func (s *Service) CreateProduct(ctx context.Context, in ProductInput) (*models.Product, error) {
	errs := apperr.Fields{}
	errs.Required("name", in.Name)
	errs.Required("category", in.Category)
	if in.Price.IsNegative() {
		errs.Add("price", "Ensure this value is greater than or equal to 0.")
	}
	productSlug := slug.Make(in.Name)
	if strings.TrimSpace(in.Name) != "" && productSlug == "" {
		errs.Add("name", "Name must contain letters or digits.")
	}
	if err := errs.Err(); err != nil {
		return nil, err
	}

	category, err := s.repo.CategoryBySlug(ctx, in.Category)
	if errors.Is(err, apperr.ErrNotFound) {
		return nil, apperr.Field("category", "Unknown category.")
	}
	if err != nil {
		return nil, fmt.Errorf("load category: %w", err)
	}

	p := &models.Product{
		Name:        strings.TrimSpace(in.Name),
		Slug:        productSlug,
		Description: strings.TrimSpace(in.Description),
		Price:       in.Price.Round(2),
		CategoryID:  category.ID,
		Category:    *category,
		InStock:     in.InStock,
		IsActive:    in.IsActive,
		Image:       in.Image,
	}
	if err := s.repo.CreateProduct(ctx, p); err != nil {
		if errors.Is(err, apperr.ErrDuplicate) {
			return nil, apperr.Field("name", "Product with this slug already exists.")
		}
		return nil, fmt.Errorf("create product: %w", err)
	}
	s.invalidate(ctx)
	return p, nil
}

// ProductPatch holds the fields to change; nil means unchanged. The slug is
// never regenerated, even when the name changes.
type ProductPatch struct {
	Name        *string
	Description *string
	Price       *decimal.Decimal
	Category    *string
	InStock     *bool
	IsActive    *bool
}

func (s *Service) UpdateProduct(ctx context.Context, productSlug string, patch ProductPatch) (*models.Product, error) {
	p, err := s.repo.ProductBySlug(ctx, productSlug, false)
	if err != nil {
		return nil, fmt.Errorf("get product %q: %w", productSlug, err)
	}

	errs := apperr.Fields{}
	if patch.Name != nil {
		errs.Required("name", *patch.Name)
		p.Name = strings.TrimSpace(*patch.Name)
	}
	if patch.Description != nil {
		p.Description = strings.TrimSpace(*patch.Description)
	}
	if patch.Price != nil {
		if patch.Price.IsNegative() {
			errs.Add("price", "Ensure this value is greater than or equal to 0.")
		}
		p.Price = patch.Price.Round(2)
	}
	if patch.InStock != nil {
		p.InStock = *patch.InStock
	}
	if patch.IsActive != nil {
		p.IsActive = *patch.IsActive
	}
	if err := errs.Err(); err != nil {
		return nil, err
	}
	if patch.Category != nil && *patch.Category != p.Category.Slug {
		category, err := s.repo.CategoryBySlug(ctx, *patch.Category)
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, apperr.Field("category", "Unknown category.")
		}
		if err != nil {
			return nil, fmt.Errorf("load category: %w", err)
		}
		p.CategoryID = category.ID
		p.Category = *category
	}

	if err := s.repo.UpdateProduct(ctx, p); err != nil {
		return nil, fmt.Errorf("update product: %w", err)
	}
	s.invalidate(ctx)
	return p, nil
}

type VariantInput struct {
	Color string
	Size  string
	Stock int
	SKU   string
}

func (s *Service) AddVariant(ctx context.Context, productSlug string, in VariantInput) (*models.ProductVariant, error) {
	errs := apperr.Fields{}
	errs.Required("color", in.Color)
	errs.Required("size", in.Size)
	errs.Required("sku", in.SKU)
	if in.Stock < 0 {
		errs.Add("stock", "Ensure this value is greater than or equal to 0.")
	}
	if err := errs.Err(); err != nil {
		return nil, err
	}

	p, err := s.repo.ProductBySlug(ctx, productSlug, false)
	if err != nil {
		return nil, fmt.Errorf("get product %q: %w", productSlug, err)
	}
	v := &models.ProductVariant{
		ProductID: p.ID,
		Color:     strings.TrimSpace(in.Color),
		Size:      strings.TrimSpace(in.Size),
		Stock:     in.Stock,
		SKU:       strings.TrimSpace(in.SKU),
	}
	if err := s.repo.UpsertVariant(ctx, v); err != nil {
		if errors.Is(err, apperr.ErrDuplicate) {
			return nil, apperr.Field("sku", "Product variant with this sku already exists.")
		}
		return nil, fmt.Errorf("save variant: %w", err)
	}
	return v, nil
}

type ImageUpload struct {
	Filename   string
	Body       io.Reader
	AltText    string
	IsFeatured bool
}

// AddImage stores the file first and removes it again if the row cannot be written.
func (s *Service) AddImage(ctx context.Context, productSlug string, up ImageUpload) (img *models.ProductImage, err error) {
	p, err := s.repo.ProductBySlug(ctx, productSlug, false)
	if err != nil {
		return nil, fmt.Errorf("get product %q: %w", productSlug, err)
	}

	ref, err := s.files.Save(ctx, "products", up.Filename, up.Body)
	if errors.Is(err, storage.ErrUnsupportedType) {
		return nil, apperr.Field("image", "Upload a valid image.")
	}
	if err != nil {
		return nil, fmt.Errorf("store product image: %w", err)
	}
	defer func() {
		if err != nil {
			if delErr := s.files.Delete(ctx, ref); delErr != nil {
				zerolog.Ctx(ctx).Warn().Err(delErr).Str("ref", ref).Msg("failed to remove orphaned image")
			}
		}
	}()

	img = &models.ProductImage{
		ProductID:  p.ID,
		Image:      ref,
		AltText:    strings.TrimSpace(up.AltText),
		IsFeatured: up.IsFeatured,
	}
	if err = s.repo.AddImage(ctx, img); err != nil {
		return nil, fmt.Errorf("save product image: %w", err)
	}
	s.invalidate(ctx)
	return img, nil
}

func (s *Service) invalidate(ctx context.Context) {
	if err := s.cache.Delete(ctx, categoriesKey, featuredKey); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Msg("catalog cache invalidation failed")
	}
}

func (s *Service) cacheGet(ctx context.Context, key string, dest any) bool {
	hit, err := s.cache.Get(ctx, key, dest)
	if err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Str("key", key).Msg("catalog cache read failed")
		return false
	}
	return hit
}

func (s *Service) cacheSet(ctx context.Context, key string, value any) {
	if err := s.cache.Set(ctx, key, value, s.cacheTTL); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Str("key", key).Msg("catalog cache write failed")
	}
}
