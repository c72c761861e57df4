package postgres

import (
	"context"

	"github.com/junaidrashid-git/storefront-api/catalog"
	"github.com/junaidrashid-git/storefront-api/models"
	"github.com/junaidrashid-git/storefront-api/pagination"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CatalogRepo struct {
	db *gorm.DB
}

func NewCatalogRepo(db *gorm.DB) *CatalogRepo {
	return &CatalogRepo{db: db}
}

func (r *CatalogRepo) Categories(ctx context.Context) ([]models.Category, error) {
	var categories []models.Category
	err := r.db.WithContext(ctx).Order("name, id").Find(&categories).Error
	return categories, translate(err, "category")
}

func (r *CatalogRepo) CategoryBySlug(ctx context.Context, slug string) (*models.Category, error) {
	var c models.Category
	if err := r.db.WithContext(ctx).Where("slug = ?", slug).First(&c).Error; err != nil {
		return nil, translate(err, "category")
	}
	return &c, nil
}

func (r *CatalogRepo) CreateCategory(ctx context.Context, c *models.Category) error {
	return translate(r.db.WithContext(ctx).Create(c).Error, "category")
}

func (r *CatalogRepo) CategoryHasProducts(ctx context.Context, id uint) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.Product{}).Where("category_id = ?", id).Count(&n).Error
	return n > 0, translate(err, "category")
}

func (r *CatalogRepo) DeleteCategory(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&models.Category{}, id)
	if res.Error != nil {
		return translate(res.Error, "category")
	}
	if res.RowsAffected == 0 {
		return translate(gorm.ErrRecordNotFound, "category")
	}
	return nil
}

// filtered builds the product query for f. It is built twice per listing
// since Count and Find must not share a statement.
func (r *CatalogRepo) filtered(ctx context.Context, f catalog.ProductFilter) *gorm.DB {
	q := r.db.WithContext(ctx).Model(&models.Product{}).
		Joins("Category").
		Where("products.is_active = ?", true)
	if f.Category != "" {
		q = q.Where(`"Category".slug = ?`, f.Category)
	}
	if f.PriceMin != nil {
		q = q.Where("products.price >= ?", *f.PriceMin)
	}
	if f.PriceMax != nil {
		q = q.Where("products.price <= ?", *f.PriceMax)
	}
	if f.InStock != nil {
		q = q.Where("products.in_stock = ?", *f.InStock)
	}
	if f.Search != "" {
		term := "%" + escapeLike(f.Search) + "%"
		q = q.Where(`(products.name ILIKE ? OR products.description ILIKE ? OR "Category".name ILIKE ?)`, term, term, term)
	}
	return q
}

func orderFor(key catalog.SortKey) string {
	switch key {
	case catalog.SortPriceAsc:
		return "products.price, products.id"
	case catalog.SortPriceDesc:
		return "products.price DESC, products.id"
	case catalog.SortNewest:
		return "products.created_at DESC, products.id"
	default:
		return "products.name, products.id"
	}
}

func (r *CatalogRepo) Products(ctx context.Context, f catalog.ProductFilter, page pagination.Page) ([]models.Product, int64, error) {
	var count int64
	if err := r.filtered(ctx, f).Count(&count).Error; err != nil {
		return nil, 0, translate(err, "product")
	}
	var products []models.Product
	err := r.filtered(ctx, f).
		Preload("Images", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		Order(orderFor(f.SortBy)).
		Offset(page.Offset()).
		Limit(page.Size).
		Find(&products).Error
	return products, count, translate(err, "product")
}

func (r *CatalogRepo) ProductBySlug(ctx context.Context, slug string, activeOnly bool) (*models.Product, error) {
	q := r.db.WithContext(ctx).
		Joins("Category").
		Preload("Images", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		Preload("Variants", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		Where("products.slug = ?", slug)
	if activeOnly {
		q = q.Where("products.is_active = ?", true)
	}
	var p models.Product
	if err := q.First(&p).Error; err != nil {
		return nil, translate(err, "product")
	}
	return &p, nil
}

func (r *CatalogRepo) AllProducts(ctx context.Context) ([]models.Product, error) {
	var products []models.Product
	err := r.db.WithContext(ctx).
		Joins("Category").
		Preload("Variants").
		Order("products.id").
		Find(&products).Error
	return products, translate(err, "product")
}

func (r *CatalogRepo) CreateProduct(ctx context.Context, p *models.Product) error {
	err := r.db.WithContext(ctx).Omit(clause.Associations).Create(p).Error
	return translate(err, "product")
}

func (r *CatalogRepo) UpdateProduct(ctx context.Context, p *models.Product) error {
	err := r.db.WithContext(ctx).Omit(clause.Associations).Save(p).Error
	return translate(err, "product")
}

func (r *CatalogRepo) UpsertVariant(ctx context.Context, v *models.ProductVariant) error {
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "product_id"}, {Name: "color"}, {Name: "size"}},
		DoUpdates: clause.AssignmentColumns([]string{"stock", "sku"}),
	}).Create(v).Error
	return translate(err, "variant")
}

func (r *CatalogRepo) AddImage(ctx context.Context, img *models.ProductImage) error {
	return translate(r.db.WithContext(ctx).Create(img).Error, "product image")
}

func (r *CatalogRepo) ProductsByIDs(ctx context.Context, ids []uint) (map[uint]models.Product, error) {
	out := make(map[uint]models.Product, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var products []models.Product
	err := r.db.WithContext(ctx).
		Joins("Category").
		Preload("Images", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		Where("products.id IN ?", ids).
		Find(&products).Error
	if err != nil {
		return nil, translate(err, "product")
	}
	for _, p := range products {
		out[p.ID] = p
	}
	return out, nil
}

func (r *CatalogRepo) VariantsByIDs(ctx context.Context, ids []uint) (map[uint]models.ProductVariant, error) {
	out := make(map[uint]models.ProductVariant, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var variants []models.ProductVariant
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&variants).Error; err != nil {
		return nil, translate(err, "variant")
	}
	for _, v := range variants {
		out[v.ID] = v
	}
	return out, nil
}
