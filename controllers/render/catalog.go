package render

import (
	"time"

	"github.com/junaidrashid-git/storefront-api/models"
)

type Category struct {
	ID          uint   `json:"id"`
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Description string `json:"description"`
}

type Image struct {
	ID         uint   `json:"id"`
	Image      string `json:"image"`
	AltText    string `json:"alt_text"`
	IsFeatured bool   `json:"is_featured"`
}

type Variant struct {
	ID    uint   `json:"id"`
	Color string `json:"color"`
	Size  string `json:"size"`
	Stock int    `json:"stock"`
	SKU   string `json:"sku"`
}

// ProductSummary is the listing shape, also nested in order items.
type ProductSummary struct {
	ID            uint     `json:"id"`
	Name          string   `json:"name"`
	Slug          string   `json:"slug"`
	Category      Category `json:"category"`
	Price         string   `json:"price"`
	FeaturedImage *Image   `json:"featured_image"`
	InStock       bool     `json:"in_stock"`
}

type ProductDetail struct {
	ID          uint      `json:"id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Category    Category  `json:"category"`
	Description string    `json:"description"`
	Price       string    `json:"price"`
	Image       string    `json:"image"`
	InStock     bool      `json:"in_stock"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	Images      []Image   `json:"images"`
	Variants    []Variant `json:"variants"`
}

func NewCategory(c models.Category) Category {
	return Category{ID: c.ID, Name: c.Name, Slug: c.Slug, Description: c.Description}
}

func NewCategories(list []models.Category) []Category {
	out := make([]Category, len(list))
	for i, c := range list {
		out[i] = NewCategory(c)
	}
	return out
}

func NewImage(img models.ProductImage) Image {
	return Image{ID: img.ID, Image: img.Image, AltText: img.AltText, IsFeatured: img.IsFeatured}
}

func NewVariant(v models.ProductVariant) Variant {
	return Variant{ID: v.ID, Color: v.Color, Size: v.Size, Stock: v.Stock, SKU: v.SKU}
}

func NewProductSummary(p *models.Product) ProductSummary {
	s := ProductSummary{
		ID:       p.ID,
		Name:     p.Name,
		Slug:     p.Slug,
		Category: NewCategory(p.Category),
		Price:    p.Price.StringFixed(2),
		InStock:  p.InStock,
	}
	if img := p.FeaturedImage(); img != nil {
		featured := NewImage(*img)
		s.FeaturedImage = &featured
	}
	return s
}

func NewProductSummaries(list []models.Product) []ProductSummary {
	out := make([]ProductSummary, len(list))
	for i := range list {
		out[i] = NewProductSummary(&list[i])
	}
	return out
}

func NewProductDetail(p *models.Product) ProductDetail {
	d := ProductDetail{
		ID:          p.ID,
		Name:        p.Name,
		Slug:        p.Slug,
		Category:    NewCategory(p.Category),
		Description: p.Description,
		Price:       p.Price.StringFixed(2),
		Image:       p.Image,
		InStock:     p.InStock,
		IsActive:    p.IsActive,
		CreatedAt:   p.CreatedAt,
		Images:      make([]Image, len(p.Images)),
		Variants:    make([]Variant, len(p.Variants)),
	}
	for i, img := range p.Images {
		d.Images[i] = NewImage(img)
	}
	for i, v := range p.Variants {
		d.Variants[i] = NewVariant(v)
	}
	return d
}
