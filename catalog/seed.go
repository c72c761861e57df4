package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/gosimple/slug"
	"github.com/junaidrashid-git/storefront-api/apperr"
	"github.com/junaidrashid-git/storefront-api/models"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

type seedImage struct {
	URL string
	Alt string
}

type seedProduct struct {
	Name        string
	Category    string
	Description string
	Price       string
	Image       string
	Variants    []VariantInput
	Images      []seedImage
}

var seedCategories = []CategoryInput{
	{Name: "Men", Description: "Men's clothing and accessories"},
	{Name: "Women", Description: "Women's clothing and accessories"},
	{Name: "Accessories", Description: "Fashion accessories for all"},
	{Name: "Footwear", Description: "Shoes, boots, and sandals"},
}

var seedProducts = []seedProduct{
	{
		Name:        "Classic Black T-Shirt",
		Category:    "men",
		Description: "A comfortable black t-shirt made from 100% cotton. Perfect for everyday wear.",
		Price:       "19.99",
		Image:       "https://images.unsplash.com/photo-1521572163474-6864f9cf17ab?w=600",
		Variants: []VariantInput{
			{Color: "Black", Size: "S", Stock: 15, SKU: "BTS-001"},
			{Color: "Black", Size: "M", Stock: 20, SKU: "BTM-002"},
			{Color: "Black", Size: "L", Stock: 18, SKU: "BTL-003"},
			{Color: "Black", Size: "XL", Stock: 12, SKU: "BTXL-004"},
		},
		Images: []seedImage{
			{URL: "https://images.unsplash.com/photo-1583743814966-8936f5b7be1a?w=600", Alt: "Black T-Shirt Front"},
			{URL: "https://images.unsplash.com/photo-1576566588028-4147f3842f27?w=600", Alt: "Black T-Shirt Back"},
		},
	},
	{
		Name:        "Slim Fit Jeans",
		Category:    "men",
		Description: "Modern slim fit jeans with a stylish wash. Comfortable stretch denim.",
		Price:       "49.99",
		Image:       "https://images.unsplash.com/photo-1542272604-787c3835535d?w=600",
		Variants: []VariantInput{
			{Color: "Blue", Size: "30", Stock: 10, SKU: "SJ30-001"},
			{Color: "Blue", Size: "32", Stock: 15, SKU: "SJ32-002"},
			{Color: "Blue", Size: "34", Stock: 12, SKU: "SJ34-003"},
			{Color: "Blue", Size: "36", Stock: 8, SKU: "SJ36-004"},
		},
		Images: []seedImage{
			{URL: "https://images.unsplash.com/photo-1582552938357-32b906df40cb?w=600", Alt: "Jeans Front"},
			{URL: "https://images.unsplash.com/photo-1598554747436-c9293d6a588f?w=600", Alt: "Jeans Back"},
		},
	},
	{
		Name:        "Floral Summer Dress",
		Category:    "women",
		Description: "A beautiful floral dress perfect for summer days. Light and flowing fabric.",
		Price:       "39.99",
		Image:       "https://images.unsplash.com/photo-1595777457583-95e059d581b8?w=600",
		Variants: []VariantInput{
			{Color: "Floral", Size: "XS", Stock: 8, SKU: "FSD-XS-001"},
			{Color: "Floral", Size: "S", Stock: 12, SKU: "FSD-S-002"},
			{Color: "Floral", Size: "M", Stock: 15, SKU: "FSD-M-003"},
			{Color: "Floral", Size: "L", Stock: 10, SKU: "FSD-L-004"},
		},
		Images: []seedImage{
			{URL: "https://images.unsplash.com/photo-1515372039744-b8f02a3ae446?w=600", Alt: "Floral Dress Front"},
			{URL: "https://images.unsplash.com/photo-1566174053879-31528523f8ae?w=600", Alt: "Floral Dress Detail"},
		},
	},
	{
		Name:        "Minimalist Watch",
		Category:    "accessories",
		Description: "A sleek minimalist watch with a leather strap. Adds sophistication to any outfit.",
		Price:       "59.99",
		Image:       "https://images.unsplash.com/photo-1524805444758-089113d48a6d?w=600",
		Variants: []VariantInput{
			{Color: "Black/Brown", Size: "One Size", Stock: 15, SKU: "MW-BB-001"},
			{Color: "Silver/Black", Size: "One Size", Stock: 12, SKU: "MW-SB-002"},
		},
		Images: []seedImage{
			{URL: "https://images.unsplash.com/photo-1509048191080-d2984bad6ae5?w=600", Alt: "Watch Close-up"},
			{URL: "https://images.unsplash.com/photo-1539874754764-5a96559165b0?w=600", Alt: "Watch on Wrist"},
		},
	},
}

// Seed loads the sample catalog. Running it again leaves existing rows in
// place and only refreshes variant stock.
func (s *Service) Seed(ctx context.Context) error {
	log := zerolog.Ctx(ctx)

	for _, in := range seedCategories {
		_, err := s.repo.CategoryBySlug(ctx, slug.Make(in.Name))
		if err == nil {
			continue
		}
		if !errors.Is(err, apperr.ErrNotFound) {
			return fmt.Errorf("seed category %q: %w", in.Name, err)
		}
		if _, err := s.CreateCategory(ctx, in); err != nil {
			return fmt.Errorf("seed category %q: %w", in.Name, err)
		}
	}
	log.Info().Int("count", len(seedCategories)).Msg("categories seeded")

	for _, sp := range seedProducts {
		if err := s.seedProduct(ctx, sp); err != nil {
			return fmt.Errorf("seed product %q: %w", sp.Name, err)
		}
	}
	log.Info().Int("count", len(seedProducts)).Msg("products seeded")
	return nil
}

func (s *Service) seedProduct(ctx context.Context, sp seedProduct) error {
	p, err := s.repo.ProductBySlug(ctx, slug.Make(sp.Name), false)
	if errors.Is(err, apperr.ErrNotFound) {
		p, err = s.CreateProduct(ctx, ProductInput{
			Name:        sp.Name,
			Description: sp.Description,
			Price:       decimal.RequireFromString(sp.Price),
			Category:    sp.Category,
			InStock:     true,
			IsActive:    true,
			Image:       sp.Image,
		})
	}
	if err != nil {
		return err
	}

	for _, v := range sp.Variants {
		if _, err := s.AddVariant(ctx, p.Slug, v); err != nil {
			return err
		}
	}

	if len(p.Images) > 0 {
		return nil
	}
	for i, img := range sp.Images {
		// Remote URLs are stored as-is, no download.
		row := &models.ProductImage{ProductID: p.ID, Image: img.URL, AltText: img.Alt, IsFeatured: i == 0}
		if err := s.repo.AddImage(ctx, row); err != nil {
			return err
		}
	}
	s.invalidate(ctx)
	return nil
}
