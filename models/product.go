package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Product struct {
	ID          uint            `gorm:"primaryKey;autoIncrement"`
	Name        string          `gorm:"size:200;not null;index"`
	Slug        string          `gorm:"size:220;unique;not null"`
	Description string          `gorm:"type:text"`
	Price       decimal.Decimal `gorm:"type:numeric(10,2);not null;check:price >= 0"`
	CategoryID  uint            `gorm:"not null;index"`
	Category    Category
	InStock     bool             `gorm:"not null"`
	IsActive    bool             `gorm:"not null"`
	Image       string           // primary image reference
	Images      []ProductImage   `gorm:"constraint:OnDelete:CASCADE"`
	Variants    []ProductVariant `gorm:"constraint:OnDelete:CASCADE"`
	CreatedAt   time.Time        `gorm:"index"`
	UpdatedAt   time.Time
}

// FeaturedImage returns the image flagged as featured, falling back to the
// first image by id. Images must already be loaded in id order.
func (p *Product) FeaturedImage() *ProductImage {
	for i := range p.Images {
		if p.Images[i].IsFeatured {
			return &p.Images[i]
		}
	}
	if len(p.Images) > 0 {
		return &p.Images[0]
	}
	return nil
}

type ProductVariant struct {
	ID        uint   `gorm:"primaryKey;autoIncrement"`
	ProductID uint   `gorm:"not null;uniqueIndex:idx_variant_natural_key"`
	Color     string `gorm:"size:50;not null;uniqueIndex:idx_variant_natural_key"`
	Size      string `gorm:"size:20;not null;uniqueIndex:idx_variant_natural_key"`
	Stock     int    `gorm:"not null;default:0;check:stock >= 0"`
	SKU       string `gorm:"column:sku;size:100;unique;not null"`
}

type ProductImage struct {
	ID         uint   `gorm:"primaryKey;autoIncrement"`
	ProductID  uint   `gorm:"not null;index"`
	Image      string `gorm:"not null"`
	AltText    string `gorm:"size:200"`
	IsFeatured bool   `gorm:"not null;default:false"`
}
