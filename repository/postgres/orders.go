package postgres

import (
	"context"

	"github.com/junaidrashid-git/storefront-api/apperr"
	"github.com/junaidrashid-git/storefront-api/models"
	"github.com/junaidrashid-git/storefront-api/pagination"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type OrderRepo struct {
	db *gorm.DB
}

func NewOrderRepo(db *gorm.DB) *OrderRepo {
	return &OrderRepo{db: db}
}

// CreateOrder inserts the order, then its items and payment, in one transaction.
func (r *OrderRepo) CreateOrder(ctx context.Context, o *models.Order) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(o).Error; err != nil {
			return err
		}
		for i := range o.Items {
			o.Items[i].OrderID = o.ID
			if err := tx.Omit(clause.Associations).Create(&o.Items[i]).Error; err != nil {
				return err
			}
		}
		if o.Payment != nil {
			o.Payment.OrderID = o.ID
			if err := tx.Create(o.Payment).Error; err != nil {
				return err
			}
		}
		return nil
	})
	return translate(err, "order")
}

func (r *OrderRepo) hydrated(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("order_items.id") }).
		Preload("Items.Product.Category").
		Preload("Items.Product.Images", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		Preload("Items.Variant").
		Preload("Payment")
}

func (r *OrderRepo) OrdersByUser(ctx context.Context, userID uint) ([]models.Order, error) {
	var list []models.Order
	err := r.hydrated(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Find(&list).Error
	return list, translate(err, "order")
}

func (r *OrderRepo) OrdersPage(ctx context.Context, userID uint, page pagination.Page) ([]models.Order, int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Order{}).Where("user_id = ?", userID).Count(&count).Error; err != nil {
		return nil, 0, translate(err, "order")
	}
	var list []models.Order
	err := r.hydrated(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Offset(page.Offset()).
		Limit(page.Size).
		Find(&list).Error
	return list, count, translate(err, "order")
}

func (r *OrderRepo) OrderByID(ctx context.Context, id uint) (*models.Order, error) {
	var o models.Order
	if err := r.hydrated(ctx).First(&o, id).Error; err != nil {
		return nil, translate(err, "order")
	}
	return &o, nil
}

// UpdateOrderStatus locks the order row, checks it still has status from and
// then writes the order and payment status.
func (r *OrderRepo) UpdateOrderStatus(ctx context.Context, o *models.Order, from models.OrderStatus) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var current models.Order
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Select("id", "status").
			First(&current, o.ID).Error; err != nil {
			return err
		}
		if current.Status != from {
			return apperr.ErrStale
		}
		if err := tx.Model(&models.Order{}).Where("id = ?", o.ID).Update("status", o.Status).Error; err != nil {
			return err
		}
		if o.Payment == nil {
			return nil
		}
		return tx.Model(&models.Payment{}).Where("order_id = ?", o.ID).Update("status", o.Payment.Status).Error
	})
	return translate(err, "order")
}
