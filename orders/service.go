// Package orders places orders against the catalog and moves them through
// their fulfilment states.
package orders

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"github.com/junaidrashid-git/storefront-api/apperr"
	"github.com/junaidrashid-git/storefront-api/models"
	"github.com/junaidrashid-git/storefront-api/pagination"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

const MaxQuantity = 1000

// MaxTotal is the largest amount a numeric(10,2) column holds.
var MaxTotal = decimal.RequireFromString("99999999.99")

type Repository interface {
	// CreateOrder writes o, its items and its payment in one transaction and
	// fills in their ids.
	CreateOrder(ctx context.Context, o *models.Order) error
	// Orders and pages are newest first, with items, their products and the
	// payment loaded.
	OrdersByUser(ctx context.Context, userID uint) ([]models.Order, error)
	OrdersPage(ctx context.Context, userID uint, page pagination.Page) ([]models.Order, int64, error)
	OrderByID(ctx context.Context, id uint) (*models.Order, error)
	// UpdateOrderStatus saves the order status and, when loaded, the payment
	// status together. It fails with apperr.ErrStale unless the stored status
	// is still from.
	UpdateOrderStatus(ctx context.Context, o *models.Order, from models.OrderStatus) error
}

// CatalogReader is the part of the catalog the workflow reads prices from.
type CatalogReader interface {
	ProductsByIDs(ctx context.Context, ids []uint) (map[uint]models.Product, error)
	VariantsByIDs(ctx context.Context, ids []uint) (map[uint]models.ProductVariant, error)
}

// Notifier hears about orders after they are committed.
type Notifier interface {
	OrderPlaced(ctx context.Context, o *models.Order)
}

type Service struct {
	repo     Repository
	catalog  CatalogReader
	notifier Notifier
}

func NewService(repo Repository, catalog CatalogReader, notifier Notifier) *Service {
	return &Service{repo: repo, catalog: catalog, notifier: notifier}
}

type Shipping struct {
	FirstName  string
	LastName   string
	Email      string
	Address    string
	City       string
	State      string
	PostalCode string
	Country    string
	Phone      string
}

type LineItem struct {
	ProductID uint
	VariantID *uint
	Quantity  int
	Color     string
	Size      string
}

type PlaceOrder struct {
	Shipping      Shipping
	Items         []LineItem
	PaymentMethod string
}

func (s *Service) CreateOrder(ctx context.Context, userID uint, in PlaceOrder) (*models.Order, error) {
	sh := trimShipping(in.Shipping)

	errs := apperr.Fields{}
	errs.Required("first_name", sh.FirstName)
	errs.Required("last_name", sh.LastName)
	errs.Required("email", sh.Email)
	errs.Required("address", sh.Address)
	errs.Required("city", sh.City)
	errs.Required("postal_code", sh.PostalCode)
	errs.Required("country", sh.Country)
	errs.Required("phone", sh.Phone)
	errs.Required("payment_method", in.PaymentMethod)
	if sh.Email != "" {
		if addr, err := mail.ParseAddress(sh.Email); err != nil || addr.Address != sh.Email {
			errs.Add("email", "Enter a valid email address.")
		}
	}
	if len(in.Items) == 0 {
		errs.Add("items", "An order needs at least one item.")
	}

	productIDs := make([]uint, 0, len(in.Items))
	var variantIDs []uint
	for i, it := range in.Items {
		if it.ProductID == 0 {
			errs.Add(itemField(i, "product"), "This field is required.")
		}
		if it.Quantity < 1 {
			errs.Add(itemField(i, "quantity"), "Ensure this value is greater than or equal to 1.")
		}
		if it.Quantity > MaxQuantity {
			errs.Add(itemField(i, "quantity"), fmt.Sprintf("Ensure this value is less than or equal to %d.", MaxQuantity))
		}
		productIDs = append(productIDs, it.ProductID)
		if it.VariantID != nil {
			variantIDs = append(variantIDs, *it.VariantID)
		}
	}

	products, err := s.catalog.ProductsByIDs(ctx, productIDs)
	if err != nil {
		return nil, fmt.Errorf("load products: %w", err)
	}
	variants := map[uint]models.ProductVariant{}
	if len(variantIDs) > 0 {
		if variants, err = s.catalog.VariantsByIDs(ctx, variantIDs); err != nil {
			return nil, fmt.Errorf("load variants: %w", err)
		}
	}

	total := decimal.Zero
	items := make([]models.OrderItem, 0, len(in.Items))
	for i, it := range in.Items {
		p, ok := products[it.ProductID]
		if it.ProductID != 0 && !ok {
			errs.Add(itemField(i, "product"), fmt.Sprintf("Invalid pk \"%d\" - object does not exist.", it.ProductID))
			continue
		}
		item := models.OrderItem{
			ProductID: p.ID,
			Product:   p,
			VariantID: it.VariantID,
			Price:     p.Price,
			Quantity:  it.Quantity,
			Color:     strings.TrimSpace(it.Color),
			Size:      strings.TrimSpace(it.Size),
		}
		if it.VariantID != nil {
			v, ok := variants[*it.VariantID]
			if !ok || v.ProductID != p.ID {
				errs.Add(itemField(i, "variant"), "Variant does not belong to this product.")
				continue
			}
			item.Variant = &v
			if item.Color == "" {
				item.Color = v.Color
			}
			if item.Size == "" {
				item.Size = v.Size
			}
		}
		total = total.Add(p.Price.Mul(decimal.NewFromInt(int64(it.Quantity))))
		items = append(items, item)
	}
	if total.Round(2).GreaterThan(MaxTotal) {
		errs.Add("items", fmt.Sprintf("Order total must not exceed %s.", MaxTotal.StringFixed(2)))
	}
	if err := errs.Err(); err != nil {
		return nil, err
	}

	total = total.Round(2)
	o := &models.Order{
		UserID:     userID,
		FirstName:  sh.FirstName,
		LastName:   sh.LastName,
		Email:      sh.Email,
		Address:    sh.Address,
		City:       sh.City,
		State:      sh.State,
		PostalCode: sh.PostalCode,
		Country:    sh.Country,
		Phone:      sh.Phone,
		TotalPrice: total,
		Status:     models.OrderStatusPending,
		Items:      items,
		Payment: &models.Payment{
			PaymentMethod: strings.TrimSpace(in.PaymentMethod),
			Amount:        total,
			Status:        models.PaymentStatusPending,
		},
	}
	if err := s.repo.CreateOrder(ctx, o); err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	zerolog.Ctx(ctx).Info().
		Uint("order_id", o.ID).
		Uint("user_id", userID).
		Str("total", total.StringFixed(2)).
		Int("items", len(items)).
		Msg("order placed")

	if s.notifier != nil {
		s.notifier.OrderPlaced(ctx, o)
	}
	return o, nil
}

func (s *Service) ListOrders(ctx context.Context, userID uint) ([]models.Order, error) {
	list, err := s.repo.OrdersByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return list, nil
}

func (s *Service) OrderHistory(ctx context.Context, userID uint, page pagination.Page) (pagination.Result[models.Order], error) {
	list, count, err := s.repo.OrdersPage(ctx, userID, page)
	if err != nil {
		return pagination.Result[models.Order]{}, fmt.Errorf("order history: %w", err)
	}
	return pagination.Result[models.Order]{Items: list, Count: count, Page: page}, nil
}

// GetOrder hides other users' orders behind the same NotFound as a missing id.
func (s *Service) GetOrder(ctx context.Context, userID, orderID uint) (*models.Order, error) {
	o, err := s.repo.OrderByID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("get order %d: %w", orderID, err)
	}
	if o.UserID != userID {
		return nil, apperr.NotFound("order")
	}
	return o, nil
}

var transitions = map[models.OrderStatus][]models.OrderStatus{
	models.OrderStatusPending: {models.OrderStatusPaid, models.OrderStatusCancelled},
	models.OrderStatusPaid:    {models.OrderStatusShipped, models.OrderStatusCancelled},
	models.OrderStatusShipped: {models.OrderStatusDelivered},
}

// CanTransition reports whether an order may move from one status to another.
func CanTransition(from, to models.OrderStatus) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// UpdateStatus is a staff operation. Paying completes the payment and
// cancelling a paid order refunds it.
func (s *Service) UpdateStatus(ctx context.Context, orderID uint, status models.OrderStatus) (*models.Order, error) {
	o, err := s.repo.OrderByID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("get order %d: %w", orderID, err)
	}
	if !CanTransition(o.Status, status) {
		return nil, apperr.Field("status", fmt.Sprintf("Cannot change status from %s to %s.", o.Status, status))
	}

	from := o.Status
	o.Status = status
	if o.Payment != nil {
		switch {
		case from == models.OrderStatusPending && status == models.OrderStatusPaid:
			o.Payment.Status = models.PaymentStatusCompleted
		case from == models.OrderStatusPaid && status == models.OrderStatusCancelled:
			o.Payment.Status = models.PaymentStatusRefunded
		case status == models.OrderStatusCancelled:
			o.Payment.Status = models.PaymentStatusFailed
		}
	}
	if err := s.repo.UpdateOrderStatus(ctx, o, from); err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, err
		}
		if errors.Is(err, apperr.ErrStale) {
			return nil, apperr.Field("status", "Order status was changed by another request. Reload the order and try again.")
		}
		return nil, fmt.Errorf("update order status: %w", err)
	}
	zerolog.Ctx(ctx).Info().
		Uint("order_id", o.ID).
		Str("from", string(from)).
		Str("to", string(status)).
		Msg("order status changed")
	return o, nil
}

func itemField(i int, name string) string {
	return fmt.Sprintf("items[%d].%s", i, name)
}

func trimShipping(s Shipping) Shipping {
	return Shipping{
		FirstName:  strings.TrimSpace(s.FirstName),
		LastName:   strings.TrimSpace(s.LastName),
		Email:      strings.TrimSpace(s.Email),
		Address:    strings.TrimSpace(s.Address),
		City:       strings.TrimSpace(s.City),
		State:      strings.TrimSpace(s.State),
		PostalCode: strings.TrimSpace(s.PostalCode),
		Country:    strings.TrimSpace(s.Country),
		Phone:      strings.TrimSpace(s.Phone),
	}
}
