package memory

import (
	"context"
	"sort"

	"github.com/junaidrashid-git/storefront-api/apperr"
	"github.com/junaidrashid-git/storefront-api/models"
	"github.com/junaidrashid-git/storefront-api/pagination"
)

// CreateOrder checks every reference before writing anything, so a failure
// leaves no partial order behind.
func (s *Store) CreateOrder(_ context.Context, o *models.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[o.UserID]; !ok {
		return apperr.NotFound("user")
	}
	for _, it := range o.Items {
		if _, ok := s.products[it.ProductID]; !ok {
			return apperr.NotFound("product")
		}
		if it.VariantID != nil {
			if _, ok := s.variants[*it.VariantID]; !ok {
				return apperr.NotFound("variant")
			}
		}
	}

	o.ID = s.nextID()
	o.CreatedAt = s.tick()
	o.UpdatedAt = o.CreatedAt
	items := make([]models.OrderItem, len(o.Items))
	for i := range o.Items {
		o.Items[i].ID = s.nextID()
		o.Items[i].OrderID = o.ID
		items[i] = o.Items[i]
		items[i].Product = models.Product{}
		items[i].Variant = nil
	}
	s.items[o.ID] = items
	if o.Payment != nil {
		o.Payment.ID = s.nextID()
		o.Payment.OrderID = o.ID
		o.Payment.CreatedAt = o.CreatedAt
		s.payments[o.ID] = *o.Payment
	}
	stored := *o
	stored.Items = nil
	stored.Payment = nil
	s.orders[o.ID] = stored
	return nil
}

// hydrateOrder attaches items with their products and the payment. Callers hold the lock.
func (s *Store) hydrateOrder(o models.Order) models.Order {
	stored := s.items[o.ID]
	o.Items = make([]models.OrderItem, len(stored))
	for i, it := range stored {
		it.Product = s.hydrate(s.products[it.ProductID], false)
		if it.VariantID != nil {
			if v, ok := s.variants[*it.VariantID]; ok {
				it.Variant = &v
			}
		}
		o.Items[i] = it
	}
	if p, ok := s.payments[o.ID]; ok {
		o.Payment = &p
	}
	return o
}

func (s *Store) userOrders(userID uint) []models.Order {
	var list []models.Order
	for _, o := range s.orders {
		if o.UserID == userID {
			list = append(list, o)
		}
	}
	sort.Slice(list, func(i, j int) bool {
		if !list[i].CreatedAt.Equal(list[j].CreatedAt) {
			return list[i].CreatedAt.After(list[j].CreatedAt)
		}
		return list[i].ID > list[j].ID
	})
	return list
}

func (s *Store) OrdersByUser(_ context.Context, userID uint) ([]models.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	list := s.userOrders(userID)
	out := make([]models.Order, len(list))
	for i, o := range list {
		out[i] = s.hydrateOrder(o)
	}
	return out, nil
}

func (s *Store) OrdersPage(_ context.Context, userID uint, page pagination.Page) ([]models.Order, int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	res := pagination.Slice(s.userOrders(userID), page)
	out := make([]models.Order, len(res.Items))
	for i, o := range res.Items {
		out[i] = s.hydrateOrder(o)
	}
	return out, res.Count, nil
}

func (s *Store) OrderByID(_ context.Context, id uint) (*models.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	o, ok := s.orders[id]
	if !ok {
		return nil, apperr.NotFound("order")
	}
	out := s.hydrateOrder(o)
	return &out, nil
}

func (s *Store) UpdateOrderStatus(_ context.Context, o *models.Order, from models.OrderStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.orders[o.ID]
	if !ok {
		return apperr.NotFound("order")
	}
	if stored.Status != from {
		return apperr.ErrStale
	}
	stored.Status = o.Status
	stored.UpdatedAt = s.tick()
	o.UpdatedAt = stored.UpdatedAt
	s.orders[o.ID] = stored
	if o.Payment != nil {
		if p, ok := s.payments[o.ID]; ok {
			p.Status = o.Payment.Status
			s.payments[o.ID] = p
		}
	}
	return nil
}
