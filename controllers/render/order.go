package render

import (
	"time"

	"github.com/junaidrashid-git/storefront-api/models"
)

type OrderItem struct {
	ID       uint           `json:"id"`
	Product  ProductSummary `json:"product"`
	Price    string         `json:"price"`
	Quantity int            `json:"quantity"`
	Color    string         `json:"color"`
	Size     string         `json:"size"`
}

type Payment struct {
	ID            uint      `json:"id"`
	PaymentMethod string    `json:"payment_method"`
	TransactionID *string   `json:"transaction_id"`
	Amount        string    `json:"amount"`
	Status        string    `json:"status"`
	CreatedAt     time.Time `json:"created_at"`
}

// OrderSummary is the listing shape.
type OrderSummary struct {
	ID         uint        `json:"id"`
	Status     string      `json:"status"`
	TotalPrice string      `json:"total_price"`
	CreatedAt  time.Time   `json:"created_at"`
	UpdatedAt  time.Time   `json:"updated_at"`
	Items      []OrderItem `json:"items"`
	Payment    *Payment    `json:"payment"`
}

// OrderDetail adds the shipping fields to the summary.
type OrderDetail struct {
	OrderSummary
	FirstName  string  `json:"first_name"`
	LastName   string  `json:"last_name"`
	Email      string  `json:"email"`
	Address    string  `json:"address"`
	City       string  `json:"city"`
	State      string  `json:"state"`
	PostalCode string  `json:"postal_code"`
	Country    string  `json:"country"`
	Phone      string  `json:"phone"`
	PaymentID  *string `json:"payment_id"`
}

func NewOrderSummary(o *models.Order) OrderSummary {
	s := OrderSummary{
		ID:         o.ID,
		Status:     string(o.Status),
		TotalPrice: o.TotalPrice.StringFixed(2),
		CreatedAt:  o.CreatedAt,
		UpdatedAt:  o.UpdatedAt,
		Items:      make([]OrderItem, len(o.Items)),
	}
	for i := range o.Items {
		it := &o.Items[i]
		s.Items[i] = OrderItem{
			ID:       it.ID,
			Product:  NewProductSummary(&it.Product),
			Price:    it.Price.StringFixed(2),
			Quantity: it.Quantity,
			Color:    it.Color,
			Size:     it.Size,
		}
	}
	if p := o.Payment; p != nil {
		s.Payment = &Payment{
			ID:            p.ID,
			PaymentMethod: p.PaymentMethod,
			TransactionID: p.TransactionID,
			Amount:        p.Amount.StringFixed(2),
			Status:        string(p.Status),
			CreatedAt:     p.CreatedAt,
		}
	}
	return s
}

func NewOrderSummaries(list []models.Order) []OrderSummary {
	out := make([]OrderSummary, len(list))
	for i := range list {
		out[i] = NewOrderSummary(&list[i])
	}
	return out
}

func NewOrderDetail(o *models.Order) OrderDetail {
	return OrderDetail{
		OrderSummary: NewOrderSummary(o),
		FirstName:    o.FirstName,
		LastName:     o.LastName,
		Email:        o.Email,
		Address:      o.Address,
		City:         o.City,
		State:        o.State,
		PostalCode:   o.PostalCode,
		Country:      o.Country,
		Phone:        o.Phone,
		PaymentID:    o.PaymentID,
	}
}
