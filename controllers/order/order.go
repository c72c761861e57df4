package orderControllers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/junaidrashid-git/storefront-api/apperr"
	"github.com/junaidrashid-git/storefront-api/controllers/render"
	"github.com/junaidrashid-git/storefront-api/middleware"
	"github.com/junaidrashid-git/storefront-api/models"
	"github.com/junaidrashid-git/storefront-api/orders"
	"github.com/junaidrashid-git/storefront-api/pagination"
)

// -------- Request Structs --------

type lineItemRequest struct {
	Product  uint   `json:"product"`
	Variant  *uint  `json:"variant"`
	Quantity int    `json:"quantity"`
	Color    string `json:"color"`
	Size     string `json:"size"`
}

type PlaceOrderRequest struct {
	FirstName     string            `json:"first_name"`
	LastName      string            `json:"last_name"`
	Email         string            `json:"email"`
	Address       string            `json:"address"`
	City          string            `json:"city"`
	State         string            `json:"state"`
	PostalCode    string            `json:"postal_code"`
	Country       string            `json:"country"`
	Phone         string            `json:"phone"`
	PaymentMethod string            `json:"payment_method"`
	Items         []lineItemRequest `json:"items"`
}

type UpdateOrderStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// -------- Helpers --------

func (r PlaceOrderRequest) toInput() orders.PlaceOrder {
	in := orders.PlaceOrder{
		Shipping: orders.Shipping{
			FirstName:  r.FirstName,
			LastName:   r.LastName,
			Email:      r.Email,
			Address:    r.Address,
			City:       r.City,
			State:      r.State,
			PostalCode: r.PostalCode,
			Country:    r.Country,
			Phone:      r.Phone,
		},
		PaymentMethod: r.PaymentMethod,
		Items:         make([]orders.LineItem, len(r.Items)),
	}
	for i, it := range r.Items {
		in.Items[i] = orders.LineItem{
			ProductID: it.Product,
			VariantID: it.Variant,
			Quantity:  it.Quantity,
			Color:     it.Color,
			Size:      it.Size,
		}
	}
	return in
}

func mapOrderStatus(status string) (models.OrderStatus, bool) {
	switch s := models.OrderStatus(strings.ToLower(strings.TrimSpace(status))); s {
	case models.OrderStatusPending, models.OrderStatusPaid, models.OrderStatusShipped,
		models.OrderStatusDelivered, models.OrderStatusCancelled:
		return s, true
	}
	return "", false
}

// orderID reads the :id param. Anything that is not a positive integer
// cannot name an order, so it is reported as not found.
func orderID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		render.Error(c, apperr.NotFound("order"))
		return 0, false
	}
	return uint(id), true
}

func currentUser(c *gin.Context) (uint, bool) {
	userID, ok := middleware.CurrentUser(c)
	if !ok {
		render.Error(c, apperr.Unauthenticated("Authentication credentials were not provided."))
	}
	return userID, ok
}

// -------- Handlers --------

// GET /api/orders
func ListOrders(svc *orders.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUser(c)
		if !ok {
			return
		}
		list, err := svc.ListOrders(c.Request.Context(), userID)
		if err != nil {
			render.Error(c, err)
			return
		}
		c.JSON(http.StatusOK, render.NewOrderSummaries(list))
	}
}

// POST /api/orders
func CreateOrder(svc *orders.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUser(c)
		if !ok {
			return
		}
		var req PlaceOrderRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			render.BadRequest(c, "Invalid JSON body.")
			return
		}
		order, err := svc.CreateOrder(c.Request.Context(), userID, req.toInput())
		if err != nil {
			render.Error(c, err)
			return
		}
		c.JSON(http.StatusCreated, render.NewOrderDetail(order))
	}
}

// GET /api/orders/history
func OrderHistory(svc *orders.Service, pageSize int) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUser(c)
		if !ok {
			return
		}
		page := pagination.Parse(c.Query("page"), c.Query("page_size"), pageSize)
		res, err := svc.OrderHistory(c.Request.Context(), userID, page)
		if err != nil {
			render.Error(c, err)
			return
		}
		c.JSON(http.StatusOK, render.NewPage(c, res, render.NewOrderSummaries))
	}
}

// GET /api/orders/:id
func GetOrder(svc *orders.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUser(c)
		if !ok {
			return
		}
		id, ok := orderID(c)
		if !ok {
			return
		}
		order, err := svc.GetOrder(c.Request.Context(), userID, id)
		if err != nil {
			render.Error(c, err)
			return
		}
		c.JSON(http.StatusOK, render.NewOrderDetail(order))
	}
}

// PUT /api/admin/orders/:id/status
func UpdateOrderStatus(svc *orders.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := orderID(c)
		if !ok {
			return
		}
		var req UpdateOrderStatusRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			render.Error(c, apperr.Field("status", "This field is required."))
			return
		}
		status, ok := mapOrderStatus(req.Status)
		if !ok {
			render.Error(c, apperr.Field("status", "Invalid order status."))
			return
		}
		order, err := svc.UpdateStatus(c.Request.Context(), id, status)
		if err != nil {
			render.Error(c, err)
			return
		}
		c.JSON(http.StatusOK, render.NewOrderDetail(order))
	}
}
