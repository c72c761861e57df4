package routes

import (
	"github.com/gin-gonic/gin"
	orderControllers "github.com/junaidrashid-git/storefront-api/controllers/order"
	"github.com/junaidrashid-git/storefront-api/middleware"
)

// SetupOrderRoutes registers the customer "/api/orders/*" endpoints.
func SetupOrderRoutes(api *gin.RouterGroup, d Deps) {
	orders := api.Group("/orders")
	orders.Use(middleware.ValidateToken(d.Tokens))
	{
		orders.GET("", orderControllers.ListOrders(d.Orders))
		orders.POST("", orderControllers.CreateOrder(d.Orders))
		orders.GET("/history", orderControllers.OrderHistory(d.Orders, d.PageSize))
		orders.GET("/:id", orderControllers.GetOrder(d.Orders))
	}
}
