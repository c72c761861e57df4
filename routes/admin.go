package routes

import (
	"github.com/gin-gonic/gin"
	orderControllers "github.com/junaidrashid-git/storefront-api/controllers/order"
	productcontroller "github.com/junaidrashid-git/storefront-api/controllers/product"
	"github.com/junaidrashid-git/storefront-api/middleware"
)

// SetupAdminRoutes registers all "/api/admin/*" endpoints. Requires a staff token.
func SetupAdminRoutes(api *gin.RouterGroup, d Deps) {
	adminGroup := api.Group("/admin")
	adminGroup.Use(middleware.ValidateToken(d.Tokens), middleware.RequireStaff)
	{
		// ─────────── Category Management ───────────
		categoryAdmin := adminGroup.Group("/categories")
		{
			categoryAdmin.POST("", productcontroller.CreateCategory(d.Catalog))
			categoryAdmin.DELETE("/:slug", productcontroller.DeleteCategory(d.Catalog))
		}

		// ─────────── Product Management ───────────
		productAdmin := adminGroup.Group("/products")
		{
			productAdmin.POST("", productcontroller.CreateProduct(d.Catalog))
			productAdmin.GET("/export", productcontroller.ExportProducts(d.Catalog))
			productAdmin.PATCH("/:slug", productcontroller.UpdateProduct(d.Catalog))
			productAdmin.POST("/:slug/variants", productcontroller.AddVariant(d.Catalog))
			productAdmin.POST("/:slug/images", productcontroller.AddImage(d.Catalog, d.MaxUpload))
		}

		// ─────────── Order Management ───────────
		orderAdmin := adminGroup.Group("/orders")
		{
			orderAdmin.PUT("/:id/status", orderControllers.UpdateOrderStatus(d.Orders))
			orderAdmin.GET("/ws", d.Hub.ServeWS)
		}
	}
}
