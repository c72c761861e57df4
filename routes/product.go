package routes

import (
	"github.com/gin-gonic/gin"
	productcontroller "github.com/junaidrashid-git/storefront-api/controllers/product"
)

// SetupProductRoutes registers the public "/api/products/*" endpoints.
func SetupProductRoutes(api *gin.RouterGroup, d Deps) {
	products := api.Group("/products")
	{
		products.GET("", productcontroller.GetProducts(d.Catalog, d.PageSize))
		products.GET("/featured", productcontroller.GetFeatured(d.Catalog))
		products.GET("/categories", productcontroller.GetCategories(d.Catalog))
		products.GET("/categories/:slug", productcontroller.GetCategory(d.Catalog))
		products.GET("/:slug", productcontroller.GetProduct(d.Catalog))
	}
}
