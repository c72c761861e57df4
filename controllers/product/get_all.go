package productcontroller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/junaidrashid-git/storefront-api/catalog"
	"github.com/junaidrashid-git/storefront-api/controllers/render"
	"github.com/junaidrashid-git/storefront-api/pagination"
)

// GetProducts lists active products. Filters that do not parse are ignored.
func GetProducts(svc *catalog.Service, pageSize int) gin.HandlerFunc {
	return func(c *gin.Context) {
		filter := catalog.ParseProductFilter(c.Request.URL.Query())
		page := pagination.Parse(c.Query("page"), c.Query("page_size"), pageSize)

		res, err := svc.ListProducts(c.Request.Context(), filter, page)
		if err != nil {
			render.Error(c, err)
			return
		}
		c.JSON(http.StatusOK, render.NewPage(c, res, render.NewProductSummaries))
	}
}

func GetFeatured(svc *catalog.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		products, err := svc.Featured(c.Request.Context())
		if err != nil {
			render.Error(c, err)
			return
		}
		c.JSON(http.StatusOK, render.NewProductSummaries(products))
	}
}
