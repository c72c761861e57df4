package productcontroller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/junaidrashid-git/storefront-api/catalog"
	"github.com/junaidrashid-git/storefront-api/controllers/render"
)

func GetProduct(svc *catalog.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, err := svc.GetProduct(c.Request.Context(), c.Param("slug"))
		if err != nil {
			render.Error(c, err)
			return
		}
		c.JSON(http.StatusOK, render.NewProductDetail(p))
	}
}
