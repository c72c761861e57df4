package productcontroller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/junaidrashid-git/storefront-api/catalog"
	"github.com/junaidrashid-git/storefront-api/controllers/render"
)

// DeleteCategory refuses with 400 while the category still has products.
func DeleteCategory(svc *catalog.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := svc.DeleteCategory(c.Request.Context(), c.Param("slug")); err != nil {
			render.Error(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}
