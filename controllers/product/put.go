package productcontroller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/junaidrashid-git/storefront-api/catalog"
	"github.com/junaidrashid-git/storefront-api/controllers/render"
	"github.com/shopspring/decimal"
)

type productPatchRequest struct {
	Name        *string          `json:"name"`
	Description *string          `json:"description"`
	Price       *decimal.Decimal `json:"price"`
	Category    *string          `json:"category"`
	InStock     *bool            `json:"in_stock"`
	IsActive    *bool            `json:"is_active"`
}

// UpdateProduct applies a partial update. The slug never changes.
func UpdateProduct(svc *catalog.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req productPatchRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			render.BadRequest(c, "Invalid JSON body.")
			return
		}
		p, err := svc.UpdateProduct(c.Request.Context(), c.Param("slug"), catalog.ProductPatch{
			Name:        req.Name,
			Description: req.Description,
			Price:       req.Price,
			Category:    req.Category,
			InStock:     req.InStock,
			IsActive:    req.IsActive,
		})
		if err != nil {
			render.Error(c, err)
			return
		}
		c.JSON(http.StatusOK, render.NewProductDetail(p))
	}
}
