package productcontroller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/junaidrashid-git/storefront-api/catalog"
	"github.com/junaidrashid-git/storefront-api/controllers/render"
)

func GetCategories(svc *catalog.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		categories, err := svc.ListCategories(c.Request.Context())
		if err != nil {
			render.Error(c, err)
			return
		}
		c.JSON(http.StatusOK, render.NewCategories(categories))
	}
}

func GetCategory(svc *catalog.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		category, err := svc.GetCategory(c.Request.Context(), c.Param("slug"))
		if err != nil {
			render.Error(c, err)
			return
		}
		c.JSON(http.StatusOK, render.NewCategory(*category))
	}
}

type categoryRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// CreateCategory is staff only.
func CreateCategory(svc *catalog.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req categoryRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			render.BadRequest(c, "Invalid JSON body.")
			return
		}
		category, err := svc.CreateCategory(c.Request.Context(), catalog.CategoryInput{
			Name:        req.Name,
			Description: req.Description,
		})
		if err != nil {
			render.Error(c, err)
			return
		}
		c.JSON(http.StatusCreated, render.NewCategory(*category))
	}
}
