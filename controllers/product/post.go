package productcontroller

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/junaidrashid-git/storefront-api/apperr"
	"github.com/junaidrashid-git/storefront-api/catalog"
	"github.com/junaidrashid-git/storefront-api/controllers/render"
	"github.com/shopspring/decimal"
)

type productRequest struct {
	Name        string           `json:"name"`
	Description string           `json:"description"`
	Price       *decimal.Decimal `json:"price"`
	Category    string           `json:"category"`
	InStock     *bool            `json:"in_stock"`
	IsActive    *bool            `json:"is_active"`
}

// CreateProduct is staff only. in_stock and is_active default to true.
func CreateProduct(svc *catalog.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req productRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			render.BadRequest(c, "Invalid JSON body.")
			return
		}
		if req.Price == nil {
			render.Error(c, apperr.Field("price", "This field is required."))
			return
		}
		in := catalog.ProductInput{
			Name:        req.Name,
			Description: req.Description,
			Price:       *req.Price,
			Category:    req.Category,
			InStock:     req.InStock == nil || *req.InStock,
			IsActive:    req.IsActive == nil || *req.IsActive,
		}
		p, err := svc.CreateProduct(c.Request.Context(), in)
		if err != nil {
			render.Error(c, err)
			return
		}
		c.JSON(http.StatusCreated, render.NewProductDetail(p))
	}
}

type variantRequest struct {
	Color string `json:"color"`
	Size  string `json:"size"`
	Stock int    `json:"stock"`
	SKU   string `json:"sku"`
}

func AddVariant(svc *catalog.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req variantRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			render.BadRequest(c, "Invalid JSON body.")
			return
		}
		v, err := svc.AddVariant(c.Request.Context(), c.Param("slug"), catalog.VariantInput{
			Color: req.Color,
			Size:  req.Size,
			Stock: req.Stock,
			SKU:   req.SKU,
		})
		if err != nil {
			render.Error(c, err)
			return
		}
		c.JSON(http.StatusCreated, render.NewVariant(*v))
	}
}

// AddImage takes a multipart form with the file in "image" plus optional
// alt_text and is_featured fields.
func AddImage(svc *catalog.Service, maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		file, err := c.FormFile("image")
		if err != nil {
			render.Error(c, apperr.Field("image", "No file was submitted."))
			return
		}
		if maxBytes > 0 && file.Size > maxBytes {
			render.Error(c, apperr.Field("image", "File is too large."))
			return
		}
		body, err := file.Open()
		if err != nil {
			render.Error(c, err)
			return
		}
		defer body.Close()

		featured, _ := strconv.ParseBool(c.PostForm("is_featured"))
		img, err := svc.AddImage(c.Request.Context(), c.Param("slug"), catalog.ImageUpload{
			Filename:   file.Filename,
			Body:       body,
			AltText:    c.PostForm("alt_text"),
			IsFeatured: featured,
		})
		if err != nil {
			render.Error(c, err)
			return
		}
		c.JSON(http.StatusCreated, render.NewImage(*img))
	}
}
