package productcontroller

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/junaidrashid-git/storefront-api/catalog"
	"github.com/junaidrashid-git/storefront-api/controllers/render"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ExportProducts downloads the whole catalog as products-<date>.xlsx. The
// workbook is built in memory so a failure can still produce a JSON error.
func ExportProducts(svc *catalog.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var buf bytes.Buffer
		if err := svc.ExportProducts(c.Request.Context(), &buf); err != nil {
			render.Error(c, err)
			return
		}
		filename := fmt.Sprintf("products-%s.xlsx", time.Now().UTC().Format("2006-01-02"))
		c.Header("Content-Disposition", "attachment; filename="+filename)
		c.Header("Expires", "0")
		c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
	}
}
