package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/junaidrashid-git/storefront-api/account"
	"github.com/junaidrashid-git/storefront-api/auth"
	"github.com/junaidrashid-git/storefront-api/catalog"
	adminController "github.com/junaidrashid-git/storefront-api/controllers/admin"
	orderControllers "github.com/junaidrashid-git/storefront-api/controllers/order"
	"github.com/junaidrashid-git/storefront-api/orders"
)

// Deps carries everything the handlers close over.
type Deps struct {
	Name      string
	Version   string
	Catalog   *catalog.Service
	Accounts  *account.Service
	Orders    *orders.Service
	Tokens    *auth.TokenMaker
	Hub       *orderControllers.Hub
	Checks    map[string]adminController.Check
	PageSize  int
	MaxUpload int64
}

// SetupRoutes is the single entry point that wires up every route group.
func SetupRoutes(r *gin.Engine, d Deps) {
	r.GET("/", adminController.Index(d.Name, d.Version))
	r.GET("/healthz", adminController.Healthz(d.Checks))

	api := r.Group("/api")

	// Public token routes
	SetupAuthRoutes(api, d)

	// Accounts, mostly JWT protected
	SetupUserRoutes(api, d)

	// Public catalog browsing
	SetupProductRoutes(api, d)

	// Orders (JWT protected)
	SetupOrderRoutes(api, d)

	// Staff only
	SetupAdminRoutes(api, d)
}
