package routes

import (
	"github.com/gin-gonic/gin"
	userControllers "github.com/junaidrashid-git/storefront-api/controllers/user"
)

// SetupAuthRoutes registers the "/api/token" endpoints.
func SetupAuthRoutes(api *gin.RouterGroup, d Deps) {
	tokenGroup := api.Group("/token")
	{
		tokenGroup.POST("", userControllers.ObtainToken(d.Accounts, d.Tokens))
		tokenGroup.POST("/refresh", userControllers.RefreshToken(d.Accounts, d.Tokens))
	}
}
