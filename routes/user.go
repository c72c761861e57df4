package routes

import (
	"github.com/gin-gonic/gin"
	userControllers "github.com/junaidrashid-git/storefront-api/controllers/user"
	"github.com/junaidrashid-git/storefront-api/middleware"
)

// SetupUserRoutes registers all "/api/accounts/*" endpoints.
func SetupUserRoutes(api *gin.RouterGroup, d Deps) {
	accounts := api.Group("/accounts")
	accounts.POST("/register", userControllers.Register(d.Accounts))

	protected := accounts.Group("")
	protected.Use(middleware.ValidateToken(d.Tokens))
	{
		protected.GET("/profile", userControllers.GetProfile(d.Accounts))
		protected.PUT("/profile", userControllers.UpdateProfile(d.Accounts))
		protected.PATCH("/profile", userControllers.UpdateProfile(d.Accounts))
		protected.PUT("/change-password", userControllers.ChangePassword(d.Accounts))
		protected.PUT("/profile-picture", userControllers.UpdateProfilePicture(d.Accounts, d.MaxUpload))
	}
}
