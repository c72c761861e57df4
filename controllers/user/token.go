package userControllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/junaidrashid-git/storefront-api/account"
	"github.com/junaidrashid-git/storefront-api/apperr"
	"github.com/junaidrashid-git/storefront-api/auth"
	"github.com/junaidrashid-git/storefront-api/controllers/render"
)

type tokenRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// ObtainToken exchanges username and password for an access/refresh pair.
func ObtainToken(svc *account.Service, tokens *auth.TokenMaker) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req tokenRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			render.BadRequest(c, "Invalid JSON body.")
			return
		}
		errs := apperr.Fields{}
		errs.Required("username", req.Username)
		errs.Required("password", req.Password)
		if err := errs.Err(); err != nil {
			render.Error(c, err)
			return
		}

		u, err := svc.Authenticate(c.Request.Context(), req.Username, req.Password)
		if err != nil {
			render.Error(c, err)
			return
		}
		pair, err := tokens.Issue(u)
		if err != nil {
			render.Error(c, err)
			return
		}
		c.JSON(http.StatusOK, pair)
	}
}

type refreshRequest struct {
	Refresh string `json:"refresh"`
}

// RefreshToken issues a new pair for a valid refresh token. The user is
// reloaded so a removed account or a changed staff flag takes effect.
func RefreshToken(svc *account.Service, tokens *auth.TokenMaker) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req refreshRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			render.BadRequest(c, "Invalid JSON body.")
			return
		}
		if req.Refresh == "" {
			render.Error(c, apperr.Field("refresh", "This field is required."))
			return
		}

		claims, err := tokens.Verify(req.Refresh, auth.RefreshToken)
		if err != nil {
			render.Error(c, apperr.Unauthenticated("Token is invalid or expired"))
			return
		}
		userID, _ := claims.UserID()
		u, err := svc.User(c.Request.Context(), userID)
		if errors.Is(err, apperr.ErrNotFound) {
			render.Error(c, apperr.Unauthenticated("User not found"))
			return
		}
		if err != nil {
			render.Error(c, err)
			return
		}
		pair, err := tokens.Issue(u)
		if err != nil {
			render.Error(c, err)
			return
		}
		c.JSON(http.StatusOK, pair)
	}
}
