package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/junaidrashid-git/storefront-api/auth"
	"github.com/rs/zerolog"
)

const claimsKey = "auth_claims"

// TokenVerifier checks a signed token of the given type.
type TokenVerifier interface {
	Verify(token, tokenType string) (*auth.Claims, error)
}

// ValidateToken requires a valid "Bearer <access token>" header and stores
// the claims on the context for CurrentUser.
func ValidateToken(tokens TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": "Authentication credentials were not provided."})
			return
		}
		scheme, token, ok := strings.Cut(header, " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": "Authorization header must be Bearer <token>."})
			return
		}

		claims, err := tokens.Verify(strings.TrimSpace(token), auth.AccessToken)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": "Given token not valid for any token type"})
			return
		}
		userID, err := claims.UserID()
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": "Token contained no recognizable user identification"})
			return
		}

		c.Set(claimsKey, claims)
		log := zerolog.Ctx(c.Request.Context()).With().Uint("user_id", userID).Logger()
		c.Request = c.Request.WithContext(log.WithContext(c.Request.Context()))
		c.Next()
	}
}

// RequireStaff must run after ValidateToken.
func RequireStaff(c *gin.Context) {
	claims, ok := Claims(c)
	if !ok || !claims.Staff {
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"detail": "You do not have permission to perform this action."})
		return
	}
	c.Next()
}

func Claims(c *gin.Context) (*auth.Claims, bool) {
	v, ok := c.Get(claimsKey)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*auth.Claims)
	return claims, ok
}

// CurrentUser returns the authenticated user id. It reports false when
// ValidateToken did not run.
func CurrentUser(c *gin.Context) (uint, bool) {
	claims, ok := Claims(c)
	if !ok {
		return 0, false
	}
	id, err := claims.UserID()
	return id, err == nil
}
