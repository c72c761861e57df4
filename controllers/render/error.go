// Package render turns service results and errors into JSON responses.
package render

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/junaidrashid-git/storefront-api/apperr"
	"github.com/rs/zerolog"
)

// Error writes the response for err. Unexpected errors are logged with the
// request logger and hidden behind a generic 500.
func Error(c *gin.Context, err error) {
	var e *apperr.Error
	if !errors.As(err, &e) {
		zerolog.Ctx(c.Request.Context()).Error().Err(err).Msg("request failed")
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"detail": "Internal server error."})
		return
	}
	switch e.Kind {
	case apperr.KindValidation, apperr.KindAuth:
		c.AbortWithStatusJSON(http.StatusBadRequest, e.Fields)
	case apperr.KindUnauthenticated:
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": e.Message})
	case apperr.KindForbidden:
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"detail": e.Message})
	case apperr.KindNotFound:
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"detail": "Not found."})
	default:
		zerolog.Ctx(c.Request.Context()).Error().Err(err).Msg("request failed")
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"detail": "Internal server error."})
	}
}

// BadRequest reports a body that could not be decoded.
func BadRequest(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"non_field_errors": []string{msg}})
}
