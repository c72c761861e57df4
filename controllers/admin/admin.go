package adminController

import (
	"context"
	"net/http"
	"sort"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// Check reports whether a backing service is reachable.
type Check func(ctx context.Context) error

const checkTimeout = 2 * time.Second

// Index describes the service and the endpoint groups it serves.
func Index(name, version string) gin.HandlerFunc {
	body := gin.H{
		"service": name,
		"version": version,
		"endpoints": gin.H{
			"token":    "/api/token",
			"accounts": "/api/accounts/",
			"products": "/api/products/",
			"orders":   "/api/orders/",
			"admin":    "/api/admin/",
			"health":   "/healthz",
		},
	}
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, body)
	}
}

// Healthz runs every check and answers 503 if any of them fails.
func Healthz(checks map[string]Check) gin.HandlerFunc {
	names := make([]string, 0, len(checks))
	for name := range checks {
		names = append(names, name)
	}
	sort.Strings(names)

	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), checkTimeout)
		defer cancel()

		status := http.StatusOK
		results := make(gin.H, len(names))
		for _, name := range names {
			if err := checks[name](ctx); err != nil {
				zerolog.Ctx(c.Request.Context()).Warn().Err(err).Str("check", name).Msg("health check failed")
				results[name] = err.Error()
				status = http.StatusServiceUnavailable
				continue
			}
			results[name] = "ok"
		}
		state := "ok"
		if status != http.StatusOK {
			state = "degraded"
		}
		c.JSON(status, gin.H{"status": state, "checks": results})
	}
}
