package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/junaidrashid-git/storefront-api/auth"
	"github.com/junaidrashid-git/storefront-api/models"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTokens(t *testing.T) *auth.TokenMaker {
	t.Helper()
	tokens, err := auth.NewTokenMaker("middleware-test-secret", time.Minute, time.Hour)
	require.NoError(t, err)
	return tokens
}

func protectedRouter(tokens TokenVerifier) *gin.Engine {
	r := gin.New()
	r.GET("/me", ValidateToken(tokens), func(c *gin.Context) {
		id, ok := CurrentUser(c)
		c.JSON(http.StatusOK, gin.H{"id": id, "ok": ok})
	})
	r.GET("/staff", ValidateToken(tokens), RequireStaff, func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	return r
}

func get(r http.Handler, path, authz string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if authz != "" {
		req.Header.Set("Authorization", authz)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestValidateToken(t *testing.T) {
	tokens := newTokens(t)
	r := protectedRouter(tokens)
	pair, err := tokens.Issue(&models.User{ID: 7, Username: "shopper"})
	require.NoError(t, err)

	tests := []struct {
		name   string
		authz  string
		status int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Token " + pair.Access, http.StatusUnauthorized},
		{"garbage token", "Bearer not.a.jwt", http.StatusUnauthorized},
		{"refresh token", "Bearer " + pair.Refresh, http.StatusUnauthorized},
		{"access token", "Bearer " + pair.Access, http.StatusOK},
		{"lowercase scheme", "bearer " + pair.Access, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := get(r, "/me", tt.authz)
			assert.Equal(t, tt.status, w.Code)
		})
	}

	w := get(r, "/me", "Bearer "+pair.Access)
	assert.JSONEq(t, `{"id":7,"ok":true}`, w.Body.String())
}

func TestRequireStaff(t *testing.T) {
	tokens := newTokens(t)
	r := protectedRouter(tokens)

	customer, err := tokens.Issue(&models.User{ID: 1, Username: "shopper"})
	require.NoError(t, err)
	staff, err := tokens.Issue(&models.User{ID: 2, Username: "admin", IsStaff: true})
	require.NoError(t, err)
	super, err := tokens.Issue(&models.User{ID: 3, Username: "root", IsSuperuser: true})
	require.NoError(t, err)

	assert.Equal(t, http.StatusForbidden, get(r, "/staff", "Bearer "+customer.Access).Code)
	assert.Equal(t, http.StatusNoContent, get(r, "/staff", "Bearer "+staff.Access).Code)
	assert.Equal(t, http.StatusNoContent, get(r, "/staff", "Bearer "+super.Access).Code)
}

func TestCurrentUserWithoutToken(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	_, ok := CurrentUser(c)
	assert.False(t, ok)
}

func TestRequestLogger(t *testing.T) {
	var buf bytes.Buffer
	log := zerolog.New(&buf)

	r := gin.New()
	r.Use(RequestLogger(log))
	r.GET("/ok", func(c *gin.Context) {
		zerolog.Ctx(c.Request.Context()).Info().Msg("inside")
		c.Status(http.StatusOK)
	})
	r.GET("/boom", func(c *gin.Context) {
		panic("kaboom")
	})

	w := get(r, "/ok", "")
	assert.Equal(t, http.StatusOK, w.Code)
	requestID := w.Header().Get(RequestIDHeader)
	require.NotEmpty(t, requestID)

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 2)
	var inside, done map[string]any
	require.NoError(t, json.Unmarshal(lines[0], &inside))
	require.NoError(t, json.Unmarshal(lines[1], &done))
	assert.Equal(t, requestID, inside["request_id"])
	assert.Equal(t, "request completed", done["message"])
	assert.EqualValues(t, 200, done["status"])

	req := httptest.NewRequest(http.MethodGet, "/ok", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Header().Get(RequestIDHeader))

	buf.Reset()
	w = get(r, "/boom", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"detail":"Internal server error."}`, w.Body.String())
	assert.Contains(t, buf.String(), "request panicked")
}

func TestCORS(t *testing.T) {
	preflight := func(h gin.HandlerFunc, origin string) *httptest.ResponseRecorder {
		r := gin.New()
		r.Use(h)
		r.GET("/api/products", func(c *gin.Context) { c.Status(http.StatusOK) })
		req := httptest.NewRequest(http.MethodOptions, "/api/products", nil)
		req.Header.Set("Origin", origin)
		req.Header.Set("Access-Control-Request-Method", http.MethodGet)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	w := preflight(CORS([]string{"https://shop.example.com"}), "https://shop.example.com")
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://shop.example.com", w.Header().Get("Access-Control-Allow-Origin"))

	w = preflight(CORS([]string{"https://shop.example.com"}), "https://evil.example.com")
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))

	w = preflight(CORS([]string{"*"}), "https://anywhere.example.com")
	assert.Equal(t, "https://anywhere.example.com", w.Header().Get("Access-Control-Allow-Origin"))

	w = preflight(CORS(nil), "https://shop.example.com")
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}
