package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/junaidrashid-git/storefront-api/account"
	"github.com/junaidrashid-git/storefront-api/auth"
	"github.com/junaidrashid-git/storefront-api/catalog"
	adminController "github.com/junaidrashid-git/storefront-api/controllers/admin"
	orderControllers "github.com/junaidrashid-git/storefront-api/controllers/order"
	"github.com/junaidrashid-git/storefront-api/orders"
	"github.com/junaidrashid-git/storefront-api/repository/memory"
	"github.com/junaidrashid-git/storefront-api/storage"
	"github.com/stretchr/testify/suite"
	"golang.org/x/crypto/bcrypt"
)

type APISuite struct {
	suite.Suite
	ctx    context.Context
	router *gin.Engine
	hub    *orderControllers.Hub
	tokens *auth.TokenMaker

	staff    string
	customer string
}

func TestAPISuite(t *testing.T) {
	gin.SetMode(gin.TestMode)
	suite.Run(t, new(APISuite))
}

func (s *APISuite) SetupTest() {
	s.ctx = context.Background()
	store := memory.New()
	files := storage.NewLocal(s.T().TempDir(), "/media")

	catalogSvc := catalog.NewService(store, nil, files, time.Minute)
	s.Require().NoError(catalogSvc.Seed(s.ctx))
	accounts := account.NewService(store, auth.BcryptHasher{Cost: bcrypt.MinCost}, files)
	s.Require().NoError(accounts.SeedAdmin(s.ctx, "admin", "admin@example.com", "admin-pass-123"))

	var err error
	s.tokens, err = auth.NewTokenMaker("test-secret-0123456789", time.Hour, 24*time.Hour)
	s.Require().NoError(err)
	s.hub = orderControllers.NewHub()

	s.router = gin.New()
	SetupRoutes(s.router, Deps{
		Name:     "storefront-api",
		Version:  "test",
		Catalog:  catalogSvc,
		Accounts: accounts,
		Orders:   orders.NewService(store, store, s.hub),
		Tokens:   s.tokens,
		Hub:      s.hub,
		Checks: map[string]adminController.Check{
			"store": func(context.Context) error { return nil },
		},
		PageSize:  12,
		MaxUpload: 1 << 20,
	})

	s.staff = s.login("admin", "admin-pass-123")
	s.register("shopper", "shopper@example.com")
	s.customer = s.login("shopper", "shopper-pass-1")
}

func (s *APISuite) TearDownTest() {
	s.hub.Close()
}

// -------- helpers --------

func (s *APISuite) do(method, path, token string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		s.Require().NoError(json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *APISuite) decode(w *httptest.ResponseRecorder, dest any) {
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), dest), w.Body.String())
}

func (s *APISuite) register(username, email string) {
	w := s.do(http.MethodPost, "/api/accounts/register", "", gin.H{
		"username":         username,
		"email":            email,
		"password":         "shopper-pass-1",
		"password_confirm": "shopper-pass-1",
	})
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
}

func (s *APISuite) login(username, password string) string {
	w := s.do(http.MethodPost, "/api/token", "", gin.H{"username": username, "password": password})
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	var pair auth.TokenPair
	s.decode(w, &pair)
	return pair.Access
}

func (s *APISuite) productID(slug string) uint {
	w := s.do(http.MethodGet, "/api/products/"+slug, "", nil)
	s.Require().Equal(http.StatusOK, w.Code)
	var p struct {
		ID uint `json:"id"`
	}
	s.decode(w, &p)
	return p.ID
}

func (s *APISuite) orderBody(items ...gin.H) gin.H {
	return gin.H{
		"first_name":     "Ada",
		"last_name":      "Lovelace",
		"email":          "ada@example.com",
		"address":        "1 Analytical Way",
		"city":           "London",
		"postal_code":    "N1",
		"country":        "UK",
		"phone":          "+44 20 0000",
		"payment_method": "card",
		"items":          items,
	}
}

// -------- system --------

func (s *APISuite) TestIndexAndHealth() {
	w := s.do(http.MethodGet, "/", "", nil)
	s.Equal(http.StatusOK, w.Code)
	s.Contains(w.Body.String(), `"service":"storefront-api"`)

	w = s.do(http.MethodGet, "/healthz", "", nil)
	s.Equal(http.StatusOK, w.Code)
	s.JSONEq(`{"status":"ok","checks":{"store":"ok"}}`, w.Body.String())
}

// -------- catalog --------

func (s *APISuite) TestBrowseProducts() {
	w := s.do(http.MethodGet, "/api/products", "", nil)
	s.Require().Equal(http.StatusOK, w.Code)
	var page struct {
		Count   int64            `json:"count"`
		Next    *string          `json:"next"`
		Results []map[string]any `json:"results"`
	}
	s.decode(w, &page)
	s.EqualValues(4, page.Count)
	s.Len(page.Results, 4)
	s.Nil(page.Next)

	w = s.do(http.MethodGet, "/api/products?category=women", "", nil)
	s.decode(w, &page)
	s.Require().EqualValues(1, page.Count)
	s.Equal("floral-summer-dress", page.Results[0]["slug"])

	w = s.do(http.MethodGet, "/api/products?page_size=1&page=2", "", nil)
	s.decode(w, &page)
	s.Len(page.Results, 1)
	s.Require().NotNil(page.Next)
	s.Contains(*page.Next, "page=3")
}

func (s *APISuite) TestProductDetailAndCategories() {
	w := s.do(http.MethodGet, "/api/products/classic-black-t-shirt", "", nil)
	s.Require().Equal(http.StatusOK, w.Code)
	var p struct {
		Price    string           `json:"price"`
		Variants []map[string]any `json:"variants"`
		Images   []map[string]any `json:"images"`
	}
	s.decode(w, &p)
	s.Equal("19.99", p.Price)
	s.Len(p.Variants, 4)
	s.Len(p.Images, 2)

	w = s.do(http.MethodGet, "/api/products/no-such-thing", "", nil)
	s.Equal(http.StatusNotFound, w.Code)
	s.JSONEq(`{"detail":"Not found."}`, w.Body.String())

	w = s.do(http.MethodGet, "/api/products/featured", "", nil)
	s.Require().Equal(http.StatusOK, w.Code)
	var featured []map[string]any
	s.decode(w, &featured)
	s.Len(featured, 4)

	w = s.do(http.MethodGet, "/api/products/categories", "", nil)
	var categories []map[string]any
	s.decode(w, &categories)
	s.Len(categories, 4)

	w = s.do(http.MethodGet, "/api/products/categories/footwear", "", nil)
	s.Equal(http.StatusOK, w.Code)
	s.Contains(w.Body.String(), `"name":"Footwear"`)
}

func (s *APISuite) TestStaffCatalogWrites() {
	w := s.do(http.MethodPost, "/api/admin/categories", s.customer, gin.H{"name": "Hats"})
	s.Equal(http.StatusForbidden, w.Code)

	w = s.do(http.MethodPost, "/api/admin/categories", "", gin.H{"name": "Hats"})
	s.Equal(http.StatusUnauthorized, w.Code)

	w = s.do(http.MethodPost, "/api/admin/categories", s.staff, gin.H{"name": "Hats"})
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	s.Contains(w.Body.String(), `"slug":"hats"`)

	w = s.do(http.MethodPost, "/api/admin/products", s.staff, gin.H{"name": "Bucket Hat", "category": "hats"})
	s.Equal(http.StatusBadRequest, w.Code)
	s.Contains(w.Body.String(), `"price"`)

	w = s.do(http.MethodPost, "/api/admin/products", s.staff, gin.H{"name": "Bucket Hat", "category": "hats", "price": "15.5"})
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	s.Contains(w.Body.String(), `"price":"15.50"`)

	w = s.do(http.MethodPatch, "/api/admin/products/bucket-hat", s.staff, gin.H{"name": "Sun Hat"})
	s.Require().Equal(http.StatusOK, w.Code)
	s.Contains(w.Body.String(), `"slug":"bucket-hat"`)
	s.Contains(w.Body.String(), `"name":"Sun Hat"`)

	w = s.do(http.MethodPost, "/api/admin/products/bucket-hat/variants", s.staff, gin.H{"color": "Tan", "size": "M", "stock": 3, "sku": "HAT-TAN-M"})
	s.Equal(http.StatusCreated, w.Code, w.Body.String())

	w = s.do(http.MethodDelete, "/api/admin/categories/hats", s.staff, nil)
	s.Equal(http.StatusBadRequest, w.Code)

	w = s.do(http.MethodDelete, "/api/admin/categories/footwear", s.staff, nil)
	s.Equal(http.StatusNoContent, w.Code)
}

func (s *APISuite) TestProductImageUpload() {
	body, contentType := multipartFile(s.T(), "image", "front view.png", map[string]string{"alt_text": "Front", "is_featured": "true"})
	req := httptest.NewRequest(http.MethodPost, "/api/admin/products/slim-fit-jeans/images", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Bearer "+s.staff)
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())

	var img struct {
		Image      string `json:"image"`
		IsFeatured bool   `json:"is_featured"`
	}
	s.decode(w, &img)
	s.True(strings.HasPrefix(img.Image, "/media/products/"))
	s.True(strings.HasSuffix(img.Image, "_front_view.png"))
	s.True(img.IsFeatured)
}

func (s *APISuite) TestExportProducts() {
	w := s.do(http.MethodGet, "/api/admin/products/export", s.staff, nil)
	s.Require().Equal(http.StatusOK, w.Code)
	s.Contains(w.Header().Get("Content-Disposition"), "products-")
	s.NotZero(w.Body.Len())
}

// -------- accounts --------

func (s *APISuite) TestRegisterValidation() {
	w := s.do(http.MethodPost, "/api/accounts/register", "", gin.H{
		"username":  "shopper",
		"email":     "other@example.com",
		"password":  "long-enough-1",
		"password2": "long-enough-1",
	})
	s.Equal(http.StatusBadRequest, w.Code)
	s.Contains(w.Body.String(), `"username"`)

	w = s.do(http.MethodPost, "/api/accounts/register", "", gin.H{
		"username":  "second",
		"email":     "second@example.com",
		"password":  "long-enough-1",
		"password2": "long-enough-1",
	})
	s.Equal(http.StatusCreated, w.Code, w.Body.String())
	s.NotContains(w.Body.String(), "password")
}

func (s *APISuite) TestTokens() {
	w := s.do(http.MethodPost, "/api/token", "", gin.H{"username": "shopper", "password": "wrong-password"})
	s.Equal(http.StatusUnauthorized, w.Code)

	w = s.do(http.MethodPost, "/api/token", "", gin.H{"username": "shopper", "password": "shopper-pass-1"})
	s.Require().Equal(http.StatusOK, w.Code)
	var pair auth.TokenPair
	s.decode(w, &pair)

	w = s.do(http.MethodPost, "/api/token/refresh", "", gin.H{"refresh": pair.Access})
	s.Equal(http.StatusUnauthorized, w.Code)

	w = s.do(http.MethodPost, "/api/token/refresh", "", gin.H{"refresh": pair.Refresh})
	s.Require().Equal(http.StatusOK, w.Code)
	var refreshed auth.TokenPair
	s.decode(w, &refreshed)
	s.NotEmpty(refreshed.Access)

	w = s.do(http.MethodGet, "/api/accounts/profile", pair.Refresh, nil)
	s.Equal(http.StatusUnauthorized, w.Code)
}

func (s *APISuite) TestProfile() {
	w := s.do(http.MethodGet, "/api/accounts/profile", "", nil)
	s.Equal(http.StatusUnauthorized, w.Code)

	w = s.do(http.MethodGet, "/api/accounts/profile", s.customer, nil)
	s.Require().Equal(http.StatusOK, w.Code)
	s.Contains(w.Body.String(), `"profile":{`)

	w = s.do(http.MethodPatch, "/api/accounts/profile", s.customer, gin.H{
		"first_name":   "Ada",
		"phone_number": "555-0100",
		"profile":      gin.H{"city": "London", "date_of_birth": "1990-12-10"},
	})
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	var detail struct {
		FirstName string `json:"first_name"`
		Profile   struct {
			Phone       string  `json:"phone"`
			City        string  `json:"city"`
			DateOfBirth *string `json:"date_of_birth"`
		} `json:"profile"`
	}
	s.decode(w, &detail)
	s.Equal("Ada", detail.FirstName)
	s.Equal("555-0100", detail.Profile.Phone)
	s.Equal("London", detail.Profile.City)
	s.Require().NotNil(detail.Profile.DateOfBirth)
	s.Equal("1990-12-10", *detail.Profile.DateOfBirth)

	w = s.do(http.MethodPut, "/api/accounts/profile", s.customer, gin.H{"profile": gin.H{"date_of_birth": "10/12/1990"}})
	s.Equal(http.StatusBadRequest, w.Code)
	s.Contains(w.Body.String(), `"date_of_birth"`)

	w = s.do(http.MethodPut, "/api/accounts/profile", s.customer, gin.H{"date_of_birth": nil})
	s.Require().Equal(http.StatusOK, w.Code)
	s.decode(w, &detail)
	s.Nil(detail.Profile.DateOfBirth)
	s.Equal("London", detail.Profile.City)
}

func (s *APISuite) TestChangePassword() {
	w := s.do(http.MethodPut, "/api/accounts/change-password", s.customer, gin.H{
		"old_password":     "not-it",
		"new_password":     "brand-new-pass",
		"confirm_password": "brand-new-pass",
	})
	s.Equal(http.StatusBadRequest, w.Code)
	s.JSONEq(`{"old_password":["Wrong password."]}`, w.Body.String())

	w = s.do(http.MethodPut, "/api/accounts/change-password", s.customer, gin.H{
		"old_password":     "shopper-pass-1",
		"new_password":     "brand-new-pass",
		"confirm_password": "brand-new-pass",
	})
	s.Require().Equal(http.StatusOK, w.Code)
	s.JSONEq(`{"message":"Password updated successfully"}`, w.Body.String())
	s.NotEmpty(s.login("shopper", "brand-new-pass"))
}

func (s *APISuite) TestProfilePicture() {
	body, contentType := multipartFile(s.T(), "avatar", "me.jpg", nil)
	req := httptest.NewRequest(http.MethodPut, "/api/accounts/profile-picture", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Bearer "+s.customer)
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	s.Contains(w.Body.String(), `"avatar":"/media/avatars/`)

	body, contentType = multipartFile(s.T(), "avatar", "notes.txt", nil)
	req = httptest.NewRequest(http.MethodPut, "/api/accounts/profile-picture", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Bearer "+s.customer)
	w = httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	s.Equal(http.StatusBadRequest, w.Code)

	body, contentType = multipartContent(s.T(), "avatar", "renamed.png", "plain text pretending to be a picture", nil)
	req = httptest.NewRequest(http.MethodPut, "/api/accounts/profile-picture", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Bearer "+s.customer)
	w = httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	s.Equal(http.StatusBadRequest, w.Code)
	s.Contains(w.Body.String(), "Upload a valid image")
}

// -------- orders --------

func (s *APISuite) TestPlaceAndReadOrder() {
	shirt := s.productID("classic-black-t-shirt")
	jeans := s.productID("slim-fit-jeans")

	w := s.do(http.MethodPost, "/api/orders", s.customer, s.orderBody(
		gin.H{"product": shirt, "quantity": 2, "color": "Black", "size": "M"},
		gin.H{"product": jeans, "quantity": 1},
	))
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	var order struct {
		ID         uint   `json:"id"`
		Status     string `json:"status"`
		TotalPrice string `json:"total_price"`
		Payment    struct {
			Status string `json:"status"`
			Amount string `json:"amount"`
		} `json:"payment"`
		Items []map[string]any `json:"items"`
	}
	s.decode(w, &order)
	s.Equal("pending", order.Status)
	s.Equal("89.97", order.TotalPrice)
	s.Equal("pending", order.Payment.Status)
	s.Equal("89.97", order.Payment.Amount)
	s.Len(order.Items, 2)

	w = s.do(http.MethodGet, "/api/orders", s.customer, nil)
	s.Require().Equal(http.StatusOK, w.Code)
	var list []map[string]any
	s.decode(w, &list)
	s.Len(list, 1)

	w = s.do(http.MethodGet, "/api/orders/history", s.customer, nil)
	s.Require().Equal(http.StatusOK, w.Code)
	s.Contains(w.Body.String(), `"count":1`)

	path := fmt.Sprintf("/api/orders/%d", order.ID)
	w = s.do(http.MethodGet, path, s.customer, nil)
	s.Equal(http.StatusOK, w.Code)
	s.Contains(w.Body.String(), `"first_name":"Ada"`)

	w = s.do(http.MethodGet, path, s.staff, nil)
	s.Equal(http.StatusNotFound, w.Code)

	w = s.do(http.MethodGet, "/api/orders/abc", s.customer, nil)
	s.Equal(http.StatusNotFound, w.Code)
}

func (s *APISuite) TestPlaceOrderValidation() {
	w := s.do(http.MethodPost, "/api/orders", "", s.orderBody())
	s.Equal(http.StatusUnauthorized, w.Code)

	w = s.do(http.MethodPost, "/api/orders", s.customer, s.orderBody(gin.H{"product": 99999, "quantity": 0}))
	s.Require().Equal(http.StatusBadRequest, w.Code)
	var errs map[string][]string
	s.decode(w, &errs)
	s.Contains(errs, "items[0].quantity")
	s.Contains(errs, "items[0].product")

	shirt := s.productID("classic-black-t-shirt")
	w = s.do(http.MethodPost, "/api/orders", s.customer, s.orderBody(gin.H{"product": shirt, "quantity": 1000000000}))
	s.Require().Equal(http.StatusBadRequest, w.Code, w.Body.String())
	errs = nil
	s.decode(w, &errs)
	s.Contains(errs, "items[0].quantity")

	w = s.do(http.MethodGet, "/api/orders", s.customer, nil)
	s.JSONEq(`[]`, w.Body.String())
}

func (s *APISuite) TestOrderStatusIsStaffOnly() {
	shirt := s.productID("classic-black-t-shirt")
	w := s.do(http.MethodPost, "/api/orders", s.customer, s.orderBody(gin.H{"product": shirt, "quantity": 1}))
	s.Require().Equal(http.StatusCreated, w.Code)
	var order struct {
		ID uint `json:"id"`
	}
	s.decode(w, &order)
	path := fmt.Sprintf("/api/admin/orders/%d/status", order.ID)

	w = s.do(http.MethodPut, path, s.customer, gin.H{"status": "paid"})
	s.Equal(http.StatusForbidden, w.Code)

	w = s.do(http.MethodPut, path, s.staff, gin.H{"status": "teleported"})
	s.Equal(http.StatusBadRequest, w.Code)

	w = s.do(http.MethodPut, path, s.staff, gin.H{"status": "delivered"})
	s.Equal(http.StatusBadRequest, w.Code)

	w = s.do(http.MethodPut, path, s.staff, gin.H{"status": "paid"})
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	s.Contains(w.Body.String(), `"status":"paid"`)
	s.Contains(w.Body.String(), `"status":"completed"`)
}

func (s *APISuite) TestOrderFeed() {
	srv := httptest.NewServer(s.router)
	defer srv.Close()

	header := http.Header{"Authorization": {"Bearer " + s.staff}}
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/admin/orders/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, header)
	s.Require().NoError(err)
	defer conn.Close()
	s.Eventually(func() bool { return s.hub.Clients() == 1 }, time.Second, 10*time.Millisecond)

	shirt := s.productID("classic-black-t-shirt")
	w := s.do(http.MethodPost, "/api/orders", s.customer, s.orderBody(gin.H{"product": shirt, "quantity": 3}))
	s.Require().Equal(http.StatusCreated, w.Code)

	s.Require().NoError(conn.SetReadDeadline(time.Now().Add(2 * time.Second)))
	var event struct {
		Type  string `json:"type"`
		Order struct {
			TotalPrice string `json:"total_price"`
		} `json:"order"`
	}
	s.Require().NoError(conn.ReadJSON(&event))
	s.Equal("order.created", event.Type)
	s.Equal("59.97", event.Order.TotalPrice)

	_, resp, err := websocket.DefaultDialer.Dial(url, http.Header{"Authorization": {"Bearer " + s.customer}})
	s.Error(err)
	s.Require().NotNil(resp)
	s.Equal(http.StatusForbidden, resp.StatusCode)
}

func multipartFile(t *testing.T, field, filename string, extra map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	return multipartContent(t, field, filename, "\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR", extra)
}

func multipartContent(t *testing.T, field, filename, content string, extra map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile(field, filename)
	if err != nil {
		t.Fatal(err)
	}
	_, _ = part.Write([]byte(content))
	for k, v := range extra {
		_ = mw.WriteField(k, v)
	}
	if err := mw.Close(); err != nil {
		t.Fatal(err)
	}
	return &buf, mw.FormDataContentType()
}
