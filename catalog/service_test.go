package catalog_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/junaidrashid-git/storefront-api/apperr"
	"github.com/junaidrashid-git/storefront-api/catalog"
	"github.com/junaidrashid-git/storefront-api/models"
	"github.com/junaidrashid-git/storefront-api/pagination"
	"github.com/junaidrashid-git/storefront-api/repository/memory"
	mock_storage "github.com/junaidrashid-git/storefront-api/storage/mock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/tealeg/xlsx"
)

// mapCache is an in-process cache.Cache that counts hits.
type mapCache struct {
	data map[string][]byte
	hits int
}

func newMapCache() *mapCache { return &mapCache{data: map[string][]byte{}} }

func (c *mapCache) Get(_ context.Context, key string, dest any) (bool, error) {
	b, ok := c.data[key]
	if !ok {
		return false, nil
	}
	c.hits++
	return true, json.Unmarshal(b, dest)
}

func (c *mapCache) Set(_ context.Context, key string, value any, _ time.Duration) error {
	b, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.data[key] = b
	return nil
}

func (c *mapCache) Delete(_ context.Context, keys ...string) error {
	for _, k := range keys {
		delete(c.data, k)
	}
	return nil
}

type CatalogSuite struct {
	suite.Suite
	ctx   context.Context
	store *memory.Store
	cache *mapCache
	svc   *catalog.Service
}

func TestCatalogSuite(t *testing.T) {
	suite.Run(t, new(CatalogSuite))
}

func (s *CatalogSuite) SetupTest() {
	s.ctx = context.Background()
	s.store = memory.New()
	s.cache = newMapCache()
	s.svc = catalog.NewService(s.store, s.cache, nil, time.Minute)

	for _, name := range []string{"Men", "Women"} {
		_, err := s.svc.CreateCategory(s.ctx, catalog.CategoryInput{Name: name})
		s.Require().NoError(err)
	}
	s.product("Blue Shirt", "men", "20.00", true, true, "cotton")
	s.product("Alpha Jeans", "men", "49.99", true, true, "denim 100% stretch")
	s.product("Red Dress", "women", "20.00", false, true, "summer")
	s.product("Hidden Hat", "women", "5.00", true, false, "inactive")
}

func (s *CatalogSuite) product(name, category, price string, inStock, active bool, desc string) *models.Product {
	p, err := s.svc.CreateProduct(s.ctx, catalog.ProductInput{
		Name:        name,
		Description: desc,
		Price:       decimal.RequireFromString(price),
		Category:    category,
		InStock:     inStock,
		IsActive:    active,
	})
	s.Require().NoError(err)
	return p
}

func (s *CatalogSuite) list(f catalog.ProductFilter) []string {
	res, err := s.svc.ListProducts(s.ctx, f, pagination.Page{Number: 1, Size: 50})
	s.Require().NoError(err)
	slugs := make([]string, len(res.Items))
	for i, p := range res.Items {
		slugs[i] = p.Slug
	}
	return slugs
}

func dec(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func boolPtr(b bool) *bool { return &b }

func (s *CatalogSuite) TestListCategoriesOrderedByName() {
	cats, err := s.svc.ListCategories(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(cats, 2)
	s.Equal("men", cats[0].Slug)
	s.Equal("women", cats[1].Slug)
}

func (s *CatalogSuite) TestListProductsDefaultOrderSkipsInactive() {
	s.Equal([]string{"alpha-jeans", "blue-shirt", "red-dress"}, s.list(catalog.ProductFilter{}))
}

func (s *CatalogSuite) TestListProductsFilters() {
	s.Equal([]string{"alpha-jeans", "blue-shirt"}, s.list(catalog.ProductFilter{Category: "men"}))
	s.Equal([]string{"blue-shirt", "red-dress"}, s.list(catalog.ProductFilter{PriceMin: dec("20"), PriceMax: dec("20.00")}))
	s.Equal([]string{"red-dress"}, s.list(catalog.ProductFilter{InStock: boolPtr(false)}))
	s.Equal([]string{"blue-shirt"}, s.list(catalog.ProductFilter{Search: "COTTON"}))
	s.Equal([]string{"red-dress"}, s.list(catalog.ProductFilter{Search: "women"}))
	s.Equal([]string{"blue-shirt"}, s.list(catalog.ProductFilter{Category: "men", PriceMax: dec("20")}))
	s.Empty(s.list(catalog.ProductFilter{Category: "nope"}))
}

func (s *CatalogSuite) TestSearchMatchesWildcardsLiterally() {
	s.Equal([]string{"alpha-jeans"}, s.list(catalog.ProductFilter{Search: "100%"}))
	s.Empty(s.list(catalog.ProductFilter{Search: "_"}))
}

func (s *CatalogSuite) TestSortKeysBreakTiesByID() {
	s.Equal([]string{"blue-shirt", "red-dress", "alpha-jeans"}, s.list(catalog.ProductFilter{SortBy: catalog.SortPriceAsc}))
	s.Equal([]string{"alpha-jeans", "blue-shirt", "red-dress"}, s.list(catalog.ProductFilter{SortBy: catalog.SortPriceDesc}))
	s.Equal([]string{"red-dress", "alpha-jeans", "blue-shirt"}, s.list(catalog.ProductFilter{SortBy: catalog.SortNewest}))
	s.Equal(s.list(catalog.ProductFilter{}), s.list(catalog.ProductFilter{SortBy: catalog.ParseSortKey("bogus")}))
}

func (s *CatalogSuite) TestPagination() {
	res, err := s.svc.ListProducts(s.ctx, catalog.ProductFilter{}, pagination.Page{Number: 2, Size: 2})
	s.Require().NoError(err)
	s.EqualValues(3, res.Count)
	s.Require().Len(res.Items, 1)
	s.Equal("red-dress", res.Items[0].Slug)
	s.False(res.HasNext())
	s.True(res.HasPrevious())
}

func (s *CatalogSuite) TestGetProduct() {
	p, err := s.svc.GetProduct(s.ctx, "blue-shirt")
	s.Require().NoError(err)
	s.Equal("Men", p.Category.Name)

	_, err = s.svc.GetProduct(s.ctx, "hidden-hat")
	s.ErrorIs(err, apperr.ErrNotFound)
	_, err = s.svc.GetProduct(s.ctx, "missing")
	s.Equal(apperr.KindNotFound, apperr.KindOf(err))
}

func (s *CatalogSuite) TestFeaturedIsLimitedToInStock() {
	for i := 0; i < 10; i++ {
		s.product(fmt.Sprintf("Extra %02d", i), "men", "1.00", true, true, "")
	}
	featured, err := s.svc.Featured(s.ctx)
	s.Require().NoError(err)
	s.Len(featured, catalog.FeaturedLimit)
	for _, p := range featured {
		s.True(p.InStock)
	}
	s.Equal("alpha-jeans", featured[0].Slug)
}

func (s *CatalogSuite) TestFeaturedIsCachedUntilCatalogChanges() {
	_, err := s.svc.Featured(s.ctx)
	s.Require().NoError(err)
	_, err = s.svc.Featured(s.ctx)
	s.Require().NoError(err)
	s.Equal(1, s.cache.hits)

	s.product("Aardvark Socks", "men", "3.00", true, true, "")
	featured, err := s.svc.Featured(s.ctx)
	s.Require().NoError(err)
	s.Equal(1, s.cache.hits)
	s.Equal("aardvark-socks", featured[0].Slug)
}

func (s *CatalogSuite) TestCreateCategoryRejectsDuplicates() {
	_, err := s.svc.CreateCategory(s.ctx, catalog.CategoryInput{Name: "Men"})
	s.Equal(apperr.KindValidation, apperr.KindOf(err))

	_, err = s.svc.CreateCategory(s.ctx, catalog.CategoryInput{Name: "  "})
	s.Equal(apperr.KindValidation, apperr.KindOf(err))
}

func (s *CatalogSuite) TestDeleteCategoryIsRestricted() {
	err := s.svc.DeleteCategory(s.ctx, "men")
	s.Equal(apperr.KindValidation, apperr.KindOf(err))
	_, err = s.svc.GetCategory(s.ctx, "men")
	s.NoError(err)

	_, err = s.svc.CreateCategory(s.ctx, catalog.CategoryInput{Name: "Footwear"})
	s.Require().NoError(err)
	s.NoError(s.svc.DeleteCategory(s.ctx, "footwear"))
	_, err = s.svc.GetCategory(s.ctx, "footwear")
	s.ErrorIs(err, apperr.ErrNotFound)
}

func (s *CatalogSuite) TestCreateProductValidation() {
	_, err := s.svc.CreateProduct(s.ctx, catalog.ProductInput{Name: "X", Category: "men", Price: decimal.NewFromInt(-1)})
	s.Equal(apperr.KindValidation, apperr.KindOf(err))

	_, err = s.svc.CreateProduct(s.ctx, catalog.ProductInput{Name: "X", Category: "ghost"})
	var appErr *apperr.Error
	s.Require().True(errors.As(err, &appErr))
	s.Contains(appErr.Fields, "category")

	_, err = s.svc.CreateProduct(s.ctx, catalog.ProductInput{Name: "Blue Shirt", Category: "men"})
	s.Equal(apperr.KindValidation, apperr.KindOf(err))
}

func (s *CatalogSuite) TestRenameKeepsSlug() {
	name := "Navy Shirt"
	p, err := s.svc.UpdateProduct(s.ctx, "blue-shirt", catalog.ProductPatch{Name: &name})
	s.Require().NoError(err)
	s.Equal("Navy Shirt", p.Name)
	s.Equal("blue-shirt", p.Slug)

	got, err := s.svc.GetProduct(s.ctx, "blue-shirt")
	s.Require().NoError(err)
	s.Equal("Navy Shirt", got.Name)
}

func (s *CatalogSuite) TestUpdateProductMovesCategory() {
	women := "women"
	p, err := s.svc.UpdateProduct(s.ctx, "blue-shirt", catalog.ProductPatch{Category: &women})
	s.Require().NoError(err)
	s.Equal("women", p.Category.Slug)
	s.Equal([]string{"blue-shirt", "red-dress"}, s.list(catalog.ProductFilter{Category: "women"}))
}

func (s *CatalogSuite) TestAddVariantUpserts() {
	_, err := s.svc.AddVariant(s.ctx, "blue-shirt", catalog.VariantInput{Color: "Blue", Size: "M", Stock: 2, SKU: "BS-M"})
	s.Require().NoError(err)
	_, err = s.svc.AddVariant(s.ctx, "blue-shirt", catalog.VariantInput{Color: "Blue", Size: "M", Stock: 9, SKU: "BS-M"})
	s.Require().NoError(err)

	p, err := s.svc.GetProduct(s.ctx, "blue-shirt")
	s.Require().NoError(err)
	s.Require().Len(p.Variants, 1)
	s.Equal(9, p.Variants[0].Stock)

	_, err = s.svc.AddVariant(s.ctx, "blue-shirt", catalog.VariantInput{Color: "Red", Size: "M", Stock: -1, SKU: "X"})
	s.Equal(apperr.KindValidation, apperr.KindOf(err))
}

func (s *CatalogSuite) TestExportWritesEveryProduct() {
	var buf bytes.Buffer
	s.Require().NoError(s.svc.ExportProducts(s.ctx, &buf))

	f, err := xlsx.OpenBinary(buf.Bytes())
	s.Require().NoError(err)
	s.Require().Len(f.Sheets, 1)
	// header plus all four products, inactive included
	s.Len(f.Sheets[0].Rows, 5)
	s.Equal("Name", f.Sheets[0].Rows[0].Cells[1].String())
}

func (s *CatalogSuite) TestSeedIsIdempotent() {
	s.Require().NoError(s.svc.Seed(s.ctx))
	s.Require().NoError(s.svc.Seed(s.ctx))

	cats, err := s.svc.ListCategories(s.ctx)
	s.Require().NoError(err)
	s.Len(cats, 4)

	p, err := s.svc.GetProduct(s.ctx, "classic-black-t-shirt")
	s.Require().NoError(err)
	s.Len(p.Variants, 4)
	s.Len(p.Images, 2)
	s.Equal("Black T-Shirt Front", p.FeaturedImage().AltText)
}

// failingImages rejects every image row.
type failingImages struct {
	*memory.Store
}

func (failingImages) AddImage(context.Context, *models.ProductImage) error {
	return errors.New("connection reset")
}

func TestAddImageRemovesStoredFileWhenRowFails(t *testing.T) {
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	files := mock_storage.NewMockStorage(ctrl)

	store := memory.New()
	svc := catalog.NewService(failingImages{store}, nil, files, time.Minute)
	_, err := svc.CreateCategory(ctx, catalog.CategoryInput{Name: "Men"})
	require.NoError(t, err)
	_, err = svc.CreateProduct(ctx, catalog.ProductInput{Name: "Tee", Category: "men", IsActive: true})
	require.NoError(t, err)

	files.EXPECT().Save(gomock.Any(), "products", "tee.png", gomock.Any()).Return("/media/products/ab_tee.png", nil)
	files.EXPECT().Delete(gomock.Any(), "/media/products/ab_tee.png").Return(nil)

	_, err = svc.AddImage(ctx, "tee", catalog.ImageUpload{Filename: "tee.png", Body: strings.NewReader("png")})
	require.Error(t, err)
}

func TestAddImageStoresReference(t *testing.T) {
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	files := mock_storage.NewMockStorage(ctrl)

	svc := catalog.NewService(memory.New(), nil, files, time.Minute)
	_, err := svc.CreateCategory(ctx, catalog.CategoryInput{Name: "Men"})
	require.NoError(t, err)
	_, err = svc.CreateProduct(ctx, catalog.ProductInput{Name: "Tee", Category: "men", IsActive: true})
	require.NoError(t, err)

	files.EXPECT().Save(gomock.Any(), "products", "tee.png", gomock.Any()).Return("/media/products/ab_tee.png", nil)

	img, err := svc.AddImage(ctx, "tee", catalog.ImageUpload{Filename: "tee.png", Body: strings.NewReader("png"), IsFeatured: true})
	require.NoError(t, err)
	require.Equal(t, "/media/products/ab_tee.png", img.Image)

	p, err := svc.GetProduct(ctx, "tee")
	require.NoError(t, err)
	require.Equal(t, img.ID, p.FeaturedImage().ID)
}
