package catalog

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

type SortKey string

const (
	SortName      SortKey = "name"
	SortPriceAsc  SortKey = "price_asc"
	SortPriceDesc SortKey = "price_desc"
	SortNewest    SortKey = "newest"
)

// ParseSortKey maps unknown or empty keys to SortName.
func ParseSortKey(s string) SortKey {
	switch k := SortKey(strings.ToLower(strings.TrimSpace(s))); k {
	case SortPriceAsc, SortPriceDesc, SortNewest:
		return k
	default:
		return SortName
	}
}

// ProductFilter narrows ListProducts. Zero values mean "not applied".
// Only active products are ever eligible, whatever the filter says.
type ProductFilter struct {
	Category string // category slug
	PriceMin *decimal.Decimal
	PriceMax *decimal.Decimal
	InStock  *bool
	Search   string // matched against name, description and category name
	SortBy   SortKey
}

// ParseProductFilter reads the public query parameters. Values that do not
// parse are dropped instead of rejected, so a bad price_min lists everything.
func ParseProductFilter(q url.Values) ProductFilter {
	f := ProductFilter{
		Category: strings.TrimSpace(q.Get("category")),
		Search:   strings.TrimSpace(q.Get("search")),
		SortBy:   ParseSortKey(q.Get("sort_by")),
	}
	if d, ok := parseDecimal(q.Get("price_min")); ok {
		f.PriceMin = &d
	}
	if d, ok := parseDecimal(q.Get("price_max")); ok {
		f.PriceMax = &d
	}
	if b, err := strconv.ParseBool(strings.TrimSpace(q.Get("in_stock"))); err == nil {
		f.InStock = &b
	}
	return f
}

func parseDecimal(s string) (decimal.Decimal, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Decimal{}, false
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, false
	}
	return d, true
}
