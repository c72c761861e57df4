package render

import (
	"net/url"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/junaidrashid-git/storefront-api/pagination"
)

// Page is the paginated envelope: count, next/previous links and results.
type Page[T any] struct {
	Count    int64   `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  []T     `json:"results"`
}

// NewPage maps one page of items and builds the neighbour links from the
// current request URL, keeping every other query parameter.
func NewPage[M, T any](c *gin.Context, res pagination.Result[M], mapFn func([]M) []T) Page[T] {
	p := Page[T]{Count: res.Count, Results: mapFn(res.Items)}
	if res.HasNext() {
		next := pageURL(c, res.Page.Number+1)
		p.Next = &next
	}
	if res.HasPrevious() {
		prev := pageURL(c, res.Page.Number-1)
		p.Previous = &prev
	}
	return p
}

func pageURL(c *gin.Context, number int) string {
	scheme := "http"
	if c.Request.TLS != nil || c.GetHeader("X-Forwarded-Proto") == "https" {
		scheme = "https"
	}
	u := url.URL{Scheme: scheme, Host: c.Request.Host, Path: c.Request.URL.Path}
	q := c.Request.URL.Query()
	if number <= 1 {
		q.Del("page")
	} else {
		q.Set("page", strconv.Itoa(number))
	}
	u.RawQuery = q.Encode()
	return u.String()
}
