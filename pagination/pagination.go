package pagination

import "strconv"

const (
	DefaultSize = 12
	MaxSize     = 100
)

// Page is a 1-based page request.
type Page struct {
	Number int
	Size   int
}

// Parse reads page and page_size query values. Invalid or out of range
// values fall back to the first page and the default size.
func Parse(number, size string, defaultSize int) Page {
	if defaultSize <= 0 {
		defaultSize = DefaultSize
	}
	p := Page{Number: 1, Size: defaultSize}
	if n, err := strconv.Atoi(number); err == nil && n > 0 {
		p.Number = n
	}
	if s, err := strconv.Atoi(size); err == nil && s > 0 {
		p.Size = min(s, MaxSize)
	}
	return p
}

func (p Page) Offset() int {
	if p.Number < 1 {
		return 0
	}
	return (p.Number - 1) * p.Size
}

// Result is one page of items plus the total number of matching items.
type Result[T any] struct {
	Items []T
	Count int64
	Page  Page
}

func (r Result[T]) HasNext() bool {
	return int64(r.Page.Offset()+len(r.Items)) < r.Count
}

func (r Result[T]) HasPrevious() bool {
	return r.Page.Number > 1
}

// Slice cuts one page out of an already ordered slice.
func Slice[T any](all []T, p Page) Result[T] {
	start := min(p.Offset(), len(all))
	end := min(start+p.Size, len(all))
	return Result[T]{Items: all[start:end], Count: int64(len(all)), Page: p}
}
