package pagination

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
)

var (
	ErrInvalidPage    = errors.New("page and size must be integers within bounds")
	ErrOffsetTooLarge = errors.New("offset is too big")
	ErrEmptyPage      = errors.New("this page has no items to display")
)

// Page is a validated 1-based page request.
type Page struct {
	Number int64
	Size   int64
	Offset int64
}

// Limit is the row count to fetch.
func (p Page) Limit() int64 {
	return p.Size
}

// Gate turns page/size query parameters into bounded offsets.
type Gate struct {
	Max         int64
	DefaultSize int64
}

// Offset returns (page-1)*size, or ErrOffsetTooLarge when it exceeds max.
func Offset(page, size, max int64) (int64, error) {
	if page < 1 || size < 1 {
		return 0, ErrInvalidPage
	}
	if page-1 > max/size {
		return 0, ErrOffsetTooLarge
	}
	offset := (page - 1) * size
	if offset > max {
		return 0, ErrOffsetTooLarge
	}
	return offset, nil
}

// Parse reads page and size from query. Missing values take the defaults;
// values that are not integers in [1, Max] yield ErrInvalidPage.
func (g Gate) Parse(query url.Values) (Page, error) {
	number, err := g.param(query, "page", 1)
	if err != nil {
		return Page{}, err
	}
	size, err := g.param(query, "size", g.DefaultSize)
	if err != nil {
		return Page{}, err
	}

	offset, err := Offset(number, size, g.Max)
	if err != nil {
		return Page{}, err
	}
	return Page{Number: number, Size: size, Offset: offset}, nil
}

func (g Gate) param(query url.Values, name string, def int64) (int64, error) {
	raw := query.Get(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || v < 1 || v > g.Max {
		return 0, fmt.Errorf("%s: %w", name, ErrInvalidPage)
	}
	return v, nil
}

// Check converts an empty result into ErrEmptyPage.
func Check(n int) error {
	if n == 0 {
		return ErrEmptyPage
	}
	return nil
}
