package util

import "strconv"

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
	MaxPageNumber   = 1000
)

type Page struct {
	Number int
	Size   int
}

func (p Page) Offset() int {
	return (p.Number - 1) * p.Size
}

// ParsePage reads page and size query values; anything unparsable or out of
// range falls back to page 1 and DefaultPageSize. Page numbers above
// MaxPageNumber are clamped so Offset cannot overflow.
func ParsePage(page, size string) Page {
	n, err := strconv.Atoi(page)
	if err != nil || n < 1 {
		n = 1
	}
	if n > MaxPageNumber {
		n = MaxPageNumber
	}
	s, err := strconv.Atoi(size)
	if err != nil || s <= 0 || s > MaxPageSize {
		s = DefaultPageSize
	}
	return Page{Number: n, Size: s}
}
