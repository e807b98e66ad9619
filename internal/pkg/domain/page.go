package domain

import "fmt"

// DefaultPageSize is used when a listing request does not specify a size.
const DefaultPageSize = 10

// Page selects a window of an ordered result set. From is the zero-based
// offset of the first wanted element; results are cut on page boundaries,
// so the effective page index is From / Size.
type Page struct {
	From int
	Size int
}

// NewPage validates the offset and size of a listing request.
func NewPage(from, size int) (Page, error) {
	if from < 0 {
		return Page{}, NewValidationError(fmt.Sprintf("from must not be negative, got %d", from))
	}
	if size <= 0 {
		return Page{}, NewValidationError(fmt.Sprintf("size must be positive, got %d", size))
	}
	return Page{From: from, Size: size}, nil
}

// Unpaged returns a Page that selects every element.
func Unpaged() Page { return Page{} }

// IsUnpaged reports whether the page selects every element.
func (p Page) IsUnpaged() bool { return p.Size <= 0 }

// Index returns the zero-based page index.
func (p Page) Index() int {
	if p.IsUnpaged() {
		return 0
	}
	return p.From / p.Size
}

// Offset returns the number of elements to skip.
func (p Page) Offset() int {
	return p.Index() * p.Size
}
