package model

// Page is one page of a newest-first listing.
//
// Number is 1-based. HasPrev/HasNext drive the "newer"/"older" links in
// templates; PrevNum/NextNum are only meaningful when the matching flag is set.
type Page[T any] struct {
	Items   []T
	Number  int
	Size    int
	Total   int
	HasPrev bool
	HasNext bool
}

// NewPage builds the page metadata for items taken from a collection of total
// elements at 1-based page number with the given size.
func NewPage[T any](items []T, number, size, total int) Page[T] {
	if items == nil {
		items = []T{}
	}
	p := Page[T]{
		Items:   items,
		Number:  number,
		Size:    size,
		Total:   total,
		HasPrev: number > 1,
	}
	p.HasNext = number < p.Pages()
	return p
}

func (p Page[T]) PrevNum() int { return p.Number - 1 }
func (p Page[T]) NextNum() int { return p.Number + 1 }

// Pages is the number of pages in the whole collection, at least 1.
func (p Page[T]) Pages() int {
	if p.Total <= 0 || p.Size <= 0 {
		return 1
	}
	return (p.Total-1)/p.Size + 1
}
