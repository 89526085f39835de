package service

import (
	"strconv"

	"github.com/sakif/quill/internal/apperror"
	"github.com/sakif/quill/internal/repository"
)

// window turns a 1-based page number into list options. Pages before the
// first or past the last one are NotFound; page 1 of an empty collection is
// an empty page.
//
// size is clamped to [1, repository.MaxLimit] so the offset always advances
// by exactly the number of rows the repository returns. The range check runs
// on page counts, never on page*size, so any int from a query string is safe.
func window(page, size, total int) (repository.ListOptions, error) {
	size = pageSize(size)
	if page < 1 || page > pageCount(size, total) {
		return repository.ListOptions{}, apperror.NotFound("page", strconv.Itoa(page))
	}
	return repository.ListOptions{Limit: size, Offset: (page - 1) * size}, nil
}

func pageSize(size int) int {
	return min(max(size, 1), repository.MaxLimit)
}

// pageCount is the number of pages holding total items, at least 1.
func pageCount(size, total int) int {
	if total <= 0 {
		return 1
	}
	return (total-1)/size + 1
}
