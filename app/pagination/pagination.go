// Package pagination slices ordered result sets into fixed-size pages.
package pagination

const (
	// HomePageSize is the number of recent posts on the home page.
	HomePageSize = 3
	// ListPageSize is the number of posts per listing page.
	ListPageSize = 12
)

// Page is one slice of an ordered sequence.
type Page[T any] struct {
	Items       []T  `json:"items"`
	CurrentPage int  `json:"current_page"`
	TotalPages  int  `json:"total_pages"`
	Total       int  `json:"total"`
	HasPrevious bool `json:"has_previous"`
	HasNext     bool `json:"has_next"`
}

// PreviousPage is the page number before CurrentPage, or 0 when there is none.
func (p Page[T]) PreviousPage() int {
	if !p.HasPrevious {
		return 0
	}
	if p.CurrentPage > p.TotalPages {
		return p.TotalPages
	}
	return p.CurrentPage - 1
}

// NextPage is the page number after CurrentPage, or 0 when there is none.
func (p Page[T]) NextPage() int {
	if !p.HasNext {
		return 0
	}
	return p.CurrentPage + 1
}

// Paginate returns the 1-indexed page of items. Pages below 1 are treated as page 1; a
// page past the end yields an empty page with HasNext false rather than an error.
func Paginate[T any](items []T, page, size int) Page[T] {
	if size < 1 {
		size = 1
	}
	if page < 1 {
		page = 1
	}

	total := len(items)
	totalPages := (total + size - 1) / size
	if totalPages < 1 {
		totalPages = 1
	}

	p := Page[T]{
		Items:       []T{},
		CurrentPage: page,
		TotalPages:  totalPages,
		Total:       total,
		HasPrevious: page > 1,
	}

	if page > totalPages {
		return p
	}
	offset := (page - 1) * size
	if offset >= total {
		return p
	}
	end := offset + size
	if end > total {
		end = total
	}
	p.Items = items[offset:end]
	p.HasNext = page < totalPages
	return p
}
