package query

// PaginationMeta describes where a page sits within the full result set.
type PaginationMeta struct {
	CurrentPage int
	TotalPages  int
	TotalCount  int64
	Limit       int
	HasNextPage bool
	HasPrevPage bool
	NextPage    *int
	PrevPage    *int
}

// Page is one bounded slice of an ordered result set.
type Page[T any] struct {
	Items      []T
	Pagination PaginationMeta
}

// Paginate computes pagination metadata for a page of a result set holding
// totalCount records. Page and limit below 1 are treated as 1.
func Paginate(totalCount int64, page, limit int) PaginationMeta {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 1
	}
	if totalCount < 0 {
		totalCount = 0
	}

	totalPages := int((totalCount + int64(limit) - 1) / int64(limit))
	meta := PaginationMeta{
		CurrentPage: page,
		TotalPages:  totalPages,
		TotalCount:  totalCount,
		Limit:       limit,
		HasNextPage: page < totalPages,
		HasPrevPage: page > 1,
	}
	if meta.HasNextPage {
		next := page + 1
		meta.NextPage = &next
	}
	if meta.HasPrevPage {
		prev := page - 1
		meta.PrevPage = &prev
	}
	return meta
}

// NewPage assembles a page from fetched items and the total match count.
func NewPage[T any](items []T, totalCount int64, spec Spec) Page[T] {
	if items == nil {
		items = []T{}
	}
	return Page[T]{
		Items:      items,
		Pagination: Paginate(totalCount, spec.Page, spec.Limit),
	}
}
