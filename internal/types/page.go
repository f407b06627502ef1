package types

// Pagination defaults applied when the client omits the query parameters.
const (
	DefaultPageNumber = 1
	DefaultPageSize   = 10
	MaxPageSize       = 100

	// MaxPageNumber keeps (PageNumber-1)*PageSize far from int overflow.
	MaxPageNumber = 1_000_000
)

// PageQuery is the offset-pagination input every list endpoint accepts.
type PageQuery struct {
	PageNumber int `json:"pageNumber" validate:"min=1,max=1000000"`
	PageSize   int `json:"pageSize"   validate:"min=1,max=100"`
}

// DefaultPageQuery returns page 1 with the default size.
func DefaultPageQuery() PageQuery {
	return PageQuery{PageNumber: DefaultPageNumber, PageSize: DefaultPageSize}
}

// Offset is the number of rows to skip: (PageNumber-1) * PageSize, with
// both factors held to their limits so it never goes negative.
func (q PageQuery) Offset() int {
	if q.PageNumber < 1 || q.PageSize < 1 {
		return 0
	}
	number := min(q.PageNumber, MaxPageNumber)
	size := min(q.PageSize, MaxPageSize)
	return (number - 1) * size
}

// Page is the envelope returned by every list endpoint.
//
//	{ "data": [...], "pageNumber": 1, "pageSize": 10, "totalRecords": 42, "totalPages": 5 }
type Page[T any] struct {
	Data         []T `json:"data"`
	PageNumber   int `json:"pageNumber"`
	PageSize     int `json:"pageSize"`
	TotalRecords int `json:"totalRecords"`
	TotalPages   int `json:"totalPages"`
}

// NewPage builds the envelope and derives TotalPages = ceil(total / size).
// A nil data slice is replaced by an empty one so JSON shows [] not null.
func NewPage[T any](data []T, q PageQuery, totalRecords int) Page[T] {
	if data == nil {
		data = make([]T, 0)
	}

	totalPages := 0
	if q.PageSize > 0 {
		totalPages = (totalRecords + q.PageSize - 1) / q.PageSize
	}

	return Page[T]{
		Data:         data,
		PageNumber:   q.PageNumber,
		PageSize:     q.PageSize,
		TotalRecords: totalRecords,
		TotalPages:   totalPages,
	}
}

// MapPage converts every item while keeping the page metadata.
func MapPage[T, R any](p Page[T], fn func(T) R) Page[R] {
	out := make([]R, 0, len(p.Data))
	for _, item := range p.Data {
		out = append(out, fn(item))
	}

	return Page[R]{
		Data:         out,
		PageNumber:   p.PageNumber,
		PageSize:     p.PageSize,
		TotalRecords: p.TotalRecords,
		TotalPages:   p.TotalPages,
	}
}
