package domain

// Page is the paginated collection shape reported by the backend. Number is zero based.
type Page[T any] struct {
	Content       []T   `json:"content"`
	TotalPages    int   `json:"totalPages"`
	TotalElements int64 `json:"totalElements"`
	Number        int   `json:"number"`
	Size          int   `json:"size"`
}

// SortDirection is the direction of a server side sort.
type SortDirection string

const (
	SortNone SortDirection = ""
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

// PageRequest carries the page, size and optional sort for list calls.
type PageRequest struct {
	Page      int
	Size      int
	SortField string
	SortDir   SortDirection
}

// Offset returns the zero based row offset for the request.
func (r PageRequest) Offset() int {
	if r.Page <= 0 || r.Size <= 0 {
		return 0
	}
	return r.Page * r.Size
}

// NewPage builds a Page from a slice holding the requested window and the total row count.
func NewPage[T any](content []T, total int64, req PageRequest) Page[T] {
	size := req.Size
	if size <= 0 {
		size = len(content)
	}
	pages := 0
	if size > 0 {
		pages = int((total + int64(size) - 1) / int64(size))
	}
	if content == nil {
		content = []T{}
	}
	return Page[T]{
		Content:       content,
		TotalPages:    pages,
		TotalElements: total,
		Number:        req.Page,
		Size:          size,
	}
}

// Paginate cuts the window of req out of a fully loaded, already ordered slice.
func Paginate[T any](all []T, req PageRequest) Page[T] {
	if req.Size <= 0 {
		return NewPage(append([]T(nil), all...), int64(len(all)), req)
	}
	start := req.Offset()
	if start > len(all) {
		start = len(all)
	}
	end := min(start+req.Size, len(all))
	return NewPage(append([]T(nil), all[start:end]...), int64(len(all)), req)
}
