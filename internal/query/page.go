package query

type Meta struct {
	Total    int `json:"total"`
	Page     int `json:"page"`
	PageSize int `json:"page_size"`
	LastPage int `json:"last_page"`
}

type Page[T any] struct {
	Items    []T `json:"items"`
	Total    int `json:"total"`
	Page     int `json:"page"`
	PageSize int `json:"page_size"`
	LastPage int `json:"last_page"`
}

// NewPage never returns nil Items; a page past the end is simply empty.
func NewPage[T any](items []T, total, page, size int) Page[T] {
	if items == nil {
		items = []T{}
	}
	last := 1
	if size > 0 && total > 0 {
		last = (total + size - 1) / size
	}
	return Page[T]{Items: items, Total: total, Page: page, PageSize: size, LastPage: last}
}

func (p Page[T]) Meta() Meta {
	return Meta{Total: p.Total, Page: p.Page, PageSize: p.PageSize, LastPage: p.LastPage}
}
