package query

const (
	DefaultLimit = 10
	MaxLimit     = 100
	// MaxUnpagedRows caps "export everything" fetches.
	MaxUnpagedRows = 10000
)

// Page is a 1-indexed page request. Construct it with NewPage so the bounds
// are always applied.
type Page struct {
	Number int
	Limit  int
}

// NewPage clamps number to >= 1 and limit to [1, MaxLimit]. A zero limit
// means "not supplied" and falls back to DefaultLimit.
func NewPage(number, limit int) Page {
	if number < 1 {
		number = 1
	}
	switch {
	case limit == 0:
		limit = DefaultLimit
	case limit < 1:
		limit = 1
	case limit > MaxLimit:
		limit = MaxLimit
	}
	return Page{Number: number, Limit: limit}
}

func (p Page) Skip() int {
	return (p.Number - 1) * p.Limit
}

func (p Page) Take() int {
	return p.Limit
}

// TotalPages is ceil(total / limit).
func TotalPages(total int64, limit int) int {
	if limit <= 0 || total <= 0 {
		return 0
	}
	return int((total + int64(limit) - 1) / int64(limit))
}

// Pagination is the page metadata returned next to list items.
type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalItems int64 `json:"totalItems"`
	TotalPages int   `json:"totalPages"`
}
