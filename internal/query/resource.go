package query

import "strings"

type Kind int

const (
	KindString Kind = iota
	KindUint
)

// FilterField maps a query parameter onto an equality predicate.
type FilterField struct {
	Param  string
	Column string
	Kind   Kind
}

// Strategy selects how a list request is executed.
type Strategy int

const (
	// StrategyConcurrent issues the page and count queries in parallel. The
	// total may come from a slightly different snapshot than the page.
	StrategyConcurrent Strategy = iota
	// StrategySnapshot runs page, count and distinct-values queries inside one
	// read-only transaction so all three agree.
	StrategySnapshot
)

type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

type Sort struct {
	Column    string
	Direction Direction
}

func (s Sort) clause() string {
	return s.Column + " " + strings.ToUpper(string(s.Direction))
}

// Resource describes the query shape of one record type. It is declared once
// per type and shared by the list, export and dashboard code paths.
type Resource struct {
	Name          string
	SearchColumns []string
	Filters       []FilterField
	// SortFields maps the public sort key to a column.
	SortFields  map[string]string
	DefaultSort Sort
	IDColumn    string
	// DateColumn enables the from/to parameters.
	DateColumn string
	// DistinctColumn enables dropdown values in list results.
	DistinctColumn  string
	Select          string
	Preloads        []string
	Strategy        Strategy
	CaseInsensitive bool
}

func (r Resource) idColumn() string {
	if r.IDColumn == "" {
		return "id"
	}
	return r.IDColumn
}

// WithCaseInsensitiveSearch returns a copy with case folding switched on or off.
func (r Resource) WithCaseInsensitiveSearch(on bool) Resource {
	r.CaseInsensitive = on
	return r
}
