package query

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

// ParamError reports a malformed list parameter. Handlers answer it with 400.
type ParamError struct {
	Param   string
	Message string
}

func (e *ParamError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Param, e.Message)
}

// Condition is one equality predicate.
type Condition struct {
	Column string
	Value  any
}

// Params is a fully validated list request.
type Params struct {
	Search  string
	Equals  []Condition
	From    *time.Time
	To      *time.Time // exclusive
	Sort    Sort
	Page    Page
	Unpaged bool
}

// ParseParams validates search, page, limit, sort, order, from, to and the
// resource filters. Nothing unvalidated reaches a predicate.
func (r Resource) ParseParams(v url.Values) (Params, error) {
	p := Params{
		Search: strings.TrimSpace(v.Get("search")),
		Sort:   r.DefaultSort,
	}

	page, err := optionalInt(v, "page")
	if err != nil {
		return p, err
	}
	limit, err := optionalInt(v, "limit")
	if err != nil {
		return p, err
	}
	if limit < 0 {
		return p, &ParamError{Param: "limit", Message: "must be positive"}
	}
	p.Page = NewPage(page, limit)

	if key := strings.TrimSpace(v.Get("sort")); key != "" {
		col, ok := r.SortFields[key]
		if !ok {
			return p, &ParamError{Param: "sort", Message: fmt.Sprintf("unsupported sort field %q", key)}
		}
		p.Sort = Sort{Column: col, Direction: Desc}
	}
	switch order := strings.ToLower(strings.TrimSpace(v.Get("order"))); order {
	case "":
	case string(Asc), string(Desc):
		p.Sort.Direction = Direction(order)
	default:
		return p, &ParamError{Param: "order", Message: "must be asc or desc"}
	}

	for _, f := range r.Filters {
		raw := strings.TrimSpace(v.Get(f.Param))
		if raw == "" {
			continue
		}
		switch f.Kind {
		case KindUint:
			n, err := strconv.ParseUint(raw, 10, 64)
			if err != nil || n == 0 {
				return p, &ParamError{Param: f.Param, Message: "must be a positive integer"}
			}
			p.Equals = append(p.Equals, Condition{Column: f.Column, Value: uint(n)})
		default:
			p.Equals = append(p.Equals, Condition{Column: f.Column, Value: raw})
		}
	}

	if r.DateColumn != "" {
		if p.From, err = optionalDate(v, "from"); err != nil {
			return p, err
		}
		to, err := optionalDate(v, "to")
		if err != nil {
			return p, err
		}
		if to != nil {
			end := to.AddDate(0, 0, 1)
			p.To = &end
		}
		if p.From != nil && p.To != nil && !p.From.Before(*p.To) {
			return p, &ParamError{Param: "to", Message: "must not be before from"}
		}
	}

	return p, nil
}

func optionalInt(v url.Values, key string) (int, error) {
	raw := strings.TrimSpace(v.Get(key))
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, &ParamError{Param: key, Message: "must be an integer"}
	}
	return n, nil
}

func optionalDate(v url.Values, key string) (*time.Time, error) {
	raw := strings.TrimSpace(v.Get(key))
	if raw == "" {
		return nil, nil
	}
	t, err := time.ParseInLocation(dateLayout, raw, time.UTC)
	if err != nil {
		return nil, &ParamError{Param: key, Message: "must be a date formatted YYYY-MM-DD"}
	}
	return &t, nil
}
