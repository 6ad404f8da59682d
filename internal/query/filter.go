package query

import (
	"strings"

	"gorm.io/gorm"
)

// Predicate is a WHERE fragment with "?" placeholders. An empty SQL string
// matches every row.
type Predicate struct {
	SQL  string
	Args []any
}

// Where renders p for the given dialect: substring search OR-ed across the
// searchable columns, AND-ed with every equality and date bound. Columns are
// unqualified.
func (r Resource) Where(p Params, dialect string) Predicate {
	var (
		parts []string
		args  []any
	)
	if p.Search != "" && len(r.SearchColumns) > 0 {
		exprs := make([]string, len(r.SearchColumns))
		for i, col := range r.SearchColumns {
			exprs[i] = containsExpr(dialect, col, r.CaseInsensitive)
			args = append(args, p.Search)
		}
		parts = append(parts, "("+strings.Join(exprs, " OR ")+")")
	}
	for _, c := range p.Equals {
		parts = append(parts, c.Column+" = ?")
		args = append(args, c.Value)
	}
	if p.From != nil {
		parts = append(parts, r.DateColumn+" >= ?")
		args = append(args, *p.From)
	}
	if p.To != nil {
		parts = append(parts, r.DateColumn+" < ?")
		args = append(args, *p.To)
	}
	return Predicate{SQL: strings.Join(parts, " AND "), Args: args}
}

// Scope applies Where to a gorm query.
func (r Resource) Scope(p Params) func(*gorm.DB) *gorm.DB {
	return func(tx *gorm.DB) *gorm.DB {
		pred := r.Where(p, tx.Dialector.Name())
		if pred.SQL == "" {
			return tx
		}
		return tx.Where(pred.SQL, pred.Args...)
	}
}

// containsExpr is a plain substring test. Position functions are used instead
// of LIKE so user input never acts as a wildcard and SQLite does not fold case.
func containsExpr(dialect, column string, insensitive bool) string {
	fn := "instr"
	if dialect == "postgres" {
		fn = "strpos"
	}
	if insensitive {
		return fn + "(lower(" + column + "), lower(?)) > 0"
	}
	return fn + "(" + column + ", ?) > 0"
}
