package repositories

import (
	"context"
	"fmt"

	"buddhist-lent/pledgeboard/internal/aggregate"
	"buddhist-lent/pledgeboard/internal/query"

	"github.com/jmoiron/sqlx"
)

// groupable lists the table/column pairs the database-side grouping may touch.
// Identifiers are concatenated into SQL, so nothing outside this map is accepted.
var groupable = map[string]map[string]bool{
	"participants": {
		"alcohol_consumption": true,
		"province":            true,
		"intent_period":       true,
		"drinking_frequency":  true,
	},
	"form_returns": {
		"province":          true,
		"organization_type": true,
	},
}

var summable = map[string]map[string]bool{
	"participants": {"monthly_expense": true},
	"form_returns": {"signer_count": true},
}

// StatsRepository pushes dashboard grouping into SQL once tables outgrow
// in-memory aggregation. Output matches the aggregate package exactly.
type StatsRepository struct {
	db *sqlx.DB
}

func NewStatsRepository(db *sqlx.DB) *StatsRepository {
	return &StatsRepository{db: db}
}

// Dialect names the SQL dialect predicates must be rendered for.
func (r *StatsRepository) Dialect() string {
	if r.db.DriverName() == "postgres" {
		return "postgres"
	}
	return "sqlite"
}

func where(pred query.Predicate) string {
	if pred.SQL == "" {
		return ""
	}
	return "WHERE " + pred.SQL
}

type bucketRow struct {
	Label string `db:"label"`
	Total int64  `db:"total"`
}

// CountBy groups the rows matching pred by column.
func (r *StatsRepository) CountBy(ctx context.Context, table, column string, pred query.Predicate) ([]aggregate.Bucket, error) {
	if !groupable[table][column] {
		return nil, fmt.Errorf("grouping %s.%s is not allowed", table, column)
	}

	q := fmt.Sprintf(`
		SELECT COALESCE(NULLIF(TRIM(%[2]s), ''), 'Unknown') AS label, COUNT(*) AS total
		FROM %[1]s
		%[3]s
		GROUP BY COALESCE(NULLIF(TRIM(%[2]s), ''), 'Unknown')`, table, column, where(pred))

	return r.buckets(ctx, q, pred.Args)
}

// CountByGroup labels participant counts with group names. pred is applied
// to participants before the join so its columns stay unambiguous.
func (r *StatsRepository) CountByGroup(ctx context.Context, pred query.Predicate) ([]aggregate.Bucket, error) {
	q := fmt.Sprintf(`
		SELECT COALESCE(g.name, 'Unknown') AS label, COUNT(*) AS total
		FROM (SELECT group_id FROM participants %s) p
		LEFT JOIN participant_groups g ON g.id = p.group_id
		GROUP BY COALESCE(g.name, 'Unknown')`, where(pred))

	return r.buckets(ctx, q, pred.Args)
}

func (r *StatsRepository) buckets(ctx context.Context, q string, args []any) ([]aggregate.Bucket, error) {
	var rows []bucketRow
	if err := r.db.SelectContext(ctx, &rows, r.db.Rebind(q), args...); err != nil {
		return nil, fmt.Errorf("failed to group rows: %w", err)
	}

	out := make([]aggregate.Bucket, len(rows))
	for i, row := range rows {
		out[i] = aggregate.Bucket{Label: row.Label, Count: row.Total}
	}
	aggregate.SortBuckets(out)
	return out, nil
}

type summaryRow struct {
	Sum   float64 `db:"sum_value"`
	Count int64   `db:"count_value"`
}

// Summary sums a numeric column over the rows matching pred where it is
// present and non-zero.
func (r *StatsRepository) Summary(ctx context.Context, table, column string, pred query.Predicate) (aggregate.Summary, error) {
	if !summable[table][column] {
		return aggregate.Summary{}, fmt.Errorf("summing %s.%s is not allowed", table, column)
	}

	q := fmt.Sprintf(`
		SELECT CAST(COALESCE(SUM(%[2]s), 0) AS DOUBLE PRECISION) AS sum_value, COUNT(%[2]s) AS count_value
		FROM %[1]s
		WHERE %[2]s IS NOT NULL AND %[2]s <> 0`, table, column)
	if pred.SQL != "" {
		q += " AND (" + pred.SQL + ")"
	}

	var row summaryRow
	if err := r.db.GetContext(ctx, &row, r.db.Rebind(q), pred.Args...); err != nil {
		return aggregate.Summary{}, fmt.Errorf("failed to summarise %s.%s: %w", table, column, err)
	}
	return aggregate.NewSummary(row.Sum, row.Count), nil
}

// Ping reports whether the reporting handle can reach the database.
func (r *StatsRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}
