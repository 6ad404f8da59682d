package query

import (
	"context"
	"database/sql"
	"fmt"

	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

// Result is one page of rows plus the total matching count.
type Result[T any] struct {
	Items    []T
	Total    int64
	Page     Page
	Distinct []string
}

func (r *Result[T]) Pagination() Pagination {
	return Pagination{
		Page:       r.Page.Number,
		Limit:      r.Page.Limit,
		TotalItems: r.Total,
		TotalPages: TotalPages(r.Total, r.Page.Limit),
	}
}

// List runs the list query for res using the resource's strategy.
func List[T any](ctx context.Context, db *gorm.DB, res Resource, p Params) (*Result[T], error) {
	result := &Result[T]{Page: p.Page, Items: []T{}}

	var err error
	switch res.Strategy {
	case StrategySnapshot:
		err = listSnapshot(ctx, db, res, p, result)
	default:
		err = listConcurrent(ctx, db, res, p, result)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", res.Name, err)
	}
	return result, nil
}

func listConcurrent[T any](ctx context.Context, db *gorm.DB, res Resource, p Params, out *Result[T]) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return findPage(db.WithContext(gctx), res, p, &out.Items)
	})
	g.Go(func() error {
		return countRows[T](db.WithContext(gctx), res, p, &out.Total)
	})
	if res.DistinctColumn != "" {
		g.Go(func() error {
			return distinctValues[T](db.WithContext(gctx), res.DistinctColumn, &out.Distinct)
		})
	}

	return g.Wait()
}

func listSnapshot[T any](ctx context.Context, db *gorm.DB, res Resource, p Params, out *Result[T]) error {
	var opts []*sql.TxOptions
	if db.Dialector.Name() == "postgres" {
		opts = append(opts, &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true})
	}

	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := findPage(tx, res, p, &out.Items); err != nil {
			return err
		}
		if err := countRows[T](tx, res, p, &out.Total); err != nil {
			return err
		}
		if res.DistinctColumn != "" {
			return distinctValues[T](tx, res.DistinctColumn, &out.Distinct)
		}
		return nil
	}, opts...)
}

func findPage[T any](tx *gorm.DB, res Resource, p Params, dest *[]T) error {
	q := tx.Model(new(T)).Scopes(res.Scope(p))
	if res.Select != "" {
		q = q.Select(res.Select)
	}
	for _, preload := range res.Preloads {
		q = q.Preload(preload)
	}
	q = q.Order(p.Sort.clause()).
		Order(Sort{Column: res.idColumn(), Direction: p.Sort.Direction}.clause())

	if p.Unpaged {
		q = q.Limit(MaxUnpagedRows)
	} else {
		q = q.Offset(p.Page.Skip()).Limit(p.Page.Take())
	}
	return q.Find(dest).Error
}

func countRows[T any](tx *gorm.DB, res Resource, p Params, total *int64) error {
	return tx.Model(new(T)).Scopes(res.Scope(p)).Count(total).Error
}

func distinctValues[T any](tx *gorm.DB, column string, dest *[]string) error {
	return tx.Model(new(T)).
		Where(column+" IS NOT NULL AND "+column+" <> ''").
		Distinct().
		Order(column).
		Pluck(column, dest).Error
}
