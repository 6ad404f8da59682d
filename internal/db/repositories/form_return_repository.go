package repositories

import (
	"context"
	"fmt"

	"buddhist-lent/pledgeboard/internal/constants"
	gormModels "buddhist-lent/pledgeboard/internal/models/gorm"
	"buddhist-lent/pledgeboard/internal/query"

	"gorm.io/gorm"
)

// FormReturnResource lists inside one snapshot so the province dropdown
// always matches the page and total.
var FormReturnResource = query.Resource{
	Name: constants.ResourceFormReturns,
	SearchColumns: []string{
		"organization_name", "first_name", "last_name", "phone", "province", "district",
	},
	Filters: []query.FilterField{
		{Param: "province", Column: "province", Kind: query.KindString},
		{Param: "organizationType", Column: "organization_type", Kind: query.KindString},
	},
	SortFields: map[string]string{
		"organizationName": "organization_name",
		"province":         "province",
		"signerCount":      "signer_count",
		"createdAt":        "created_at",
	},
	DefaultSort:    query.Sort{Column: "created_at", Direction: query.Desc},
	DateColumn:     "created_at",
	DistinctColumn: "province",
	Strategy:       query.StrategySnapshot,
}

type FormReturnRepository struct {
	db  *gorm.DB
	res query.Resource
}

func NewFormReturnRepository(db *gorm.DB) *FormReturnRepository {
	return &FormReturnRepository{db: db, res: FormReturnResource}
}

func (r *FormReturnRepository) Create(ctx context.Context, f *gormModels.FormReturn) error {
	if err := r.db.WithContext(ctx).Create(f).Error; err != nil {
		return fmt.Errorf("failed to create form return: %w", translate(err))
	}
	return nil
}

func (r *FormReturnRepository) GetByID(ctx context.Context, id uint) (*gormModels.FormReturn, error) {
	var f gormModels.FormReturn
	if err := r.db.WithContext(ctx).First(&f, id).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch form return %d: %w", id, translate(err))
	}
	return &f, nil
}

// Resource is the query shape used by List; handlers parse parameters with it.
func (r *FormReturnRepository) Resource() query.Resource {
	return r.res
}

// WithCaseInsensitiveSearch switches substring search to case folding.
func (r *FormReturnRepository) WithCaseInsensitiveSearch(on bool) *FormReturnRepository {
	r.res = r.res.WithCaseInsensitiveSearch(on)
	return r
}

func (r *FormReturnRepository) List(ctx context.Context, p query.Params) (*query.Result[gormModels.FormReturn], error) {
	return query.List[gormModels.FormReturn](ctx, r.db, r.res, p)
}

// Save writes every column of f. It commits before the caller removes any
// replaced image.
func (r *FormReturnRepository) Save(ctx context.Context, f *gormModels.FormReturn) error {
	res := r.db.WithContext(ctx).
		Model(f).
		Select("*").
		Omit("id", "created_at").
		Updates(f)
	if res.Error != nil {
		return fmt.Errorf("failed to update form return %d: %w", f.ID, translate(res.Error))
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("failed to update form return %d: %w", f.ID, ErrNotFound)
	}
	return nil
}

func (r *FormReturnRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&gormModels.FormReturn{}, id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete form return %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("failed to delete form return %d: %w", id, ErrNotFound)
	}
	return nil
}

func (r *FormReturnRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&gormModels.FormReturn{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("failed to count form returns: %w", err)
	}
	return n, nil
}

// CountWhere counts the rows matching p's search, filters and dates.
func (r *FormReturnRepository) CountWhere(ctx context.Context, p query.Params) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&gormModels.FormReturn{}).
		Scopes(r.res.Scope(p)).
		Count(&n).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count form returns: %w", err)
	}
	return n, nil
}

func (r *FormReturnRepository) All(ctx context.Context, p query.Params) ([]gormModels.FormReturn, error) {
	var rows []gormModels.FormReturn
	if err := r.db.WithContext(ctx).Scopes(r.res.Scope(p)).Order("id").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to load form returns: %w", err)
	}
	return rows, nil
}

// ImageKeys lists every referenced image key (orphan sweep input).
func (r *FormReturnRepository) ImageKeys(ctx context.Context) ([]string, error) {
	var rows []gormModels.FormReturn
	if err := r.db.WithContext(ctx).Select("image1", "image2").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list form images: %w", err)
	}
	keys := make([]string, 0, len(rows)*2)
	for i := range rows {
		keys = append(keys, rows[i].ImageKeys()...)
	}
	return keys, nil
}
