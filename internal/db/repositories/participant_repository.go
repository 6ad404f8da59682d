package repositories

import (
	"context"
	"fmt"

	"buddhist-lent/pledgeboard/internal/constants"
	gormModels "buddhist-lent/pledgeboard/internal/models/gorm"
	"buddhist-lent/pledgeboard/internal/query"

	"gorm.io/gorm"
)

var ParticipantResource = query.Resource{
	Name: constants.ResourceParticipants,
	SearchColumns: []string{
		"first_name", "last_name", "phone", "province", "district", "subdistrict",
	},
	Filters: []query.FilterField{
		{Param: "groupId", Column: "group_id", Kind: query.KindUint},
		{Param: "alcoholConsumption", Column: "alcohol_consumption", Kind: query.KindString},
		{Param: "province", Column: "province", Kind: query.KindString},
	},
	SortFields: map[string]string{
		"firstName":          "first_name",
		"lastName":           "last_name",
		"province":           "province",
		"birthday":           "birthday",
		"alcoholConsumption": "alcohol_consumption",
		"createdAt":          "created_at",
	},
	DefaultSort: query.Sort{Column: "created_at", Direction: query.Desc},
	DateColumn:  "created_at",
	Preloads:    []string{"Group"},
	Strategy:    query.StrategyConcurrent,
}

type ParticipantRepository struct {
	db  *gorm.DB
	res query.Resource
}

func NewParticipantRepository(db *gorm.DB) *ParticipantRepository {
	return &ParticipantRepository{db: db, res: ParticipantResource}
}

func (r *ParticipantRepository) Create(ctx context.Context, p *gormModels.Participant) error {
	if err := r.db.WithContext(ctx).Omit("Group").Create(p).Error; err != nil {
		return fmt.Errorf("failed to create participant: %w", translate(err))
	}
	return nil
}

func (r *ParticipantRepository) GetByID(ctx context.Context, id uint) (*gormModels.Participant, error) {
	var p gormModels.Participant
	err := r.db.WithContext(ctx).
		Preload("Group").
		First(&p, id).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch participant %d: %w", id, translate(err))
	}
	return &p, nil
}

// Resource is the query shape used by List; handlers parse parameters with it.
func (r *ParticipantRepository) Resource() query.Resource {
	return r.res
}

// WithCaseInsensitiveSearch switches substring search to case folding.
func (r *ParticipantRepository) WithCaseInsensitiveSearch(on bool) *ParticipantRepository {
	r.res = r.res.WithCaseInsensitiveSearch(on)
	return r
}

func (r *ParticipantRepository) List(ctx context.Context, p query.Params) (*query.Result[gormModels.Participant], error) {
	return query.List[gormModels.Participant](ctx, r.db, r.res, p)
}

// Save writes every column of an already validated participant. Nil
// conditional fields are written as NULL.
func (r *ParticipantRepository) Save(ctx context.Context, p *gormModels.Participant) error {
	res := r.db.WithContext(ctx).
		Model(p).
		Select("*").
		Omit("Group", "id", "created_at").
		Updates(p)
	if res.Error != nil {
		return fmt.Errorf("failed to update participant %d: %w", p.ID, translate(res.Error))
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("failed to update participant %d: %w", p.ID, ErrNotFound)
	}
	return nil
}

func (r *ParticipantRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&gormModels.Participant{}, id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete participant %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("failed to delete participant %d: %w", id, ErrNotFound)
	}
	return nil
}

func (r *ParticipantRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&gormModels.Participant{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("failed to count participants: %w", err)
	}
	return n, nil
}

// CountWhere counts the rows matching p's search, filters and dates.
func (r *ParticipantRepository) CountWhere(ctx context.Context, p query.Params) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&gormModels.Participant{}).
		Scopes(r.res.Scope(p)).
		Count(&n).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count participants: %w", err)
	}
	return n, nil
}

// All loads the participants matching p for in-memory aggregation. Callers
// check CountWhere against their limit first.
func (r *ParticipantRepository) All(ctx context.Context, p query.Params) ([]gormModels.Participant, error) {
	var rows []gormModels.Participant
	if err := r.db.WithContext(ctx).Scopes(r.res.Scope(p)).Order("id").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to load participants: %w", err)
	}
	return rows, nil
}
