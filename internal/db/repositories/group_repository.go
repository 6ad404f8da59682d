package repositories

import (
	"context"
	"errors"
	"fmt"

	"buddhist-lent/pledgeboard/internal/constants"
	gormModels "buddhist-lent/pledgeboard/internal/models/gorm"
	"buddhist-lent/pledgeboard/internal/query"

	"gorm.io/gorm"
)

// ErrInUse is returned when a group still has participants.
var ErrInUse = errors.New("record in use")

const groupSelect = "participant_groups.*, " +
	"(SELECT COUNT(*) FROM participants WHERE participants.group_id = participant_groups.id) AS participant_count"

var GroupResource = query.Resource{
	Name:          constants.ResourceGroups,
	SearchColumns: []string{"name", "description"},
	SortFields: map[string]string{
		"name":             "name",
		"createdAt":        "created_at",
		"participantCount": "participant_count",
	},
	DefaultSort: query.Sort{Column: "created_at", Direction: query.Desc},
	Select:      groupSelect,
	Strategy:    query.StrategyConcurrent,
}

type GroupRepository struct {
	db  *gorm.DB
	res query.Resource
}

func NewGroupRepository(db *gorm.DB) *GroupRepository {
	return &GroupRepository{db: db, res: GroupResource}
}

func (r *GroupRepository) Create(ctx context.Context, group *gormModels.Group) error {
	if err := r.db.WithContext(ctx).Create(group).Error; err != nil {
		return fmt.Errorf("failed to create group: %w", translate(err))
	}
	return nil
}

// GetByID loads the group together with its participant count.
func (r *GroupRepository) GetByID(ctx context.Context, id uint) (*gormModels.Group, error) {
	var group gormModels.Group
	err := r.db.WithContext(ctx).
		Select(groupSelect).
		Where("participant_groups.id = ?", id).
		Take(&group).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch group %d: %w", id, translate(err))
	}
	return &group, nil
}

func (r *GroupRepository) Exists(ctx context.Context, id uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&gormModels.Group{}).
		Where("id = ?", id).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check group %d: %w", id, err)
	}
	return count > 0, nil
}

func (r *GroupRepository) NameTaken(ctx context.Context, name string, exceptID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&gormModels.Group{}).
		Where("name = ? AND id <> ?", name, exceptID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check group name: %w", err)
	}
	return count > 0, nil
}

// Resource is the query shape used by List; handlers parse parameters with it.
func (r *GroupRepository) Resource() query.Resource {
	return r.res
}

// WithCaseInsensitiveSearch switches substring search to case folding.
func (r *GroupRepository) WithCaseInsensitiveSearch(on bool) *GroupRepository {
	r.res = r.res.WithCaseInsensitiveSearch(on)
	return r
}

func (r *GroupRepository) List(ctx context.Context, p query.Params) (*query.Result[gormModels.Group], error) {
	return query.List[gormModels.Group](ctx, r.db, r.res, p)
}

func (r *GroupRepository) Update(ctx context.Context, id uint, name string, description *string) error {
	res := r.db.WithContext(ctx).
		Model(&gormModels.Group{}).
		Where("id = ?", id).
		Updates(map[string]any{"name": name, "description": description})
	if res.Error != nil {
		return fmt.Errorf("failed to update group %d: %w", id, translate(res.Error))
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("failed to update group %d: %w", id, ErrNotFound)
	}
	return nil
}

// Delete removes a group only when no participant references it. The check
// and the delete share a transaction.
func (r *GroupRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var group gormModels.Group
		if err := tx.Select("id").First(&group, id).Error; err != nil {
			return fmt.Errorf("failed to fetch group %d: %w", id, translate(err))
		}

		var refs int64
		if err := tx.Model(&gormModels.Participant{}).Where("group_id = ?", id).Count(&refs).Error; err != nil {
			return fmt.Errorf("failed to count participants of group %d: %w", id, err)
		}
		if refs > 0 {
			return fmt.Errorf("group %d has %d participants: %w", id, refs, ErrInUse)
		}

		if err := tx.Delete(&gormModels.Group{}, id).Error; err != nil {
			return fmt.Errorf("failed to delete group %d: %w", id, err)
		}
		return nil
	})
}

func (r *GroupRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&gormModels.Group{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("failed to count groups: %w", err)
	}
	return n, nil
}

// Names maps group id to name for dashboard labelling.
func (r *GroupRepository) Names(ctx context.Context) (map[uint]string, error) {
	var groups []gormModels.Group
	if err := r.db.WithContext(ctx).Select("id", "name").Find(&groups).Error; err != nil {
		return nil, fmt.Errorf("failed to list group names: %w", err)
	}
	names := make(map[uint]string, len(groups))
	for _, g := range groups {
		names[g.ID] = g.Name
	}
	return names, nil
}
