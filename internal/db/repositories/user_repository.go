package repositories

import (
	"context"
	"fmt"
	"time"

	"buddhist-lent/pledgeboard/internal/constants"
	gormModels "buddhist-lent/pledgeboard/internal/models/gorm"
	"buddhist-lent/pledgeboard/internal/query"

	"gorm.io/gorm"
)

// UserResource is the list shape of the admin user screen.
var UserResource = query.Resource{
	Name:          constants.ResourceUsers,
	SearchColumns: []string{"name", "email"},
	Filters: []query.FilterField{
		{Param: "role", Column: "role", Kind: query.KindString},
	},
	SortFields: map[string]string{
		"name":      "name",
		"email":     "email",
		"role":      "role",
		"createdAt": "created_at",
	},
	DefaultSort: query.Sort{Column: "created_at", Direction: query.Desc},
	DateColumn:  "created_at",
	Strategy:    query.StrategyConcurrent,
}

type UserRepository struct {
	db  *gorm.DB
	res query.Resource
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db, res: UserResource}
}

func (r *UserRepository) Create(ctx context.Context, user *gormModels.User) error {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		return fmt.Errorf("failed to create user: %w", translate(err))
	}
	return nil
}

// GetByID retrieves a user by primary key
func (r *UserRepository) GetByID(ctx context.Context, id uint) (*gormModels.User, error) {
	var user gormModels.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch user %d: %w", id, translate(err))
	}
	return &user, nil
}

// GetByEmail matches the address exactly; callers normalise it first.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*gormModels.User, error) {
	var user gormModels.User
	err := r.db.WithContext(ctx).
		Where("email = ?", email).
		First(&user).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch user by email: %w", translate(err))
	}
	return &user, nil
}

func (r *UserRepository) GetByResetTokenHash(ctx context.Context, hash string) (*gormModels.User, error) {
	var user gormModels.User
	err := r.db.WithContext(ctx).
		Where("reset_token_hash = ?", hash).
		First(&user).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch user by reset token: %w", translate(err))
	}
	return &user, nil
}

func (r *UserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&gormModels.User{}).
		Where("email = ?", email).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check email: %w", err)
	}
	return count > 0, nil
}

// Resource is the query shape used by List; handlers parse parameters with it.
func (r *UserRepository) Resource() query.Resource {
	return r.res
}

// WithCaseInsensitiveSearch switches substring search to case folding.
func (r *UserRepository) WithCaseInsensitiveSearch(on bool) *UserRepository {
	r.res = r.res.WithCaseInsensitiveSearch(on)
	return r
}

func (r *UserRepository) List(ctx context.Context, p query.Params) (*query.Result[gormModels.User], error) {
	return query.List[gormModels.User](ctx, r.db, r.res, p)
}

// UpdateFields applies a column map to one user. Map updates write zero
// values, which the reset-token clearing relies on.
func (r *UserRepository) UpdateFields(ctx context.Context, id uint, fields map[string]any) error {
	res := r.db.WithContext(ctx).
		Model(&gormModels.User{}).
		Where("id = ?", id).
		Updates(fields)
	if res.Error != nil {
		return fmt.Errorf("failed to update user %d: %w", id, translate(res.Error))
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("failed to update user %d: %w", id, ErrNotFound)
	}
	return nil
}

func (r *UserRepository) SetRole(ctx context.Context, id uint, role constants.Role) error {
	return r.UpdateFields(ctx, id, map[string]any{"role": role})
}

func (r *UserRepository) SetResetToken(ctx context.Context, id uint, hash string, createdAt time.Time) error {
	return r.UpdateFields(ctx, id, map[string]any{
		"reset_token_hash":       hash,
		"reset_token_created_at": createdAt,
	})
}

// ResetPassword stores the new hash and clears the reset token in one statement.
func (r *UserRepository) ResetPassword(ctx context.Context, id uint, passwordHash string) error {
	return r.UpdateFields(ctx, id, map[string]any{
		"password_hash":          passwordHash,
		"reset_token_hash":       nil,
		"reset_token_created_at": nil,
	})
}

// ClearExpiredResetTokens removes reset tokens created before cutoff.
func (r *UserRepository) ClearExpiredResetTokens(ctx context.Context, cutoff time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&gormModels.User{}).
		Where("reset_token_created_at IS NOT NULL AND reset_token_created_at < ?", cutoff).
		Updates(map[string]any{"reset_token_hash": nil, "reset_token_created_at": nil})
	if res.Error != nil {
		return 0, fmt.Errorf("failed to clear reset tokens: %w", res.Error)
	}
	return res.RowsAffected, nil
}

func (r *UserRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&gormModels.User{}, id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete user %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("failed to delete user %d: %w", id, ErrNotFound)
	}
	return nil
}

func (r *UserRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&gormModels.User{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return n, nil
}

// ProfileImageKeys lists every stored profile image key (orphan sweep input).
func (r *UserRepository) ProfileImageKeys(ctx context.Context) ([]string, error) {
	var keys []string
	err := r.db.WithContext(ctx).
		Model(&gormModels.User{}).
		Where("image IS NOT NULL AND image <> ''").
		Pluck("image", &keys).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list profile images: %w", err)
	}
	return keys, nil
}
