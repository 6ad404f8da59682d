package services

import (
	"context"
	"errors"
	"io"
	"net/http"

	"buddhist-lent/pledgeboard/internal/constants"
	"buddhist-lent/pledgeboard/internal/db/repositories"
	"buddhist-lent/pledgeboard/internal/logging"
	"buddhist-lent/pledgeboard/internal/models/dtos"
	gormModels "buddhist-lent/pledgeboard/internal/models/gorm"
	"buddhist-lent/pledgeboard/internal/query"
	"buddhist-lent/pledgeboard/internal/storage"
)

type UserService struct {
	users    *repositories.UserRepository
	uploader *storage.Uploader
}

func NewUserService(users *repositories.UserRepository, uploader *storage.Uploader) *UserService {
	return &UserService{users: users, uploader: uploader}
}

func (s *UserService) Get(ctx context.Context, id uint) (*gormModels.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, constants.MsgUserMissing)
	}
	return user, nil
}

func (s *UserService) List(ctx context.Context, p query.Params) (*query.Result[gormModels.User], error) {
	return s.users.List(ctx, p)
}

// SetRole changes another user's role. Admins cannot change their own role,
// which also keeps at least one admin in place.
func (s *UserService) SetRole(ctx context.Context, actorID, targetID uint, role string) (*gormModels.User, error) {
	r := constants.Role(role)
	if !r.Valid() {
		return nil, badRequest(constants.ErrCodeValidation, "Role must be admin or member")
	}
	if actorID == targetID {
		return nil, badRequest(constants.ErrCodeForbidden, constants.MsgCannotChangeOwn)
	}

	if err := s.users.SetRole(ctx, targetID, r); err != nil {
		return nil, notFoundOr(err, constants.MsgUserMissing)
	}
	logging.Info("User role changed", "actor_id", actorID, "user_id", targetID, "role", role)
	return s.Get(ctx, targetID)
}

func (s *UserService) Delete(ctx context.Context, actorID, targetID uint) error {
	if actorID == targetID {
		return badRequest(constants.ErrCodeForbidden, "You cannot delete your own account")
	}
	user, err := s.Get(ctx, targetID)
	if err != nil {
		return err
	}
	if err := s.users.Delete(ctx, targetID); err != nil {
		return notFoundOr(err, constants.MsgUserMissing)
	}
	if user.Image != nil {
		if err := s.uploader.DeleteAll(ctx, *user.Image); err != nil {
			logging.Warn("Failed to delete profile image", "user_id", targetID, "key", *user.Image, "error", err)
		}
	}
	logging.Info("User deleted", "actor_id", actorID, "user_id", targetID)
	return nil
}

// UpdateImage replaces the profile image: new file, then row, then old file.
func (s *UserService) UpdateImage(ctx context.Context, userID uint, r io.Reader) (*gormModels.User, error) {
	user, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	key, err := s.uploader.Upload(ctx, constants.FolderProfiles, r)
	if err != nil {
		return nil, imageError(err)
	}

	if err := s.users.UpdateFields(ctx, userID, map[string]any{"image": key}); err != nil {
		s.discard(ctx, key)
		return nil, notFoundOr(err, constants.MsgUserMissing)
	}

	if user.Image != nil && *user.Image != "" {
		s.discard(ctx, *user.Image)
	}
	user.Image = &key
	return user, nil
}

func (s *UserService) ToResponse(u *gormModels.User) dtos.UserResponse {
	resp := dtos.UserResponse{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Role:      u.Role.String(),
		CreatedAt: u.CreatedAt,
	}
	if u.Image != nil {
		resp.ImageURL = s.uploader.Store().URL(*u.Image)
	}
	return resp
}

func (s *UserService) discard(ctx context.Context, key string) {
	if err := s.uploader.DeleteAll(ctx, key); err != nil {
		logging.Warn("Failed to delete image, left for sweeper", "key", key, "error", err)
	}
}

func imageError(err error) error {
	if errors.Is(err, storage.ErrInvalidImage) {
		return newError(http.StatusBadRequest, constants.ErrCodeInvalidImage, "Uploaded file is not a valid image", err)
	}
	return err
}
