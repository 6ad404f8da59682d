package services

import (
	"context"
	"errors"
	"net/url"
	"strings"

	"buddhist-lent/pledgeboard/internal/common"
	"buddhist-lent/pledgeboard/internal/constants"
	"buddhist-lent/pledgeboard/internal/db/repositories"
	"buddhist-lent/pledgeboard/internal/logging"
	"buddhist-lent/pledgeboard/internal/metrics"
	"buddhist-lent/pledgeboard/internal/models/dtos"
	gormModels "buddhist-lent/pledgeboard/internal/models/gorm"
	"buddhist-lent/pledgeboard/internal/validation"
)

type GroupService struct {
	groups  *repositories.GroupRepository
	cache   *common.ListCache
	metrics *metrics.MetricsRegistry
}

func NewGroupService(groups *repositories.GroupRepository, cache *common.ListCache, metricsReg *metrics.MetricsRegistry) *GroupService {
	return &GroupService{groups: groups, cache: cache, metrics: metricsReg}
}

func (s *GroupService) List(ctx context.Context, v url.Values) (*dtos.ListResponse[gormModels.Group], error) {
	variant := v.Encode()
	var cached dtos.ListResponse[gormModels.Group]
	slot, hit := s.cache.Get(ctx, constants.ResourceGroups, variant, &cached)
	if hit {
		return &cached, nil
	}

	p, err := s.groups.Resource().ParseParams(v)
	if err != nil {
		return nil, err
	}
	result, err := s.groups.List(ctx, p)
	if err != nil {
		return nil, err
	}
	resp := &dtos.ListResponse[gormModels.Group]{
		Items:      result.Items,
		Pagination: result.Pagination(),
	}
	s.cache.Set(ctx, slot, resp)
	return resp, nil
}

func (s *GroupService) Rows(ctx context.Context, v url.Values, all bool) ([]gormModels.Group, error) {
	p, err := s.groups.Resource().ParseParams(v)
	if err != nil {
		return nil, err
	}
	p.Unpaged = all
	result, err := s.groups.List(ctx, p)
	if err != nil {
		return nil, err
	}
	return result.Items, nil
}

func (s *GroupService) Get(ctx context.Context, id uint) (*gormModels.Group, error) {
	g, err := s.groups.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, constants.MsgGroupMissing)
	}
	return g, nil
}

func (s *GroupService) Create(ctx context.Context, req dtos.GroupRequest) (*gormModels.Group, error) {
	name, desc, err := s.checkRequest(ctx, req, 0)
	if err != nil {
		return nil, err
	}

	g := &gormModels.Group{Name: name, Description: desc}
	if err := s.groups.Create(ctx, g); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, badRequest(constants.ErrCodeDuplicate, constants.MsgGroupNameTaken)
		}
		return nil, err
	}
	s.cache.Invalidate(ctx, constants.ResourceGroups, constants.ResourceDashboard)
	if s.metrics != nil {
		s.metrics.RecordsCreatedTotal.WithLabelValues(constants.ResourceGroups).Inc()
	}
	logging.Info("Group created", "group_id", g.ID, "name", g.Name)
	return s.Get(ctx, g.ID)
}

func (s *GroupService) Update(ctx context.Context, id uint, req dtos.GroupRequest) (*gormModels.Group, error) {
	name, desc, err := s.checkRequest(ctx, req, id)
	if err != nil {
		return nil, err
	}

	if err := s.groups.Update(ctx, id, name, desc); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, badRequest(constants.ErrCodeDuplicate, constants.MsgGroupNameTaken)
		}
		return nil, notFoundOr(err, constants.MsgGroupMissing)
	}
	// Participant lists embed the group name.
	s.cache.Invalidate(ctx, constants.ResourceGroups, constants.ResourceParticipants, constants.ResourceDashboard)
	logging.Info("Group updated", "group_id", id)
	return s.Get(ctx, id)
}

// Delete refuses while any participant still references the group.
func (s *GroupService) Delete(ctx context.Context, id uint) error {
	if err := s.groups.Delete(ctx, id); err != nil {
		if errors.Is(err, repositories.ErrInUse) {
			return badRequest(constants.ErrCodeGroupInUse, constants.MsgGroupInUse)
		}
		return notFoundOr(err, constants.MsgGroupMissing)
	}
	s.cache.Invalidate(ctx, constants.ResourceGroups, constants.ResourceDashboard)
	if s.metrics != nil {
		s.metrics.RecordsDeletedTotal.WithLabelValues(constants.ResourceGroups).Inc()
	}
	logging.Info("Group deleted", "group_id", id)
	return nil
}

func (s *GroupService) checkRequest(ctx context.Context, req dtos.GroupRequest, id uint) (string, *string, error) {
	req.Name = strings.TrimSpace(req.Name)
	if err := validation.Struct(req); err != nil {
		return "", nil, invalid(err)
	}

	var desc *string
	if req.Description != nil {
		if d := strings.TrimSpace(*req.Description); d != "" {
			desc = &d
		}
	}

	taken, err := s.groups.NameTaken(ctx, req.Name, id)
	if err != nil {
		return "", nil, err
	}
	if taken {
		return "", nil, badRequest(constants.ErrCodeDuplicate, constants.MsgGroupNameTaken)
	}
	return req.Name, desc, nil
}
