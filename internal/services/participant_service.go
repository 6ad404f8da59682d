package services

import (
	"context"
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

	"gorm.io/datatypes"
)

type ParticipantService struct {
	participants *repositories.ParticipantRepository
	groups       *repositories.GroupRepository
	cache        *common.ListCache
	metrics      *metrics.MetricsRegistry
}

func NewParticipantService(
	participants *repositories.ParticipantRepository,
	groups *repositories.GroupRepository,
	cache *common.ListCache,
	metricsReg *metrics.MetricsRegistry,
) *ParticipantService {
	return &ParticipantService{
		participants: participants,
		groups:       groups,
		cache:        cache,
		metrics:      metricsReg,
	}
}

func (s *ParticipantService) List(ctx context.Context, v url.Values) (*dtos.ListResponse[gormModels.Participant], error) {
	variant := v.Encode()
	var cached dtos.ListResponse[gormModels.Participant]
	slot, hit := s.cache.Get(ctx, constants.ResourceParticipants, variant, &cached)
	if hit {
		return &cached, nil
	}

	p, err := s.participants.Resource().ParseParams(v)
	if err != nil {
		return nil, err
	}
	result, err := s.participants.List(ctx, p)
	if err != nil {
		return nil, err
	}

	resp := &dtos.ListResponse[gormModels.Participant]{
		Items:      result.Items,
		Pagination: result.Pagination(),
	}
	s.cache.Set(ctx, slot, resp)
	return resp, nil
}

// Rows returns what an export of the given list parameters contains: the
// requested page, or every matching row when all is set.
func (s *ParticipantService) Rows(ctx context.Context, v url.Values, all bool) ([]gormModels.Participant, error) {
	p, err := s.participants.Resource().ParseParams(v)
	if err != nil {
		return nil, err
	}
	p.Unpaged = all
	result, err := s.participants.List(ctx, p)
	if err != nil {
		return nil, err
	}
	return result.Items, nil
}

func (s *ParticipantService) Get(ctx context.Context, id uint) (*gormModels.Participant, error) {
	p, err := s.participants.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, constants.MsgParticipantMissing)
	}
	return p, nil
}

func (s *ParticipantService) Create(ctx context.Context, req dtos.ParticipantRequest) (*gormModels.Participant, error) {
	p, err := participantFromRequest(req)
	if err != nil {
		return nil, err
	}
	if err := validation.Participant(ctx, p, s.groups); err != nil {
		return nil, invalid(err)
	}

	if err := s.participants.Create(ctx, p); err != nil {
		return nil, err
	}
	s.mutated(ctx, "created")
	logging.Info("Participant created", "participant_id", p.ID, "group_id", p.GroupID)
	return s.Get(ctx, p.ID)
}

// Update replaces every field of a participant.
func (s *ParticipantService) Update(ctx context.Context, id uint, req dtos.ParticipantRequest) (*gormModels.Participant, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	p, err := participantFromRequest(req)
	if err != nil {
		return nil, err
	}
	p.ID = id
	return s.save(ctx, p)
}

// Patch merges the given fields onto the stored row and validates the result
// as a whole, so a status change also clears or demands the conditional fields.
func (s *ParticipantService) Patch(ctx context.Context, id uint, patch dtos.ParticipantPatch) (*gormModels.Participant, error) {
	p, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	var errs validation.Errors
	setString(&p.Prefix, patch.Prefix)
	setString(&p.FirstName, patch.FirstName)
	setString(&p.LastName, patch.LastName)
	setString(&p.AddressLine, patch.AddressLine)
	setString(&p.Subdistrict, patch.Subdistrict)
	setString(&p.District, patch.District)
	setString(&p.Province, patch.Province)
	setString(&p.ZipCode, patch.ZipCode)
	setString(&p.Phone, patch.PhoneNumber)
	if patch.Birthday != nil {
		p.Birthday = validation.Date(&errs, "birthday", *patch.Birthday)
	}
	if patch.AlcoholConsumption != nil {
		p.AlcoholConsumption = constants.ConsumptionStatus(strings.TrimSpace(*patch.AlcoholConsumption))
	}
	if patch.DrinkingFrequency != nil {
		p.DrinkingFrequency = patch.DrinkingFrequency
	}
	if patch.IntentPeriod != nil {
		p.IntentPeriod = patch.IntentPeriod
	}
	if patch.MonthlyExpense != nil {
		p.MonthlyExpense = patch.MonthlyExpense
	}
	if patch.Motivations != nil {
		p.Motivations = datatypes.JSONSlice[string](*patch.Motivations)
	}
	if patch.GroupID != nil {
		p.GroupID = *patch.GroupID
		p.Group = nil
	}
	if err := errs.Err(); err != nil {
		return nil, invalid(err)
	}
	return s.save(ctx, p)
}

func (s *ParticipantService) save(ctx context.Context, p *gormModels.Participant) (*gormModels.Participant, error) {
	if err := validation.Participant(ctx, p, s.groups); err != nil {
		return nil, invalid(err)
	}
	if err := s.participants.Save(ctx, p); err != nil {
		return nil, notFoundOr(err, constants.MsgParticipantMissing)
	}
	s.mutated(ctx, "")
	logging.Info("Participant updated", "participant_id", p.ID)
	return s.Get(ctx, p.ID)
}

func (s *ParticipantService) Delete(ctx context.Context, id uint) error {
	if err := s.participants.Delete(ctx, id); err != nil {
		return notFoundOr(err, constants.MsgParticipantMissing)
	}
	s.mutated(ctx, "deleted")
	logging.Info("Participant deleted", "participant_id", id)
	return nil
}

// mutated drops every cached view a participant change can affect. Group
// lists carry participant counts.
func (s *ParticipantService) mutated(ctx context.Context, event string) {
	s.cache.Invalidate(ctx, constants.ResourceParticipants, constants.ResourceGroups, constants.ResourceDashboard)
	if s.metrics == nil {
		return
	}
	switch event {
	case "created":
		s.metrics.RecordsCreatedTotal.WithLabelValues(constants.ResourceParticipants).Inc()
	case "deleted":
		s.metrics.RecordsDeletedTotal.WithLabelValues(constants.ResourceParticipants).Inc()
	}
}

func participantFromRequest(req dtos.ParticipantRequest) (*gormModels.Participant, error) {
	if err := validation.Struct(req); err != nil {
		return nil, invalid(err)
	}
	var errs validation.Errors
	birthday := validation.Date(&errs, "birthday", req.Birthday)
	if err := errs.Err(); err != nil {
		return nil, invalid(err)
	}

	return &gormModels.Participant{
		Prefix:             strings.TrimSpace(req.Prefix),
		FirstName:          req.FirstName,
		LastName:           req.LastName,
		Birthday:           birthday,
		AddressLine:        strings.TrimSpace(req.AddressLine),
		Subdistrict:        strings.TrimSpace(req.Subdistrict),
		District:           strings.TrimSpace(req.District),
		Province:           req.Province,
		ZipCode:            strings.TrimSpace(req.ZipCode),
		Phone:              req.PhoneNumber,
		AlcoholConsumption: constants.ConsumptionStatus(strings.TrimSpace(req.AlcoholConsumption)),
		DrinkingFrequency:  req.DrinkingFrequency,
		IntentPeriod:       req.IntentPeriod,
		MonthlyExpense:     req.MonthlyExpense,
		Motivations:        datatypes.JSONSlice[string](req.Motivations),
		GroupID:            req.GroupID,
	}, nil
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = strings.TrimSpace(*v)
	}
}
