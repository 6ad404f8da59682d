package services

import (
	"context"
	"net/url"

	"buddhist-lent/pledgeboard/internal/aggregate"
	"buddhist-lent/pledgeboard/internal/common"
	"buddhist-lent/pledgeboard/internal/constants"
	"buddhist-lent/pledgeboard/internal/db/repositories"
	"buddhist-lent/pledgeboard/internal/models/dtos"
	gormModels "buddhist-lent/pledgeboard/internal/models/gorm"
	"buddhist-lent/pledgeboard/internal/query"

	"golang.org/x/sync/errgroup"
)

const (
	SourceMemory   = "memory"
	SourceDatabase = "database"
)

// DashboardService builds chart data. Tables up to inMemoryLimit rows are
// grouped in Go in a single pass; larger tables are grouped by the database.
// Both paths produce identical buckets.
type DashboardService struct {
	participants  *repositories.ParticipantRepository
	forms         *repositories.FormReturnRepository
	groups        *repositories.GroupRepository
	users         *repositories.UserRepository
	stats         *repositories.StatsRepository
	cache         *common.ListCache
	inMemoryLimit int64
}

func NewDashboardService(
	participants *repositories.ParticipantRepository,
	forms *repositories.FormReturnRepository,
	groups *repositories.GroupRepository,
	users *repositories.UserRepository,
	stats *repositories.StatsRepository,
	cache *common.ListCache,
	inMemoryLimit int64,
) *DashboardService {
	return &DashboardService{
		participants:  participants,
		forms:         forms,
		groups:        groups,
		users:         users,
		stats:         stats,
		cache:         cache,
		inMemoryLimit: inMemoryLimit,
	}
}

func (s *DashboardService) inMemory(total int64) bool {
	return s.stats == nil || total <= s.inMemoryLimit
}

// filterVariant keys a dashboard by the parameters that narrow its rows.
// Paging and sorting do not change a grouping.
func filterVariant(resource string, v url.Values) string {
	kept := url.Values{}
	for key, vals := range v {
		switch key {
		case "page", "limit", "sort", "order":
		default:
			kept[key] = vals
		}
	}
	return resource + "?" + kept.Encode()
}

// Participants groups the participants matching the list filters in v
// (search, groupId, alcoholConsumption, province, from, to).
func (s *DashboardService) Participants(ctx context.Context, v url.Values) (*dtos.ParticipantDashboard, error) {
	var out dtos.ParticipantDashboard
	slot, hit := s.cache.Get(ctx, constants.ResourceDashboard, filterVariant(constants.ResourceParticipants, v), &out)
	if hit {
		return &out, nil
	}

	p, err := s.participants.Resource().ParseParams(v)
	if err != nil {
		return nil, err
	}
	total, err := s.participants.CountWhere(ctx, p)
	if err != nil {
		return nil, err
	}
	out.Total = total

	if s.inMemory(total) {
		err = s.participantsInMemory(ctx, p, &out)
	} else {
		err = s.participantsInDatabase(ctx, p, &out)
	}
	if err != nil {
		return nil, err
	}

	s.cache.Set(ctx, slot, &out)
	return &out, nil
}

func (s *DashboardService) participantsInMemory(ctx context.Context, p query.Params, out *dtos.ParticipantDashboard) error {
	rows, err := s.participants.All(ctx, p)
	if err != nil {
		return err
	}
	names, err := s.groups.Names(ctx)
	if err != nil {
		return err
	}

	consumption := aggregate.NewCounter()
	province := aggregate.NewCounter()
	group := aggregate.NewCounter()
	intent := aggregate.NewCounter()
	var expense aggregate.Accumulator

	for i := range rows {
		p := &rows[i]
		consumption.Add(string(p.AlcoholConsumption))
		province.Add(p.Province)
		group.Add(names[p.GroupID])
		intent.AddPtr(p.IntentPeriod)
		expense.AddInt64Ptr(p.MonthlyExpense)
	}

	out.ByConsumption = consumption.Buckets()
	out.ByProvince = province.Buckets()
	out.ByGroup = group.Buckets()
	out.ByIntentPeriod = intent.Buckets()
	out.MonthlyExpense = expense.Summary()
	out.Source = SourceMemory
	return nil
}

func (s *DashboardService) participantsInDatabase(ctx context.Context, p query.Params, out *dtos.ParticipantDashboard) error {
	const table = "participants"
	pred := s.participants.Resource().Where(p, s.stats.Dialect())
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		out.ByConsumption, err = s.stats.CountBy(gctx, table, "alcohol_consumption", pred)
		return err
	})
	g.Go(func() (err error) {
		out.ByProvince, err = s.stats.CountBy(gctx, table, "province", pred)
		return err
	})
	g.Go(func() (err error) {
		out.ByGroup, err = s.stats.CountByGroup(gctx, pred)
		return err
	})
	g.Go(func() (err error) {
		out.ByIntentPeriod, err = s.stats.CountBy(gctx, table, "intent_period", pred)
		return err
	})
	g.Go(func() (err error) {
		out.MonthlyExpense, err = s.stats.Summary(gctx, table, "monthly_expense", pred)
		return err
	})
	if err := g.Wait(); err != nil {
		return err
	}
	out.Source = SourceDatabase
	return nil
}

// FormReturns groups the form returns matching the list filters in v.
func (s *DashboardService) FormReturns(ctx context.Context, v url.Values) (*dtos.FormReturnDashboard, error) {
	var out dtos.FormReturnDashboard
	slot, hit := s.cache.Get(ctx, constants.ResourceDashboard, filterVariant(constants.ResourceFormReturns, v), &out)
	if hit {
		return &out, nil
	}

	p, err := s.forms.Resource().ParseParams(v)
	if err != nil {
		return nil, err
	}
	total, err := s.forms.CountWhere(ctx, p)
	if err != nil {
		return nil, err
	}
	out.Total = total

	if s.inMemory(total) {
		rows, err := s.forms.All(ctx, p)
		if err != nil {
			return nil, err
		}
		out.ByProvince = aggregate.CountBy(rows, func(f gormModels.FormReturn) string { return f.Province })
		out.ByOrganizationType = aggregate.CountBy(rows, func(f gormModels.FormReturn) string { return f.OrganizationType })
		var signers aggregate.Accumulator
		for _, f := range rows {
			signers.Add(float64(f.SignerCount))
		}
		out.Signers = signers.Summary()
		out.Source = SourceMemory
	} else {
		const table = "form_returns"
		pred := s.forms.Resource().Where(p, s.stats.Dialect())
		if out.ByProvince, err = s.stats.CountBy(ctx, table, "province", pred); err != nil {
			return nil, err
		}
		if out.ByOrganizationType, err = s.stats.CountBy(ctx, table, "organization_type", pred); err != nil {
			return nil, err
		}
		if out.Signers, err = s.stats.Summary(ctx, table, "signer_count", pred); err != nil {
			return nil, err
		}
		out.Source = SourceDatabase
	}

	s.cache.Set(ctx, slot, &out)
	return &out, nil
}

func (s *DashboardService) Summary(ctx context.Context) (*dtos.DashboardSummary, error) {
	var out dtos.DashboardSummary
	slot, hit := s.cache.Get(ctx, constants.ResourceDashboard, "summary", &out)
	if hit {
		return &out, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		out.Participants, err = s.participants.Count(gctx)
		return err
	})
	g.Go(func() (err error) {
		out.FormReturns, err = s.forms.Count(gctx)
		return err
	})
	g.Go(func() (err error) {
		out.Groups, err = s.groups.Count(gctx)
		return err
	})
	g.Go(func() (err error) {
		out.Users, err = s.users.Count(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	s.cache.Set(ctx, slot, &out)
	return &out, nil
}
