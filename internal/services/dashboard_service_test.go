package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"net/url"
	"strings"
	"testing"

	"buddhist-lent/pledgeboard/internal/aggregate"
	"buddhist-lent/pledgeboard/internal/constants"
	"buddhist-lent/pledgeboard/internal/db"
	"buddhist-lent/pledgeboard/internal/db/repositories"
	"buddhist-lent/pledgeboard/internal/export"
	"buddhist-lent/pledgeboard/internal/query"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedDashboardData(t *testing.T, env *testEnv) {
	t.Helper()
	ctx := context.Background()
	temple := env.seedGroup(t, "Temple")
	school := env.seedGroup(t, "School")

	rows := []struct {
		group    uint
		province string
		status   constants.ConsumptionStatus
		expense  int64
	}{
		{temple.ID, "Bangkok", constants.ConsumptionReduceForLent, 1500},
		{temple.ID, "Bangkok", constants.ConsumptionAbstainForLent, 0},
		{school.ID, "Nan", constants.ConsumptionAbstainForLent, 900},
		{school.ID, "", constants.ConsumptionNeverDrank, 0},
		{temple.ID, "Nan", constants.ConsumptionQuitAlready, 0},
	}
	for _, r := range rows {
		req := participantRequest(r.group, r.status)
		req.Province = r.province
		if r.province == "" {
			req.Province = "x"
		}
		if r.status.Qualifies() {
			req.DrinkingFrequency = strPtr("weekly")
			req.IntentPeriod = strPtr("whole lent")
			req.MonthlyExpense = int64Ptr(r.expense)
		}
		p, err := env.people.Create(ctx, req)
		require.NoError(t, err)
		if r.province == "" {
			require.NoError(t, env.db.Model(p).Update("province", "  ").Error)
		}
	}

	for _, org := range []string{"temple", "school", "temple"} {
		req := formRequest()
		req.OrganizationType = org
		_, err := env.forms.Create(ctx, req, env.images(t))
		require.NoError(t, err)
	}
}

func newDashboard(t *testing.T, env *testEnv, limit int64) *DashboardService {
	t.Helper()
	sqlxDB, err := db.WrapORM(env.db)
	require.NoError(t, err)
	return NewDashboardService(
		env.repos.participants,
		env.repos.forms,
		env.repos.groups,
		env.repos.users,
		repositories.NewStatsRepository(sqlxDB),
		nil,
		limit,
	)
}

func TestDashboardService_MemoryAndDatabaseAgree(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	seedDashboardData(t, env)

	memory, err := newDashboard(t, env, 1000).Participants(ctx, nil)
	require.NoError(t, err)
	database, err := newDashboard(t, env, 1).Participants(ctx, nil)
	require.NoError(t, err)

	assert.Equal(t, SourceMemory, memory.Source)
	assert.Equal(t, SourceDatabase, database.Source)
	assert.EqualValues(t, 5, memory.Total)
	assert.Equal(t, memory.ByConsumption, database.ByConsumption)
	assert.Equal(t, memory.ByProvince, database.ByProvince)
	assert.Equal(t, memory.ByGroup, database.ByGroup)
	assert.Equal(t, memory.ByIntentPeriod, database.ByIntentPeriod)
	assert.Equal(t, memory.MonthlyExpense, database.MonthlyExpense)

	assert.Equal(t, "Temple", memory.ByGroup[0].Label)
	assert.EqualValues(t, 3, memory.ByGroup[0].Count)
	assert.Contains(t, memory.ByProvince, bucketOf(constants.UnknownBucket, 1))
	// Zero expenses are left out of the average.
	assert.EqualValues(t, 2, memory.MonthlyExpense.Count)
	assert.InDelta(t, 1200, memory.MonthlyExpense.Average, 0.001)

	formsMem, err := newDashboard(t, env, 1000).FormReturns(ctx, nil)
	require.NoError(t, err)
	formsDB, err := newDashboard(t, env, 0).FormReturns(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, formsMem.ByOrganizationType, formsDB.ByOrganizationType)
	assert.Equal(t, formsMem.Signers, formsDB.Signers)
	assert.EqualValues(t, 36, formsMem.Signers.Sum)

	summary, err := newDashboard(t, env, 1000).Summary(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 5, summary.Participants)
	assert.EqualValues(t, 3, summary.FormReturns)
	assert.EqualValues(t, 2, summary.Groups)
}

func TestDashboardService_FiltersNarrowBothPaths(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	seedDashboardData(t, env)

	nan := url.Values{"province": {"Nan"}, "page": {"3"}}
	memory, err := newDashboard(t, env, 1000).Participants(ctx, nan)
	require.NoError(t, err)
	database, err := newDashboard(t, env, 1).Participants(ctx, nan)
	require.NoError(t, err)

	assert.Equal(t, SourceMemory, memory.Source)
	assert.Equal(t, SourceDatabase, database.Source)
	assert.EqualValues(t, 2, memory.Total)
	assert.EqualValues(t, 2, database.Total)
	assert.Equal(t, []aggregate.Bucket{bucketOf("Nan", 2)}, memory.ByProvince)
	assert.Equal(t, memory.ByProvince, database.ByProvince)
	assert.Equal(t, []aggregate.Bucket{bucketOf("School", 1), bucketOf("Temple", 1)}, memory.ByGroup)
	assert.Equal(t, memory.ByGroup, database.ByGroup)
	assert.Equal(t, memory.ByConsumption, database.ByConsumption)
	assert.Equal(t, memory.MonthlyExpense, database.MonthlyExpense)
	assert.EqualValues(t, 900, memory.MonthlyExpense.Sum)

	temples := url.Values{"organizationType": {"temple"}}
	formsMem, err := newDashboard(t, env, 1000).FormReturns(ctx, temples)
	require.NoError(t, err)
	formsDB, err := newDashboard(t, env, 0).FormReturns(ctx, temples)
	require.NoError(t, err)
	assert.EqualValues(t, 2, formsMem.Total)
	assert.Equal(t, []aggregate.Bucket{bucketOf("temple", 2)}, formsMem.ByOrganizationType)
	assert.Equal(t, formsMem.ByOrganizationType, formsDB.ByOrganizationType)
	assert.Equal(t, formsMem.Signers, formsDB.Signers)
	assert.EqualValues(t, 24, formsDB.Signers.Sum)

	_, err = newDashboard(t, env, 1000).Participants(ctx, url.Values{"groupId": {"abc"}})
	var pe *query.ParamError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, "groupId", pe.Param)
}

func TestDashboardService_CachedPerFilterAndInvalidatedOnWrite(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	seedDashboardData(t, env)

	sqlxDB, err := db.WrapORM(env.db)
	require.NoError(t, err)
	dash := NewDashboardService(env.repos.participants, env.repos.forms, env.repos.groups, env.repos.users,
		repositories.NewStatsRepository(sqlxDB), env.cache, 1000)

	nan := url.Values{"province": {"Nan"}}
	first, err := dash.Participants(ctx, nan)
	require.NoError(t, err)
	assert.EqualValues(t, 2, first.Total)

	all, err := dash.Participants(ctx, nil)
	require.NoError(t, err)
	assert.EqualValues(t, 5, all.Total)

	g := env.seedGroup(t, "Village")
	req := participantRequest(g.ID, constants.ConsumptionNeverDrank)
	req.Province = "Nan"
	_, err = env.people.Create(ctx, req)
	require.NoError(t, err)

	again, err := dash.Participants(ctx, nan)
	require.NoError(t, err)
	assert.EqualValues(t, 3, again.Total)
}

func TestExportColumns_ParticipantCSV(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	g := env.seedGroup(t, "Temple")

	req := participantRequest(g.ID, constants.ConsumptionReduceForLent)
	req.DrinkingFrequency = strPtr("weekly")
	req.IntentPeriod = strPtr("whole lent")
	req.MonthlyExpense = int64Ptr(800)
	req.FirstName = `Som "chai", Jr`
	_, err := env.people.Create(ctx, req)
	require.NoError(t, err)

	rows, err := env.people.Rows(ctx, nil, true)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, export.Write(&buf, export.FormatCSV, rows, ParticipantColumns))

	records, err := csv.NewReader(strings.NewReader(strings.TrimPrefix(buf.String(), "\ufeff"))).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Len(t, records[0], len(ParticipantColumns))
	assert.Equal(t, `Som "chai", Jr`, records[1][2])
	assert.Equal(t, constants.ConsumptionLabels[constants.ConsumptionReduceForLent], records[1][11])
	assert.Equal(t, "800", records[1][14])
	assert.Equal(t, "Temple", records[1][16])
}
