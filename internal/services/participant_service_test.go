package services

import (
	"context"
	"net/http"
	"net/url"
	"testing"

	"buddhist-lent/pledgeboard/internal/constants"
	"buddhist-lent/pledgeboard/internal/models/dtos"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }
func int64Ptr(v int64) *int64 { return &v }

func participantRequest(groupID uint, status constants.ConsumptionStatus) dtos.ParticipantRequest {
	return dtos.ParticipantRequest{
		Prefix:             "นาย",
		FirstName:          "Somchai",
		LastName:           "Jaidee",
		Birthday:           "1985-04-13",
		Province:           "Bangkok",
		PhoneNumber:        "0812345678",
		AlcoholConsumption: string(status),
		GroupID:            groupID,
	}
}

func TestParticipantService_ConditionalFieldsOnCreate(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	g := env.seedGroup(t, "Temple")

	req := participantRequest(g.ID, constants.ConsumptionReduceForLent)
	_, err := env.people.Create(ctx, req)
	se := requireServiceError(t, err, http.StatusBadRequest, constants.ErrCodeValidation)
	assert.True(t, se.Fields.Has("drinkingFrequency"))
	assert.True(t, se.Fields.Has("intentPeriod"))
	assert.True(t, se.Fields.Has("monthlyExpense"))

	req = participantRequest(g.ID, constants.ConsumptionNeverDrank)
	req.DrinkingFrequency = strPtr("weekly")
	req.MonthlyExpense = int64Ptr(500)
	req.Motivations = []string{" health ", "", "family"}
	p, err := env.people.Create(ctx, req)
	require.NoError(t, err)
	assert.Nil(t, p.DrinkingFrequency)
	assert.Nil(t, p.MonthlyExpense)
	assert.Equal(t, []string{"health", "family"}, []string(p.Motivations))
	require.NotNil(t, p.Group)
	assert.Equal(t, "Temple", p.Group.Name)
}

func TestParticipantService_RejectsBadInput(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	g := env.seedGroup(t, "School")

	req := participantRequest(g.ID, constants.ConsumptionNeverDrank)
	req.PhoneNumber = "081234567"
	_, err := env.people.Create(ctx, req)
	se := requireServiceError(t, err, http.StatusBadRequest, constants.ErrCodeValidation)
	assert.True(t, se.Fields.Has("phoneNumber"))

	req = participantRequest(g.ID+100, constants.ConsumptionNeverDrank)
	_, err = env.people.Create(ctx, req)
	se = requireServiceError(t, err, http.StatusBadRequest, constants.ErrCodeValidation)
	assert.True(t, se.Fields.Has("groupId"))

	req = participantRequest(g.ID, constants.ConsumptionNeverDrank)
	req.Birthday = "13/04/1985"
	_, err = env.people.Create(ctx, req)
	se = requireServiceError(t, err, http.StatusBadRequest, constants.ErrCodeValidation)
	assert.True(t, se.Fields.Has("birthday"))

	req = participantRequest(g.ID, "sometimes")
	_, err = env.people.Create(ctx, req)
	se = requireServiceError(t, err, http.StatusBadRequest, constants.ErrCodeValidation)
	assert.True(t, se.Fields.Has("alcoholConsumption"))

	count, err := env.repos.participants.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestParticipantService_PatchRevalidatesMergedRow(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	g := env.seedGroup(t, "Office")
	other := env.seedGroup(t, "Village")

	p, err := env.people.Create(ctx, participantRequest(g.ID, constants.ConsumptionNeverDrank))
	require.NoError(t, err)

	status := string(constants.ConsumptionAbstainForLent)
	_, err = env.people.Patch(ctx, p.ID, dtos.ParticipantPatch{AlcoholConsumption: &status})
	se := requireServiceError(t, err, http.StatusBadRequest, constants.ErrCodeValidation)
	assert.True(t, se.Fields.Has("intentPeriod"))

	patched, err := env.people.Patch(ctx, p.ID, dtos.ParticipantPatch{
		AlcoholConsumption: &status,
		DrinkingFrequency:  strPtr("daily"),
		IntentPeriod:       strPtr("3 months"),
		MonthlyExpense:     int64Ptr(1200),
		GroupID:            &other.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, "3 months", *patched.IntentPeriod)
	assert.Equal(t, "Village", patched.Group.Name)
	assert.Equal(t, "Somchai", patched.FirstName)

	never := string(constants.ConsumptionQuitAlready)
	cleared, err := env.people.Patch(ctx, p.ID, dtos.ParticipantPatch{AlcoholConsumption: &never})
	require.NoError(t, err)
	assert.Nil(t, cleared.DrinkingFrequency)
	assert.Nil(t, cleared.IntentPeriod)
	assert.Nil(t, cleared.MonthlyExpense)

	_, err = env.people.Patch(ctx, 9999, dtos.ParticipantPatch{})
	requireServiceError(t, err, http.StatusNotFound, constants.ErrCodeNotFound)
}

func TestParticipantService_UpdateAndDelete(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	g := env.seedGroup(t, "Club")

	p, err := env.people.Create(ctx, participantRequest(g.ID, constants.ConsumptionNeverDrank))
	require.NoError(t, err)

	req := participantRequest(g.ID, constants.ConsumptionNeverDrank)
	req.FirstName = "Malee"
	updated, err := env.people.Update(ctx, p.ID, req)
	require.NoError(t, err)
	assert.Equal(t, "Malee", updated.FirstName)
	assert.Equal(t, p.CreatedAt.Unix(), updated.CreatedAt.Unix())

	_, err = env.people.Update(ctx, 4242, req)
	requireServiceError(t, err, http.StatusNotFound, constants.ErrCodeNotFound)

	require.NoError(t, env.people.Delete(ctx, p.ID))
	err = env.people.Delete(ctx, p.ID)
	requireServiceError(t, err, http.StatusNotFound, constants.ErrCodeNotFound)
}

func TestParticipantService_ListSeesMutationsThroughCache(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	g := env.seedGroup(t, "Market")
	v := url.Values{"search": {"Somchai"}}

	_, err := env.people.Create(ctx, participantRequest(g.ID, constants.ConsumptionNeverDrank))
	require.NoError(t, err)

	first, err := env.people.List(ctx, v)
	require.NoError(t, err)
	assert.EqualValues(t, 1, first.Pagination.TotalItems)

	// Served from cache.
	again, err := env.people.List(ctx, v)
	require.NoError(t, err)
	assert.EqualValues(t, 1, again.Pagination.TotalItems)

	_, err = env.people.Create(ctx, participantRequest(g.ID, constants.ConsumptionQuitAlready))
	require.NoError(t, err)

	after, err := env.people.List(ctx, v)
	require.NoError(t, err)
	assert.EqualValues(t, 2, after.Pagination.TotalItems)

	_, err = env.people.List(ctx, url.Values{"groupId": {"abc"}})
	assert.Error(t, err)
}

func TestParticipantService_RowsForExport(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	g := env.seedGroup(t, "Farm")
	for i := 0; i < 12; i++ {
		_, err := env.people.Create(ctx, participantRequest(g.ID, constants.ConsumptionNeverDrank))
		require.NoError(t, err)
	}

	page, err := env.people.Rows(ctx, url.Values{"limit": {"5"}}, false)
	require.NoError(t, err)
	assert.Len(t, page, 5)

	all, err := env.people.Rows(ctx, url.Values{"limit": {"5"}}, true)
	require.NoError(t, err)
	assert.Len(t, all, 12)
}
