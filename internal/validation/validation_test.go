package validation

import (
	"context"
	"errors"
	"testing"
	"time"

	"buddhist-lent/pledgeboard/internal/constants"
	"buddhist-lent/pledgeboard/internal/models/dtos"
	gormModels "buddhist-lent/pledgeboard/internal/models/gorm"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeGroups map[uint]bool

func (f fakeGroups) Exists(_ context.Context, id uint) (bool, error) {
	return f[id], nil
}

func strPtr(s string) *string { return &s }
func i64Ptr(v int64) *int64   { return &v }

func validParticipant(status constants.ConsumptionStatus) *gormModels.Participant {
	return &gormModels.Participant{
		FirstName:          "Somchai",
		LastName:           "Jaidee",
		Birthday:           time.Date(1985, 4, 13, 0, 0, 0, 0, time.UTC),
		Province:           "Bangkok",
		Phone:              "0812345678",
		AlcoholConsumption: status,
		GroupID:            1,
	}
}

func asErrors(t *testing.T, err error) Errors {
	t.Helper()
	var ve Errors
	require.True(t, errors.As(err, &ve), "expected validation errors, got %v", err)
	return ve
}

func TestParticipant_QualifyingStatusRequiresConditionalFields(t *testing.T) {
	for _, status := range []constants.ConsumptionStatus{constants.ConsumptionAbstainForLent, constants.ConsumptionReduceForLent} {
		p := validParticipant(status)
		ve := asErrors(t, Participant(context.Background(), p, fakeGroups{1: true}))
		assert.True(t, ve.Has("drinkingFrequency"))
		assert.True(t, ve.Has("intentPeriod"))
		assert.True(t, ve.Has("monthlyExpense"))

		p.DrinkingFrequency = strPtr(" weekly ")
		p.IntentPeriod = strPtr("3 months")
		p.MonthlyExpense = i64Ptr(900)
		require.NoError(t, Participant(context.Background(), p, fakeGroups{1: true}))
		assert.Equal(t, "weekly", *p.DrinkingFrequency)
	}
}

func TestParticipant_NonQualifyingStatusClearsConditionalFields(t *testing.T) {
	p := validParticipant(constants.ConsumptionNeverDrank)
	p.DrinkingFrequency = strPtr("daily")
	p.IntentPeriod = strPtr("1 month")
	p.MonthlyExpense = i64Ptr(3000)

	require.NoError(t, Participant(context.Background(), p, fakeGroups{1: true}))
	assert.Nil(t, p.DrinkingFrequency)
	assert.Nil(t, p.IntentPeriod)
	assert.Nil(t, p.MonthlyExpense)
}

func TestParticipant_PhoneGroupAndStatus(t *testing.T) {
	p := validParticipant("sometimes")
	p.Phone = "081234567"
	p.GroupID = 7

	ve := asErrors(t, Participant(context.Background(), p, fakeGroups{1: true}))
	assert.True(t, ve.Has("phoneNumber"))
	assert.True(t, ve.Has("groupId"))
	assert.True(t, ve.Has("alcoholConsumption"))
}

func TestParticipant_MotivationsTrimmed(t *testing.T) {
	p := validParticipant(constants.ConsumptionQuitAlready)
	p.Motivations = []string{" health ", "", "family"}

	require.NoError(t, Participant(context.Background(), p, nil))
	assert.Equal(t, []string{"health", "family"}, []string(p.Motivations))
}

func TestFormReturn(t *testing.T) {
	f := &gormModels.FormReturn{OrganizationName: "Wat Pho", Phone: "081234567", SignerCount: 1}
	ve := asErrors(t, FormReturn(f))
	assert.True(t, ve.Has("phoneNumber"))
	assert.True(t, ve.Has("signerCount"))

	f.Phone = "0812345678"
	f.SignerCount = 2
	assert.NoError(t, FormReturn(f))
}

func TestStruct_UsesJSONNames(t *testing.T) {
	ve := asErrors(t, Struct(dtos.SignupRequest{Name: "A", Email: "nope", Password: "short"}))
	assert.True(t, ve.Has("email"))
	assert.True(t, ve.Has("password"))
	assert.False(t, ve.Has("name"))
}

func TestDate_RejectsImpossibleDay(t *testing.T) {
	var errs Errors
	d := Date(&errs, "birthday", "1990-02-30")
	assert.True(t, d.IsZero())
	assert.True(t, errs.Has("birthday"))
	assert.Len(t, errs, 1)
}
