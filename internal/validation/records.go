package validation

import (
	"context"
	"strings"
	"time"

	gormModels "buddhist-lent/pledgeboard/internal/models/gorm"

	"gorm.io/datatypes"
)

// GroupChecker reports whether a group id resolves to a row.
type GroupChecker interface {
	Exists(ctx context.Context, id uint) (bool, error)
}

// Participant enforces the participant invariants on a fully populated row
// and normalises it in place: the conditional fields are required when the
// consumption status qualifies and cleared when it does not.
func Participant(ctx context.Context, p *gormModels.Participant, groups GroupChecker) error {
	var errs Errors

	p.FirstName = strings.TrimSpace(p.FirstName)
	p.LastName = strings.TrimSpace(p.LastName)
	p.Province = strings.TrimSpace(p.Province)
	p.Phone = strings.TrimSpace(p.Phone)

	if p.FirstName == "" {
		errs.Add("firstName", "is required")
	}
	if p.LastName == "" {
		errs.Add("lastName", "is required")
	}
	if p.Province == "" {
		errs.Add("province", "is required")
	}
	if p.Birthday.IsZero() {
		errs.Add("birthday", "is required")
	} else if p.Birthday.After(time.Now()) {
		errs.Add("birthday", "must not be in the future")
	}
	Phone(&errs, "phoneNumber", p.Phone)

	if !p.AlcoholConsumption.Valid() {
		errs.Add("alcoholConsumption", "is not a known status")
	}

	if p.AlcoholConsumption.Qualifies() {
		p.DrinkingFrequency = trimmedOrNil(p.DrinkingFrequency)
		p.IntentPeriod = trimmedOrNil(p.IntentPeriod)
		if p.DrinkingFrequency == nil {
			errs.Add("drinkingFrequency", "is required for this consumption status")
		}
		if p.IntentPeriod == nil {
			errs.Add("intentPeriod", "is required for this consumption status")
		}
		if p.MonthlyExpense == nil {
			errs.Add("monthlyExpense", "is required for this consumption status")
		} else if *p.MonthlyExpense < 0 {
			errs.Add("monthlyExpense", "must not be negative")
		}
	} else {
		p.DrinkingFrequency = nil
		p.IntentPeriod = nil
		p.MonthlyExpense = nil
	}

	motivations := make(datatypes.JSONSlice[string], 0, len(p.Motivations))
	for _, m := range p.Motivations {
		if m = strings.TrimSpace(m); m != "" {
			motivations = append(motivations, m)
		}
	}
	p.Motivations = motivations

	if p.GroupID == 0 {
		errs.Add("groupId", "is required")
	} else if groups != nil {
		ok, err := groups.Exists(ctx, p.GroupID)
		if err != nil {
			return err
		}
		if !ok {
			errs.Add("groupId", "does not match an existing group")
		}
	}

	return errs.Err()
}

// FormReturn enforces the form-return rules. Image presence is checked
// separately since it depends on whether the row is new.
func FormReturn(f *gormModels.FormReturn) error {
	var errs Errors

	f.OrganizationName = strings.TrimSpace(f.OrganizationName)
	f.Phone = strings.TrimSpace(f.Phone)

	if f.OrganizationName == "" {
		errs.Add("organizationName", "is required")
	}
	Phone(&errs, "phoneNumber", f.Phone)
	if f.SignerCount <= 1 {
		errs.Add("signerCount", "must be greater than 1")
	}

	return errs.Err()
}

func trimmedOrNil(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
