package gorm

import (
	"buddhist-lent/pledgeboard/internal/constants"
	"time"

	"gorm.io/datatypes"
)

// Participant is an individual pledge submission.
type Participant struct {
	ID          uint      `gorm:"column:id;primaryKey" json:"id"`
	Prefix      string    `gorm:"column:prefix;size:32" json:"prefix"`
	FirstName   string    `gorm:"column:first_name;size:255;not null" json:"firstName"`
	LastName    string    `gorm:"column:last_name;size:255;not null" json:"lastName"`
	Birthday    time.Time `gorm:"column:birthday;type:date" json:"birthday"`
	AddressLine string    `gorm:"column:address_line;size:512" json:"addressLine"`
	Subdistrict string    `gorm:"column:subdistrict;size:128" json:"subdistrict"`
	District    string    `gorm:"column:district;size:128" json:"district"`
	Province    string    `gorm:"column:province;size:128;index" json:"province"`
	ZipCode     string    `gorm:"column:zip_code;size:5" json:"zipCode"`
	Phone       string    `gorm:"column:phone;size:10" json:"phoneNumber"`

	AlcoholConsumption constants.ConsumptionStatus `gorm:"column:alcohol_consumption;size:32;index;not null" json:"alcoholConsumption"`
	DrinkingFrequency  *string                     `gorm:"column:drinking_frequency;size:64" json:"drinkingFrequency"`
	IntentPeriod       *string                     `gorm:"column:intent_period;size:64" json:"intentPeriod"`
	MonthlyExpense     *int64                      `gorm:"column:monthly_expense" json:"monthlyExpense"`
	Motivations        datatypes.JSONSlice[string] `gorm:"column:motivations" json:"motivations"`

	GroupID uint   `gorm:"column:group_id;index;not null" json:"groupId"`
	Group   *Group `gorm:"foreignKey:GroupID" json:"group,omitempty"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime;index" json:"createdAt"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`
}

// TableName specifies the table name for GORM
func (Participant) TableName() string {
	return "participants"
}
