package gorm

import "time"

// FormReturn is an organization's returned pledge form with two scanned pages.
// Image1 and Image2 hold storage keys, not URLs.
type FormReturn struct {
	ID               uint      `gorm:"column:id;primaryKey" json:"id"`
	OrganizationName string    `gorm:"column:organization_name;size:255;not null" json:"organizationName"`
	OrganizationType string    `gorm:"column:organization_type;size:64;index" json:"organizationType"`
	FirstName        string    `gorm:"column:first_name;size:255" json:"firstName"`
	LastName         string    `gorm:"column:last_name;size:255" json:"lastName"`
	AddressLine      string    `gorm:"column:address_line;size:512" json:"addressLine"`
	District         string    `gorm:"column:district;size:128" json:"district"`
	Province         string    `gorm:"column:province;size:128;index" json:"province"`
	ZipCode          string    `gorm:"column:zip_code;size:5" json:"zipCode"`
	Phone            string    `gorm:"column:phone;size:10;not null" json:"phoneNumber"`
	SignerCount      int       `gorm:"column:signer_count;not null" json:"signerCount"`
	Image1           string    `gorm:"column:image1;size:512" json:"image1"`
	Image2           string    `gorm:"column:image2;size:512" json:"image2"`
	CreatedAt        time.Time `gorm:"column:created_at;autoCreateTime;index" json:"createdAt"`
	UpdatedAt        time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`
}

// TableName specifies the table name for GORM
func (FormReturn) TableName() string {
	return "form_returns"
}

// ImageKeys returns the non-empty storage keys referenced by the row.
func (f *FormReturn) ImageKeys() []string {
	keys := make([]string, 0, 2)
	if f.Image1 != "" {
		keys = append(keys, f.Image1)
	}
	if f.Image2 != "" {
		keys = append(keys, f.Image2)
	}
	return keys
}
