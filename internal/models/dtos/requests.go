package dtos

type SignupRequest struct {
	Name     string `json:"name" validate:"required,max=255"`
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type ResetPasswordRequest struct {
	Token    string `json:"token" validate:"required"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

type SetRoleRequest struct {
	Role string `json:"role" validate:"required,oneof=admin member"`
}

// ParticipantRequest is the full participant body (create and PUT).
type ParticipantRequest struct {
	Prefix             string   `json:"prefix" validate:"max=32"`
	FirstName          string   `json:"firstName" validate:"required,max=255"`
	LastName           string   `json:"lastName" validate:"required,max=255"`
	Birthday           string   `json:"birthday" validate:"required"`
	AddressLine        string   `json:"addressLine" validate:"max=512"`
	Subdistrict        string   `json:"subdistrict" validate:"max=128"`
	District           string   `json:"district" validate:"max=128"`
	Province           string   `json:"province" validate:"required,max=128"`
	ZipCode            string   `json:"zipCode" validate:"omitempty,len=5,numeric"`
	PhoneNumber        string   `json:"phoneNumber" validate:"required"`
	AlcoholConsumption string   `json:"alcoholConsumption" validate:"required"`
	DrinkingFrequency  *string  `json:"drinkingFrequency"`
	IntentPeriod       *string  `json:"intentPeriod"`
	MonthlyExpense     *int64   `json:"monthlyExpense"`
	Motivations        []string `json:"motivations"`
	GroupID            uint     `json:"groupId" validate:"required"`
}

// ParticipantPatch carries only the fields to change. It is merged onto the
// stored row and the merged row is validated as a whole.
type ParticipantPatch struct {
	Prefix             *string   `json:"prefix"`
	FirstName          *string   `json:"firstName"`
	LastName           *string   `json:"lastName"`
	Birthday           *string   `json:"birthday"`
	AddressLine        *string   `json:"addressLine"`
	Subdistrict        *string   `json:"subdistrict"`
	District           *string   `json:"district"`
	Province           *string   `json:"province"`
	ZipCode            *string   `json:"zipCode"`
	PhoneNumber        *string   `json:"phoneNumber"`
	AlcoholConsumption *string   `json:"alcoholConsumption"`
	DrinkingFrequency  *string   `json:"drinkingFrequency"`
	IntentPeriod       *string   `json:"intentPeriod"`
	MonthlyExpense     *int64    `json:"monthlyExpense"`
	Motivations        *[]string `json:"motivations"`
	GroupID            *uint     `json:"groupId"`
}

// FormReturnRequest is decoded from multipart form values.
type FormReturnRequest struct {
	OrganizationName string `json:"organizationName" validate:"required,max=255"`
	OrganizationType string `json:"organizationType" validate:"required,max=64"`
	FirstName        string `json:"firstName" validate:"required,max=255"`
	LastName         string `json:"lastName" validate:"required,max=255"`
	AddressLine      string `json:"addressLine" validate:"max=512"`
	District         string `json:"district" validate:"max=128"`
	Province         string `json:"province" validate:"required,max=128"`
	ZipCode          string `json:"zipCode" validate:"omitempty,len=5,numeric"`
	PhoneNumber      string `json:"phoneNumber" validate:"required"`
	SignerCount      int    `json:"signerCount"`
}

type GroupRequest struct {
	Name        string  `json:"name" validate:"required,max=255"`
	Description *string `json:"description"`
}
