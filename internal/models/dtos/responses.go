package dtos

import (
	"time"

	"buddhist-lent/pledgeboard/internal/aggregate"
	"buddhist-lent/pledgeboard/internal/query"
)

// APIResponse is the single envelope for every JSON response.
type APIResponse struct {
	Status       string `json:"status"`
	Message      string `json:"message"`
	ResponseTime string `json:"response_time"`
	Data         any    `json:"data,omitempty"`
}

type ListResponse[T any] struct {
	Items      []T              `json:"items"`
	Pagination query.Pagination `json:"pagination"`
	// Filter dropdown values taken from the same snapshot as Items.
	Filters map[string][]string `json:"filters,omitempty"`
}

type UserResponse struct {
	ID        uint      `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	ImageURL  string    `json:"imageUrl,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

type LoginResponse struct {
	User      UserResponse `json:"user"`
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expiresAt"`
}

type FormReturnResponse struct {
	ID               uint      `json:"id"`
	OrganizationName string    `json:"organizationName"`
	OrganizationType string    `json:"organizationType"`
	FirstName        string    `json:"firstName"`
	LastName         string    `json:"lastName"`
	AddressLine      string    `json:"addressLine"`
	District         string    `json:"district"`
	Province         string    `json:"province"`
	ZipCode          string    `json:"zipCode"`
	PhoneNumber      string    `json:"phoneNumber"`
	SignerCount      int       `json:"signerCount"`
	Image1           string    `json:"image1"`
	Image2           string    `json:"image2"`
	Image1URL        string    `json:"image1Url"`
	Image2URL        string    `json:"image2Url"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

type ParticipantDashboard struct {
	Total          int64              `json:"total"`
	ByConsumption  []aggregate.Bucket `json:"byConsumption"`
	ByProvince     []aggregate.Bucket `json:"byProvince"`
	ByGroup        []aggregate.Bucket `json:"byGroup"`
	ByIntentPeriod []aggregate.Bucket `json:"byIntentPeriod"`
	MonthlyExpense aggregate.Summary  `json:"monthlyExpense"`
	Source         string             `json:"source"`
}

type FormReturnDashboard struct {
	Total              int64              `json:"total"`
	ByProvince         []aggregate.Bucket `json:"byProvince"`
	ByOrganizationType []aggregate.Bucket `json:"byOrganizationType"`
	Signers            aggregate.Summary  `json:"signers"`
	Source             string             `json:"source"`
}

type DashboardSummary struct {
	Participants int64 `json:"participants"`
	FormReturns  int64 `json:"formReturns"`
	Groups       int64 `json:"groups"`
	Users        int64 `json:"users"`
}

type ServiceStatus struct {
	Status  string `json:"status"`
	Details string `json:"details"`
}

type HealthCheckResponse struct {
	Status   string                   `json:"status"`
	Uptime   string                   `json:"uptime"`
	Services map[string]ServiceStatus `json:"services"`
}
