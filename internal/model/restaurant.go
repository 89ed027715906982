package model

import (
	"time"

	"github.com/google/uuid"
)

// Restaurant represents the restaurants table
type Restaurant struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	OwnerEmail string    `json:"owner_email"`
	Timezone   string    `json:"timezone"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// RestaurantScopedTables lists every table carrying a restaurant_id foreign
// key, in the order teardown removes them: rows referencing shifts or
// employees go before the rows they reference. Employees are handled
// separately because their identity-provider accounts must be dealt with
// first.
var RestaurantScopedTables = []string{
	"shift_swap_requests",
	"time_off_requests",
	"shifts",
	"shift_templates",
	"staffing_requirements",
	"blocked_dates",
	"business_hours",
}
