package model

import (
	"time"

	"github.com/google/uuid"
)

// Role is the set of roles an employee can hold within a restaurant.
type Role string

const (
	RoleManager Role = "manager"
	RoleStaff   Role = "staff"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleManager || r == RoleStaff
}

const (
	StatusActive   = "active"
	StatusInactive = "inactive"
)

// Employee represents the employees table. PrincipalID links the row to its
// identity-provider account; it is nil only while onboarding is in flight.
type Employee struct {
	ID           uuid.UUID `json:"id"`
	RestaurantID uuid.UUID `json:"restaurant_id"`
	PrincipalID  *string   `json:"principal_id,omitempty"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	Email        string    `json:"email"`
	Role         Role      `json:"role"`
	Position     string    `json:"position"`
	HourlyRate   float64   `json:"hourly_rate"`
	HireDate     time.Time `json:"hire_date"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
