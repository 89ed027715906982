package lifecycle

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/shiftline/account-lifecycle-service/internal/model"
	"github.com/shiftline/account-lifecycle-service/internal/monitoring"
	"github.com/shiftline/account-lifecycle-service/internal/notify"
)

// OnboardRequest carries everything needed to create a linked principal and
// employee pair.
type OnboardRequest struct {
	Email        string
	Password     string
	FirstName    string
	LastName     string
	Role         model.Role
	Position     string
	HourlyRate   float64
	HireDate     time.Time
	RestaurantID uuid.UUID
}

// OnboardResult is the minimal payload returned on successful onboarding.
type OnboardResult struct {
	PrincipalID string
	Email       string
}

func (r *OnboardRequest) validate() error {
	if r.Email == "" {
		return validationErr("email is required")
	}
	if !isValidEmail(r.Email) {
		return validationErr("invalid email format")
	}
	if r.Password == "" {
		return validationErr("password is required")
	}
	if r.FirstName == "" {
		return validationErr("first name is required")
	}
	if r.LastName == "" {
		return validationErr("last name is required")
	}
	if !r.Role.Valid() {
		return validationErr("role must be manager or staff")
	}
	if r.HireDate.IsZero() {
		return validationErr("hire date is required")
	}
	if r.RestaurantID == uuid.Nil {
		return validationErr("restaurant id is required")
	}
	return nil
}

// OnboardEmployee creates the principal in the identity provider first, then
// the employee row referencing it. If the insert fails the principal is
// deleted again so no account outlives the attempt; if that compensation also
// fails the principal is orphaned, which is logged, counted and surfaced as
// a partial failure for manual reconciliation. A welcome notification for
// non-manager hires is fire-and-forget.
func (c *Coordinator) OnboardEmployee(ctx context.Context, req OnboardRequest) (*OnboardResult, error) {
	if err := req.validate(); err != nil {
		monitoring.LifecycleOperations.WithLabelValues("onboard", "error").Inc()
		return nil, err
	}

	var principalID string
	employee := &model.Employee{
		RestaurantID: req.RestaurantID,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Email:        req.Email,
		Role:         req.Role,
		Position:     req.Position,
		HourlyRate:   req.HourlyRate,
		HireDate:     req.HireDate,
		Status:       model.StatusActive,
	}

	steps := []step{
		{
			name: "create principal",
			run: func(ctx context.Context) error {
				id, err := c.identity.CreatePrincipal(ctx, req.Email, req.Password, map[string]string{
					"given_name":  req.FirstName,
					"family_name": req.LastName,
				})
				if err != nil {
					return upstreamErr("create principal", err)
				}
				principalID = id
				return nil
			},
			compensate: func(ctx context.Context) error {
				err := c.identity.DeletePrincipal(ctx, principalID)
				if err != nil {
					monitoring.OrphanedPrincipals.Inc()
				}
				return err
			},
		},
		{
			name: "create employee",
			run: func(ctx context.Context) error {
				employee.PrincipalID = &principalID
				if err := c.store.CreateEmployee(ctx, employee); err != nil {
					return upstreamErr("create employee", err)
				}
				return nil
			},
		},
	}

	if err := runSteps(ctx, steps); err != nil {
		monitoring.LifecycleOperations.WithLabelValues("onboard", "error").Inc()
		return nil, err
	}

	c.sendWelcome(ctx, principalID, employee)

	monitoring.LifecycleOperations.WithLabelValues("onboard", "success").Inc()
	log.Info().
		Str("employee_id", employee.ID.String()).
		Str("restaurant_id", req.RestaurantID.String()).
		Msg("Employee onboarded")
	return &OnboardResult{PrincipalID: principalID, Email: req.Email}, nil
}

// sendWelcome emits the welcome notification for non-manager hires. Failures
// never fail the onboarding; they are only logged.
func (c *Coordinator) sendWelcome(ctx context.Context, principalID string, employee *model.Employee) {
	if employee.Role == model.RoleManager {
		return
	}
	fields := map[string]string{
		"first_name": employee.FirstName,
		"email":      employee.Email,
	}
	if restaurant, err := c.store.GetRestaurant(ctx, employee.RestaurantID); err == nil && restaurant != nil {
		fields["restaurant_name"] = restaurant.Name
	}
	if err := c.notifier.Emit(ctx, principalID, employee.RestaurantID.String(), notify.TemplateWelcome, fields); err != nil {
		log.Warn().Err(err).Str("employee_id", employee.ID.String()).Msg("Welcome notification failed")
	}
}
