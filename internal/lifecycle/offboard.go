package lifecycle

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/shiftline/account-lifecycle-service/internal/monitoring"
	"github.com/shiftline/account-lifecycle-service/internal/store"
)

// OffboardMode selects which offboarding variant runs.
type OffboardMode string

const (
	// ModePrivileged skips the ownership check; used by administrators.
	ModePrivileged OffboardMode = "privileged"
	// ModeSelfService refuses to remove the restaurant owner.
	ModeSelfService OffboardMode = "self_service"
)

// OffboardRequest identifies the employee to remove. PrincipalID is optional;
// in self-service mode it is filled in from the employee row when empty.
type OffboardRequest struct {
	EmployeeID  uuid.UUID
	PrincipalID string
	Mode        OffboardMode
}

func (r *OffboardRequest) validate() error {
	if r.EmployeeID == uuid.Nil {
		return validationErr("employee id is required")
	}
	if r.Mode != ModePrivileged && r.Mode != ModeSelfService {
		return validationErr("mode must be privileged or self_service")
	}
	return nil
}

// OffboardEmployee removes one employee and its linked principal. The
// principal is deleted first: if that fails nothing has been mutated and the
// operation aborts cleanly, whereas the reverse order could leave an employee
// row referencing a dead principal. The cost is the documented asymmetry that
// an employee-row deletion failure afterwards leaves the principal gone.
func (c *Coordinator) OffboardEmployee(ctx context.Context, req OffboardRequest) error {
	if err := req.validate(); err != nil {
		monitoring.LifecycleOperations.WithLabelValues("offboard", "error").Inc()
		return err
	}
	err := c.offboard(ctx, req)
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	monitoring.LifecycleOperations.WithLabelValues("offboard", outcome).Inc()
	return err
}

func (c *Coordinator) offboard(ctx context.Context, req OffboardRequest) error {
	principalID := req.PrincipalID

	if req.Mode == ModeSelfService {
		employee, err := c.store.GetEmployeeByID(ctx, req.EmployeeID)
		if err != nil {
			return upstreamErr("fetch employee", err)
		}
		if employee == nil {
			return notFoundErr("employee not found")
		}
		restaurant, err := c.store.GetRestaurant(ctx, employee.RestaurantID)
		if err != nil {
			return upstreamErr("fetch restaurant", err)
		}
		if restaurant != nil && sameEmail(restaurant.OwnerEmail, employee.Email) {
			return authorizationErr("employee owns the restaurant; transfer ownership or delete the restaurant first")
		}
		if principalID == "" && employee.PrincipalID != nil {
			principalID = *employee.PrincipalID
		}
	}

	principalDeleted := false
	if principalID != "" {
		if err := c.identity.DeletePrincipal(ctx, principalID); err != nil {
			return upstreamErr("delete principal", err)
		}
		principalDeleted = true
	}

	if err := c.store.DeleteEmployee(ctx, req.EmployeeID); err != nil {
		if principalDeleted {
			// The principal is already gone; the row outliving it must be
			// cleaned up by an operator or a retry.
			log.Error().Err(err).
				Str("employee_id", req.EmployeeID.String()).
				Str("principal_id", principalID).
				Msg("Employee deletion failed after principal removal")
			return partialFailureErr("delete employee", "principal already deleted", err)
		}
		if errors.Is(err, store.ErrNotFound) {
			return notFoundErr("employee not found")
		}
		return upstreamErr("delete employee", err)
	}

	log.Info().Str("employee_id", req.EmployeeID.String()).Msg("Employee offboarded")
	return nil
}
