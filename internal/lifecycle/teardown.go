package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/shiftline/account-lifecycle-service/internal/model"
	"github.com/shiftline/account-lifecycle-service/internal/monitoring"
	"github.com/shiftline/account-lifecycle-service/internal/store"
)

// TeardownRequest identifies the restaurant to remove and the email claiming
// ownership of it.
type TeardownRequest struct {
	RestaurantID         uuid.UUID
	RequestingOwnerEmail string
}

func (r *TeardownRequest) validate() error {
	if r.RestaurantID == uuid.Nil {
		return validationErr("restaurant id is required")
	}
	if r.RequestingOwnerEmail == "" {
		return validationErr("requesting owner email is required")
	}
	return nil
}

// TeardownRestaurant irreversibly removes a restaurant and everything scoped
// to it. Per-principal deletion failures are logged and skipped rather than
// halting the flow: teardown optimizes for maximal forward progress, and a
// single unreachable identity must not block removing a whole business. All
// relational deletes run dependents-first so a crash mid-teardown leaves an
// orphaned-but-attributable restaurant row, never unowned schedule rows.
// Every step is a delete-if-present, so retrying a partial teardown is safe.
func (c *Coordinator) TeardownRestaurant(ctx context.Context, req TeardownRequest) error {
	if err := req.validate(); err != nil {
		monitoring.LifecycleOperations.WithLabelValues("teardown", "error").Inc()
		return err
	}
	start := time.Now()
	err := c.teardown(ctx, req)
	monitoring.TeardownDuration.Observe(time.Since(start).Seconds())
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	monitoring.LifecycleOperations.WithLabelValues("teardown", outcome).Inc()
	return err
}

func (c *Coordinator) teardown(ctx context.Context, req TeardownRequest) error {
	restaurant, err := c.store.GetRestaurant(ctx, req.RestaurantID)
	if err != nil {
		return upstreamErr("fetch restaurant", err)
	}
	if restaurant == nil {
		return notFoundErr("restaurant not found")
	}
	if !sameEmail(restaurant.OwnerEmail, req.RequestingOwnerEmail) {
		return authorizationErr("only the restaurant owner may delete it")
	}

	employees, err := c.store.ListEmployeesByRestaurant(ctx, req.RestaurantID)
	if err != nil {
		return upstreamErr("list employees", err)
	}

	var failedPrincipals []string
	for _, employee := range employees {
		if employee.PrincipalID == nil || *employee.PrincipalID == "" {
			continue
		}
		if err := c.identity.DeletePrincipal(ctx, *employee.PrincipalID); err != nil {
			log.Warn().Err(err).
				Str("principal_id", *employee.PrincipalID).
				Str("employee_id", employee.ID.String()).
				Msg("Principal deletion failed during teardown, continuing")
			failedPrincipals = append(failedPrincipals, *employee.PrincipalID)
		}
	}

	filter := map[string]any{"restaurant_id": req.RestaurantID}
	for _, table := range model.RestaurantScopedTables {
		if _, err := c.store.DeleteWhere(ctx, table, filter); err != nil {
			return upstreamErr("delete "+table, err)
		}
	}
	if _, err := c.store.DeleteWhere(ctx, "employees", filter); err != nil {
		return upstreamErr("delete employees", err)
	}

	// The restaurant row goes last; see the ordering note above.
	if err := c.store.DeleteRestaurant(ctx, req.RestaurantID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return notFoundErr("restaurant not found")
		}
		return upstreamErr("delete restaurant", err)
	}

	if len(failedPrincipals) > 0 {
		// Their employee rows are gone, so these are orphans now.
		monitoring.OrphanedPrincipals.Add(float64(len(failedPrincipals)))
		monitoring.Alert("principals left behind by teardown", map[string]string{
			"restaurant_id": req.RestaurantID.String(),
			"count":         fmt.Sprintf("%d", len(failedPrincipals)),
		})
		return partialFailureErr("delete principals",
			fmt.Sprintf("%d principal(s) could not be deleted", len(failedPrincipals)), nil)
	}

	log.Info().Str("restaurant_id", req.RestaurantID.String()).Msg("Restaurant torn down")
	return nil
}
