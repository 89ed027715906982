package lifecycle

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/shiftline/account-lifecycle-service/internal/monitoring"
)

// step is one remote mutation within a flow. compensate, when set, undoes the
// mutation if a later step fails.
type step struct {
	name       string
	run        func(context.Context) error
	compensate func(context.Context) error
}

// runSteps executes steps in order. When a step fails, the compensations of
// the already-completed steps fire in reverse order and the failing step's
// error is returned. A compensation that itself fails leaves partial state
// behind and is surfaced as KindPartialFailure so operators can reconcile it.
func runSteps(ctx context.Context, steps []step) error {
	completed := make([]step, 0, len(steps))
	for _, s := range steps {
		err := s.run(ctx)
		if err == nil {
			completed = append(completed, s)
			continue
		}
		for i := len(completed) - 1; i >= 0; i-- {
			c := completed[i]
			if c.compensate == nil {
				continue
			}
			if cerr := c.compensate(ctx); cerr != nil {
				log.Error().Err(cerr).Str("step", c.name).Msg("Compensation failed")
				monitoring.Alert("compensation failed", map[string]string{"step": c.name})
				return partialFailureErr(c.name, "compensation failed", err)
			}
			log.Info().Str("step", c.name).Msg("Compensated after downstream failure")
		}
		return err
	}
	return nil
}
