package lifecycle

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/shiftline/account-lifecycle-service/internal/identity"
	"github.com/shiftline/account-lifecycle-service/internal/model"
	"github.com/shiftline/account-lifecycle-service/internal/notify"
)

// Store is the slice of the relational store the coordinator needs. The
// production implementation is store.Repository; tests inject fakes.
type Store interface {
	CreateEmployee(ctx context.Context, e *model.Employee) error
	GetEmployeeByID(ctx context.Context, id uuid.UUID) (*model.Employee, error)
	DeleteEmployee(ctx context.Context, id uuid.UUID) error
	ListEmployeesByRestaurant(ctx context.Context, restaurantID uuid.UUID) ([]model.Employee, error)
	GetRestaurant(ctx context.Context, id uuid.UUID) (*model.Restaurant, error)
	DeleteRestaurant(ctx context.Context, id uuid.UUID) error
	DeleteWhere(ctx context.Context, table string, filter map[string]any) (int64, error)
}

// Coordinator sequences account lifecycle flows across the identity provider
// and the relational store. It holds no state of its own; consistency comes
// from ordered mutations, compensation and idempotent deletes, not from
// transactions.
type Coordinator struct {
	identity identity.Store
	store    Store
	notifier notify.Notifier
}

// NewCoordinator wires a Coordinator with its collaborators.
func NewCoordinator(identityStore identity.Store, store Store, notifier notify.Notifier) *Coordinator {
	return &Coordinator{
		identity: identityStore,
		store:    store,
		notifier: notifier,
	}
}

// sameEmail compares addresses the way the stores do: case-insensitively.
func sameEmail(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}

// isValidEmail performs a basic email validation
func isValidEmail(email string) bool {
	if len(email) < 3 || !strings.Contains(email, "@") || !strings.Contains(email, ".") {
		return false
	}
	return true
}
