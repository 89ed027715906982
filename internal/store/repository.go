package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/shiftline/account-lifecycle-service/internal/model"
)

type RedisClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	SetEx(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
	Close() error
}

const restaurantCacheTTL = 1 * time.Hour

// Repository handles database operations for restaurants, employees and the
// restaurant-scoped schedule tables.
type Repository struct {
	pool  *pgxpool.Pool
	redis RedisClient
}

// NewRepository creates a Repository backed by a pgx pool and a Redis cache.
func NewRepository(ctx context.Context, dsn, redisAddr string) (*Repository, error) {
	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to parse DSN: %v", err)
	}
	config.MaxConns = 20
	config.MinConns = 5
	config.MaxConnLifetime = 30 * time.Minute
	config.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %v", err)
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     redisAddr,
		Password: "",
		DB:       0,
	})

	return &Repository{pool: pool, redis: rdb}, nil
}

// Close releases the database pool and the Redis connection.
func (r *Repository) Close() error {
	r.pool.Close()
	return r.redis.Close()
}

// CreateEmployee inserts a new employee row. A unique constraint violation on
// the email column surfaces as an error classifiable with IsUniqueViolation.
func (r *Repository) CreateEmployee(ctx context.Context, e *model.Employee) error {
	e.ID = uuid.New()
	e.CreatedAt = time.Now()
	e.UpdatedAt = e.CreatedAt

	query := `INSERT INTO employees (id, restaurant_id, principal_id, first_name, last_name, email, role, position, hourly_rate, hire_date, status, created_at, updated_at)
              VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`
	_, err := r.pool.Exec(ctx, query,
		e.ID, e.RestaurantID, e.PrincipalID, e.FirstName, e.LastName, e.Email,
		e.Role, e.Position, e.HourlyRate, e.HireDate, e.Status, e.CreatedAt, e.UpdatedAt)
	return mapPostgresError(err)
}

// GetEmployeeByID retrieves an employee by ID, or nil if absent.
func (r *Repository) GetEmployeeByID(ctx context.Context, id uuid.UUID) (*model.Employee, error) {
	query := `SELECT id, restaurant_id, principal_id, first_name, last_name, email, role, position, hourly_rate, hire_date, status, created_at, updated_at
              FROM employees WHERE id = $1`
	e := &model.Employee{}
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&e.ID, &e.RestaurantID, &e.PrincipalID, &e.FirstName, &e.LastName, &e.Email,
		&e.Role, &e.Position, &e.HourlyRate, &e.HireDate, &e.Status, &e.CreatedAt, &e.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, mapPostgresError(err)
	}
	return e, nil
}

// GetEmployeeByEmail retrieves an employee by email, or nil if absent.
func (r *Repository) GetEmployeeByEmail(ctx context.Context, email string) (*model.Employee, error) {
	query := `SELECT id, restaurant_id, principal_id, first_name, last_name, email, role, position, hourly_rate, hire_date, status, created_at, updated_at
              FROM employees WHERE email = $1`
	e := &model.Employee{}
	err := r.pool.QueryRow(ctx, query, email).Scan(
		&e.ID, &e.RestaurantID, &e.PrincipalID, &e.FirstName, &e.LastName, &e.Email,
		&e.Role, &e.Position, &e.HourlyRate, &e.HireDate, &e.Status, &e.CreatedAt, &e.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, mapPostgresError(err)
	}
	return e, nil
}

// ListEmployeesByRestaurant returns all employees of a restaurant.
func (r *Repository) ListEmployeesByRestaurant(ctx context.Context, restaurantID uuid.UUID) ([]model.Employee, error) {
	query := `SELECT id, restaurant_id, principal_id, first_name, last_name, email, role, position, hourly_rate, hire_date, status, created_at, updated_at
              FROM employees WHERE restaurant_id = $1`
	rows, err := r.pool.Query(ctx, query, restaurantID)
	if err != nil {
		return nil, mapPostgresError(err)
	}
	defer rows.Close()

	var employees []model.Employee
	for rows.Next() {
		var e model.Employee
		if err := rows.Scan(
			&e.ID, &e.RestaurantID, &e.PrincipalID, &e.FirstName, &e.LastName, &e.Email,
			&e.Role, &e.Position, &e.HourlyRate, &e.HireDate, &e.Status, &e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, err
		}
		employees = append(employees, e)
	}
	return employees, rows.Err()
}

// DeleteEmployee removes one employee row. Returns ErrNotFound when no row
// matched.
func (r *Repository) DeleteEmployee(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM employees WHERE id = $1`, id)
	if err != nil {
		return mapPostgresError(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// GetRestaurant retrieves a restaurant by ID, or nil if absent. Results are
// cached in Redis; mutations invalidate the entry.
func (r *Repository) GetRestaurant(ctx context.Context, id uuid.UUID) (*model.Restaurant, error) {
	key := fmt.Sprintf("restaurant:%s", id.String())
	cached, err := r.redis.Get(ctx, key).Result()
	if err == nil {
		restaurant := &model.Restaurant{}
		if err := json.Unmarshal([]byte(cached), restaurant); err == nil {
			return restaurant, nil
		}
	}

	query := `SELECT id, name, owner_email, timezone, created_at, updated_at
              FROM restaurants WHERE id = $1`
	restaurant := &model.Restaurant{}
	err = r.pool.QueryRow(ctx, query, id).Scan(
		&restaurant.ID, &restaurant.Name, &restaurant.OwnerEmail, &restaurant.Timezone,
		&restaurant.CreatedAt, &restaurant.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, mapPostgresError(err)
	}

	if data, err := json.Marshal(restaurant); err == nil {
		r.redis.SetEx(ctx, key, data, restaurantCacheTTL)
	}
	return restaurant, nil
}

// DeleteRestaurant removes the restaurant row itself. Callers are expected to
// have removed all restaurant-scoped rows first. Returns ErrNotFound when no
// row matched.
func (r *Repository) DeleteRestaurant(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM restaurants WHERE id = $1`, id)
	if err != nil {
		return mapPostgresError(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	r.redis.Del(ctx, fmt.Sprintf("restaurant:%s", id.String()))
	return nil
}

// DeleteWhere deletes rows from a restaurant-scoped table matching an
// equality filter and returns the number of rows removed. Deleting zero rows
// is not an error, which keeps teardown retries idempotent.
func (r *Repository) DeleteWhere(ctx context.Context, table string, filter map[string]any) (int64, error) {
	query, args, err := buildDeleteQuery(table, filter)
	if err != nil {
		return 0, err
	}
	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return 0, mapPostgresError(err)
	}
	return tag.RowsAffected(), nil
}

// deletableTables is the closed set of tables DeleteWhere may touch.
var deletableTables = func() map[string]bool {
	m := map[string]bool{"employees": true}
	for _, t := range model.RestaurantScopedTables {
		m[t] = true
	}
	return m
}()

func buildDeleteQuery(table string, filter map[string]any) (string, []any, error) {
	if !deletableTables[table] {
		return "", nil, fmt.Errorf("table %q is not deletable", table)
	}
	if len(filter) == 0 {
		return "", nil, fmt.Errorf("refusing to delete from %s without a filter", table)
	}

	columns := make([]string, 0, len(filter))
	for col := range filter {
		if !isIdentifier(col) {
			return "", nil, fmt.Errorf("invalid filter column %q", col)
		}
		columns = append(columns, col)
	}
	sort.Strings(columns)

	var b strings.Builder
	args := make([]any, 0, len(filter))
	fmt.Fprintf(&b, "DELETE FROM %s WHERE ", table)
	for i, col := range columns {
		if i > 0 {
			b.WriteString(" AND ")
		}
		fmt.Fprintf(&b, "%s = $%d", col, i+1)
		args = append(args, filter[col])
	}
	return b.String(), args, nil
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !(r >= 'a' && r <= 'z') && !(r >= '0' && r <= '9') && r != '_' {
			return false
		}
	}
	return true
}
