package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/flightdeck/flight-auth/internal/domain"
)

// UserRepository resolves token subjects to live accounts. This subsystem
// holds a read-only view of the users table; writes belong to the
// registration service.
type UserRepository interface {
	GetActiveByEmail(ctx context.Context, email string) (*domain.User, error)
}

type userRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository returns a Postgres-backed implementation.
func NewUserRepository(pool *pgxpool.Pool) UserRepository {
	return &userRepository{pool: pool}
}

func (r *userRepository) GetActiveByEmail(ctx context.Context, email string) (*domain.User, error) {
	const query = `
        SELECT id, name, email, status, created_at, updated_at
        FROM users WHERE email=$1 AND status=$2`

	var user domain.User
	if err := r.pool.QueryRow(ctx, query, email, domain.UserStatusActive).Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.Status,
		&user.CreatedAt,
		&user.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &user, nil
}
