package user

import (
	"context"

	"github.com/google/uuid"

	"github.com/dmehra2102/prod-golang-projects/medibook/internal/domain"
)

type Repository interface {
	// Create persists a new account. Returns ErrUsernameTaken on duplicate username.
	Create(ctx context.Context, u *User) error

	// GetByUsername returns the active account with this username and role.
	GetByUsername(ctx context.Context, username string, role domain.Role) (*User, error)

	// GetByID returns ErrUserNotFound when no live account of that role exists.
	GetByID(ctx context.Context, id uuid.UUID, role domain.Role) (*User, error)

	// ListDoctorsBySpecialization compares trimmed, lower-cased values.
	ListDoctorsBySpecialization(ctx context.Context, specialization string) ([]*User, error)

	List(ctx context.Context, q *ListUsersQuery) (*PagedUsers, error)

	ExistsByUsername(ctx context.Context, username string) (bool, error)

	TouchLastLogin(ctx context.Context, id uuid.UUID) error

	SoftDelete(ctx context.Context, id uuid.UUID, role domain.Role) error
}
