package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dmehra2102/prod-golang-projects/medibook/internal/domain"
	"github.com/dmehra2102/prod-golang-projects/medibook/internal/domain/user"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func notFoundFor(role domain.Role) error {
	switch role {
	case domain.RoleDoctor:
		return user.ErrDoctorNotFound
	case domain.RolePatient:
		return user.ErrPatientNotFound
	default:
		return user.ErrUserNotFound
	}
}

func (r *UserRepository) Create(ctx context.Context, u *user.User) error {
	err := r.db.WithContext(ctx).Create(u).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return user.ErrUsernameTaken
	}
	if err != nil {
		return fmt.Errorf("inserting user: %w", err)
	}
	return nil
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string, role domain.Role) (*user.User, error) {
	var u user.User
	err := r.db.WithContext(ctx).
		Where("username = ? AND role = ? AND deleted_at IS NULL", username, role).
		First(&u).Error
	if isNotFound(err) {
		return nil, user.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying user by username: %w", err)
	}
	return &u, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID, role domain.Role) (*user.User, error) {
	var u user.User
	err := r.db.WithContext(ctx).
		Where("id = ? AND role = ? AND deleted_at IS NULL", id, role).
		First(&u).Error
	if isNotFound(err) {
		return nil, notFoundFor(role)
	}
	if err != nil {
		return nil, fmt.Errorf("querying user by id: %w", err)
	}
	return &u, nil
}

func (r *UserRepository) ListDoctorsBySpecialization(ctx context.Context, specialization string) ([]*user.User, error) {
	var doctors []*user.User
	err := r.db.WithContext(ctx).
		Where("role = ? AND deleted_at IS NULL AND is_active = ? AND lower(trim(specialization)) = ?",
			domain.RoleDoctor, true, strings.ToLower(strings.TrimSpace(specialization))).
		Order("created_at").
		Find(&doctors).Error
	if err != nil {
		return nil, fmt.Errorf("listing doctors by specialization: %w", err)
	}
	return doctors, nil
}

func (r *UserRepository) List(ctx context.Context, q *user.ListUsersQuery) (*user.PagedUsers, error) {
	page, pageSize := normalizePage(q.Page, q.PageSize)

	query := r.db.WithContext(ctx).Model(&user.User{}).
		Where("role = ? AND deleted_at IS NULL", q.Role)

	if s := strings.TrimSpace(q.Search); s != "" {
		like := "%" + s + "%"
		query = query.Where(
			"username ILIKE ? OR first_name ILIKE ? OR last_name ILIKE ? OR specialization ILIKE ?",
			like, like, like, like,
		)
	}

	var total int64
	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, fmt.Errorf("counting users: %w", err)
	}

	var users []*user.User
	err := query.Session(&gorm.Session{}).
		Order("created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&users).Error
	if err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}

	return &user.PagedUsers{
		Users:      users,
		TotalCount: total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages(total, pageSize),
	}, nil
}

func (r *UserRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&user.User{}).
		Where("username = ?", username).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("checking username: %w", err)
	}
	return count > 0, nil
}

func (r *UserRepository) TouchLastLogin(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&user.User{}).
		Where("id = ?", id).
		Update("last_login_at", time.Now().UTC()).Error
}

func (r *UserRepository) SoftDelete(ctx context.Context, id uuid.UUID, role domain.Role) error {
	result := r.db.WithContext(ctx).Model(&user.User{}).
		Where("id = ? AND role = ? AND deleted_at IS NULL", id, role).
		Updates(map[string]any{
			"deleted_at": time.Now().UTC(),
			"is_active":  false,
		})
	if result.Error != nil {
		return fmt.Errorf("deleting user: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return notFoundFor(role)
	}
	return nil
}
