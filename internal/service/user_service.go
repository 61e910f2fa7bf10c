package service

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/dmehra2102/prod-golang-projects/medibook/internal/domain"
	"github.com/dmehra2102/prod-golang-projects/medibook/internal/domain/user"
)

// UserService is the read side of the user directory plus the admin
// operations on accounts.
type UserService struct {
	repo     user.Repository
	auditSvc *AuditService
	log      *zap.Logger
}

func NewUserService(repo user.Repository, auditSvc *AuditService, log *zap.Logger) *UserService {
	return &UserService{repo: repo, auditSvc: auditSvc, log: log}
}

func (s *UserService) DoctorsBySpecialization(ctx context.Context, specialization string) ([]*user.User, error) {
	specialization = strings.TrimSpace(specialization)
	if specialization == "" {
		return nil, &ValidationError{Fields: []string{"specialization is required"}}
	}
	return s.repo.ListDoctorsBySpecialization(ctx, specialization)
}

func (s *UserService) DoctorByID(ctx context.Context, id uuid.UUID) (*user.User, error) {
	return s.repo.GetByID(ctx, id, domain.RoleDoctor)
}

func (s *UserService) PatientByID(ctx context.Context, id uuid.UUID) (*user.User, error) {
	return s.repo.GetByID(ctx, id, domain.RolePatient)
}

func (s *UserService) ListDoctors(ctx context.Context, search string, page, pageSize int) (*user.PagedUsers, error) {
	return s.repo.List(ctx, &user.ListUsersQuery{Role: domain.RoleDoctor, Search: search, Page: page, PageSize: pageSize})
}

func (s *UserService) ListPatients(ctx context.Context, search string, page, pageSize int) (*user.PagedUsers, error) {
	return s.repo.List(ctx, &user.ListUsersQuery{Role: domain.RolePatient, Search: search, Page: page, PageSize: pageSize})
}

func (s *UserService) DeleteDoctor(ctx context.Context, adminID, id uuid.UUID) error {
	return s.delete(ctx, adminID, id, domain.RoleDoctor)
}

func (s *UserService) DeletePatient(ctx context.Context, adminID, id uuid.UUID) error {
	return s.delete(ctx, adminID, id, domain.RolePatient)
}

func (s *UserService) delete(ctx context.Context, adminID, id uuid.UUID, role domain.Role) error {
	if err := s.repo.SoftDelete(ctx, id, role); err != nil {
		return err
	}

	s.log.Info("user deleted", zap.String("user_id", id.String()), zap.String("role", string(role)))
	s.auditSvc.LogAsync(ctx, AuditEntry{
		UserID:       adminID,
		UserRole:     domain.RoleAdmin,
		Action:       domain.ActionDelete,
		ResourceType: string(role),
		ResourceID:   id.String(),
	})
	return nil
}
