package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/dmehra2102/prod-golang-projects/medibook/internal/domain"
	"github.com/dmehra2102/prod-golang-projects/medibook/internal/domain/user"
)

type TokenIssuer interface {
	GenerateAccessToken(claims *domain.Claims) (*domain.Token, error)
}

type AuthService struct {
	userRepo user.Repository
	tokens   TokenIssuer
	auditSvc *AuditService
	log      *zap.Logger
	now      func() time.Time
	cost     int
}

func NewAuthService(userRepo user.Repository, tokens TokenIssuer, auditSvc *AuditService, log *zap.Logger) *AuthService {
	return &AuthService{
		userRepo: userRepo,
		tokens:   tokens,
		auditSvc: auditSvc,
		log:      log,
		now:      time.Now,
		cost:     bcrypt.DefaultCost,
	}
}

func (s *AuthService) RegisterPatient(ctx context.Context, cmd *user.RegisterPatientCommand) (*user.User, error) {
	if err := validationErr(cmd.Validate(s.now())); err != nil {
		return nil, err
	}
	dob := cmd.DateOfBirth
	return s.register(ctx, &user.User{
		Username:    cmd.Username,
		Role:        domain.RolePatient,
		FirstName:   cmd.FirstName,
		LastName:    cmd.LastName,
		PhoneNumber: cmd.PhoneNumber,
		DateOfBirth: &dob,
	}, cmd.Password)
}

func (s *AuthService) RegisterDoctor(ctx context.Context, cmd *user.RegisterDoctorCommand) (*user.User, error) {
	if err := validationErr(cmd.Validate()); err != nil {
		return nil, err
	}
	return s.register(ctx, &user.User{
		Username:       cmd.Username,
		Role:           domain.RoleDoctor,
		FirstName:      cmd.FirstName,
		LastName:       cmd.LastName,
		PhoneNumber:    cmd.PhoneNumber,
		Specialization: cmd.Specialization,
	}, cmd.Password)
}

func (s *AuthService) RegisterAdmin(ctx context.Context, cmd *user.RegisterAdminCommand) (*user.User, error) {
	if err := validationErr(cmd.Validate()); err != nil {
		return nil, err
	}
	return s.register(ctx, &user.User{
		Username: cmd.Username,
		Role:     domain.RoleAdmin,
	}, cmd.Password)
}

func (s *AuthService) register(ctx context.Context, u *user.User, password string) (*user.User, error) {
	exists, err := s.userRepo.ExistsByUsername(ctx, u.Username)
	if err != nil {
		return nil, fmt.Errorf("checking username: %w", err)
	}
	if exists {
		return nil, user.ErrUsernameTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}
	u.PasswordHash = string(hash)
	u.IsActive = true

	if err := s.userRepo.Create(ctx, u); err != nil {
		return nil, err
	}

	s.log.Info("user registered",
		zap.String("user_id", u.ID.String()),
		zap.String("role", string(u.Role)),
	)
	s.auditSvc.LogAsync(ctx, AuditEntry{
		UserID:       u.ID,
		UserRole:     u.Role,
		Action:       domain.ActionCreate,
		ResourceType: "user",
		ResourceID:   u.ID.String(),
	})

	return u, nil
}

func (s *AuthService) Login(ctx context.Context, username, password string, role domain.Role) (*domain.Token, error) {
	if !role.IsValid() {
		return nil, user.ErrInvalidRole
	}

	u, err := s.userRepo.GetByUsername(ctx, username, role)
	if err != nil {
		if !errors.Is(err, user.ErrUserNotFound) {
			return nil, fmt.Errorf("loading user: %w", err)
		}
		// Burn the same time as a real comparison so response latency does
		// not reveal whether the username exists.
		_, _ = bcrypt.GenerateFromPassword([]byte(password), s.cost)
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		s.log.Warn("failed login attempt",
			zap.String("username", username),
			zap.String("role", string(role)),
		)
		return nil, ErrInvalidCredentials
	}

	if !u.IsActive {
		return nil, ErrAccountInactive
	}

	token, err := s.tokens.GenerateAccessToken(&domain.Claims{
		UserID:   u.ID,
		Username: u.Username,
		Role:     u.Role,
	})
	if err != nil {
		s.log.Error("failed to generate access token", zap.Error(err))
		return nil, fmt.Errorf("generating token: %w", err)
	}

	if err := s.userRepo.TouchLastLogin(ctx, u.ID); err != nil {
		s.log.Warn("failed to record last login", zap.Error(err))
	}

	s.auditSvc.LogAsync(ctx, AuditEntry{
		UserID:       u.ID,
		UserRole:     u.Role,
		Action:       domain.ActionLogin,
		ResourceType: "session",
		ResourceID:   u.ID.String(),
	})

	return token, nil
}
