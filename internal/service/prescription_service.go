package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/dmehra2102/prod-golang-projects/medibook/internal/domain"
	"github.com/dmehra2102/prod-golang-projects/medibook/internal/domain/prescription"
	"github.com/dmehra2102/prod-golang-projects/medibook/internal/domain/reminder"
	"github.com/dmehra2102/prod-golang-projects/medibook/internal/domain/user"
	"github.com/dmehra2102/prod-golang-projects/medibook/pkg/metrics"
)

type PrescriptionService struct {
	repo     prescription.Repository
	userRepo user.Repository
	auditSvc *AuditService
	metrics  *metrics.Collector
	log      *zap.Logger
}

func NewPrescriptionService(
	repo prescription.Repository,
	userRepo user.Repository,
	auditSvc *AuditService,
	m *metrics.Collector,
	log *zap.Logger,
) *PrescriptionService {
	return &PrescriptionService{repo: repo, userRepo: userRepo, auditSvc: auditSvc, metrics: m, log: log}
}

// Create issues a prescription and pre-generates its inactive dose reminders,
// frequency × duration of them.
func (s *PrescriptionService) Create(ctx context.Context, cmd *prescription.CreatePrescriptionCommand) (*prescription.Prescription, error) {
	if err := validationErr(cmd.Validate()); err != nil {
		return nil, err
	}

	if _, err := s.userRepo.GetByID(ctx, cmd.PatientID, domain.RolePatient); err != nil {
		return nil, err
	}

	p := &prescription.Prescription{
		PatientID:      cmd.PatientID,
		DoctorID:       cmd.DoctorID,
		MedicationName: cmd.MedicationName,
		Dosage:         cmd.Dosage,
		Frequency:      cmd.Frequency,
		Duration:       cmd.Duration,
		Instructions:   cmd.Instructions,
		IsActive:       true,
	}

	reminders, err := reminder.Schedule(uuid.Nil, cmd.PatientID, cmd.Frequency, cmd.Duration)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, p, reminders); err != nil {
		s.log.Error("failed to create prescription", zap.Error(err))
		return nil, fmt.Errorf("creating prescription: %w", err)
	}

	s.metrics.PrescriptionsIssued.Inc()
	s.log.Info("prescription created",
		zap.String("prescription_id", p.ID.String()),
		zap.Int("reminders", len(reminders)),
	)
	s.auditSvc.LogAsync(ctx, AuditEntry{
		UserID:       cmd.DoctorID,
		UserRole:     domain.RoleDoctor,
		Action:       domain.ActionCreate,
		ResourceType: "prescription",
		ResourceID:   p.ID.String(),
	})

	return p, nil
}

// Get returns the prescription to its prescribing doctor, its patient or an admin.
func (s *PrescriptionService) Get(ctx context.Context, caller *domain.Claims, id uuid.UUID) (*prescription.Prescription, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	switch caller.Role {
	case domain.RoleAdmin:
	case domain.RoleDoctor:
		if p.DoctorID != caller.UserID {
			return nil, ErrForbidden
		}
	case domain.RolePatient:
		if p.PatientID != caller.UserID {
			return nil, ErrForbidden
		}
	default:
		return nil, ErrForbidden
	}
	return p, nil
}

func (s *PrescriptionService) Update(ctx context.Context, doctorID, id uuid.UUID, cmd *prescription.UpdatePrescriptionCommand) (*prescription.Prescription, error) {
	if err := s.ownedBy(ctx, doctorID, id); err != nil {
		return nil, err
	}

	p, err := s.repo.Update(ctx, id, cmd.Fields())
	if err != nil {
		return nil, err
	}

	s.auditSvc.LogAsync(ctx, AuditEntry{
		UserID:       doctorID,
		UserRole:     domain.RoleDoctor,
		Action:       domain.ActionUpdate,
		ResourceType: "prescription",
		ResourceID:   id.String(),
	})
	return p, nil
}

func (s *PrescriptionService) Delete(ctx context.Context, doctorID, id uuid.UUID) error {
	if err := s.ownedBy(ctx, doctorID, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.auditSvc.LogAsync(ctx, AuditEntry{
		UserID:       doctorID,
		UserRole:     domain.RoleDoctor,
		Action:       domain.ActionDelete,
		ResourceType: "prescription",
		ResourceID:   id.String(),
	})
	return nil
}

func (s *PrescriptionService) ForPatientDoctor(ctx context.Context, patientID, doctorID uuid.UUID) ([]*prescription.Prescription, error) {
	return s.repo.ListByPatientDoctor(ctx, patientID, doctorID)
}

func (s *PrescriptionService) MarkInactive(ctx context.Context, id uuid.UUID) error {
	return s.repo.MarkInactive(ctx, id)
}

func (s *PrescriptionService) ownedBy(ctx context.Context, doctorID, id uuid.UUID) error {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if p.DoctorID != doctorID {
		return ErrForbidden
	}
	return nil
}
