package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/dmehra2102/prod-golang-projects/medibook/internal/domain"
	"github.com/dmehra2102/prod-golang-projects/medibook/internal/domain/prescription"
	"github.com/dmehra2102/prod-golang-projects/medibook/internal/domain/reminder"
	"github.com/dmehra2102/prod-golang-projects/medibook/pkg/metrics"
)

type ReminderService struct {
	repo             reminder.Repository
	prescriptionRepo prescription.Repository
	auditSvc         *AuditService
	metrics          *metrics.Collector
	log              *zap.Logger
	loc              *time.Location
	now              func() time.Time
}

func NewReminderService(
	repo reminder.Repository,
	prescriptionRepo prescription.Repository,
	auditSvc *AuditService,
	m *metrics.Collector,
	loc *time.Location,
	log *zap.Logger,
) *ReminderService {
	if loc == nil {
		loc = time.UTC
	}
	return &ReminderService{
		repo:             repo,
		prescriptionRepo: prescriptionRepo,
		auditSvc:         auditSvc,
		metrics:          m,
		log:              log,
		loc:              loc,
		now:              time.Now,
	}
}

func (s *ReminderService) HasActive(ctx context.Context, prescriptionID uuid.UUID) (bool, error) {
	return s.repo.HasActive(ctx, prescriptionID)
}

func (s *ReminderService) ListForPatient(ctx context.Context, patientID uuid.UUID) ([]*reminder.Reminder, error) {
	return s.repo.ListByPatient(ctx, patientID)
}

// ActivateForPrescription dates the prescription's inactive reminders
// starting tomorrow, frequency per day, and marks them active. A reminder
// count that does not match frequency × duration is logged and tolerated.
func (s *ReminderService) ActivateForPrescription(ctx context.Context, prescriptionID uuid.UUID) ([]*reminder.Reminder, error) {
	p, err := s.prescriptionRepo.GetByID(ctx, prescriptionID)
	if err != nil {
		return nil, err
	}

	pending, err := s.repo.ListByPrescription(ctx, prescriptionID, reminder.StatusInactive)
	if err != nil {
		return nil, fmt.Errorf("loading inactive reminders: %w", err)
	}
	if len(pending) == 0 {
		return nil, reminder.ErrNoInactiveReminders
	}

	if expected := p.ExpectedReminders(); len(pending) != expected {
		s.log.Error("reminder count mismatch",
			zap.String("prescription_id", prescriptionID.String()),
			zap.Int("found", len(pending)),
			zap.Int("expected", expected),
		)
	}

	tomorrow := s.now().In(s.loc).AddDate(0, 0, 1)
	activated := reminder.AssignDates(pending, tomorrow, p.Frequency, p.Duration)

	if err := s.repo.SaveActivated(ctx, activated); err != nil {
		return nil, fmt.Errorf("saving activated reminders: %w", err)
	}

	s.metrics.RemindersActivated.Add(float64(len(activated)))
	s.log.Info("reminders activated",
		zap.String("prescription_id", prescriptionID.String()),
		zap.Int("count", len(activated)),
	)
	s.auditSvc.LogAsync(ctx, AuditEntry{
		UserID:       p.PatientID,
		UserRole:     domain.RolePatient,
		Action:       domain.ActionUpdate,
		ResourceType: "reminders",
		ResourceID:   prescriptionID.String(),
		Changes:      `{"status":"active"}`,
	})

	return activated, nil
}

// ActivateForPatient is the HTTP entry point: the caller must own the prescription.
func (s *ReminderService) ActivateForPatient(ctx context.Context, patientID, prescriptionID uuid.UUID) ([]*reminder.Reminder, error) {
	p, err := s.prescriptionRepo.GetByID(ctx, prescriptionID)
	if err != nil {
		return nil, err
	}
	if p.PatientID != patientID {
		return nil, ErrForbidden
	}
	return s.ActivateForPrescription(ctx, prescriptionID)
}
