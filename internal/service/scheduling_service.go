package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/dmehra2102/prod-golang-projects/medibook/internal/domain"
	"github.com/dmehra2102/prod-golang-projects/medibook/internal/domain/timeslot"
)

type SchedulingService struct {
	repo     timeslot.Repository
	auditSvc *AuditService
	log      *zap.Logger
}

func NewSchedulingService(repo timeslot.Repository, auditSvc *AuditService, log *zap.Logger) *SchedulingService {
	return &SchedulingService{repo: repo, auditSvc: auditSvc, log: log}
}

func (s *SchedulingService) CreateSlot(ctx context.Context, cmd *timeslot.CreateTimeSlotCommand) (*timeslot.TimeSlot, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	slot := &timeslot.TimeSlot{
		DoctorID:  cmd.DoctorID,
		StartTime: cmd.StartTime,
		EndTime:   cmd.EndTime,
		Status:    timeslot.StatusAvailable,
	}
	if err := s.repo.Create(ctx, slot); err != nil {
		return nil, fmt.Errorf("creating time slot: %w", err)
	}

	s.auditSvc.LogAsync(ctx, AuditEntry{
		UserID:       cmd.DoctorID,
		UserRole:     domain.RoleDoctor,
		Action:       domain.ActionCreate,
		ResourceType: "time_slot",
		ResourceID:   slot.ID.String(),
	})
	return slot, nil
}

// AvailableSlots lists a doctor's open slots ordered by start time.
func (s *SchedulingService) AvailableSlots(ctx context.Context, doctorID uuid.UUID) ([]*timeslot.TimeSlot, error) {
	return s.repo.ListAvailableByDoctor(ctx, doctorID)
}

func (s *SchedulingService) MarkBooked(ctx context.Context, slotID uuid.UUID) error {
	return s.repo.MarkBooked(ctx, slotID)
}
