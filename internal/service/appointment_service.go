package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"

	"github.com/dmehra2102/prod-golang-projects/medibook/internal/domain"
	"github.com/dmehra2102/prod-golang-projects/medibook/internal/domain/appointment"
	"github.com/dmehra2102/prod-golang-projects/medibook/internal/domain/user"
	"github.com/dmehra2102/prod-golang-projects/medibook/pkg/metrics"
)

type AppointmentService struct {
	repo     appointment.Repository
	userRepo user.Repository
	auditSvc *AuditService
	metrics  *metrics.Collector
	log      *zap.Logger
	now      func() time.Time
}

func NewAppointmentService(
	repo appointment.Repository,
	userRepo user.Repository,
	auditSvc *AuditService,
	m *metrics.Collector,
	log *zap.Logger,
) *AppointmentService {
	return &AppointmentService{
		repo:     repo,
		userRepo: userRepo,
		auditSvc: auditSvc,
		metrics:  m,
		log:      log,
		now:      time.Now,
	}
}

// Book reserves a time slot for the patient. The slot checks and both
// writes happen inside the repository transaction.
func (s *AppointmentService) Book(ctx context.Context, cmd *appointment.BookCommand) (*appointment.Appointment, error) {
	ctx, span := otel.Tracer("medibook/service").Start(ctx, "AppointmentService.Book")
	defer span.End()
	span.SetAttributes(
		attribute.String("doctor.id", cmd.DoctorID.String()),
		attribute.String("time_slot.id", cmd.TimeSlotID.String()),
	)

	if _, err := s.userRepo.GetByID(ctx, cmd.DoctorID, domain.RoleDoctor); err != nil {
		span.RecordError(err)
		return nil, err
	}

	date := cmd.AppointmentDate
	if date.IsZero() {
		date = s.now()
	}

	a := &appointment.Appointment{
		PatientID:       cmd.PatientID,
		DoctorID:        cmd.DoctorID,
		TimeSlotID:      cmd.TimeSlotID,
		AppointmentDate: date,
		IsActive:        true,
	}
	if err := s.repo.Book(ctx, a); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "booking failed")
		return nil, err
	}

	s.metrics.AppointmentsBooked.Inc()
	s.log.Info("appointment booked",
		zap.String("appointment_id", a.ID.String()),
		zap.String("patient_id", a.PatientID.String()),
		zap.String("doctor_id", a.DoctorID.String()),
	)
	s.auditSvc.LogAsync(ctx, AuditEntry{
		UserID:       cmd.PatientID,
		UserRole:     domain.RolePatient,
		Action:       domain.ActionCreate,
		ResourceType: "appointment",
		ResourceID:   a.ID.String(),
	})

	return a, nil
}

func (s *AppointmentService) ListDoctorAppointments(ctx context.Context, doctorID uuid.UUID, page, pageSize int) (*appointment.PagedAppointments, error) {
	return s.repo.List(ctx, &appointment.ListAppointmentsQuery{DoctorID: &doctorID, Page: page, PageSize: pageSize})
}

func (s *AppointmentService) ListAll(ctx context.Context, page, pageSize int) (*appointment.PagedAppointments, error) {
	return s.repo.List(ctx, &appointment.ListAppointmentsQuery{Page: page, PageSize: pageSize})
}

// MarkInactive closes a visit. Only the appointment's own doctor may do so.
func (s *AppointmentService) MarkInactive(ctx context.Context, doctorID, id uuid.UUID) (*appointment.Appointment, error) {
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if a.DoctorID != doctorID {
		return nil, ErrForbidden
	}
	if !a.IsActive {
		return nil, appointment.ErrAlreadyInactive
	}

	if err := s.repo.MarkInactive(ctx, id); err != nil {
		return nil, err
	}
	a.IsActive = false

	s.auditSvc.LogAsync(ctx, AuditEntry{
		UserID:       doctorID,
		UserRole:     domain.RoleDoctor,
		Action:       domain.ActionUpdate,
		ResourceType: "appointment",
		ResourceID:   id.String(),
		Changes:      `{"is_active":false}`,
	})
	return a, nil
}

func (s *AppointmentService) LatestInactive(ctx context.Context, patientID uuid.UUID) (*appointment.Appointment, error) {
	return s.repo.LatestInactiveByPatient(ctx, patientID)
}
