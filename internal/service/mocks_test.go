package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	"github.com/dmehra2102/prod-golang-projects/medibook/internal/domain"
	"github.com/dmehra2102/prod-golang-projects/medibook/internal/domain/appointment"
	"github.com/dmehra2102/prod-golang-projects/medibook/internal/domain/prescription"
	"github.com/dmehra2102/prod-golang-projects/medibook/internal/domain/reminder"
	"github.com/dmehra2102/prod-golang-projects/medibook/internal/domain/timeslot"
	"github.com/dmehra2102/prod-golang-projects/medibook/internal/domain/user"
	"github.com/dmehra2102/prod-golang-projects/medibook/pkg/metrics"
)

type nopAuditRepo struct{}

func (nopAuditRepo) Create(context.Context, *domain.AuditLog) error { return nil }

func newTestAudit(t *testing.T, m *metrics.Collector) *AuditService {
	t.Helper()
	svc := NewAuditService(nopAuditRepo{}, m, zap.NewNop())
	t.Cleanup(svc.Shutdown)
	return svc
}

func newTestMetrics() *metrics.Collector {
	return metrics.NewCollector("test", prometheus.NewRegistry())
}

type mockUserRepo struct{ mock.Mock }

func (m *mockUserRepo) Create(ctx context.Context, u *user.User) error {
	args := m.Called(ctx, u)
	if args.Error(0) == nil && u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return args.Error(0)
}

func (m *mockUserRepo) GetByUsername(ctx context.Context, username string, role domain.Role) (*user.User, error) {
	args := m.Called(ctx, username, role)
	u, _ := args.Get(0).(*user.User)
	return u, args.Error(1)
}

func (m *mockUserRepo) GetByID(ctx context.Context, id uuid.UUID, role domain.Role) (*user.User, error) {
	args := m.Called(ctx, id, role)
	u, _ := args.Get(0).(*user.User)
	return u, args.Error(1)
}

func (m *mockUserRepo) ListDoctorsBySpecialization(ctx context.Context, specialization string) ([]*user.User, error) {
	args := m.Called(ctx, specialization)
	us, _ := args.Get(0).([]*user.User)
	return us, args.Error(1)
}

func (m *mockUserRepo) List(ctx context.Context, q *user.ListUsersQuery) (*user.PagedUsers, error) {
	args := m.Called(ctx, q)
	p, _ := args.Get(0).(*user.PagedUsers)
	return p, args.Error(1)
}

func (m *mockUserRepo) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	args := m.Called(ctx, username)
	return args.Bool(0), args.Error(1)
}

func (m *mockUserRepo) TouchLastLogin(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockUserRepo) SoftDelete(ctx context.Context, id uuid.UUID, role domain.Role) error {
	return m.Called(ctx, id, role).Error(0)
}

type mockTimeSlotRepo struct{ mock.Mock }

func (m *mockTimeSlotRepo) Create(ctx context.Context, s *timeslot.TimeSlot) error {
	return m.Called(ctx, s).Error(0)
}

func (m *mockTimeSlotRepo) GetByID(ctx context.Context, id uuid.UUID) (*timeslot.TimeSlot, error) {
	args := m.Called(ctx, id)
	s, _ := args.Get(0).(*timeslot.TimeSlot)
	return s, args.Error(1)
}

func (m *mockTimeSlotRepo) ListAvailableByDoctor(ctx context.Context, doctorID uuid.UUID) ([]*timeslot.TimeSlot, error) {
	args := m.Called(ctx, doctorID)
	s, _ := args.Get(0).([]*timeslot.TimeSlot)
	return s, args.Error(1)
}

func (m *mockTimeSlotRepo) MarkBooked(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

type mockAppointmentRepo struct{ mock.Mock }

func (m *mockAppointmentRepo) Book(ctx context.Context, a *appointment.Appointment) error {
	args := m.Called(ctx, a)
	if args.Error(0) == nil {
		a.ID = uuid.New()
	}
	return args.Error(0)
}

func (m *mockAppointmentRepo) GetByID(ctx context.Context, id uuid.UUID) (*appointment.Appointment, error) {
	args := m.Called(ctx, id)
	a, _ := args.Get(0).(*appointment.Appointment)
	return a, args.Error(1)
}

func (m *mockAppointmentRepo) List(ctx context.Context, q *appointment.ListAppointmentsQuery) (*appointment.PagedAppointments, error) {
	args := m.Called(ctx, q)
	p, _ := args.Get(0).(*appointment.PagedAppointments)
	return p, args.Error(1)
}

func (m *mockAppointmentRepo) MarkInactive(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockAppointmentRepo) LatestInactiveByPatient(ctx context.Context, patientID uuid.UUID) (*appointment.Appointment, error) {
	args := m.Called(ctx, patientID)
	a, _ := args.Get(0).(*appointment.Appointment)
	return a, args.Error(1)
}

type mockPrescriptionRepo struct{ mock.Mock }

func (m *mockPrescriptionRepo) Create(ctx context.Context, p *prescription.Prescription, reminders []*reminder.Reminder) error {
	args := m.Called(ctx, p, reminders)
	if args.Error(0) == nil {
		p.ID = uuid.New()
	}
	return args.Error(0)
}

func (m *mockPrescriptionRepo) GetByID(ctx context.Context, id uuid.UUID) (*prescription.Prescription, error) {
	args := m.Called(ctx, id)
	p, _ := args.Get(0).(*prescription.Prescription)
	return p, args.Error(1)
}

func (m *mockPrescriptionRepo) Update(ctx context.Context, id uuid.UUID, fields map[string]any) (*prescription.Prescription, error) {
	args := m.Called(ctx, id, fields)
	p, _ := args.Get(0).(*prescription.Prescription)
	return p, args.Error(1)
}

func (m *mockPrescriptionRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockPrescriptionRepo) ListByPatientDoctor(ctx context.Context, patientID, doctorID uuid.UUID) ([]*prescription.Prescription, error) {
	args := m.Called(ctx, patientID, doctorID)
	p, _ := args.Get(0).([]*prescription.Prescription)
	return p, args.Error(1)
}

func (m *mockPrescriptionRepo) MarkInactive(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

type mockReminderRepo struct{ mock.Mock }

func (m *mockReminderRepo) ListByPrescription(ctx context.Context, prescriptionID uuid.UUID, status reminder.Status) ([]*reminder.Reminder, error) {
	args := m.Called(ctx, prescriptionID, status)
	r, _ := args.Get(0).([]*reminder.Reminder)
	return r, args.Error(1)
}

func (m *mockReminderRepo) HasActive(ctx context.Context, prescriptionID uuid.UUID) (bool, error) {
	args := m.Called(ctx, prescriptionID)
	return args.Bool(0), args.Error(1)
}

func (m *mockReminderRepo) SaveActivated(ctx context.Context, reminders []*reminder.Reminder) error {
	return m.Called(ctx, reminders).Error(0)
}

func (m *mockReminderRepo) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*reminder.Reminder, error) {
	args := m.Called(ctx, patientID)
	r, _ := args.Get(0).([]*reminder.Reminder)
	return r, args.Error(1)
}

func (m *mockReminderRepo) ListDue(ctx context.Context, date time.Time, clock string, limit int) ([]*reminder.DueReminder, error) {
	args := m.Called(ctx, date, clock, limit)
	r, _ := args.Get(0).([]*reminder.DueReminder)
	return r, args.Error(1)
}

func (m *mockReminderRepo) MarkSent(ctx context.Context, ids []uuid.UUID) error {
	return m.Called(ctx, ids).Error(0)
}

type mockTokenIssuer struct{ mock.Mock }

func (m *mockTokenIssuer) GenerateAccessToken(claims *domain.Claims) (*domain.Token, error) {
	args := m.Called(claims)
	t, _ := args.Get(0).(*domain.Token)
	return t, args.Error(1)
}
