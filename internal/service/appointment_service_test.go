package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/dmehra2102/prod-golang-projects/medibook/internal/domain"
	"github.com/dmehra2102/prod-golang-projects/medibook/internal/domain/appointment"
	"github.com/dmehra2102/prod-golang-projects/medibook/internal/domain/timeslot"
	"github.com/dmehra2102/prod-golang-projects/medibook/internal/domain/user"
)

func newTestAppointmentService(t *testing.T) (*AppointmentService, *mockAppointmentRepo, *mockUserRepo) {
	repo := &mockAppointmentRepo{}
	users := &mockUserRepo{}
	m := newTestMetrics()
	svc := NewAppointmentService(repo, users, newTestAudit(t, m), m, zap.NewNop())
	svc.now = func() time.Time { return time.Date(2026, 2, 3, 10, 0, 0, 0, time.UTC) }
	return svc, repo, users
}

func TestAppointmentService_Book(t *testing.T) {
	svc, repo, users := newTestAppointmentService(t)
	doctorID := uuid.New()

	users.On("GetByID", mock.Anything, doctorID, domain.RoleDoctor).Return(&user.User{ID: doctorID}, nil)
	repo.On("Book", mock.Anything, mock.MatchedBy(func(a *appointment.Appointment) bool {
		return a.IsActive && a.DoctorID == doctorID && a.AppointmentDate.Day() == 3
	})).Return(nil)

	a, err := svc.Book(context.Background(), &appointment.BookCommand{
		PatientID:  uuid.New(),
		DoctorID:   doctorID,
		TimeSlotID: uuid.New(),
	})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, a.ID)
	repo.AssertExpectations(t)
}

func TestAppointmentService_Book_SlotTaken(t *testing.T) {
	svc, repo, users := newTestAppointmentService(t)
	doctorID := uuid.New()

	users.On("GetByID", mock.Anything, doctorID, domain.RoleDoctor).Return(&user.User{ID: doctorID}, nil)
	repo.On("Book", mock.Anything, mock.Anything).Return(timeslot.ErrSlotUnavailable)

	_, err := svc.Book(context.Background(), &appointment.BookCommand{DoctorID: doctorID, TimeSlotID: uuid.New()})
	assert.ErrorIs(t, err, timeslot.ErrSlotUnavailable)
}

func TestAppointmentService_Book_UnknownDoctor(t *testing.T) {
	svc, repo, users := newTestAppointmentService(t)
	doctorID := uuid.New()

	users.On("GetByID", mock.Anything, doctorID, domain.RoleDoctor).Return(nil, user.ErrDoctorNotFound)

	_, err := svc.Book(context.Background(), &appointment.BookCommand{DoctorID: doctorID})
	assert.ErrorIs(t, err, user.ErrDoctorNotFound)
	repo.AssertNotCalled(t, "Book", mock.Anything, mock.Anything)
}

func TestAppointmentService_MarkInactive(t *testing.T) {
	doctorID := uuid.New()
	apptID := uuid.New()

	t.Run("own appointment", func(t *testing.T) {
		svc, repo, _ := newTestAppointmentService(t)
		repo.On("GetByID", mock.Anything, apptID).
			Return(&appointment.Appointment{ID: apptID, DoctorID: doctorID, IsActive: true}, nil)
		repo.On("MarkInactive", mock.Anything, apptID).Return(nil)

		a, err := svc.MarkInactive(context.Background(), doctorID, apptID)
		require.NoError(t, err)
		assert.False(t, a.IsActive)
	})

	t.Run("another doctor's appointment", func(t *testing.T) {
		svc, repo, _ := newTestAppointmentService(t)
		repo.On("GetByID", mock.Anything, apptID).
			Return(&appointment.Appointment{ID: apptID, DoctorID: uuid.New(), IsActive: true}, nil)

		_, err := svc.MarkInactive(context.Background(), doctorID, apptID)
		assert.ErrorIs(t, err, ErrForbidden)
		repo.AssertNotCalled(t, "MarkInactive", mock.Anything, mock.Anything)
	})

	t.Run("already inactive", func(t *testing.T) {
		svc, repo, _ := newTestAppointmentService(t)
		repo.On("GetByID", mock.Anything, apptID).
			Return(&appointment.Appointment{ID: apptID, DoctorID: doctorID}, nil)

		_, err := svc.MarkInactive(context.Background(), doctorID, apptID)
		assert.ErrorIs(t, err, appointment.ErrAlreadyInactive)
	})
}

func TestAppointmentService_ListDoctorAppointments(t *testing.T) {
	svc, repo, _ := newTestAppointmentService(t)
	doctorID := uuid.New()

	repo.On("List", mock.Anything, mock.MatchedBy(func(q *appointment.ListAppointmentsQuery) bool {
		return q.DoctorID != nil && *q.DoctorID == doctorID && q.Page == 2
	})).Return(&appointment.PagedAppointments{Page: 2}, nil)

	out, err := svc.ListDoctorAppointments(context.Background(), doctorID, 2, 10)
	require.NoError(t, err)
	assert.Equal(t, 2, out.Page)
}
