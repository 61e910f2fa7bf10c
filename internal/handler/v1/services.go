package v1

import (
	"context"

	"github.com/google/uuid"

	"github.com/dmehra2102/prod-golang-projects/medibook/internal/dialogue"
	"github.com/dmehra2102/prod-golang-projects/medibook/internal/domain"
	"github.com/dmehra2102/prod-golang-projects/medibook/internal/domain/appointment"
	"github.com/dmehra2102/prod-golang-projects/medibook/internal/domain/prescription"
	"github.com/dmehra2102/prod-golang-projects/medibook/internal/domain/reminder"
	"github.com/dmehra2102/prod-golang-projects/medibook/internal/domain/timeslot"
	"github.com/dmehra2102/prod-golang-projects/medibook/internal/domain/user"
	"github.com/dmehra2102/prod-golang-projects/medibook/internal/worker"
)

// The interfaces below are what the handlers need from the service layer.

type AuthService interface {
	RegisterPatient(ctx context.Context, cmd *user.RegisterPatientCommand) (*user.User, error)
	RegisterDoctor(ctx context.Context, cmd *user.RegisterDoctorCommand) (*user.User, error)
	RegisterAdmin(ctx context.Context, cmd *user.RegisterAdminCommand) (*user.User, error)
	Login(ctx context.Context, username, password string, role domain.Role) (*domain.Token, error)
}

type UserService interface {
	DoctorsBySpecialization(ctx context.Context, specialization string) ([]*user.User, error)
	DoctorByID(ctx context.Context, id uuid.UUID) (*user.User, error)
	PatientByID(ctx context.Context, id uuid.UUID) (*user.User, error)
	ListDoctors(ctx context.Context, search string, page, pageSize int) (*user.PagedUsers, error)
	ListPatients(ctx context.Context, search string, page, pageSize int) (*user.PagedUsers, error)
	DeleteDoctor(ctx context.Context, adminID, id uuid.UUID) error
	DeletePatient(ctx context.Context, adminID, id uuid.UUID) error
}

type SchedulingService interface {
	CreateSlot(ctx context.Context, cmd *timeslot.CreateTimeSlotCommand) (*timeslot.TimeSlot, error)
	AvailableSlots(ctx context.Context, doctorID uuid.UUID) ([]*timeslot.TimeSlot, error)
}

type AppointmentService interface {
	Book(ctx context.Context, cmd *appointment.BookCommand) (*appointment.Appointment, error)
	ListDoctorAppointments(ctx context.Context, doctorID uuid.UUID, page, pageSize int) (*appointment.PagedAppointments, error)
	ListAll(ctx context.Context, page, pageSize int) (*appointment.PagedAppointments, error)
	MarkInactive(ctx context.Context, doctorID, id uuid.UUID) (*appointment.Appointment, error)
}

type PrescriptionService interface {
	Create(ctx context.Context, cmd *prescription.CreatePrescriptionCommand) (*prescription.Prescription, error)
	Get(ctx context.Context, caller *domain.Claims, id uuid.UUID) (*prescription.Prescription, error)
	Update(ctx context.Context, doctorID, id uuid.UUID, cmd *prescription.UpdatePrescriptionCommand) (*prescription.Prescription, error)
	Delete(ctx context.Context, doctorID, id uuid.UUID) error
}

type ReminderService interface {
	ListForPatient(ctx context.Context, patientID uuid.UUID) ([]*reminder.Reminder, error)
	ActivateForPatient(ctx context.Context, patientID, prescriptionID uuid.UUID) ([]*reminder.Reminder, error)
}

type ChatService interface {
	Turn(ctx context.Context, patientID uuid.UUID, message string) (dialogue.Reply, error)
	Forget(ctx context.Context, patientID uuid.UUID) error
}

type ReminderInbox interface {
	Drain(patientID uuid.UUID) []worker.Notification
}
