package dialogue

import (
	"context"

	"github.com/google/uuid"

	"github.com/dmehra2102/prod-golang-projects/medibook/internal/domain/appointment"
	"github.com/dmehra2102/prod-golang-projects/medibook/internal/domain/prescription"
	"github.com/dmehra2102/prod-golang-projects/medibook/internal/domain/reminder"
	"github.com/dmehra2102/prod-golang-projects/medibook/internal/domain/timeslot"
	"github.com/dmehra2102/prod-golang-projects/medibook/internal/domain/user"
)

type DoctorDirectory interface {
	DoctorsBySpecialization(ctx context.Context, specialization string) ([]*user.User, error)
}

type SlotFinder interface {
	AvailableSlots(ctx context.Context, doctorID uuid.UUID) ([]*timeslot.TimeSlot, error)
}

type AppointmentBooker interface {
	Book(ctx context.Context, cmd *appointment.BookCommand) (*appointment.Appointment, error)
	LatestInactive(ctx context.Context, patientID uuid.UUID) (*appointment.Appointment, error)
}

type PrescriptionStore interface {
	ForPatientDoctor(ctx context.Context, patientID, doctorID uuid.UUID) ([]*prescription.Prescription, error)
	MarkInactive(ctx context.Context, id uuid.UUID) error
}

type ReminderActivator interface {
	HasActive(ctx context.Context, prescriptionID uuid.UUID) (bool, error)
	ActivateForPrescription(ctx context.Context, prescriptionID uuid.UUID) ([]*reminder.Reminder, error)
}
