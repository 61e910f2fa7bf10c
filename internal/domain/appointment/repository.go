package appointment

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	// Book locks the slot, verifies it belongs to the doctor and is still
	// available, creates the appointment and marks the slot booked, all in
	// one transaction.
	Book(ctx context.Context, a *Appointment) error

	GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error)
	List(ctx context.Context, q *ListAppointmentsQuery) (*PagedAppointments, error)
	MarkInactive(ctx context.Context, id uuid.UUID) error

	// LatestInactiveByPatient returns ErrNoInactiveFound when the patient has
	// no finished visits.
	LatestInactiveByPatient(ctx context.Context, patientID uuid.UUID) (*Appointment, error)
}
