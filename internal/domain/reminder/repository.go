package reminder

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type Repository interface {
	// ListByPrescription returns reminders in sequence order.
	ListByPrescription(ctx context.Context, prescriptionID uuid.UUID, status Status) ([]*Reminder, error)

	HasActive(ctx context.Context, prescriptionID uuid.UUID) (bool, error)

	// SaveActivated persists dates and status for the given reminders in one transaction.
	SaveActivated(ctx context.Context, reminders []*Reminder) error

	ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*Reminder, error)

	// ListDue returns active reminders scheduled at or before date+clock.
	ListDue(ctx context.Context, date time.Time, clock string, limit int) ([]*DueReminder, error)

	MarkSent(ctx context.Context, ids []uuid.UUID) error
}
