package prescription

import (
	"context"

	"github.com/google/uuid"

	"github.com/dmehra2102/prod-golang-projects/medibook/internal/domain/reminder"
)

type Repository interface {
	// Create stores the prescription together with its pre-generated
	// reminders in one transaction.
	Create(ctx context.Context, p *Prescription, reminders []*reminder.Reminder) error

	GetByID(ctx context.Context, id uuid.UUID) (*Prescription, error)
	Update(ctx context.Context, id uuid.UUID, fields map[string]any) (*Prescription, error)

	// Delete removes the prescription and its reminders.
	Delete(ctx context.Context, id uuid.UUID) error

	ListByPatientDoctor(ctx context.Context, patientID, doctorID uuid.UUID) ([]*Prescription, error)
	MarkInactive(ctx context.Context, id uuid.UUID) error
}
