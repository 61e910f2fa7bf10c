package timeslot

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, s *TimeSlot) error
	GetByID(ctx context.Context, id uuid.UUID) (*TimeSlot, error)

	// ListAvailableByDoctor returns open slots ordered by start time.
	ListAvailableByDoctor(ctx context.Context, doctorID uuid.UUID) ([]*TimeSlot, error)

	MarkBooked(ctx context.Context, id uuid.UUID) error
}
