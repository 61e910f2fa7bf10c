package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dmehra2102/prod-golang-projects/medibook/internal/domain/timeslot"
)

type TimeSlotRepository struct {
	db *gorm.DB
}

func NewTimeSlotRepository(db *gorm.DB) *TimeSlotRepository {
	return &TimeSlotRepository{db: db}
}

func (r *TimeSlotRepository) Create(ctx context.Context, s *timeslot.TimeSlot) error {
	if err := r.db.WithContext(ctx).Create(s).Error; err != nil {
		return fmt.Errorf("inserting time slot: %w", err)
	}
	return nil
}

func (r *TimeSlotRepository) GetByID(ctx context.Context, id uuid.UUID) (*timeslot.TimeSlot, error) {
	var s timeslot.TimeSlot
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&s).Error
	if isNotFound(err) {
		return nil, timeslot.ErrSlotNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying time slot: %w", err)
	}
	return &s, nil
}

func (r *TimeSlotRepository) ListAvailableByDoctor(ctx context.Context, doctorID uuid.UUID) ([]*timeslot.TimeSlot, error) {
	var slots []*timeslot.TimeSlot
	err := r.db.WithContext(ctx).
		Where("doctor_id = ? AND status = ?", doctorID, timeslot.StatusAvailable).
		Order("start_time").
		Find(&slots).Error
	if err != nil {
		return nil, fmt.Errorf("listing available slots: %w", err)
	}
	return slots, nil
}

// MarkBooked flips an available slot to booked. A slot that is missing or
// already booked yields ErrSlotUnavailable.
func (r *TimeSlotRepository) MarkBooked(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Model(&timeslot.TimeSlot{}).
		Where("id = ? AND status = ?", id, timeslot.StatusAvailable).
		Update("status", timeslot.StatusBooked)
	if result.Error != nil {
		return fmt.Errorf("marking slot booked: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return timeslot.ErrSlotUnavailable
	}
	return nil
}
