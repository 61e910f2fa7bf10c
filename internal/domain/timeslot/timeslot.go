package timeslot

import (
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusAvailable Status = "available"
	StatusBooked    Status = "booked"
)

// TimeSlot is a bookable interval published by a doctor. Only the
// time-of-day part of StartTime/EndTime is shown to patients.
type TimeSlot struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`

	DoctorID  uuid.UUID `gorm:"column:doctor_id;type:uuid;not null;index"`
	StartTime time.Time `gorm:"column:start_time;not null;index"`
	EndTime   time.Time `gorm:"column:end_time;not null"`
	Status    Status    `gorm:"column:status;type:varchar(20);not null;default:'available';index"`
}

func (TimeSlot) TableName() string {
	return "clinical.time_slots"
}

func (s *TimeSlot) IsAvailable() bool {
	return s.Status == StatusAvailable
}

// Label renders the slot the way it is offered in chat, e.g. "09:00 AM - 09:30 AM".
func (s *TimeSlot) Label() string {
	return s.StartTime.Format("03:04 PM") + " - " + s.EndTime.Format("03:04 PM")
}

type CreateTimeSlotCommand struct {
	DoctorID  uuid.UUID
	StartTime time.Time
	EndTime   time.Time
}

func (c *CreateTimeSlotCommand) Validate() error {
	if c.StartTime.IsZero() || c.EndTime.IsZero() {
		return ErrInvalidSlotRange
	}
	if !c.StartTime.Before(c.EndTime) {
		return ErrInvalidSlotRange
	}
	return nil
}
