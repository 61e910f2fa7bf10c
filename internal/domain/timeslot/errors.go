package timeslot

import "errors"

var (
	ErrSlotNotFound       = errors.New("time slot not found")
	ErrSlotUnavailable    = errors.New("time slot is not available")
	ErrSlotDoctorMismatch = errors.New("time slot does not belong to this doctor")
	ErrInvalidSlotRange   = errors.New("time slot start must be before its end")
)
