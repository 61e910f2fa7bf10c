package appointment

import "errors"

var (
	ErrAppointmentNotFound = errors.New("appointment not found")
	ErrAlreadyInactive     = errors.New("appointment is already inactive")
	ErrNoInactiveFound     = errors.New("no inactive appointment found")
)
