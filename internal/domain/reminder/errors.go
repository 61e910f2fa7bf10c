package reminder

import "errors"

var (
	ErrUnsupportedFrequency = errors.New("unsupported frequency value")
	ErrNoInactiveReminders  = errors.New("no inactive reminders found for this prescription")
)
