package reminder

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusInactive Status = "inactive"
	StatusActive   Status = "active"
	StatusSent     Status = "sent"
)

// Reminder is one dose notification. ReminderDate stays nil until the
// patient activates reminders for the prescription.
type Reminder struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`

	PrescriptionID uuid.UUID `gorm:"column:prescription_id;type:uuid;not null;index"`
	PatientID      uuid.UUID `gorm:"column:patient_id;type:uuid;not null;index"`

	// Sequence orders reminders day by day, dose by dose.
	Sequence     int        `gorm:"column:sequence;not null"`
	ReminderTime string     `gorm:"column:reminder_time;type:varchar(5);not null"` // "HH:MM"
	ReminderDate *time.Time `gorm:"column:reminder_date;type:date;index"`
	Status       Status     `gorm:"column:status;type:varchar(20);not null;default:'inactive';index"`
}

func (Reminder) TableName() string {
	return "clinical.reminders"
}

// Kitchen renders the reminder time as "09:00 AM". Malformed values are
// returned unchanged.
func (r *Reminder) Kitchen() string {
	t, err := ParseTimeOfDay(r.ReminderTime)
	if err != nil {
		return r.ReminderTime
	}
	return t.Kitchen()
}

// DueReminder is an active reminder joined with what the patient should take.
type DueReminder struct {
	Reminder
	MedicationName string `gorm:"column:medication_name"`
	Dosage         string `gorm:"column:dosage"`
}

type TimeOfDay struct {
	Hour   int
	Minute int
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

func (t TimeOfDay) Kitchen() string {
	return time.Date(0, 1, 1, t.Hour, t.Minute, 0, 0, time.UTC).Format("03:04 PM")
}

func ParseTimeOfDay(s string) (TimeOfDay, error) {
	parsed, err := time.Parse("15:04", s)
	if err != nil {
		return TimeOfDay{}, fmt.Errorf("parsing time of day %q: %w", s, err)
	}
	return TimeOfDay{Hour: parsed.Hour(), Minute: parsed.Minute()}, nil
}

var presets = map[int][]TimeOfDay{
	1: {{9, 0}},
	2: {{9, 0}, {18, 0}},
	3: {{9, 0}, {13, 0}, {18, 0}},
}

// GenerateReminderTimes returns the dose times for a daily frequency.
func GenerateReminderTimes(frequency int) ([]TimeOfDay, error) {
	times, ok := presets[frequency]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedFrequency, frequency)
	}
	out := make([]TimeOfDay, len(times))
	copy(out, times)
	return out, nil
}

// Schedule builds the inactive reminders for a prescription: duration days,
// frequency doses per day.
func Schedule(prescriptionID, patientID uuid.UUID, frequency, duration int) ([]*Reminder, error) {
	times, err := GenerateReminderTimes(frequency)
	if err != nil {
		return nil, err
	}

	out := make([]*Reminder, 0, frequency*duration)
	for day := 0; day < duration; day++ {
		for _, t := range times {
			out = append(out, &Reminder{
				PrescriptionID: prescriptionID,
				PatientID:      patientID,
				Sequence:       len(out),
				ReminderTime:   t.String(),
				Status:         StatusInactive,
			})
		}
	}
	return out, nil
}

// AssignDates activates reminders in sequence order. Day d, counted from
// start, receives the next frequency reminders. Reminders beyond
// frequency*duration are left untouched.
func AssignDates(reminders []*Reminder, start time.Time, frequency, duration int) []*Reminder {
	start = time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, start.Location())

	activated := make([]*Reminder, 0, len(reminders))
	idx := 0
	for day := 0; day < duration; day++ {
		date := start.AddDate(0, 0, day)
		for i := 0; i < frequency && idx < len(reminders); i++ {
			r := reminders[idx]
			d := date
			r.ReminderDate = &d
			r.Status = StatusActive
			activated = append(activated, r)
			idx++
		}
	}
	return activated
}
