package appointment

import (
	"time"

	"github.com/google/uuid"
)

// Appointment ties a patient to one doctor time slot. It stays active until
// the doctor marks the visit done; inactive appointments are what the
// assistant inspects when looking for new prescriptions.
type Appointment struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CreatedAt time.Time `gorm:"autoCreateTime;index"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`

	PatientID  uuid.UUID `gorm:"column:patient_id;type:uuid;not null;index"`
	DoctorID   uuid.UUID `gorm:"column:doctor_id;type:uuid;not null;index"`
	TimeSlotID uuid.UUID `gorm:"column:time_slot_id;type:uuid;not null;uniqueIndex"`

	AppointmentDate time.Time `gorm:"column:appointment_date;type:date;not null;index"`
	IsActive        bool      `gorm:"column:is_active;not null;default:true;index"`
}

func (Appointment) TableName() string {
	return "clinical.appointments"
}

type BookCommand struct {
	PatientID       uuid.UUID
	DoctorID        uuid.UUID
	TimeSlotID      uuid.UUID
	AppointmentDate time.Time
}

// ListAppointmentsQuery lists newest first. A nil DoctorID lists every doctor.
type ListAppointmentsQuery struct {
	DoctorID *uuid.UUID
	Page     int
	PageSize int
}

type PagedAppointments struct {
	Appointments []*Appointment
	TotalCount   int64
	Page         int
	PageSize     int
	TotalPages   int
}
