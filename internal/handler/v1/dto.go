package v1

import (
	"time"

	"github.com/google/uuid"

	"github.com/dmehra2102/prod-golang-projects/medibook/internal/domain"
	"github.com/dmehra2102/prod-golang-projects/medibook/internal/domain/appointment"
	"github.com/dmehra2102/prod-golang-projects/medibook/internal/domain/prescription"
	"github.com/dmehra2102/prod-golang-projects/medibook/internal/domain/reminder"
	"github.com/dmehra2102/prod-golang-projects/medibook/internal/domain/timeslot"
	"github.com/dmehra2102/prod-golang-projects/medibook/internal/domain/user"
)

type registerPatientRequest struct {
	Username    string `json:"username" binding:"required"`
	Password    string `json:"password" binding:"required"`
	FirstName   string `json:"first_name" binding:"required"`
	LastName    string `json:"last_name" binding:"required"`
	PhoneNumber string `json:"phone_number" binding:"required"`
	DateOfBirth string `json:"date_of_birth" binding:"required"` // YYYY-MM-DD
}

type registerDoctorRequest struct {
	Username       string `json:"username" binding:"required"`
	Password       string `json:"password" binding:"required"`
	FirstName      string `json:"first_name" binding:"required"`
	LastName       string `json:"last_name" binding:"required"`
	PhoneNumber    string `json:"phone_number" binding:"required"`
	Specialization string `json:"specialization" binding:"required"`
}

type registerAdminRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type loginRequest struct {
	Username string      `json:"username" binding:"required"`
	Password string      `json:"password" binding:"required"`
	Role     domain.Role `json:"role" binding:"required"`
}

type createTimeSlotRequest struct {
	StartTime time.Time `json:"start_time" binding:"required"`
	EndTime   time.Time `json:"end_time" binding:"required"`
}

type bookAppointmentRequest struct {
	DoctorID        uuid.UUID `json:"doctor_id" binding:"required"`
	TimeSlotID      uuid.UUID `json:"time_slot_id" binding:"required"`
	AppointmentDate string    `json:"appointment_date"` // optional, YYYY-MM-DD
}

type createPrescriptionRequest struct {
	PatientID      uuid.UUID `json:"patient_id" binding:"required"`
	MedicationName string    `json:"medication_name"`
	Dosage         string    `json:"dosage"`
	Frequency      int       `json:"frequency"`
	Duration       int       `json:"duration"`
	Instructions   string    `json:"instructions"`
}

type updatePrescriptionRequest struct {
	MedicationName *string `json:"medication_name"`
	Dosage         *string `json:"dosage"`
	Instructions   *string `json:"instructions"`
	IsActive       *bool   `json:"is_active"`
}

type chatRequest struct {
	UserMessage string `json:"user_message" binding:"required"`
}

type userResponse struct {
	ID             uuid.UUID   `json:"id"`
	Username       string      `json:"username"`
	Role           domain.Role `json:"role"`
	FirstName      string      `json:"first_name,omitempty"`
	LastName       string      `json:"last_name,omitempty"`
	PhoneNumber    string      `json:"phone_number,omitempty"`
	Specialization string      `json:"specialization,omitempty"`
	DateOfBirth    string      `json:"date_of_birth,omitempty"`
	IsActive       bool        `json:"is_active"`
	CreatedAt      time.Time   `json:"created_at"`
}

func toUserResponse(u *user.User) userResponse {
	r := userResponse{
		ID:             u.ID,
		Username:       u.Username,
		Role:           u.Role,
		FirstName:      u.FirstName,
		LastName:       u.LastName,
		PhoneNumber:    u.PhoneNumber,
		Specialization: u.Specialization,
		IsActive:       u.IsActive,
		CreatedAt:      u.CreatedAt,
	}
	if u.DateOfBirth != nil {
		r.DateOfBirth = u.DateOfBirth.Format(time.DateOnly)
	}
	return r
}

func toUserResponses(users []*user.User) []userResponse {
	out := make([]userResponse, len(users))
	for i, u := range users {
		out[i] = toUserResponse(u)
	}
	return out
}

type timeSlotResponse struct {
	ID        uuid.UUID       `json:"id"`
	DoctorID  uuid.UUID       `json:"doctor_id"`
	StartTime time.Time       `json:"start_time"`
	EndTime   time.Time       `json:"end_time"`
	Status    timeslot.Status `json:"status"`
	Label     string          `json:"label"`
}

func toTimeSlotResponse(s *timeslot.TimeSlot) timeSlotResponse {
	return timeSlotResponse{
		ID:        s.ID,
		DoctorID:  s.DoctorID,
		StartTime: s.StartTime,
		EndTime:   s.EndTime,
		Status:    s.Status,
		Label:     s.Label(),
	}
}

type appointmentResponse struct {
	ID              uuid.UUID `json:"id"`
	PatientID       uuid.UUID `json:"patient_id"`
	DoctorID        uuid.UUID `json:"doctor_id"`
	TimeSlotID      uuid.UUID `json:"time_slot_id"`
	AppointmentDate string    `json:"appointment_date"`
	IsActive        bool      `json:"is_active"`
	CreatedAt       time.Time `json:"created_at"`
}

func toAppointmentResponse(a *appointment.Appointment) appointmentResponse {
	return appointmentResponse{
		ID:              a.ID,
		PatientID:       a.PatientID,
		DoctorID:        a.DoctorID,
		TimeSlotID:      a.TimeSlotID,
		AppointmentDate: a.AppointmentDate.Format(time.DateOnly),
		IsActive:        a.IsActive,
		CreatedAt:       a.CreatedAt,
	}
}

type prescriptionResponse struct {
	ID             uuid.UUID `json:"id"`
	PatientID      uuid.UUID `json:"patient_id"`
	DoctorID       uuid.UUID `json:"doctor_id"`
	MedicationName string    `json:"medication_name"`
	Dosage         string    `json:"dosage"`
	Frequency      int       `json:"frequency"`
	Duration       int       `json:"duration"`
	Instructions   string    `json:"instructions,omitempty"`
	IsActive       bool      `json:"is_active"`
	CreatedAt      time.Time `json:"created_at"`
}

func toPrescriptionResponse(p *prescription.Prescription) prescriptionResponse {
	return prescriptionResponse{
		ID:             p.ID,
		PatientID:      p.PatientID,
		DoctorID:       p.DoctorID,
		MedicationName: p.MedicationName,
		Dosage:         p.Dosage,
		Frequency:      p.Frequency,
		Duration:       p.Duration,
		Instructions:   p.Instructions,
		IsActive:       p.IsActive,
		CreatedAt:      p.CreatedAt,
	}
}

type reminderResponse struct {
	ID             uuid.UUID       `json:"id"`
	PrescriptionID uuid.UUID       `json:"prescription_id"`
	ReminderTime   string          `json:"reminder_time"`
	ReminderDate   string          `json:"reminder_date,omitempty"`
	Status         reminder.Status `json:"status"`
}

func toReminderResponses(rs []*reminder.Reminder) []reminderResponse {
	out := make([]reminderResponse, len(rs))
	for i, r := range rs {
		out[i] = reminderResponse{
			ID:             r.ID,
			PrescriptionID: r.PrescriptionID,
			ReminderTime:   r.Kitchen(),
			Status:         r.Status,
		}
		if r.ReminderDate != nil {
			out[i].ReminderDate = r.ReminderDate.Format(time.DateOnly)
		}
	}
	return out
}
