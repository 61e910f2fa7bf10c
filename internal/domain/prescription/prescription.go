package prescription

import (
	"time"

	"github.com/google/uuid"
)

type Prescription struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CreatedAt time.Time `gorm:"autoCreateTime;index"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`

	PatientID uuid.UUID `gorm:"column:patient_id;type:uuid;not null;index"`
	DoctorID  uuid.UUID `gorm:"column:doctor_id;type:uuid;not null;index"`

	MedicationName string `gorm:"column:medication_name;type:varchar(255);not null"`
	Dosage         string `gorm:"column:dosage;type:varchar(100);not null"` // e.g. "500mg"
	Frequency      int    `gorm:"column:frequency;not null"`                // doses per day, 1..3
	Duration       int    `gorm:"column:duration;not null"`                 // days
	Instructions   string `gorm:"column:instructions;type:text"`

	// Active means reminders have not been switched on yet.
	IsActive bool `gorm:"column:is_active;not null;default:true;index"`
}

func (Prescription) TableName() string {
	return "clinical.prescriptions"
}

// ExpectedReminders is the number of dose reminders the prescription needs.
func (p *Prescription) ExpectedReminders() int {
	return p.Frequency * p.Duration
}

type CreatePrescriptionCommand struct {
	PatientID      uuid.UUID
	DoctorID       uuid.UUID
	MedicationName string
	Dosage         string
	Frequency      int
	Duration       int
	Instructions   string
}

func (c *CreatePrescriptionCommand) Validate() []string {
	var errs []string
	if c.PatientID == uuid.Nil {
		errs = append(errs, "patient_id is required")
	}
	if c.MedicationName == "" {
		errs = append(errs, "medication_name is required")
	}
	if c.Dosage == "" {
		errs = append(errs, "dosage is required")
	}
	if c.Frequency < 1 || c.Frequency > 3 {
		errs = append(errs, "frequency must be 1, 2 or 3 times per day")
	}
	if c.Duration < 1 || c.Duration > 365 {
		errs = append(errs, "duration must be between 1 and 365 days")
	}
	return errs
}

// UpdatePrescriptionCommand leaves frequency and duration alone: the
// pre-generated reminders depend on them.
type UpdatePrescriptionCommand struct {
	MedicationName *string
	Dosage         *string
	Instructions   *string
	IsActive       *bool
}

func (c *UpdatePrescriptionCommand) Fields() map[string]any {
	fields := map[string]any{}
	if c.MedicationName != nil {
		fields["medication_name"] = *c.MedicationName
	}
	if c.Dosage != nil {
		fields["dosage"] = *c.Dosage
	}
	if c.Instructions != nil {
		fields["instructions"] = *c.Instructions
	}
	if c.IsActive != nil {
		fields["is_active"] = *c.IsActive
	}
	return fields
}
