package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dmehra2102/prod-golang-projects/medibook/internal/domain/prescription"
	"github.com/dmehra2102/prod-golang-projects/medibook/internal/domain/reminder"
)

type PrescriptionRepository struct {
	db *gorm.DB
}

func NewPrescriptionRepository(db *gorm.DB) *PrescriptionRepository {
	return &PrescriptionRepository{db: db}
}

func (r *PrescriptionRepository) Create(ctx context.Context, p *prescription.Prescription, reminders []*reminder.Reminder) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(p).Error; err != nil {
			return fmt.Errorf("inserting prescription: %w", err)
		}
		if len(reminders) == 0 {
			return nil
		}
		for _, rem := range reminders {
			rem.PrescriptionID = p.ID
		}
		if err := tx.Create(&reminders).Error; err != nil {
			return fmt.Errorf("inserting reminders: %w", err)
		}
		return nil
	})
}

func (r *PrescriptionRepository) GetByID(ctx context.Context, id uuid.UUID) (*prescription.Prescription, error) {
	var p prescription.Prescription
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&p).Error
	if isNotFound(err) {
		return nil, prescription.ErrPrescriptionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying prescription: %w", err)
	}
	return &p, nil
}

func (r *PrescriptionRepository) Update(ctx context.Context, id uuid.UUID, fields map[string]any) (*prescription.Prescription, error) {
	if len(fields) == 0 {
		return nil, prescription.ErrNothingToUpdate
	}

	result := r.db.WithContext(ctx).Model(&prescription.Prescription{}).
		Where("id = ?", id).
		Updates(fields)
	if result.Error != nil {
		return nil, fmt.Errorf("updating prescription: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, prescription.ErrPrescriptionNotFound
	}
	return r.GetByID(ctx, id)
}

func (r *PrescriptionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("prescription_id = ?", id).Delete(&reminder.Reminder{}).Error; err != nil {
			return fmt.Errorf("deleting reminders: %w", err)
		}
		result := tx.Where("id = ?", id).Delete(&prescription.Prescription{})
		if result.Error != nil {
			return fmt.Errorf("deleting prescription: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return prescription.ErrPrescriptionNotFound
		}
		return nil
	})
}

func (r *PrescriptionRepository) ListByPatientDoctor(ctx context.Context, patientID, doctorID uuid.UUID) ([]*prescription.Prescription, error) {
	var items []*prescription.Prescription
	err := r.db.WithContext(ctx).
		Where("patient_id = ? AND doctor_id = ?", patientID, doctorID).
		Order("created_at").
		Find(&items).Error
	if err != nil {
		return nil, fmt.Errorf("listing prescriptions: %w", err)
	}
	return items, nil
}

func (r *PrescriptionRepository) MarkInactive(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Model(&prescription.Prescription{}).
		Where("id = ?", id).
		Update("is_active", false)
	if result.Error != nil {
		return fmt.Errorf("marking prescription inactive: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return prescription.ErrPrescriptionNotFound
	}
	return nil
}
