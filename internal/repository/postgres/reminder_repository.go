package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dmehra2102/prod-golang-projects/medibook/internal/domain/reminder"
)

type ReminderRepository struct {
	db *gorm.DB
}

func NewReminderRepository(db *gorm.DB) *ReminderRepository {
	return &ReminderRepository{db: db}
}

func (r *ReminderRepository) ListByPrescription(ctx context.Context, prescriptionID uuid.UUID, status reminder.Status) ([]*reminder.Reminder, error) {
	var items []*reminder.Reminder
	err := r.db.WithContext(ctx).
		Where("prescription_id = ? AND status = ?", prescriptionID, status).
		Order("sequence").
		Find(&items).Error
	if err != nil {
		return nil, fmt.Errorf("listing reminders: %w", err)
	}
	return items, nil
}

func (r *ReminderRepository) HasActive(ctx context.Context, prescriptionID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&reminder.Reminder{}).
		Where("prescription_id = ? AND status = ?", prescriptionID, reminder.StatusActive).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("counting active reminders: %w", err)
	}
	return count > 0, nil
}

func (r *ReminderRepository) SaveActivated(ctx context.Context, reminders []*reminder.Reminder) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, rem := range reminders {
			err := tx.Model(&reminder.Reminder{}).
				Where("id = ?", rem.ID).
				Updates(map[string]any{
					"reminder_date": rem.ReminderDate,
					"status":        rem.Status,
				}).Error
			if err != nil {
				return fmt.Errorf("activating reminder %s: %w", rem.ID, err)
			}
		}
		return nil
	})
}

func (r *ReminderRepository) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*reminder.Reminder, error) {
	var items []*reminder.Reminder
	err := r.db.WithContext(ctx).
		Where("patient_id = ?", patientID).
		Order("reminder_date NULLS LAST, reminder_time, sequence").
		Find(&items).Error
	if err != nil {
		return nil, fmt.Errorf("listing patient reminders: %w", err)
	}
	return items, nil
}

func (r *ReminderRepository) ListDue(ctx context.Context, date time.Time, clock string, limit int) ([]*reminder.DueReminder, error) {
	day := date.Format(time.DateOnly)

	var items []*reminder.DueReminder
	err := r.db.WithContext(ctx).
		Table("clinical.reminders AS r").
		Select("r.*, p.medication_name, p.dosage").
		Joins("JOIN clinical.prescriptions p ON p.id = r.prescription_id").
		Where("r.status = ? AND (r.reminder_date < ? OR (r.reminder_date = ? AND r.reminder_time <= ?))",
			reminder.StatusActive, day, day, clock).
		Order("r.reminder_date, r.reminder_time").
		Limit(limit).
		Scan(&items).Error
	if err != nil {
		return nil, fmt.Errorf("listing due reminders: %w", err)
	}
	return items, nil
}

func (r *ReminderRepository) MarkSent(ctx context.Context, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	err := r.db.WithContext(ctx).Model(&reminder.Reminder{}).
		Where("id IN ?", ids).
		Update("status", reminder.StatusSent).Error
	if err != nil {
		return fmt.Errorf("marking reminders sent: %w", err)
	}
	return nil
}
