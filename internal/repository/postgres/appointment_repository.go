package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/dmehra2102/prod-golang-projects/medibook/internal/domain/appointment"
	"github.com/dmehra2102/prod-golang-projects/medibook/internal/domain/timeslot"
)

type AppointmentRepository struct {
	db *gorm.DB
}

func NewAppointmentRepository(db *gorm.DB) *AppointmentRepository {
	return &AppointmentRepository{db: db}
}

func (r *AppointmentRepository) Book(ctx context.Context, a *appointment.Appointment) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var slot timeslot.TimeSlot
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", a.TimeSlotID).
			First(&slot).Error
		if isNotFound(err) {
			return timeslot.ErrSlotNotFound
		}
		if err != nil {
			return fmt.Errorf("locking time slot: %w", err)
		}

		if slot.DoctorID != a.DoctorID {
			return timeslot.ErrSlotDoctorMismatch
		}
		if !slot.IsAvailable() {
			return timeslot.ErrSlotUnavailable
		}

		if err := tx.Create(a).Error; err != nil {
			return fmt.Errorf("inserting appointment: %w", err)
		}

		err = tx.Model(&timeslot.TimeSlot{}).
			Where("id = ?", slot.ID).
			Update("status", timeslot.StatusBooked).Error
		if err != nil {
			return fmt.Errorf("marking slot booked: %w", err)
		}
		return nil
	})
}

func (r *AppointmentRepository) GetByID(ctx context.Context, id uuid.UUID) (*appointment.Appointment, error) {
	var a appointment.Appointment
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&a).Error
	if isNotFound(err) {
		return nil, appointment.ErrAppointmentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying appointment: %w", err)
	}
	return &a, nil
}

func (r *AppointmentRepository) List(ctx context.Context, q *appointment.ListAppointmentsQuery) (*appointment.PagedAppointments, error) {
	page, pageSize := normalizePage(q.Page, q.PageSize)

	query := r.db.WithContext(ctx).Model(&appointment.Appointment{})
	if q.DoctorID != nil {
		query = query.Where("doctor_id = ?", *q.DoctorID)
	}

	var total int64
	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, fmt.Errorf("counting appointments: %w", err)
	}

	var items []*appointment.Appointment
	err := query.Session(&gorm.Session{}).
		Order("appointment_date DESC, created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&items).Error
	if err != nil {
		return nil, fmt.Errorf("listing appointments: %w", err)
	}

	return &appointment.PagedAppointments{
		Appointments: items,
		TotalCount:   total,
		Page:         page,
		PageSize:     pageSize,
		TotalPages:   totalPages(total, pageSize),
	}, nil
}

func (r *AppointmentRepository) MarkInactive(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Model(&appointment.Appointment{}).
		Where("id = ?", id).
		Update("is_active", false)
	if result.Error != nil {
		return fmt.Errorf("marking appointment inactive: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return appointment.ErrAppointmentNotFound
	}
	return nil
}

func (r *AppointmentRepository) LatestInactiveByPatient(ctx context.Context, patientID uuid.UUID) (*appointment.Appointment, error) {
	var a appointment.Appointment
	err := r.db.WithContext(ctx).
		Where("patient_id = ? AND is_active = ?", patientID, false).
		Order("appointment_date DESC, updated_at DESC").
		First(&a).Error
	if isNotFound(err) {
		return nil, appointment.ErrNoInactiveFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying latest inactive appointment: %w", err)
	}
	return &a, nil
}
