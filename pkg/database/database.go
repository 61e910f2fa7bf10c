package database

import (
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/dmehra2102/prod-golang-projects/medibook/config"
	"github.com/dmehra2102/prod-golang-projects/medibook/internal/domain"
	"github.com/dmehra2102/prod-golang-projects/medibook/internal/domain/appointment"
	"github.com/dmehra2102/prod-golang-projects/medibook/internal/domain/prescription"
	"github.com/dmehra2102/prod-golang-projects/medibook/internal/domain/reminder"
	"github.com/dmehra2102/prod-golang-projects/medibook/internal/domain/timeslot"
	"github.com/dmehra2102/prod-golang-projects/medibook/internal/domain/user"
)

func Connect(cfg config.DatabaseConfig) (*gorm.DB, error) {
	gormCfg := &gorm.Config{
		Logger:      gormlogger.Default.LogMode(gormlogger.Silent),
		PrepareStmt: true,
		// Unique violations surface as gorm.ErrDuplicatedKey
		TranslateError: true,
	}

	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN: cfg.DSN(),
	}), gormCfg)
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("getting underlying sql.DB: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	return db, nil
}

// Schemas that hold the application tables.
var Schemas = []string{"auth", "clinical", "audit"}

func Models() []any {
	return []any{
		&user.User{},
		&domain.AuditLog{},
		&timeslot.TimeSlot{},
		&appointment.Appointment{},
		&prescription.Prescription{},
		&reminder.Reminder{},
	}
}

func Migrate(db *gorm.DB, log *zap.Logger) error {
	log.Info("running database migrations")
	start := time.Now()

	for _, schema := range Schemas {
		if err := db.Exec(fmt.Sprintf("CREATE SCHEMA IF NOT EXISTS %s", schema)).Error; err != nil {
			return fmt.Errorf("creating schema %s: %w", schema, err)
		}
	}

	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("auto-migrating models: %w", err)
	}

	createIndexes(db, log)

	log.Info("migrations completed", zap.Duration("duration", time.Since(start)))
	return nil
}

type index struct {
	name  string
	query string
}

var indexes = []index{
	{
		// DoctorsBySpecialization compares lower(trim(specialization))
		name:  "idx_users_doctor_specialization",
		query: `CREATE INDEX IF NOT EXISTS idx_users_doctor_specialization ON auth.users (lower(trim(specialization))) WHERE role = 'doctor' AND deleted_at IS NULL`,
	},
	{
		name:  "idx_time_slots_doctor_available",
		query: `CREATE INDEX IF NOT EXISTS idx_time_slots_doctor_available ON clinical.time_slots (doctor_id, start_time) WHERE status = 'available'`,
	},
	{
		name:  "idx_appointments_patient_inactive",
		query: `CREATE INDEX IF NOT EXISTS idx_appointments_patient_inactive ON clinical.appointments (patient_id, appointment_date DESC) WHERE is_active = false`,
	},
	{
		name:  "idx_reminders_due",
		query: `CREATE INDEX IF NOT EXISTS idx_reminders_due ON clinical.reminders (reminder_date, reminder_time) WHERE status = 'active'`,
	},
}

// createIndexes adds the partial indexes AutoMigrate cannot express.
// Failures are logged and do not abort start-up.
func createIndexes(db *gorm.DB, log *zap.Logger) {
	for _, idx := range indexes {
		if err := db.Exec(idx.query).Error; err != nil {
			log.Warn("failed to create index", zap.String("index", idx.name), zap.Error(err))
		}
	}
}
