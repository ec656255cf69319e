package database

import (
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/pbvieira/bsam-gestao-associacao-sub001/internal/config"
	"github.com/pbvieira/bsam-gestao-associacao-sub001/internal/domain"
	"github.com/pbvieira/bsam-gestao-associacao-sub001/internal/domain/appointment"
	"github.com/pbvieira/bsam-gestao-associacao-sub001/internal/domain/medication"
	"github.com/pbvieira/bsam-gestao-associacao-sub001/internal/domain/resident"
)

func Connect(cfg config.DatabaseConfig) (*gorm.DB, error) {
	gormCfg := &gorm.Config{
		Logger:                                   gormlogger.Default.LogMode(gormlogger.Silent),
		PrepareStmt:                              true,
		TranslateError:                           true,
		DisableForeignKeyConstraintWhenMigrating: false,
		DisableAutomaticPing:                     false,
	}

	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN:                  cfg.DSN(),
		PreferSimpleProtocol: false,
	}), gormCfg)
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	// Configure connection pool
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

func Migrate(db *gorm.DB, log *zap.Logger) error {
	log.Info("running database migrations")
	start := time.Now()

	schemas := []string{"care", "auth", "audit"} // logical namespace
	for _, schema := range schemas {
		if err := db.Exec(fmt.Sprintf("CREATE SCHEMA IF NOT EXISTS %s", schema)).Error; err != nil {
			return fmt.Errorf("creating schema %s: %w", schema, err)
		}
	}

	models := []any{
		&domain.User{},
		&domain.AuditLog{},
		&resident.Resident{},
		&medication.Medication{},
		&medication.Schedule{},
		&medication.DoseLog{},
		&appointment.Appointment{},
		&appointment.AttendanceLog{},
	}

	if err := db.AutoMigrate(models...); err != nil {
		return fmt.Errorf("auto-migrating models: %w", err)
	}

	if err := createIndexes(db); err != nil {
		return fmt.Errorf("creating indexes: %w", err)
	}

	log.Info("migrations completed", zap.Duration("duration", time.Since(start)))
	return nil
}

func createIndexes(db *gorm.DB) error {
	indexes := []struct {
		name  string
		query string
	}{
		// Catalog load: active schedules of active medications, fetched on every round query
		{
			name:  "idx_medication_schedules_active",
			query: `CREATE INDEX IF NOT EXISTS idx_medication_schedules_active ON care.medication_schedules (medication_id, time_of_day) WHERE deleted_at IS NULL AND active = true`,
		},
		{
			name:  "idx_dose_logs_date",
			query: `CREATE INDEX IF NOT EXISTS idx_dose_logs_date ON care.dose_logs (scheduled_date)`,
		},
		{
			name:  "idx_attendance_logs_date",
			query: `CREATE INDEX IF NOT EXISTS idx_attendance_logs_date ON care.appointment_attendance_logs (scheduled_date)`,
		},
		// Tracking range scan hits either the visit date or the return date
		{
			name:  "idx_appointments_return_date",
			query: `CREATE INDEX IF NOT EXISTS idx_appointments_return_date ON care.appointments (return_date) WHERE deleted_at IS NULL AND return_date IS NOT NULL`,
		},
		// Resident search: GIN index for full-text search on name fields
		{
			name:  "idx_residents_name_search",
			query: `CREATE INDEX IF NOT EXISTS idx_residents_name_trgm ON care.residents USING gin ((first_name || ' ' || last_name) gin_trgm_ops) WHERE deleted_at IS NULL`,
		},
	}

	for _, idx := range indexes {
		_ = db.Exec("CREATE EXTENSION IF NOT EXISTS pg_trgm").Error

		if err := db.Exec(idx.query).Error; err != nil {
			_ = err
		}
	}

	return nil
}
