package database

import (
	"fmt"
	"time"

	"github.com/docease/docease-api/internal/config"
	"github.com/docease/docease-api/internal/domain"
	"github.com/docease/docease-api/internal/domain/appointment"
	"github.com/docease/docease-api/internal/domain/schedule"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func Connect(cfg config.DatabaseConfig) (*gorm.DB, error) {
	gormCfg := &gorm.Config{
		Logger:      gormlogger.Default.LogMode(gormlogger.Silent),
		PrepareStmt: true,
		// Surface unique-constraint violations as gorm.ErrDuplicatedKey
		TranslateError: true,
	}

	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN: cfg.DSN(),
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

	schemas := []string{"clinical", "auth", "audit"} // logical namespaces
	for _, s := range schemas {
		if err := db.Exec(fmt.Sprintf("CREATE SCHEMA IF NOT EXISTS %s", s)).Error; err != nil {
			return fmt.Errorf("creating schema %s: %w", s, err)
		}
	}

	models := []any{
		&domain.User{},
		&domain.AuditLog{},
		&schedule.AvailabilityWindow{},
		&appointment.Appointment{},
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
		// Booking hot path: the per-day window lookup
		{
			name:  "idx_windows_doctor_day_lookup",
			query: `CREATE INDEX IF NOT EXISTS idx_windows_doctor_day_lookup ON clinical.availability_windows (doctor_id, day)`,
		},
		{
			name:  "idx_appointments_doctor_active",
			query: `CREATE INDEX IF NOT EXISTS idx_appointments_doctor_active ON clinical.appointments (doctor_id, scheduled_at) WHERE status NOT IN ('cancelled', 'completed')`,
		},
		// Housekeeping scan: approved appointments whose time has passed
		{
			name:  "idx_appointments_completion_scan",
			query: `CREATE INDEX IF NOT EXISTS idx_appointments_completion_scan ON clinical.appointments (scheduled_at) WHERE status = 'approved'`,
		},
	}

	for _, idx := range indexes {
		if err := db.Exec(idx.query).Error; err != nil {
			return fmt.Errorf("creating index %s: %w", idx.name, err)
		}
	}

	return nil
}
