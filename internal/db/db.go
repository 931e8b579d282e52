package db

import (
	"log"
	"time"

	"github.com/sharpcutlabs/booking-api/internal/config"
	"github.com/sharpcutlabs/booking-api/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func NewDB(cfg *config.Config) *gorm.DB {
	db, err := gorm.Open(postgres.Open(cfg.DBUrl), &gorm.Config{
		PrepareStmt: true,
	})
	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		log.Fatalf("failed to get sql.DB: %v", err)
	}

	sqlDB.SetMaxOpenConns(10)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)
	sqlDB.SetConnMaxIdleTime(10 * time.Minute)

	if err := db.AutoMigrate(
		&models.Shop{},
		&models.User{},
		&models.Barber{},
		&models.Service{},
		&models.Shift{},
		&models.TimeBlock{},
		&models.Booking{},
		&models.BookingService{},
		&models.PricingRule{},
		&models.AuditLog{},
	); err != nil {
		log.Fatalf("failed to migrate: %v", err)
	}

	// Database-level guard for the non-overlap invariant: even if the
	// advisory-lock path is bypassed, two active bookings can never share
	// a barber window. 23P01 from this constraint maps to a 409. A boot
	// without the guard is a boot without the invariant, so DDL failures
	// are fatal rather than logged and forgotten.
	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS btree_gist`).Error; err != nil {
		log.Fatalf("failed to create btree_gist extension: %v", err)
	}

	var hasConstraint int64
	if err := db.Raw(
		`SELECT count(*) FROM pg_constraint WHERE conname = 'bookings_no_overlap'`,
	).Scan(&hasConstraint).Error; err != nil {
		log.Fatalf("failed to inspect constraints: %v", err)
	}
	if hasConstraint == 0 {
		if err := db.Exec(bookingsNoOverlapDDL).Error; err != nil {
			log.Fatalf("failed to create bookings overlap guard: %v", err)
		}
	}

	if err := db.Exec(`
        UPDATE shops
        SET timezone = 'Europe/Athens'
        WHERE timezone IS NULL OR timezone = ''
    `).Error; err != nil {
		log.Fatalf("failed to backfill shop timezones: %v", err)
	}

	return db
}

// start_time/end_time migrate as timestamptz, so the range expression
// must be tstzrange; tsrange only accepts timestamp without time zone
// and the ALTER would fail with 42883.
const bookingsNoOverlapDDL = `
    ALTER TABLE bookings
    ADD CONSTRAINT bookings_no_overlap
    EXCLUDE USING gist (
        barber_id WITH =,
        tstzrange(start_time, end_time) WITH &&
    )
    WHERE (status IN ('pending', 'confirmed'))`
