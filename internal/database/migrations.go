package database

import (
	"github.com/sojib-web/zap-shift-server/internal/models"
	"gorm.io/gorm"
)

func RunMigrations(db *gorm.DB) error {
	// Create tables if they don't exist
	err := db.AutoMigrate(
		&models.User{},
		&models.Parcel{},
		&models.Payment{},
		&models.TrackingEvent{},
		&models.Rider{},
	)
	if err != nil {
		return err
	}

	// Update users table from deployments that predate the role column
	if db.Migrator().HasTable(&models.User{}) {
		columns := []string{
			"ADD COLUMN IF NOT EXISTS role text DEFAULT 'user'",
			"ADD COLUMN IF NOT EXISTS fcm_token text DEFAULT ''",
		}

		for _, column := range columns {
			if err := db.Exec("ALTER TABLE users " + column).Error; err != nil {
				return err
			}
		}

		db.Exec(`ALTER TABLE users DROP CONSTRAINT IF EXISTS users_role_check`)
		db.Exec(`ALTER TABLE users ADD CONSTRAINT users_role_check CHECK (role IN ('user', 'rider', 'admin'))`)
	}

	// The unique index on payments.transaction_id is what closes the
	// check-then-insert race in the payment ledger. AutoMigrate creates it
	// from the model tag, but older tables may carry duplicate-friendly
	// schemas, so assert it explicitly.
	if db.Migrator().HasTable(&models.Payment{}) {
		if !db.Migrator().HasIndex(&models.Payment{}, "TransactionID") {
			if err := db.Exec(`CREATE UNIQUE INDEX IF NOT EXISTS idx_payments_transaction_id ON payments (transaction_id)`).Error; err != nil {
				return err
			}
		}
	}

	return nil
}
