package persistence

import (
	"github.com/creditmonitor/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// AutoMigrate creates or updates the database schema for all models.
// Production deployments should prefer the SQL migrations under migrations/;
// this covers development setups and the sqlite-backed tests.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.UserModel{},
		&models.ClientModel{},
		&models.InvoiceModel{},
		&models.PaymentModel{},
	)
}
