package database

import (
	"restoran-pos/internal/config"
	"restoran-pos/internal/models"

	"github.com/rs/zerolog/log"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

func Init(cfg *config.Config) {
	var err error

	DB, err = gorm.Open(postgres.Open(cfg.DatabaseDSN), &gorm.Config{})
	if err != nil {
		log.Fatal().Err(err).Msg("Veritabanına bağlanılamadı")
	}

	if err := Migrate(DB); err != nil {
		log.Fatal().Err(err).Msg("AutoMigrate hatası")
	}

	log.Info().Msg("Veritabanı bağlantısı başarılı. Migration tamamlandı.")
}

// Migrate - Tüm modelleri migrate eder. Testler sqlite üzerinde aynı şemayı
// kurmak için bunu kullanır.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Branch{},
		&models.User{},
		&models.Customer{},
		&models.Table{},
		&models.ProductCategory{},
		&models.Product{},
		&models.Order{},
		&models.OrderCounter{},
		&models.OrderItem{},
		&models.InventoryAdjustment{},
		&models.DuePayment{},
		&models.DuePaymentAllocation{},
		&models.AuditLog{},
	)
}
