package infra

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"cabinetcpq/internal/model"
)

// NewDatabase establishes a GORM connection backed by pgx and migrates the
// schema. Catalog tables are written only by admin endpoints and the seeder;
// everything else treats them as read-only reference data.
func NewDatabase(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)

	if err := RunMigrations(db); err != nil {
		return nil, fmt.Errorf("migrations: %w", err)
	}
	return db, nil
}

// RunMigrations applies the schema. Also used by integration tests against a
// throwaway container database.
func RunMigrations(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.Product{},
		&model.Processing{},
		&model.ProcessingRule{},
		&model.ProductDependency{},
		&model.Customer{},
		&model.User{},
		&model.Quote{},
		&model.QuoteItem{},
		&model.AppliedProcessing{},
		&model.Room{},
		&model.ApprovalStep{},
	)
}
