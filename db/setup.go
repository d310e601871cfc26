package db

import (
	"github.com/goaltrace-dev/goaltrace/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

func ConnectDatabase(dsn string) error {
	var err error

	DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})

	if err != nil {
		return err
	}

	return nil
}

func MigrateDatabase() error {
	// Join table must be registered before traces are migrated.
	if err := DB.SetupJoinTable(&models.Trace{}, "Tags", &models.TraceTag{}); err != nil {
		return err
	}

	models := []interface{}{
		&models.User{},
		&models.Trace{},
		&models.Tag{},
		&models.Node{},
		&models.Deadline{},
		&models.Note{},
		&models.Link{},
		&models.Attachment{},
		&models.PushLog{},
	}

	migrator := DB.Migrator()

	for _, model := range models {
		if !migrator.HasTable(model) {
			if err := DB.AutoMigrate(model); err != nil {
				return err
			}
		}
	}

	return nil
}
