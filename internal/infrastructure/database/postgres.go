package database

import (
	"log"
	"os"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/totegamma/daybook/internal/infrastructure/database/models"
)

func newGormConfig() *gorm.Config {
	gormLogger := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags), // io writer
		logger.Config{
			SlowThreshold:             300 * time.Millisecond, // Slow SQL threshold
			LogLevel:                  logger.Warn,            // Log level
			IgnoreRecordNotFoundError: true,                   // Ignore ErrRecordNotFound error for logger
			Colorful:                  true,                   // Enable color
		},
	)

	return &gorm.Config{
		TranslateError: true,
		Logger:         gormLogger,
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	}
}

func NewPostgres(dsn string) (*gorm.DB, error) {
	return gorm.Open(postgres.Open(dsn), newGormConfig())
}

// NewSQLite opens a file backed database. Used for local development and tests.
func NewSQLite(path string) (*gorm.DB, error) {
	dsn := "file:" + path + "?_foreign_keys=1&_busy_timeout=5000"
	return gorm.Open(sqlite.Open(dsn), newGormConfig())
}

func Migrate(db *gorm.DB) error {
	err := db.SetupJoinTable(&models.Entry{}, "Tags", &models.EntryTag{})
	if err != nil {
		return err
	}
	err = db.SetupJoinTable(&models.Entry{}, "People", &models.EntryPerson{})
	if err != nil {
		return err
	}

	return db.AutoMigrate(
		&models.Tag{},
		&models.Person{},
		&models.Entry{},
		&models.EntryTag{},
		&models.EntryPerson{},
		&models.Attachment{},
		&models.ActivityLog{},
		&models.Streak{},
	)
}
