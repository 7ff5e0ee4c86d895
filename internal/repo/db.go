package repo

import (
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"sampleshare/internal/model"
)

// InitDB открывает Postgres и прогоняет автомиграции всех моделей ядра.
func InitDB(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}
	if err := Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

// Migrate приводит схему к моделям. Вынесена отдельно, чтобы тесты могли
// гонять её на in-memory SQLite.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.User{},
		&model.UserGroups{},
		&model.Group{},
		&model.SampleClean{},
		&model.SampleDetected{},
		&model.URLRecord{},
		&model.DownloadList{},
		&model.DownloadRecord{},
		&model.ListEntry{},
		&model.DailyStat{},
	)
}
