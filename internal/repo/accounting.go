package repo

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"sampleshare/internal/model"
)

// AccountingRepository пишет учёт выдач. Все операции — одиночные атомарные
// upsert-команды: никакого read-then-write, счётчики корректны при
// параллельных выдачах одному пользователю в один день.
type AccountingRepository interface {
	// RegisterListDownload заводит список выдачи и прибавляет его размер к
	// суточному агрегату. Нулевое число строк — списка нет, возвращается nil.
	RegisterListDownload(ctx context.Context, ownerUUID, label, listType string, from, to time.Time, fileCount int64) (*int64, error)

	// AddFileToList привязывает образец к открытому списку.
	AddFileToList(ctx context.Context, listID int64, ownerUUID, hash string, size int64, detected bool) error

	// RegisterFileDownload фиксирует выдачу файла: дневной счётчик пары
	// (пользователь, хеш) плюс часовой агрегат (файлы и байты).
	RegisterFileDownload(ctx context.Context, ownerUUID string, listID *int64, hash string, size int64, vendor string, detected bool) error
}

type accountingRepo struct {
	db *gorm.DB

	// подменяется в тестах для симуляции дня
	now func() time.Time
}

// NewAccountingRepository создаёт реализацию репозитория учёта.
func NewAccountingRepository(db *gorm.DB) AccountingRepository {
	return &accountingRepo{db: db, now: time.Now}
}

func (r *accountingRepo) RegisterListDownload(ctx context.Context, ownerUUID, label, listType string, from, to time.Time, fileCount int64) (*int64, error) {
	if fileCount == 0 {
		return nil, nil
	}
	list := model.DownloadList{
		OwnerUUID:     ownerUUID,
		Label:         label,
		FileCount:     fileCount,
		StartInterval: from.Format(model.DayFormat),
		EndInterval:   to.Format(model.DayFormat),
		ListType:      listType,
	}
	if err := r.db.WithContext(ctx).Create(&list).Error; err != nil {
		return nil, err
	}

	now := r.now()
	stat := model.DailyStat{
		Day:         now.Format(model.DayFormat),
		Hour:        now.Hour(),
		OwnerUUID:   ownerUUID,
		ListedCount: fileCount,
	}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "day"}, {Name: "hour"}, {Name: "owner_uuid"}, {Name: "vendor"}},
		DoUpdates: clause.Assignments(map[string]any{
			"listed_count": gorm.Expr("daily_stats.listed_count + ?", fileCount),
		}),
	}).Create(&stat).Error
	if err != nil {
		return nil, err
	}
	return &list.ID, nil
}

func (r *accountingRepo) AddFileToList(ctx context.Context, listID int64, ownerUUID, hash string, size int64, detected bool) error {
	entry := model.ListEntry{
		ListID:    listID,
		OwnerUUID: ownerUUID,
		Hash:      strings.ToUpper(hash),
		FileSize:  size,
		Detected:  detected,
	}
	return r.db.WithContext(ctx).Create(&entry).Error
}

func (r *accountingRepo) RegisterFileDownload(ctx context.Context, ownerUUID string, listID *int64, hash string, size int64, vendor string, detected bool) error {
	now := r.now()
	day := now.Format(model.DayFormat)

	rec := model.DownloadRecord{
		ListID:    listID,
		OwnerUUID: ownerUUID,
		Hash:      strings.ToUpper(hash),
		Day:       day,
		Count:     1,
		LastSize:  size,
		Detected:  detected,
		Vendor:    vendor,
	}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "owner_uuid"}, {Name: "hash"}, {Name: "day"}},
		DoUpdates: clause.Assignments(map[string]any{
			"count":     gorm.Expr("download_records.count + 1"),
			"last_size": size,
		}),
	}).Create(&rec).Error
	if err != nil {
		return err
	}

	stat := model.DailyStat{
		Day:       day,
		Hour:      now.Hour(),
		OwnerUUID: ownerUUID,
		Vendor:    vendor,
		FileCount: 1,
		ByteCount: size,
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "day"}, {Name: "hour"}, {Name: "owner_uuid"}, {Name: "vendor"}},
		DoUpdates: clause.Assignments(map[string]any{
			"file_count": gorm.Expr("daily_stats.file_count + 1"),
			"byte_count": gorm.Expr("daily_stats.byte_count + ?", size),
		}),
	}).Create(&stat).Error
}
