package model

import "time"

// Типы списков выдачи.
const (
	ListTypeClean    = "Clean"
	ListTypeDetected = "Detected"
)

// DownloadList — логическая партия: всё, что выдано пользователю за один
// вызов каталога. Используется для аудита и привязки счётчиков.
type DownloadList struct {
	ID            int64     `gorm:"primaryKey"`
	OwnerUUID     string    `gorm:"type:uuid;index;not null"`
	CreatedAt     time.Time `gorm:"autoCreateTime"`
	Label         string    // префикс/суффикс детекта, как их запросили
	FileCount     int64     `gorm:"not null;default:0"`
	StartInterval string
	EndInterval   string
	ListType      string `gorm:"not null"`
}

// DownloadRecord — накопительный счётчик выдач пары (пользователь, хеш).
// Уникальный индекс по (owner_uuid, hash, day) держит дневной upsert:
// повторная выдача в тот же день инкрементирует count одной командой.
// Detected без default-тега: false чистого корпуса иначе не записывается.
type DownloadRecord struct {
	ID        int64  `gorm:"primaryKey"`
	ListID    *int64 `gorm:"index"` // открытый список запроса, если был
	OwnerUUID string `gorm:"type:uuid;not null;uniqueIndex:idx_dr_owner_hash_day"`
	Hash      string `gorm:"not null;uniqueIndex:idx_dr_owner_hash_day"` // верхний регистр
	Day       string `gorm:"not null;uniqueIndex:idx_dr_owner_hash_day"`
	Count     int64  `gorm:"not null;default:0"`
	LastSize  int64  `gorm:"not null;default:0"`
	Detected  bool   `gorm:"not null"`
	Vendor    string
}

// ListEntry — привязка образца к открытому списку выдачи.
type ListEntry struct {
	ID        int64     `gorm:"primaryKey"`
	ListID    int64     `gorm:"index;not null"`
	OwnerUUID string    `gorm:"type:uuid;index;not null"`
	Hash      string    `gorm:"not null"`
	FileSize  int64     `gorm:"not null;default:0"`
	Detected  bool      `gorm:"not null"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

// DailyStat — суточный агрегат по часам. Только upsert, никогда
// read-then-write.
type DailyStat struct {
	Day         string `gorm:"primaryKey"`
	Hour        int    `gorm:"primaryKey"`
	OwnerUUID   string `gorm:"type:uuid;primaryKey"`
	Vendor      string `gorm:"primaryKey;default:''"`
	FileCount   int64  `gorm:"not null;default:0"`
	ByteCount   int64  `gorm:"not null;default:0"`
	ListedCount int64  `gorm:"not null;default:0"`
}

// DayFormat — формат суточного ключа агрегатов.
const DayFormat = "2006-01-02"
