package model

import "time"

// SampleClean — запись корпуса чистых файлов. После загрузки неизменяема,
// кроме флага Enabled. У Enabled нет default-тега: gorm выбрасывает
// zero-value поля с default из INSERT, и false было бы не записать.
type SampleClean struct {
	ID       int64     `gorm:"primaryKey"`
	MD5      string    `gorm:"type:char(32);index;not null"`
	SHA256   string    `gorm:"type:char(64);index"`
	FileSize int64     `gorm:"not null;default:0"`
	Vendor   string    `gorm:"index;not null"` // имя группы-владельца
	Enabled  bool      `gorm:"not null"`
	AddedAt  time.Time `gorm:"index;not null"`
}

func (SampleClean) TableName() string { return "samples_clean" }

// SampleDetected — запись корпуса детектируемых образцов.
type SampleDetected struct {
	ID              int64  `gorm:"primaryKey"`
	MD5             string `gorm:"type:char(32);index;not null"`
	SHA256          string `gorm:"type:char(64);index"`
	FileSize        int64  `gorm:"not null;default:0"`
	Vendor          string `gorm:"index;not null"`
	NamePrefix      string `gorm:"index"`
	DetectionSuffix string
	Enabled         bool      `gorm:"not null"`
	AddedAt         time.Time `gorm:"index;not null"`
}

func (SampleDetected) TableName() string { return "samples_detected" }

// SampleRow — общая проекция строки каталога, которую отдаёт выборка
// по обоим корпусам.
type SampleRow struct {
	MD5      string
	SHA256   string
	FileSize int64
	Vendor   string
}

// URLRecord — URL для выдачи по action=geturls.
type URLRecord struct {
	ID      int64     `gorm:"primaryKey"`
	URL     string    `gorm:"not null"`
	Enabled bool      `gorm:"not null"`
	AddedAt time.Time `gorm:"index;not null"`
}

func (URLRecord) TableName() string { return "urls" }
