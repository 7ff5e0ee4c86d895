package model

import "time"

// Статус внешнего пользователя: активен и одобрен администратором.
const StatusApproved = 2

// User — внешний пользователь обмена (партнёр). Профильный CRUD живёт
// в админке, ядро читает запись только для выдачи.
type User struct {
	ID          int64  `gorm:"primaryKey"`
	UUID        string `gorm:"type:uuid;uniqueIndex;not null"`
	Name        string `gorm:"uniqueIndex;not null"`
	PGPKeyName  string `gorm:"not null"` // идентичность ключа получателя (обычно e-mail)
	Status      int    `gorm:"not null;default:0"`
	Company     string
	RightsClean bool `gorm:"not null;default:false"`
	RightsURLs  bool `gorm:"not null;default:false"`

	// Нижняя граница окна выдачи: раньше этой даты пользователь не видит ничего.
	LimitationDate time.Time

	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

// UserGroups — сырая строка маски групп пользователя.
type UserGroups struct {
	UserUUID string `gorm:"type:uuid;primaryKey"`
	Groups   int64  `gorm:"not null;default:0"`
}

// Group — группа доступа; id всегда степень двойки, имя совпадает
// с vendor/type записей каталога.
type Group struct {
	ID   int64  `gorm:"primaryKey"`
	Name string `gorm:"uniqueIndex;not null"`
}

// UserContext — разрешённый контекст запрашивающего пользователя.
// Собирается репозиторием из User+UserGroups; ядро его не изменяет.
type UserContext struct {
	UUID           string
	Name           string
	GroupMask      uint64
	RightsClean    bool
	RightsURLs     bool
	RecipientKey   string
	LimitationDate time.Time
}
