package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"sampleshare/internal/apperr"
	"sampleshare/internal/model"
)

// UserRepository отдаёт разрешённый контекст внешнего пользователя.
// Ядро дальше работает только с UserContext, запись User не трогает.
type UserRepository interface {
	// GetContextByName ищет пользователя по имени и собирает его контекст
	// вместе с маской групп. Неизвестное имя — ErrNotFound, неактивный или
	// неодобренный аккаунт — ErrPermissionDenied.
	GetContextByName(ctx context.Context, name string) (*model.UserContext, error)
}

type userRepo struct {
	db *gorm.DB
}

// NewUserRepository создаёт реализацию репозитория пользователей.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepo{db: db}
}

func (r *userRepo) GetContextByName(ctx context.Context, name string) (*model.UserContext, error) {
	var u model.User
	err := r.db.WithContext(ctx).Where("name = ?", name).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.New(apperr.ErrNotFound, "user "+name)
	}
	if err != nil {
		return nil, err
	}
	if u.Status != model.StatusApproved {
		return nil, apperr.New(apperr.ErrPermissionDenied, "account not activated or not approved")
	}

	// отсутствие строки маски — легальный случай: пустая маска
	var g model.UserGroups
	err = r.db.WithContext(ctx).Where("user_uuid = ?", u.UUID).First(&g).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	return &model.UserContext{
		UUID:           u.UUID,
		Name:           u.Name,
		GroupMask:      uint64(g.Groups),
		RightsClean:    u.RightsClean,
		RightsURLs:     u.RightsURLs,
		RecipientKey:   u.PGPKeyName,
		LimitationDate: u.LimitationDate,
	}, nil
}
