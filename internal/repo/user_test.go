package repo

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sampleshare/internal/apperr"
	"sampleshare/internal/model"
)

func TestUserRepository_GetContextByName(t *testing.T) {
	db := newTestDB(t)
	r := NewUserRepository(db)
	ctx := context.Background()

	lim := time.Date(2023, 1, 15, 0, 0, 0, 0, time.UTC)
	require.NoError(t, db.Create(&model.User{
		UUID:           "u-1111",
		Name:           "partner",
		PGPKeyName:     "Partner Labs <keys@partner.example>",
		Status:         model.StatusApproved,
		RightsClean:    true,
		LimitationDate: lim,
	}).Error)
	require.NoError(t, db.Create(&model.UserGroups{UserUUID: "u-1111", Groups: 21}).Error)

	uc, err := r.GetContextByName(ctx, "partner")
	require.NoError(t, err)
	assert.Equal(t, "u-1111", uc.UUID)
	assert.Equal(t, "partner", uc.Name)
	assert.Equal(t, uint64(21), uc.GroupMask)
	assert.True(t, uc.RightsClean)
	assert.False(t, uc.RightsURLs)
	assert.Equal(t, "Partner Labs <keys@partner.example>", uc.RecipientKey)
	assert.Equal(t, lim, uc.LimitationDate.UTC())
}

func TestUserRepository_MissingGroupsRowMeansEmptyMask(t *testing.T) {
	db := newTestDB(t)
	r := NewUserRepository(db)

	require.NoError(t, db.Create(&model.User{
		UUID: "u-2222", Name: "nomask", Status: model.StatusApproved,
	}).Error)

	uc, err := r.GetContextByName(context.Background(), "nomask")
	require.NoError(t, err)
	assert.Zero(t, uc.GroupMask)
}

func TestUserRepository_UnknownAndUnapproved(t *testing.T) {
	db := newTestDB(t)
	r := NewUserRepository(db)
	ctx := context.Background()

	_, err := r.GetContextByName(ctx, "ghost")
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	require.NoError(t, db.Create(&model.User{
		UUID: "u-3333", Name: "pending", Status: 1,
	}).Error)
	_, err = r.GetContextByName(ctx, "pending")
	assert.ErrorIs(t, err, apperr.ErrPermissionDenied)
}
