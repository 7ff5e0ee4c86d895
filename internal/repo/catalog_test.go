package repo

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"sampleshare/internal/apperr"
	"sampleshare/internal/catalog"
	"sampleshare/internal/model"
)

// наполнение каталога: группы 1, 4, 16 и записи разных вендоров
func seedCatalog(t *testing.T, db *gorm.DB) {
	t.Helper()
	groups := []model.Group{
		{ID: 1, Name: "alpha"},
		{ID: 2, Name: "beta"},
		{ID: 4, Name: "gamma"},
		{ID: 16, Name: "delta"},
	}
	require.NoError(t, db.Create(&groups).Error)

	added := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)
	detected := []model.SampleDetected{
		{MD5: "AAAA0000AAAA0000AAAA0000AAAA0000", SHA256: "A1", FileSize: 100, Vendor: "alpha", NamePrefix: "Win32", DetectionSuffix: "Agent.ABC", Enabled: true, AddedAt: added},
		{MD5: "BBBB0000BBBB0000BBBB0000BBBB0000", SHA256: "B1", FileSize: 200, Vendor: "beta", Enabled: true, AddedAt: added},
		{MD5: "CCCC0000CCCC0000CCCC0000CCCC0000", SHA256: "C1", FileSize: 300, Vendor: "gamma", NamePrefix: "Win32", DetectionSuffix: "Krypt.XY", Enabled: true, AddedAt: added},
		{MD5: "DDDD0000DDDD0000DDDD0000DDDD0000", SHA256: "D1", FileSize: 400, Vendor: "delta", Enabled: false, AddedAt: added},
		{MD5: "EEEE0000EEEE0000EEEE0000EEEE0000", SHA256: "E1", FileSize: 500, Vendor: "delta", Enabled: true, AddedAt: added.AddDate(1, 0, 0)},
	}
	require.NoError(t, db.Create(&detected).Error)

	clean := []model.SampleClean{
		{MD5: "11110000111100001111000011110000", SHA256: "CA", FileSize: 50, Vendor: "alpha", Enabled: true, AddedAt: added},
	}
	require.NoError(t, db.Create(&clean).Error)
}

func window() (time.Time, time.Time) {
	return time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC)
}

func TestCatalogRepository_MaskBitFilter(t *testing.T) {
	db := newTestDB(t)
	seedCatalog(t, db)
	r := NewCatalogRepository(db)
	ctx := context.Background()
	from, to := window()

	// маска 21 = группы 1, 4, 16: beta (id 2) отсекается битовым тестом,
	// delta-записи отпадают по enabled и окну
	f := catalog.BuildFilter(catalog.Detected, from, to, 21, true, "", "")
	n, err := r.Count(ctx, f)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	var got []string
	require.NoError(t, r.ForEach(ctx, f, func(row model.SampleRow) error {
		got = append(got, row.Vendor)
		return nil
	}))
	assert.ElementsMatch(t, []string{"alpha", "gamma"}, got)
}

// Enabled — единственное изменяемое поле каталога; false обязан доезжать
// до базы через обычный Create, без обходных Update.
func TestCatalogRepository_DisabledRowPersistsAndIsFiltered(t *testing.T) {
	db := newTestDB(t)
	r := NewCatalogRepository(db)
	ctx := context.Background()
	from, to := window()

	require.NoError(t, db.Create(&model.Group{ID: 1, Name: "alpha"}).Error)
	added := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)
	require.NoError(t, db.Create(&model.SampleDetected{
		MD5: "FFFF0000FFFF0000FFFF0000FFFF0000", FileSize: 10, Vendor: "alpha",
		Enabled: false, AddedAt: added,
	}).Error)

	var got model.SampleDetected
	require.NoError(t, db.First(&got, "md5 = ?", "FFFF0000FFFF0000FFFF0000FFFF0000").Error)
	assert.False(t, got.Enabled)

	f := catalog.BuildFilter(catalog.Detected, from, to, 1, true, "", "")
	n, err := r.Count(ctx, f)
	require.NoError(t, err)
	assert.Zero(t, n)

	var url model.URLRecord
	require.NoError(t, db.Create(&model.URLRecord{URL: "http://bad.example/off", Enabled: false, AddedAt: added}).Error)
	require.NoError(t, db.First(&url, "url = ?", "http://bad.example/off").Error)
	assert.False(t, url.Enabled)
}

func TestCatalogRepository_PrefixSuffix(t *testing.T) {
	db := newTestDB(t)
	seedCatalog(t, db)
	r := NewCatalogRepository(db)
	ctx := context.Background()
	from, to := window()

	f := catalog.BuildFilter(catalog.Detected, from, to, 21, true, "Win32", "Agent")
	var rows []model.SampleRow
	require.NoError(t, r.ForEach(ctx, f, func(row model.SampleRow) error {
		rows = append(rows, row)
		return nil
	}))
	if assert.Len(t, rows, 1) {
		assert.Equal(t, "AAAA0000AAAA0000AAAA0000AAAA0000", rows[0].MD5)
	}
}

func TestCatalogRepository_UnsatisfiableSkipsQuery(t *testing.T) {
	db := newTestDB(t)
	seedCatalog(t, db)
	r := NewCatalogRepository(db)
	ctx := context.Background()
	from, to := window()

	// чистый корпус без права — ноль строк без обращения к данным
	f := catalog.BuildFilter(catalog.Clean, from, to, 21, false, "", "")
	n, err := r.Count(ctx, f)
	require.NoError(t, err)
	assert.Zero(t, n)

	called := false
	require.NoError(t, r.ForEach(ctx, f, func(model.SampleRow) error {
		called = true
		return nil
	}))
	assert.False(t, called)
}

func TestCatalogRepository_LookupByHash(t *testing.T) {
	db := newTestDB(t)
	seedCatalog(t, db)
	r := NewCatalogRepository(db)
	ctx := context.Background()

	row, err := r.LookupByHash(ctx, catalog.Detected, "md5", "aaaa0000aaaa0000aaaa0000aaaa0000")
	require.NoError(t, err)
	assert.Equal(t, int64(100), row.FileSize)
	assert.Equal(t, "alpha", row.Vendor)

	row, err = r.LookupByHash(ctx, catalog.Clean, "sha256", "ca")
	require.NoError(t, err)
	assert.Equal(t, "11110000111100001111000011110000", row.MD5)

	_, err = r.LookupByHash(ctx, catalog.Detected, "md5", "00000000000000000000000000000000")
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	_, err = r.LookupByHash(ctx, catalog.Detected, "sha1", "whatever")
	assert.ErrorIs(t, err, apperr.ErrUnsupported)
}

func TestCatalogRepository_URLsInWindow(t *testing.T) {
	db := newTestDB(t)
	r := NewCatalogRepository(db)
	ctx := context.Background()
	from, to := window()

	added := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, db.Create(&[]model.URLRecord{
		{URL: "http://bad.example/a", Enabled: true, AddedAt: added},
		{URL: "http://bad.example/b", Enabled: false, AddedAt: added},
		{URL: "http://bad.example/c", Enabled: true, AddedAt: added.AddDate(2, 0, 0)},
	}).Error)

	urls, err := r.URLsInWindow(ctx, from, to, 400000)
	require.NoError(t, err)
	assert.Equal(t, []string{"http://bad.example/a"}, urls)
}
