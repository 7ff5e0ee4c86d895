package repo

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"

	"sampleshare/internal/apperr"
	"sampleshare/internal/catalog"
	"sampleshare/internal/model"
)

// Размер пачки при потоковой выборке каталога: манифест не буферизуется
// целиком даже на больших корпусах.
const catalogBatchSize = 500

// Поддерживаемые алгоритмы хеширования при точечном поиске.
var hashColumns = map[string]string{
	"md5":    "md5",
	"sha256": "sha256",
}

// CatalogRepository рендерит структурный предикат каталога против БД.
type CatalogRepository interface {
	// Count возвращает число строк, удовлетворяющих предикату.
	Count(ctx context.Context, f catalog.Filter) (int64, error)

	// ForEach потоково обходит строки предиката пачками.
	// Ошибка из fn прерывает обход и возвращается наружу.
	ForEach(ctx context.Context, f catalog.Filter, fn func(model.SampleRow) error) error

	// LookupByHash — точечный поиск по указанному алгоритму хеша.
	// Неизвестный алгоритм — ErrUnsupported, пустой результат — ErrNotFound.
	LookupByHash(ctx context.Context, corpus catalog.Corpus, algo, value string) (*model.SampleRow, error)

	// URLsInWindow отдаёт включённые URL в окне времени (ограничение сверху —
	// защита от безразмерной выдачи).
	URLsInWindow(ctx context.Context, from, to time.Time, limit int) ([]string, error)
}

type catalogRepo struct {
	db *gorm.DB
}

// NewCatalogRepository создаёт реализацию репозитория каталога.
func NewCatalogRepository(db *gorm.DB) CatalogRepository {
	return &catalogRepo{db: db}
}

// query собирает выборку по предикату: окно, enabled, битовый тест группы,
// префикс/суффикс для детектируемого корпуса.
func (r *catalogRepo) query(ctx context.Context, f catalog.Filter) *gorm.DB {
	table := model.SampleClean{}.TableName()
	if f.Corpus == catalog.Detected {
		table = model.SampleDetected{}.TableName()
	}
	tx := r.db.WithContext(ctx).
		Table(table).
		Joins("JOIN groups ON groups.name = "+table+".vendor").
		Where(table+".added_at >= ? AND "+table+".added_at <= ?", f.From, f.To).
		Where(table+".enabled = ?", true).
		Where("(groups.id & ?) > 0", int64(f.GroupMask))
	if f.Corpus == catalog.Detected {
		if f.Prefix != "" {
			tx = tx.Where(table+".name_prefix = ?", f.Prefix)
		}
		if f.Suffix != "" {
			tx = tx.Where(table+".detection_suffix LIKE ?", f.Suffix+"%")
		}
	}
	return tx
}

func (r *catalogRepo) Count(ctx context.Context, f catalog.Filter) (int64, error) {
	if f.Unsatisfiable {
		return 0, nil
	}
	var n int64
	if err := r.query(ctx, f).Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}

func (r *catalogRepo) ForEach(ctx context.Context, f catalog.Filter, fn func(model.SampleRow) error) error {
	if f.Unsatisfiable {
		return nil
	}
	var batch []model.SampleRow
	res := r.query(ctx, f).
		Select("md5, sha256, file_size, vendor").
		FindInBatches(&batch, catalogBatchSize, func(_ *gorm.DB, _ int) error {
			for _, row := range batch {
				if err := fn(row); err != nil {
					return err
				}
			}
			return nil
		})
	return res.Error
}

func (r *catalogRepo) LookupByHash(ctx context.Context, corpus catalog.Corpus, algo, value string) (*model.SampleRow, error) {
	col, ok := hashColumns[strings.ToLower(algo)]
	if !ok {
		return nil, apperr.New(apperr.ErrUnsupported, "hash algorithm "+algo)
	}
	table := model.SampleClean{}.TableName()
	if corpus == catalog.Detected {
		table = model.SampleDetected{}.TableName()
	}
	var row model.SampleRow
	tx := r.db.WithContext(ctx).
		Table(table).
		Select("md5, sha256, file_size, vendor").
		Where("UPPER("+col+") = ?", strings.ToUpper(value)).
		Limit(1).
		Find(&row)
	if tx.Error != nil {
		return nil, tx.Error
	}
	if tx.RowsAffected == 0 {
		return nil, apperr.New(apperr.ErrNotFound, "no catalog row for "+algo+" "+value)
	}
	return &row, nil
}

func (r *catalogRepo) URLsInWindow(ctx context.Context, from, to time.Time, limit int) ([]string, error) {
	var urls []string
	err := r.db.WithContext(ctx).
		Table(model.URLRecord{}.TableName()).
		Where("added_at >= ? AND added_at <= ?", from, to).
		Where("enabled = ?", true).
		Limit(limit).
		Pluck("url", &urls).Error
	if err != nil {
		return nil, err
	}
	return urls, nil
}
