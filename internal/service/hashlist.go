package service

import (
	"context"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"

	"sampleshare/internal/model"
	"sampleshare/internal/repo"
	"sampleshare/internal/storage"
)

// HashListBuilder потоково собирает манифест hash:size по выборке каталога.
// Манифест пишется в приёмник построчно, без буферизации корпуса целиком.
type HashListBuilder struct {
	catalog    repo.CatalogRepository
	accounting repo.AccountingRepository
	log        *zap.SugaredLogger
}

// NewHashListBuilder создаёт сборщик манифестов.
func NewHashListBuilder(cat repo.CatalogRepository, acc repo.AccountingRepository, log *zap.SugaredLogger) *HashListBuilder {
	return &HashListBuilder{catalog: cat, accounting: acc, log: log}
}

// Build регистрирует список выдачи и пишет манифест в w. Возвращает число
// реально записанных строк.
//
// Зарегистрированный размер списка — это число строк ВЫБОРКИ, до фильтров
// сборки (пустой хеш, нулевой размер, отсутствующий файл); записанных строк
// может быть меньше. Так считал и исходный учёт; решение зафиксировано
// в DESIGN.md.
func (b *HashListBuilder) Build(ctx context.Context, req *Request, store storage.Store, w io.Writer) (int64, error) {
	f := req.filter()
	total, err := b.catalog.Count(ctx, f)
	if err != nil {
		return 0, err
	}

	listID, err := b.accounting.RegisterListDownload(ctx, req.User.UUID, req.label(), req.listType(), req.From, req.To, total)
	if err != nil {
		return 0, err
	}
	req.listID = listID

	var written int64
	err = b.catalog.ForEach(ctx, f, func(row model.SampleRow) error {
		if row.FileSize <= 0 || strings.TrimSpace(row.MD5) == "" {
			return nil
		}
		if !store.Has(row.MD5) {
			return nil
		}
		if listID != nil {
			if err := b.accounting.AddFileToList(ctx, *listID, req.User.UUID, row.MD5, row.FileSize, req.detected()); err != nil {
				return err
			}
		}
		hash := row.MD5
		if req.HashAlgo == "sha256" {
			hash = row.SHA256
		}
		if _, err := fmt.Fprintf(w, "%s:%d\r\n", strings.ToUpper(hash), row.FileSize); err != nil {
			return err
		}
		written++
		return nil
	})
	if err != nil {
		return written, err
	}

	if written < total {
		b.log.Infow("hash list thinner than catalog selection",
			"user", req.User.UUID, "selected", total, "written", written)
	}
	return written, nil
}
