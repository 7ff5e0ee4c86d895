package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"

	"sampleshare/internal/apperr"
	"sampleshare/internal/catalog"
	"sampleshare/internal/encryption"
	"sampleshare/internal/model"
	"sampleshare/internal/repo"
	"sampleshare/internal/storage"
)

// Потолок выборки URL за один запрос.
const maxURLRows = 400000

// Delivery — готовый к отдаче артефакт: поток шифртекста с именем и длиной.
// Close обязателен на любом пути, включая обрыв потребителя: он закрывает
// поток и убирает временный шифртекст.
type Delivery struct {
	Filename string
	Size     int64

	r       io.Reader
	closeFn func() error
}

func (d *Delivery) Read(p []byte) (int, error) {
	n, err := d.r.Read(p)
	deliveryBytesTotal.Add(float64(n))
	return n, err
}

func (d *Delivery) Close() error {
	activeDeliveries.Dec()
	if d.closeFn == nil {
		return nil
	}
	return d.closeFn()
}

// newFileDelivery оборачивает временный файл шифртекста; Close удаляет файл.
func newFileDelivery(path, filename string, log *zap.SugaredLogger) (*Delivery, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, apperr.Wrap(apperr.ErrIO, "open ciphertext "+path, err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, apperr.Wrap(apperr.ErrIO, "stat ciphertext "+path, err)
	}
	activeDeliveries.Inc()
	return &Delivery{
		Filename: filename,
		Size:     info.Size(),
		r:        f,
		closeFn: func() error {
			err := f.Close()
			if rmErr := os.Remove(path); rmErr != nil && !os.IsNotExist(rmErr) {
				log.Warnw("ciphertext cleanup failed", "path", path, "error", rmErr)
			}
			return err
		},
	}, nil
}

// newBufferDelivery оборачивает шифртекст, уже вычитанный в память.
func newBufferDelivery(data []byte, filename string) *Delivery {
	activeDeliveries.Inc()
	return &Delivery{
		Filename: filename,
		Size:     int64(len(data)),
		r:        bytes.NewReader(data),
	}
}

// DeliveryService — конвейер выдачи: права → каталог → адрес в хранилище →
// шифрование → учёт → поток. Стадии строго в этом порядке; учёт не
// пропускается, если выдача состоялась.
type DeliveryService struct {
	catalog    repo.CatalogRepository
	accounting repo.AccountingRepository
	pipeline   *encryption.Pipeline
	hashlist   *HashListBuilder

	cleanStore    storage.Store
	detectedStore storage.Store

	log *zap.SugaredLogger
}

// NewDeliveryService собирает сервис выдачи.
func NewDeliveryService(
	cat repo.CatalogRepository,
	acc repo.AccountingRepository,
	pipe *encryption.Pipeline,
	cleanRoot, detectedRoot string,
	log *zap.SugaredLogger,
) *DeliveryService {
	return &DeliveryService{
		catalog:       cat,
		accounting:    acc,
		pipeline:      pipe,
		hashlist:      NewHashListBuilder(cat, acc, log),
		cleanStore:    storage.Store{Root: cleanRoot},
		detectedStore: storage.Store{Root: detectedRoot},
		log:           log,
	}
}

// store — дерево хранилища корпуса запроса.
func (s *DeliveryService) store(req *Request) storage.Store {
	if req.Corpus == catalog.Clean {
		return s.cleanStore
	}
	return s.detectedStore
}

// SupportedHashes — список алгоритмов хеширования для дискавери-запроса.
func (s *DeliveryService) SupportedHashes() string {
	var b strings.Builder
	for _, h := range supportedHashes {
		b.WriteString(strings.ToUpper(h))
		b.WriteString("\r\n")
	}
	return b.String()
}

// SupportedCompression — список алгоритмов сжатия для дискавери-запроса.
func (s *DeliveryService) SupportedCompression() string {
	var b strings.Builder
	for _, c := range encryption.SupportedCompression() {
		b.WriteString(c)
		b.WriteString("\r\n")
	}
	return b.String()
}

// verifyFileHead вычитывает голову шифртекста и прогоняет структурную проверку.
func verifyFileHead(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return apperr.Wrap(apperr.ErrIO, "open ciphertext "+path, err)
	}
	defer f.Close()
	head := make([]byte, 10)
	n, err := io.ReadFull(f, head)
	if err != nil && n == 0 {
		return apperr.Wrap(apperr.ErrEncryption, "ciphertext unreadable "+path, err)
	}
	if !encryption.VerifyCiphertext(head[:n]) {
		return apperr.New(apperr.ErrEncryption, "ciphertext failed structural check "+path)
	}
	return nil
}

// HashList строит манифест выборки каталога и отдаёт его шифртекстом.
func (s *DeliveryService) HashList(ctx context.Context, req *Request) (d *Delivery, err error) {
	defer func() { recordDelivery("hashlist", err) }()

	if req.Corpus == catalog.Clean && !req.User.RightsClean {
		return nil, apperr.New(apperr.ErrPermissionDenied, "clean corpus not granted")
	}

	manifest, err := os.CreateTemp(s.pipeline.TempDir(), "hashlist-*")
	if err != nil {
		return nil, apperr.Wrap(apperr.ErrIO, "create manifest temp", err)
	}
	manifestPath := manifest.Name()
	defer func() {
		if rmErr := os.Remove(manifestPath); rmErr != nil && !os.IsNotExist(rmErr) {
			s.log.Warnw("manifest cleanup failed", "path", manifestPath, "error", rmErr)
		}
	}()

	written, err := s.hashlist.Build(ctx, req, s.store(req), manifest)
	if cErr := manifest.Close(); cErr != nil && err == nil {
		err = apperr.Wrap(apperr.ErrIO, "close manifest "+manifestPath, cErr)
	}
	if err != nil {
		return nil, err
	}
	s.log.Infow("hash list built", "user", req.User.UUID, "corpus", req.Corpus.String(), "lines", written)

	cipherPath, err := s.pipeline.EncryptFile(ctx, manifestPath, req.User.RecipientKey)
	if err != nil {
		return nil, err
	}
	if err := verifyFileHead(cipherPath); err != nil {
		os.Remove(cipherPath)
		return nil, err
	}
	return newFileDelivery(cipherPath, "hashlist.gpg", s.log)
}

// Sample разрешает хеш в запись каталога и путь в хранилище. Отсутствие
// строки каталога и отсутствие файла наружу выглядят одинаково (NotFound),
// различаются только в логах. Учёт здесь не трогается.
func (s *DeliveryService) Sample(ctx context.Context, req *Request, hash string) (string, *model.SampleRow, error) {
	row, err := s.catalog.LookupByHash(ctx, req.Corpus, req.HashAlgo, hash)
	if err != nil {
		return "", nil, err
	}
	if strings.TrimSpace(row.MD5) == "" {
		return "", nil, apperr.New(apperr.ErrNotFound, "catalog row has empty hash")
	}
	path, err := s.store(req).SamplePath(row.MD5)
	if err != nil {
		return "", nil, err
	}
	if !storage.Exists(path) {
		s.log.Errorw("sample missing from storage", "hash", row.MD5, "path", path)
		return "", nil, apperr.New(apperr.ErrNotFound, "sample absent from storage")
	}
	return path, row, nil
}

// DeliverSample выдаёт один образец: опциональное сжатие, шифрование на ключ
// получателя, структурная проверка, учёт, поток. Все временные артефакты
// убираются на каждом пути выхода.
func (s *DeliveryService) DeliverSample(ctx context.Context, req *Request, hash string) (d *Delivery, err error) {
	defer func() { recordDelivery("sample", err) }()

	path, row, err := s.Sample(ctx, req, hash)
	if err != nil {
		return nil, err
	}

	src := path
	if req.Compression != "" {
		compressed, err := s.pipeline.Compress(path, req.Compression)
		if err != nil {
			return nil, err
		}
		defer func() {
			if rmErr := os.Remove(compressed); rmErr != nil && !os.IsNotExist(rmErr) {
				s.log.Warnw("compressed temp cleanup failed", "path", compressed, "error", rmErr)
			}
		}()
		src = compressed
	}

	cipherPath, err := s.pipeline.EncryptFile(ctx, src, req.User.RecipientKey)
	if err != nil {
		return nil, err
	}
	if err := verifyFileHead(cipherPath); err != nil {
		os.Remove(cipherPath)
		return nil, err
	}

	if err := s.accounting.RegisterFileDownload(ctx, req.User.UUID, req.listID, row.MD5, row.FileSize, row.Vendor, req.detected()); err != nil {
		os.Remove(cipherPath)
		return nil, err
	}

	prefix := "dirty_"
	if req.Corpus == catalog.Clean {
		prefix = "clean_"
	}
	return newFileDelivery(cipherPath, prefix+strings.ToUpper(hash)+".gpg", s.log)
}

// DeliverList выдаёт серию образцов по списку хешей "H1:H2:...", последовательно
// дописывая шифртексты в приёмник. Сбой по одному хешу логируется и не
// прерывает остальные; обрыв приёмника останавливает серию.
func (s *DeliveryService) DeliverList(ctx context.Context, req *Request, hashList string, sink io.Writer) (int, error) {
	delivered := 0
	for _, hash := range strings.Split(hashList, ":") {
		hash = strings.TrimSpace(hash)
		if hash == "" {
			continue
		}
		if err := ctx.Err(); err != nil {
			return delivered, err
		}
		d, err := s.DeliverSample(ctx, req, strings.ToUpper(hash))
		if err != nil {
			s.log.Errorw("list delivery: sample skipped", "hash", hash, "user", req.User.UUID, "error", err)
			continue
		}
		_, copyErr := io.Copy(sink, d)
		if closeErr := d.Close(); closeErr != nil {
			s.log.Warnw("list delivery: close failed", "hash", hash, "error", closeErr)
		}
		if copyErr != nil {
			return delivered, apperr.Wrap(apperr.ErrIO, "stream sample "+hash, copyErr)
		}
		delivered++
	}
	return delivered, nil
}

// URLs отдаёт шифртекст списка URL в окне запроса.
func (s *DeliveryService) URLs(ctx context.Context, req *Request) (d *Delivery, err error) {
	defer func() { recordDelivery("urls", err) }()

	if !req.User.RightsURLs {
		return nil, apperr.New(apperr.ErrPermissionDenied, "urls not granted")
	}
	urls, err := s.catalog.URLsInWindow(ctx, req.From, req.To, maxURLRows)
	if err != nil {
		return nil, err
	}
	if len(urls) == 0 {
		return nil, apperr.New(apperr.ErrNotFound, "no urls in window")
	}

	var b strings.Builder
	for _, u := range urls {
		b.WriteString(u)
		b.WriteByte('\n')
	}
	cipher, err := s.pipeline.EncryptBuffer(ctx, []byte(b.String()), req.User.RecipientKey)
	if err != nil {
		return nil, err
	}
	if !encryption.VerifyCiphertext(cipher) {
		return nil, apperr.New(apperr.ErrEncryption, "urls ciphertext failed structural check")
	}
	return newBufferDelivery(cipher, "urls.gpg"), nil
}

// Metadata отдаёт шифртекст документа синхронизации: детектируемые записи
// выборки, отсутствующие в локальном хранилище.
func (s *DeliveryService) Metadata(ctx context.Context, req *Request) (d *Delivery, err error) {
	defer func() { recordDelivery("metadata", err) }()

	f := catalog.BuildFilter(catalog.Detected, req.From, req.To, req.User.GroupMask, req.User.RightsClean, req.Prefix, req.Suffix)
	var missing []model.SampleRow
	err = s.catalog.ForEach(ctx, f, func(row model.SampleRow) error {
		if row.FileSize <= 0 || strings.TrimSpace(row.MD5) == "" {
			return nil
		}
		if s.detectedStore.Has(row.MD5) {
			return nil
		}
		missing = append(missing, row)
		return nil
	})
	if err != nil {
		return nil, err
	}

	doc, err := renderMetadata(missing)
	if err != nil {
		return nil, fmt.Errorf("render metadata: %w", err)
	}
	cipher, err := s.pipeline.EncryptBuffer(ctx, doc, req.User.RecipientKey)
	if err != nil {
		return nil, err
	}
	if !encryption.VerifyCiphertext(cipher) {
		return nil, apperr.New(apperr.ErrEncryption, "metadata ciphertext failed structural check")
	}
	return newBufferDelivery(cipher, "metadata.gpg"), nil
}
