package encryption

import (
	"compress/gzip"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/google/uuid"

	"sampleshare/internal/apperr"
)

// Явная таблица алгоритмов сжатия. Имя "zlib" историческое, по протоколу;
// поток на деле gzip. Неизвестное имя — всегда ошибка, не тихий no-op.
var compressors = map[string]func(src, dst string) error{
	"zlib": gzipFile,
}

// SupportedCompression перечисляет поддерживаемые алгоритмы сжатия.
func SupportedCompression() []string {
	names := make([]string, 0, len(compressors))
	for name := range compressors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Compress сжимает файл заявленным алгоритмом в новый временный файл и
// возвращает его путь. Владение результатом — у вызвавшего.
func (p *Pipeline) Compress(sourcePath, algorithm string) (string, error) {
	fn, ok := compressors[algorithm]
	if !ok {
		return "", apperr.New(apperr.ErrUnsupported, "compression "+algorithm)
	}
	dst := filepath.Join(p.tempDir, "sample-"+uuid.NewString()+".gz")
	if err := fn(sourcePath, dst); err != nil {
		p.removeQuiet(dst)
		return "", apperr.Wrap(apperr.ErrIO, "compress "+sourcePath, err)
	}
	info, err := os.Stat(dst)
	if err != nil || info.Size() == 0 {
		p.removeQuiet(dst)
		return "", apperr.New(apperr.ErrIO, "compression produced no output for "+sourcePath)
	}
	return dst, nil
}

func gzipFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	zw := gzip.NewWriter(out)
	if _, err := io.Copy(zw, in); err != nil {
		zw.Close()
		out.Close()
		return err
	}
	if err := zw.Close(); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
