package storage

import (
	"os"
	"path/filepath"
	"strings"

	"sampleshare/internal/apperr"
)

// shardWidth — ширина одного уровня шардирования в символах хеша.
// Три hex-символа на уровень ограничивают фан-аут каталога 4096 записями.
const shardWidth = 3

// minHashLen — минимум символов для трёх уровней шардов.
const minHashLen = 3 * shardWidth

// DerivePath выводит детерминированный путь образца в дереве хранилища:
// root/H[0:3]/H[3:6]/H[6:9]/H, где H — полный hex-хеш в верхнем регистре.
// Хеш короче девяти символов или не-hex — ErrInvalidArgument.
func DerivePath(root, hash string) (string, error) {
	h := strings.ToUpper(strings.TrimSpace(hash))
	if len(h) < minHashLen {
		return "", apperr.New(apperr.ErrInvalidArgument, "hash too short for sharded path: "+h)
	}
	for _, r := range h {
		if (r < '0' || r > '9') && (r < 'A' || r > 'F') {
			return "", apperr.New(apperr.ErrInvalidArgument, "hash is not hex: "+h)
		}
	}
	return filepath.Join(root, h[0:3], h[3:6], h[6:9], h), nil
}

// Exists проверяет наличие файла по пути, не открывая его.
func Exists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// Store — дерево хранилища одного корпуса.
type Store struct {
	Root string
}

// SamplePath — путь образца с данным хешем внутри этого дерева.
func (s Store) SamplePath(hash string) (string, error) {
	return DerivePath(s.Root, hash)
}

// Has сообщает, лежит ли образец с данным хешем в дереве.
// Кривой хеш считается отсутствующим.
func (s Store) Has(hash string) bool {
	p, err := s.SamplePath(hash)
	if err != nil {
		return false
	}
	return Exists(p)
}
