package encryption

import (
	"context"
	"io"
	"os"
	"regexp"

	"go.uber.org/zap"

	"sampleshare/internal/apperr"
)

// Encryptor шифрует файл на ключ конкретного получателя и возвращает путь
// к шифртексту во временной области. Владение обоими файлами — у вызвавшего.
type Encryptor interface {
	EncryptFile(ctx context.Context, sourcePath, recipient string) (string, error)
}

// e-mail внутри строки идентичности ключа ("Name <box@host>")
var recipientRe = regexp.MustCompile(`[a-zA-Z0-9-_.]+@[a-zA-Z0-9-_.]+`)

// RecipientAddress вырезает адрес получателя из идентичности ключа.
// Идентичность без адреса — ErrEncryption: шифровать некому.
func RecipientAddress(keyIdentity string) (string, error) {
	addr := recipientRe.FindString(keyIdentity)
	if addr == "" {
		return "", apperr.New(apperr.ErrEncryption, "no recipient address in key identity "+keyIdentity)
	}
	return addr, nil
}

// Pipeline — конвейер шифрования исходящих артефактов: файл или буфер
// шифруется на ключ получателя, все временные артефакты убираются на любом
// пути выхода.
type Pipeline struct {
	enc     Encryptor
	tempDir string
	log     *zap.SugaredLogger
}

// NewPipeline создаёт конвейер поверх конкретного шифратора.
func NewPipeline(enc Encryptor, tempDir string, log *zap.SugaredLogger) *Pipeline {
	return &Pipeline{enc: enc, tempDir: tempDir, log: log}
}

// TempDir — временная область конвейера.
func (p *Pipeline) TempDir() string { return p.tempDir }

// EncryptFile шифрует файл на ключ получателя. Возвращённый путь шифртекста
// принадлежит вызвавшему: удалить обязан он, на любом исходе.
func (p *Pipeline) EncryptFile(ctx context.Context, sourcePath, recipient string) (string, error) {
	addr, err := RecipientAddress(recipient)
	if err != nil {
		return "", err
	}
	return p.enc.EncryptFile(ctx, sourcePath, addr)
}

// EncryptBuffer шифрует буфер: пишет его во временный файл, делегирует
// EncryptFile и вычитывает шифртекст обратно. Оба временных файла удаляются
// до возврата независимо от исхода.
func (p *Pipeline) EncryptBuffer(ctx context.Context, data []byte, recipient string) ([]byte, error) {
	plain, err := os.CreateTemp(p.tempDir, "buffer-*")
	if err != nil {
		return nil, apperr.Wrap(apperr.ErrIO, "create plaintext temp", err)
	}
	plainPath := plain.Name()
	defer p.removeQuiet(plainPath)

	if _, err := plain.Write(data); err != nil {
		plain.Close()
		return nil, apperr.Wrap(apperr.ErrIO, "write plaintext temp "+plainPath, err)
	}
	if err := plain.Close(); err != nil {
		return nil, apperr.Wrap(apperr.ErrIO, "close plaintext temp "+plainPath, err)
	}

	cipherPath, err := p.EncryptFile(ctx, plainPath, recipient)
	if err != nil {
		return nil, err
	}
	defer p.removeQuiet(cipherPath)

	out, err := os.ReadFile(cipherPath)
	if err != nil {
		return nil, apperr.Wrap(apperr.ErrEncryption, "ciphertext unreadable "+cipherPath, err)
	}
	return out, nil
}

// removeQuiet — удаление best-effort: неудача логируется, операцию не валит.
func (p *Pipeline) removeQuiet(path string) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		p.log.Warnw("temp cleanup failed", "path", path, "error", err)
	}
}

// copyFile копирует содержимое файла src в новый файл dst.
func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
