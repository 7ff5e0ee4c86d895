package encryption

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"sampleshare/internal/apperr"
)

// GPGEncryptor шифрует внешним gpg. Исходник сперва копируется во временный
// файл с уникальным именем: параллельные запросы не пересекаются ни по
// plaintext-, ни по ciphertext-путям.
type GPGEncryptor struct {
	Binary  string // путь к gpg
	HomeDir string // --homedir с ключами получателей
	TempDir string
	Log     *zap.SugaredLogger
}

// NewGPGEncryptor создаёт шифратор поверх внешнего gpg.
func NewGPGEncryptor(binary, homeDir, tempDir string, log *zap.SugaredLogger) *GPGEncryptor {
	return &GPGEncryptor{Binary: binary, HomeDir: homeDir, TempDir: tempDir, Log: log}
}

func (g *GPGEncryptor) EncryptFile(ctx context.Context, sourcePath, recipient string) (string, error) {
	work := filepath.Join(g.TempDir, "sample-"+uuid.NewString())
	if err := copyFile(sourcePath, work); err != nil {
		return "", apperr.Wrap(apperr.ErrIO, "stage plaintext "+sourcePath, err)
	}
	encrypted := work + ".gpg"

	cmd := exec.CommandContext(ctx, g.Binary,
		"--batch", "--no-tty",
		"--homedir", g.HomeDir,
		"--always-trust", "--no-secmem-warning",
		"-o", encrypted,
		"-e", "-r", recipient,
		work,
	)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	runErr := cmd.Run()

	// plaintext-копия больше не нужна в любом случае
	if err := os.Remove(work); err != nil && !os.IsNotExist(err) {
		g.Log.Warnw("plaintext temp cleanup failed", "path", work, "error", err)
	}

	if runErr != nil {
		os.Remove(encrypted)
		return "", apperr.Wrap(apperr.ErrEncryption, "gpg failed for "+recipient+": "+stderr.String(), runErr)
	}
	info, err := os.Stat(encrypted)
	if err != nil || info.Size() == 0 {
		os.Remove(encrypted)
		return "", apperr.New(apperr.ErrEncryption, "gpg produced no ciphertext at "+encrypted)
	}
	return encrypted, nil
}
