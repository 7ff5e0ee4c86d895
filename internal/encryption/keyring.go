package encryption

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/openpgp"

	"sampleshare/internal/apperr"
)

// KeyringEncryptor шифрует средствами OpenPGP внутри процесса по публичному
// кольцу ключей. Контракт тот же, что у GPGEncryptor; внешний бинарь не нужен.
type KeyringEncryptor struct {
	KeyringPath string
	TempDir     string
	Log         *zap.SugaredLogger
}

// NewKeyringEncryptor создаёт шифратор поверх файла публичного кольца.
func NewKeyringEncryptor(keyringPath, tempDir string, log *zap.SugaredLogger) *KeyringEncryptor {
	return &KeyringEncryptor{KeyringPath: keyringPath, TempDir: tempDir, Log: log}
}

// hashIDSHA256 — идентификатор SHA-256 по RFC 4880.
const hashIDSHA256 = 8

// normalizePreferences подставляет SHA-256 ключам без объявленных
// предпочтений дайджеста: иначе openpgp.Encrypt откатывается на RIPEMD160,
// которого нет в сборке, и любое шифрование на такой ключ падает.
// Кольца поставляются операторами, минимальные ключи в них легальны.
func normalizePreferences(ent *openpgp.Entity) {
	for _, ident := range ent.Identities {
		if ident.SelfSignature != nil && len(ident.SelfSignature.PreferredHash) == 0 {
			ident.SelfSignature.PreferredHash = []uint8{hashIDSHA256}
		}
	}
}

// loadRecipient находит в кольце сущность с указанным адресом.
func (k *KeyringEncryptor) loadRecipient(recipient string) (*openpgp.Entity, error) {
	f, err := os.Open(k.KeyringPath)
	if err != nil {
		return nil, apperr.Wrap(apperr.ErrEncryption, "open keyring "+k.KeyringPath, err)
	}
	defer f.Close()

	ring, err := openpgp.ReadArmoredKeyRing(f)
	if err != nil {
		// не armored — пробуем бинарный формат
		if _, serr := f.Seek(0, 0); serr != nil {
			return nil, apperr.Wrap(apperr.ErrEncryption, "rewind keyring", serr)
		}
		ring, err = openpgp.ReadKeyRing(f)
		if err != nil {
			return nil, apperr.Wrap(apperr.ErrEncryption, "read keyring "+k.KeyringPath, err)
		}
	}
	want := strings.ToLower(recipient)
	for _, ent := range ring {
		for _, ident := range ent.Identities {
			if strings.ToLower(ident.UserId.Email) == want {
				normalizePreferences(ent)
				return ent, nil
			}
		}
	}
	return nil, apperr.New(apperr.ErrEncryption, "no key for recipient "+recipient)
}

func (k *KeyringEncryptor) EncryptFile(ctx context.Context, sourcePath, recipient string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", apperr.Wrap(apperr.ErrEncryption, "encryption cancelled", err)
	}
	ent, err := k.loadRecipient(recipient)
	if err != nil {
		return "", err
	}

	in, err := os.Open(sourcePath)
	if err != nil {
		return "", apperr.Wrap(apperr.ErrIO, "open plaintext "+sourcePath, err)
	}
	defer in.Close()

	encrypted := filepath.Join(k.TempDir, "sample-"+uuid.NewString()+".gpg")
	out, err := os.Create(encrypted)
	if err != nil {
		return "", apperr.Wrap(apperr.ErrIO, "create ciphertext "+encrypted, err)
	}

	fail := func(stage string, cause error) (string, error) {
		out.Close()
		if rmErr := os.Remove(encrypted); rmErr != nil && !os.IsNotExist(rmErr) {
			k.Log.Warnw("ciphertext cleanup failed", "path", encrypted, "error", rmErr)
		}
		return "", apperr.Wrap(apperr.ErrEncryption, stage, cause)
	}

	plain, err := openpgp.Encrypt(out, []*openpgp.Entity{ent}, nil, nil, nil)
	if err != nil {
		return fail("openpgp encrypt for "+recipient, err)
	}
	if _, err := io.Copy(plain, in); err != nil {
		plain.Close()
		return fail("stream plaintext "+sourcePath, err)
	}
	if err := plain.Close(); err != nil {
		return fail("finalize ciphertext", err)
	}
	if err := out.Close(); err != nil {
		return fail("close ciphertext", err)
	}
	return encrypted, nil
}
