package encryption

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVerifyCiphertext_RejectsGarbage(t *testing.T) {
	// нулевой буфер
	assert.False(t, VerifyCiphertext(make([]byte, 10)))

	// слишком коротко для проверки
	assert.False(t, VerifyCiphertext([]byte{0x85, 0x04, 0x0c, 0x03}))
	assert.False(t, VerifyCiphertext(nil))

	// нет бита заголовка пакета
	assert.False(t, VerifyCiphertext([]byte{0x25, 0x04, 0x0c, 0x03, 0, 0, 0, 0, 0, 0}))

	// бит есть, но на позиции версии не 2 и не 3
	assert.False(t, VerifyCiphertext([]byte{0x85, 0x04, 0x0c, 0x07, 0, 0, 0, 0, 0, 0}))
}

func TestVerifyCiphertext_OldFormatHeads(t *testing.T) {
	// классический вывод gpg: тег 1, двухоктетная длина, версия PKESK 3
	assert.True(t, VerifyCiphertext([]byte{0x85, 0x04, 0x0c, 0x03, 0xde, 0xad, 0xbe, 0xef, 0x01, 0x02}))

	// однооктетная длина — версия на смещении 2
	assert.True(t, VerifyCiphertext([]byte{0x84, 0x8c, 0x03, 0xde, 0xad, 0xbe, 0xef, 0x01, 0x02, 0x03}))

	// четырёхоктетная длина — версия на смещении 5
	assert.True(t, VerifyCiphertext([]byte{0x86, 0x00, 0x00, 0x02, 0x0c, 0x02, 0xde, 0xad, 0xbe, 0xef}))

	// неопределённая длина — версия сразу за заголовком
	assert.True(t, VerifyCiphertext([]byte{0x87, 0x03, 0xde, 0xad, 0xbe, 0xef, 0x01, 0x02, 0x03, 0x04}))
}

func TestVerifyCiphertext_NewFormatHeads(t *testing.T) {
	// новый формат, короткая длина: версия на смещении 2
	assert.True(t, VerifyCiphertext([]byte{0xc1, 0x10, 0x03, 0xde, 0xad, 0xbe, 0xef, 0x01, 0x02, 0x03}))

	// новый формат, двухоктетная длина (192..254): версия на смещении 3
	assert.True(t, VerifyCiphertext([]byte{0xc1, 0xc1, 0x40, 0x03, 0xde, 0xad, 0xbe, 0xef, 0x01, 0x02}))

	// новый формат, пятиоктетная длина: версия на смещении 6
	assert.True(t, VerifyCiphertext([]byte{0xc1, 0xff, 0x00, 0x00, 0x02, 0x0c, 0x03, 0xde, 0xad, 0xbe}))
}
