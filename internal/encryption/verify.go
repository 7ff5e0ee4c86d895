package encryption

// verifyHeadLen — столько байт шифртекста нужно структурной проверке.
const verifyHeadLen = 10

// Смещение октета версии для старого формата пакета по двум младшим битам
// длины (length-type): 0 и 1 октет длины, 2 — четыре октета,
// 3 — неопределённая длина.
var oldFormatVersionOffset = [4]int{2, 3, 5, 1}

// VerifyCiphertext — быстрая структурная проверка первых байт шифртекста:
// взведён ли бит заголовка пакета и стоит ли на выведенной позиции маркер
// версии 2 или 3. Это pre-flight, не криптографическая валидация:
// положительный ответ ничего не гарантирует о содержимом.
func VerifyCiphertext(b []byte) bool {
	if len(b) < verifyHeadLen {
		return false
	}
	if b[0]&0x80 == 0 {
		return false
	}

	var ofs int
	if b[0]&0x40 == 0 {
		// старый формат: length-type в двух младших битах
		ofs = oldFormatVersionOffset[b[0]&0x03]
	} else {
		// новый формат: длина кодируется первым октетом тела
		switch {
		case b[1] < 192:
			ofs = 2
		case b[1] < 255:
			ofs = 3
		default:
			ofs = 6
		}
	}
	return b[ofs] == 2 || b[ofs] == 3
}
