package permission

import (
	"math/bits"
	"strconv"

	"sampleshare/internal/apperr"
)

// Decode раскладывает битовую маску групп в набор идентификаторов групп.
// Бит k взведён — пользователь состоит в группе с id 2^k.
// Пустая маска даёт пустой набор.
func Decode(mask uint64) []uint64 {
	ids := make([]uint64, 0, bits.OnesCount64(mask))
	for mask != 0 {
		k := bits.TrailingZeros64(mask)
		ids = append(ids, uint64(1)<<k)
		mask &^= uint64(1) << k
	}
	return ids
}

// Encode сворачивает упорядоченный список флагов обратно в маску:
// flags[i] даёт вклад 2^i.
func Encode(flags []bool) uint64 {
	var mask uint64
	for i, set := range flags {
		if set {
			mask |= uint64(1) << i
		}
	}
	return mask
}

// Flags возвращает маску как упорядоченный список флагов, обратный к Encode.
func Flags(mask uint64) []bool {
	width := bits.Len64(mask)
	flags := make([]bool, width)
	for i := 0; i < width; i++ {
		flags[i] = mask&(uint64(1)<<i) != 0
	}
	return flags
}

// MaskString суммирует идентификаторы групп и отдаёт сумму двоичной строкой.
// Чистая бухгалтерия для отображения уже раскодированной маски.
func MaskString(ids []uint64) string {
	var sum uint64
	for _, id := range ids {
		sum += id
	}
	return strconv.FormatUint(sum, 2)
}

// ParseMaskString разбирает двоичную строку маски. Кривой вход —
// ErrInvalidArgument.
func ParseMaskString(s string) (uint64, error) {
	if s == "" {
		return 0, apperr.New(apperr.ErrInvalidArgument, "empty group mask")
	}
	mask, err := strconv.ParseUint(s, 2, 64)
	if err != nil {
		return 0, apperr.Wrap(apperr.ErrInvalidArgument, "malformed group mask "+strconv.Quote(s), err)
	}
	return mask, nil
}
