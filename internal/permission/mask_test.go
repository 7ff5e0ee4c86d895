package permission

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"sampleshare/internal/apperr"
)

func TestDecode_Basic(t *testing.T) {
	// сценарий из жизни: маска 10101 (21) — группы 1, 4, 16
	assert.Equal(t, []uint64{1, 4, 16}, Decode(21))

	// пустая маска — пустой набор
	assert.Empty(t, Decode(0))

	// одиночный старший бит
	assert.Equal(t, []uint64{1 << 31}, Decode(1<<31))
}

func TestEncodeDecode_RoundTrip(t *testing.T) {
	for _, mask := range []uint64{0, 1, 2, 21, 0b1111, 1 << 20, 0xDEADBEEF} {
		assert.Equal(t, mask, Encode(Flags(mask)), "mask=%b", mask)
	}
}

func TestDecode_EveryBitPresent(t *testing.T) {
	mask := uint64(0b1011001)
	ids := Decode(mask)
	for k := 0; k < 64; k++ {
		if mask&(uint64(1)<<k) == 0 {
			continue
		}
		assert.Contains(t, ids, uint64(1)<<k)
	}
}

func TestMaskString_RoundTrip(t *testing.T) {
	s := MaskString([]uint64{1, 4, 16})
	assert.Equal(t, "10101", s)

	mask, err := ParseMaskString(s)
	assert.NoError(t, err)
	assert.Equal(t, uint64(21), mask)
}

func TestParseMaskString_Invalid(t *testing.T) {
	for _, in := range []string{"", "102", "-1", "abc"} {
		_, err := ParseMaskString(in)
		assert.ErrorIs(t, err, apperr.ErrInvalidArgument, "input=%q", in)
	}
}
