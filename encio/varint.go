package encio

// U29 is AMF3's variable-length integer.
// Each of the first three bytes carries 7 bits with the high bit set if another byte follows,
// and a fourth byte, if present, carries a full 8 bits.
// It is not a generic base-128 varint; the fourth byte breaks that pattern.

const (
	// MaxU29 is the largest unsigned value a U29 can hold.
	MaxU29 = 1<<29 - 1

	// MinInt29 and MaxInt29 bound the signed integers AMF3 can write with the Integer marker.
	// Anything outside is written as a Double.
	MinInt29 = -1 << 28
	MaxInt29 = 1<<28 - 1
)

// EncodeU29 writes the low 29 bits of n to buff, returning the number of bytes used.
// buff must have room for 4 bytes.
func EncodeU29(buff []byte, n uint32) int {
	n &= MaxU29
	switch {
	case n < 0x80:
		buff[0] = uint8(n)
		return 1
	case n < 0x4000:
		buff[0] = uint8(n>>7 | 0x80)
		buff[1] = uint8(n & 0x7f)
		return 2
	case n < 0x200000:
		buff[0] = uint8(n>>14 | 0x80)
		buff[1] = uint8(n>>7&0x7f | 0x80)
		buff[2] = uint8(n & 0x7f)
		return 3
	default:
		buff[0] = uint8(n>>22 | 0x80)
		buff[1] = uint8(n>>15&0x7f | 0x80)
		buff[2] = uint8(n>>8&0x7f | 0x80)
		buff[3] = uint8(n)
		return 4
	}
}

// DecodeU29 reads a U29 from buff, returning the value and the number of bytes read.
// If buff ends before the U29 does, size is 0.
func DecodeU29(buff []byte) (n uint32, size int) {
	for i := 0; i < 3; i++ {
		if i >= len(buff) {
			return 0, 0
		}
		b := buff[i]
		if b&0x80 == 0 {
			return n<<7 | uint32(b), i + 1
		}
		n = n<<7 | uint32(b&0x7f)
	}
	if len(buff) < 4 {
		return 0, 0
	}
	return n<<8 | uint32(buff[3]), 4
}

// SignExtend29 interprets the low 29 bits of u as a two's complement number, using bit 28 as the sign.
func SignExtend29(u uint32) int32 {
	return int32(u<<3) >> 3
}
