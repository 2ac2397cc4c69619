package encio

import "math"

// All multi-byte numbers in AMF are big-endian, most significant byte first.

// EncodeUint16 writes a uint16 to buff.
func EncodeUint16(buff []byte, n uint16) {
	buff[0] = uint8(n >> 8)
	buff[1] = uint8(n)
}

// DecodeUint16 reads a uint16 from buff.
func DecodeUint16(buff []byte) uint16 {
	return uint16(buff[0])<<8 | uint16(buff[1])
}

// EncodeUint32 writes a uint32 to buff.
func EncodeUint32(buff []byte, n uint32) {
	buff[0] = uint8(n >> 24)
	buff[1] = uint8(n >> 16)
	buff[2] = uint8(n >> 8)
	buff[3] = uint8(n)
}

// DecodeUint32 reads a uint32 from buff.
func DecodeUint32(buff []byte) uint32 {
	n := uint32(buff[0]) << 24
	n |= uint32(buff[1]) << 16
	n |= uint32(buff[2]) << 8
	n |= uint32(buff[3])
	return n
}

// EncodeUint64 writes a uint64 to buff.
func EncodeUint64(buff []byte, n uint64) {
	buff[0] = uint8(n >> 56)
	buff[1] = uint8(n >> 48)
	buff[2] = uint8(n >> 40)
	buff[3] = uint8(n >> 32)
	buff[4] = uint8(n >> 24)
	buff[5] = uint8(n >> 16)
	buff[6] = uint8(n >> 8)
	buff[7] = uint8(n)
}

// DecodeUint64 reads a uint64 from buff.
func DecodeUint64(buff []byte) uint64 {
	n := uint64(buff[0]) << 56
	n |= uint64(buff[1]) << 48
	n |= uint64(buff[2]) << 40
	n |= uint64(buff[3]) << 32
	n |= uint64(buff[4]) << 24
	n |= uint64(buff[5]) << 16
	n |= uint64(buff[6]) << 8
	n |= uint64(buff[7])
	return n
}

// EncodeFloat64 writes a float64 to buff.
func EncodeFloat64(buff []byte, f float64) {
	EncodeUint64(buff, math.Float64bits(f))
}

// DecodeFloat64 reads a float64 from buff.
func DecodeFloat64(buff []byte) float64 {
	return math.Float64frombits(DecodeUint64(buff))
}

// EncodeFloat32 writes a float32 to buff.
func EncodeFloat32(buff []byte, f float32) {
	EncodeUint32(buff, math.Float32bits(f))
}

// DecodeFloat32 reads a float32 from buff.
func DecodeFloat32(buff []byte) float32 {
	return math.Float32frombits(DecodeUint32(buff))
}
