// Package addr holds the 32-bit block and cluster address arithmetic used
// throughout the filesystem, together with the big-endian wire form the
// card protocol expects. Addresses travel over the wire MSB first, while
// FAT32 stores all multi-byte fields on disk LSB first; the filesystem
// normalizes everything to plain uint32 values and only converts at the
// wire boundary.
package addr

import "encoding/binary"

// Add returns a + b. A carry out of bit 31 is discarded, so the result
// wraps at 2^32 exactly like the byte-lane addition it replaces.
func Add(a, b uint32) uint32 {
	return a + b
}

// Sub returns a - b. Callers must guarantee a >= b; when the contract is
// violated the result wraps silently instead of reporting an error.
func Sub(a, b uint32) uint32 {
	return a - b
}

// Bytes returns v in big-endian order, MSB at index 0, ready to be sent as
// the four argument bytes of a card command frame.
func Bytes(v uint32) [4]byte {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], v)
	return b
}

// FromBytes reassembles a big-endian byte quad into a uint32.
func FromBytes(b [4]byte) uint32 {
	return binary.BigEndian.Uint32(b[:])
}
