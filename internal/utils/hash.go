package utils

import (
	"encoding/binary"
	"fmt"
)

// MurmurHash64A implements the 64-bit MurmurHash2 algorithm
func MurmurHash64A(data []byte, seed uint64) uint64 {
	const (
		m = 0xc6a4a7935bd1e995
		r = 47
	)

	// Initialize hash with seed XOR length
	h := seed ^ (uint64(len(data)) * m)

	// Process 8-byte chunks
	remainder := len(data) & 7
	alignedLength := len(data) - remainder

	// Process aligned 8-byte chunks
	for i := 0; i < alignedLength; i += 8 {
		// Extract 8 bytes as little-endian uint64
		k := binary.LittleEndian.Uint64(data[i : i+8])

		k *= m
		k ^= k >> r
		k *= m

		h ^= k
		h *= m
	}

	// Handle remaining bytes (less than 8)
	switch remainder {
	case 7:
		h ^= uint64(data[alignedLength+6]) << 48
		fallthrough
	case 6:
		h ^= uint64(data[alignedLength+5]) << 40
		fallthrough
	case 5:
		h ^= uint64(data[alignedLength+4]) << 32
		fallthrough
	case 4:
		h ^= uint64(data[alignedLength+3]) << 24
		fallthrough
	case 3:
		h ^= uint64(data[alignedLength+2]) << 16
		fallthrough
	case 2:
		h ^= uint64(data[alignedLength+1]) << 8
		fallthrough
	case 1:
		h ^= uint64(data[alignedLength+0])
		h *= m
	}

	// Final avalanche
	h ^= h >> r
	h *= m
	h ^= h >> r

	return h
}

// fingerprintSeed matches the seed the bundle index format hashes paths with
const fingerprintSeed = 0x1337b33f

// Fingerprint returns a stable 64-bit content hash of an entry
func Fingerprint(data []byte) uint64 {
	return MurmurHash64A(data, fingerprintSeed)
}

// FormatFingerprint renders a fingerprint as 16 hex digits
func FormatFingerprint(h uint64) string {
	return fmt.Sprintf("%016x", h)
}
