// Package id generates sortable identifiers used for object names and request tracing.
package id

import (
	"crypto/rand"
	"encoding/binary"
	"strings"
	"time"
)

// Crockford's Base32 alphabet (excludes I, L, O, U to avoid confusion).
const crockfordBase32 = "0123456789ABCDEFGHJKMNPQRSTVWXYZ"

// ULIDLength is the length of an encoded ULID.
const ULIDLength = 26

// NewULID generates a ULID (Universally Unique Lexicographically Sortable Identifier).
// The 26-character result is a 48-bit millisecond timestamp followed by 80 random bits,
// so IDs sort by creation time.
func NewULID() string {
	var raw [16]byte

	ms := uint64(time.Now().UnixMilli())
	raw[0] = byte(ms >> 40)
	raw[1] = byte(ms >> 32)
	raw[2] = byte(ms >> 24)
	raw[3] = byte(ms >> 16)
	raw[4] = byte(ms >> 8)
	raw[5] = byte(ms)

	if _, err := rand.Read(raw[6:]); err != nil {
		// Degraded entropy is still unique enough within a single process.
		binary.BigEndian.PutUint64(raw[6:14], uint64(time.Now().UnixNano()))
	}

	return encode(raw)
}

// NewLowerULID returns NewULID in lowercase, for contexts where keys are case-folded.
func NewLowerULID() string {
	return strings.ToLower(NewULID())
}

// encode packs 128 bits into 26 base32 characters.
// The first character carries only the top 3 bits of the timestamp.
func encode(raw [16]byte) string {
	var out [ULIDLength]byte

	hi := binary.BigEndian.Uint64(raw[:8])
	lo := binary.BigEndian.Uint64(raw[8:])

	for i := ULIDLength - 1; i >= 0; i-- {
		out[i] = crockfordBase32[lo&0x1F]
		lo = lo>>5 | hi<<59
		hi >>= 5
	}

	return string(out[:])
}
