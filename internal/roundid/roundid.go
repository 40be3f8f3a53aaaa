// Package roundid generates sortable identifiers for blackjack rounds.
// IDs are UUIDv7 values encoded as 26 character Crockford base32, so
// lexical order follows creation order.
package roundid

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Base32 alphabet used by TypeID (Crockford's base32)
const alphabet = "0123456789abcdefghjkmnpqrstvwxyz"

// RandSource interface for dependency injection of randomness
type RandSource interface {
	Intn(n int) int
}

// Generator handles round ID generation with configurable randomness
type Generator struct {
	randSource RandSource
}

// NewGenerator creates a new generator. With a nil RandSource the
// generator draws its randomness from uuid.NewV7.
func NewGenerator(randSource RandSource) *Generator {
	return &Generator{randSource: randSource}
}

// New creates a new round ID using UUIDv7 encoded as a 26-character base32 string
func New() string {
	return NewGenerator(nil).Generate()
}

// NewWithRandSource creates a new round ID using the provided RandSource
func NewWithRandSource(randSource RandSource) string {
	return NewGenerator(randSource).Generate()
}

// Generate creates a new round ID using the generator's RandSource
func (g *Generator) Generate() string {
	if g.randSource == nil {
		return encodeBase32(uuid.Must(uuid.NewV7()))
	}
	return encodeBase32(g.buildUUIDv7())
}

// buildUUIDv7 assembles a 128-bit UUIDv7 from the injected RandSource,
// used for deterministic tests.
func (g *Generator) buildUUIDv7() [16]byte {
	var id [16]byte

	// 48-bit millisecond timestamp in the first 6 bytes
	now := time.Now().UnixMilli()
	id[0] = byte(now >> 40)
	id[1] = byte(now >> 32)
	id[2] = byte(now >> 24)
	id[3] = byte(now >> 16)
	id[4] = byte(now >> 8)
	id[5] = byte(now)

	for i := 6; i < 16; i++ {
		id[i] = byte(g.randSource.Intn(256))
	}

	// Version nibble 0111, variant bits 10
	id[6] = (id[6] & 0x0f) | 0x70
	id[8] = (id[8] & 0x3f) | 0x80

	return id
}

// encodeBase32 encodes a 128-bit UUID as a 26-character base32 string
func encodeBase32(data [16]byte) string {
	result := make([]byte, 26)

	// Encode 5 bits per character, most significant bits first
	for i := 0; i < 26; i++ {
		bitOffset := i * 5
		byteIndex := bitOffset / 8
		bitIndex := bitOffset % 8

		var value uint8

		if byteIndex < 16 {
			if bitIndex <= 3 {
				// All 5 bits are in the same byte
				value = (data[byteIndex] >> (3 - bitIndex)) & 0x1f
			} else {
				// Bits span two bytes
				value = (data[byteIndex] << (bitIndex - 3)) & 0x1f
				if byteIndex+1 < 16 {
					value |= data[byteIndex+1] >> (11 - bitIndex)
				}
			}
		}

		result[i] = alphabet[value]
	}

	return string(result)
}

// Validate checks if a round ID is valid (26 characters, valid base32)
func Validate(id string) error {
	if len(id) != 26 {
		return fmt.Errorf("round ID must be exactly 26 characters, got %d", len(id))
	}

	// The first character encodes the top 5 bits of a 128-bit value
	// padded to 130 bits, so it cannot exceed '7'
	if id[0] > '7' {
		return fmt.Errorf("round ID first character must be 0-7, got %c", id[0])
	}

	for i, char := range id {
		valid := false
		for _, validChar := range alphabet {
			if char == validChar {
				valid = true
				break
			}
		}
		if !valid {
			return fmt.Errorf("invalid character %c at position %d", char, i)
		}
	}

	return nil
}
