package id

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// idByteLength gives 32 hex characters per ID, enough that analysis run IDs
// never collide within a state row's lifetime.
const idByteLength = 16

// Generator creates opaque IDs for analysis runs.
type Generator interface {
	NewID() (string, error)
}

type RandomGenerator struct{}

func NewRandomGenerator() *RandomGenerator {
	return &RandomGenerator{}
}

func (g *RandomGenerator) NewID() (string, error) {
	buf := make([]byte, idByteLength)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("read random bytes: %w", err)
	}

	return hex.EncodeToString(buf), nil
}
