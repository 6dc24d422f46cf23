package roomcode

import (
	"fmt"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/weiawesome/camlink/internal/domain"
)

// Generator produces candidate room codes. Uniqueness against live rooms
// is checked by the registry.
type Generator interface {
	Generate() (string, error)
}

// NanoIDGenerator draws codes uniformly from an alphabet with a
// crypto-random source.
type NanoIDGenerator struct {
	size     int
	alphabet string
}

// NewDefault returns the 6-symbol [A-Z0-9] generator.
func NewDefault() *NanoIDGenerator {
	return &NanoIDGenerator{size: domain.RoomCodeLength, alphabet: domain.RoomCodeAlphabet}
}

func (g *NanoIDGenerator) Generate() (string, error) {
	code, err := gonanoid.Generate(g.alphabet, g.size)
	if err != nil {
		return "", fmt.Errorf("failed to generate room code: %w", err)
	}
	return code, nil
}
