package verification

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// Code bounds, inclusive.
const (
	MinCode = 10000
	MaxCode = 99999
)

// RandomCodes draws codes uniformly from [MinCode, MaxCode].
type RandomCodes struct{}

// Generate returns a new five-digit code.
func (RandomCodes) Generate() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(MaxCode-MinCode+1))
	if err != nil {
		return "", fmt.Errorf("generate code: %w", err)
	}
	return fmt.Sprintf("%05d", n.Int64()+MinCode), nil
}
