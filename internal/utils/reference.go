package utils

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"
)

// Reference prefixes for human-readable record numbers.
const (
	RefPrefixTransaction = "BRQ"
	RefPrefixPayment     = "PAY"
	RefPrefixReturn      = "RTN"
	RefPrefixSettlement  = "SET"
)

// GenerateReference builds a reference number like BRQ-2026-48219.
// Uniqueness is enforced by the database index, not here.
func GenerateReference(prefix string) string {
	n, err := rand.Int(rand.Reader, big.NewInt(100000))
	if err != nil {
		n = big.NewInt(time.Now().UnixNano() % 100000)
	}
	return fmt.Sprintf("%s-%d-%05d", prefix, time.Now().Year(), n.Int64())
}
