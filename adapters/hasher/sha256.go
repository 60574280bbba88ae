package hasher

import (
	"crypto/sha256"
	"encoding/hex"

	"github.com/satriahrh/cocoa-fruit/mentor/domain"
)

// New returns a domain.Hasher backed by SHA-256, used to fingerprint
// practicum answers.
func New() domain.Hasher { return sha256Hasher{} }

type sha256Hasher struct{}

// Hash returns the lowercase hex digest of data.
func (sha256Hasher) Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
