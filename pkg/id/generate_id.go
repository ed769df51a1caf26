package id

import (
	"crypto/rand"
	"encoding/hex"
)

// idBytes is the entropy per identifier; hex-encoded it yields 32 chars.
const idBytes = 16

// NewID32 returns a 32-char lowercase hex identifier. Used for aggregate and
// invalid-record public ids and for ledger lease owner tokens, all of which
// must be safe in URLs and unique without coordination.
func NewID32() string {
	b := make([]byte, idBytes)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}
