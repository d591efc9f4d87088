package utils

import (
	"crypto/sha1"
	"encoding/hex"

	"github.com/cespare/xxhash/v2"
)

// MakeHash returns hash string from plain text
func MakeHash(s string) string {
	hash := sha1.New()
	hash.Write([]byte(s))
	hashBytes := hash.Sum(nil)
	return hex.EncodeToString(hashBytes)
}

// MakeFastHash returns a fast non-cryptographic hash, used for cache keys
func MakeFastHash(s string) uint64 {
	return xxhash.Sum64String(s)
}
