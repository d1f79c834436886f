package cache

import (
	"crypto/sha256"
	"encoding/hex"
)

// HashKey derives a fixed-size key from arbitrary text parts. Parts are
// separated so that ("ab", "c") and ("a", "bc") differ.
func HashKey(parts ...string) string {
	h := sha256.New()
	for _, p := range parts {
		h.Write([]byte(p))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}
