package cache

import (
	"crypto/sha256"
	"encoding/hex"
)

// hashKey builds a cache key of the form prefix:hex(sha256(parts)). Parts
// are joined with an unprintable separator so ("a", "bc") and ("ab", "c")
// never collide.
func hashKey(prefix string, parts ...string) string {
	h := sha256.New()
	for _, p := range parts {
		h.Write([]byte(p))
		h.Write([]byte{0x1f})
	}
	return prefix + ":" + hex.EncodeToString(h.Sum(nil))
}

// Hash returns the full 64-character hex SHA-256 of data.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
