package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Cache stores serialized generation responses by key
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
}

// Stats reports cache effectiveness since creation
type Stats struct {
	Hits    int64
	Misses  int64
	Entries int
}

// Key derives a cache key from the given parts. Parts are separated by a
// NUL byte so ("ab", "c") and ("a", "bc") hash differently.
func Key(parts ...string) string {
	h := sha256.New()
	for i, p := range parts {
		if i > 0 {
			h.Write([]byte{0})
		}
		h.Write([]byte(p))
	}
	return "contextcraft:v1:" + hex.EncodeToString(h.Sum(nil))
}
