package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Key generates a namespaced cache key from its parts
func Key(parts ...string) string {
	hash := sha256.Sum256([]byte(strings.Join(parts, "\x00")))
	return "xpbridge:v1:" + hex.EncodeToString(hash[:])
}
