package utils

import (
	"crypto/sha1"
	"encoding/hex"
)

// MakeHash returns a hex hash string for a cache key, safe to use as a file
// name regardless of the characters in the key
func MakeHash(key string) string {
	hash := sha1.New()
	hash.Write([]byte(key))
	hashBytes := hash.Sum(nil)
	return hex.EncodeToString(hashBytes)
}
