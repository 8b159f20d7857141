package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
)

// hashKey builds a namespaced key: prefix + ":" + sha256(json(parts)).
// JSON gives a stable encoding for mixed option structs; the full 256-bit
// digest rules out accidental collisions between stages.
func hashKey(prefix string, parts ...interface{}) string {
	data, _ := json.Marshal(parts)
	sum := sha256.Sum256(data)
	return prefix + ":" + hex.EncodeToString(sum[:])
}

// Hash computes the SHA-256 of data as a 64-character hex string. It is
// the content hash used to chain pipeline stages together.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
