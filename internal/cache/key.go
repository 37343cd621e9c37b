package cache

import (
	"crypto/md5"
	"encoding/hex"
)

// Fingerprint derives the cache key for a text input: the hex form of a
// 128-bit digest. Equal inputs always map to equal keys, across process
// restarts; collisions are left to the hash.
func Fingerprint(text string) string {
	sum := md5.Sum([]byte(text))
	return hex.EncodeToString(sum[:])
}
