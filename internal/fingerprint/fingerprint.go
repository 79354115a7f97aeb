// Package fingerprint derives the content hashes used to deduplicate
// clipboard entries.
package fingerprint

import (
	"crypto/sha256"
	"fmt"
)

// Sum returns the hex SHA-256 digest of data prefixed with its content
// kind and a zero byte. The kind tag keeps identical bytes of different
// kinds from colliding, so a text entry can never alias an image entry.
func Sum(kind string, data []byte) string {
	hasher := sha256.New()
	hasher.Write([]byte(kind))
	hasher.Write([]byte{0})
	hasher.Write(data)
	return fmt.Sprintf("%x", hasher.Sum(nil))
}
