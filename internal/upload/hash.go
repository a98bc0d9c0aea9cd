package upload

import (
	"encoding/hex"

	"github.com/zeebo/blake3"
)

// ContentID is the hex BLAKE3-256 digest of a resource's bytes.
type ContentID string

// Hash derives the content identifier for data.
func Hash(data []byte) ContentID {
	sum := blake3.Sum256(data)
	return ContentID(hex.EncodeToString(sum[:]))
}

// Short returns a prefix suitable for logs.
func (id ContentID) Short() string {
	if len(id) <= 12 {
		return string(id)
	}
	return string(id[:12])
}
