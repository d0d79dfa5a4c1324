package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// ArtifactKey returns the key for an artifact of the given format rendered
// from source. The format is part of the key, so one source can have several
// artifacts cached at once.
func ArtifactKey(format string, source []byte) string {
	return fmt.Sprintf("artifact:%s:%s", format, Hash(source))
}

// Hash computes a SHA-256 hash of the input data.
// Returns the full 64-character hex string.
func Hash(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}
