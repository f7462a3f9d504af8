package helpers

import (
	"crypto/sha256"
	"encoding/hex"
)

// SHA256 returns the hex encoded sha256 of the input string.
func SHA256(input string) string {
	hash := sha256.Sum256([]byte(input))
	return hex.EncodeToString(hash[:])
}

// ShortSHA256 returns the first 8 hex characters of SHA256, for log lines.
func ShortSHA256(input string) string {
	return SHA256(input)[:8]
}
