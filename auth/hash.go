package auth

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// HashToken returns the hex SHA-256 digest of a token. Two profiles holding
// the same token produce the same digest, which lets the CLI flag reuse
// without showing either token.
func HashToken(token string) string {
	h := sha256.Sum256([]byte(token))
	return hex.EncodeToString(h[:])
}

// MaskToken hides all but the first and last four characters of a token.
// Tokens of eight characters or fewer are fully masked.
func MaskToken(token string) string {
	if token == "" {
		return ""
	}
	if len(token) <= 8 {
		return strings.Repeat("*", len(token))
	}
	return token[:4] + strings.Repeat("*", len(token)-8) + token[len(token)-4:]
}
