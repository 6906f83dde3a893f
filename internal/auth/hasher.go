package auth

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// Digest scheme tags. New digests are always bcrypt-tagged; the other two
// schemes exist only so previously stored records keep verifying.
const (
	schemeBcrypt = "bcrypt$"
	schemeSHA256 = "sha256$"
)

// HashPassword produces a tagged digest using the current scheme.
func HashPassword(plaintext string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return schemeBcrypt + string(hash), nil
}

// VerifyPassword checks plaintext against a tagged digest. Supported schemes:
// bcrypt$ (current), untagged bcrypt ($2...), sha256$<hex>, and the bare
// base64 fallback used by the oldest records.
func VerifyPassword(plaintext, digest string) bool {
	switch {
	case strings.HasPrefix(digest, schemeBcrypt):
		hash := strings.TrimPrefix(digest, schemeBcrypt)
		return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext)) == nil

	case strings.HasPrefix(digest, "$2"):
		return bcrypt.CompareHashAndPassword([]byte(digest), []byte(plaintext)) == nil

	case strings.HasPrefix(digest, schemeSHA256):
		want, err := hex.DecodeString(strings.TrimPrefix(digest, schemeSHA256))
		if err != nil {
			return false
		}
		sum := sha256.Sum256([]byte(plaintext))
		return subtle.ConstantTimeCompare(sum[:], want) == 1

	default:
		// Base64 fallback scheme.
		encoded := base64.StdEncoding.EncodeToString([]byte(plaintext))
		return subtle.ConstantTimeCompare([]byte(encoded), []byte(digest)) == 1
	}
}

// NeedsRehash reports whether a digest uses a legacy scheme and should be
// re-written with the current one next time the plaintext is available.
func NeedsRehash(digest string) bool {
	return !strings.HasPrefix(digest, schemeBcrypt)
}
