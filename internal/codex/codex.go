// Package codex computes the content commitment stored with every ledger
// record.
package codex

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"time"

	"codex-ledger/internal/domain"
)

// DefaultSecret is used when no service credential is configured.
const DefaultSecret = "default-secret"

// TimestampLayout is ISO-8601 UTC with millisecond precision.
const TimestampLayout = "2006-01-02T15:04:05.000Z"

// Timestamp renders t the way it is hashed and persisted. Callers must
// format once and reuse the string for both.
func Timestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

// Secret returns key, or DefaultSecret when key is empty.
func Secret(key string) string {
	if key == "" {
		return DefaultSecret
	}
	return key
}

// Hash is hex(SHA-256(timestamp || userInput || aiResponse || secret)).
func Hash(timestamp, userInput, aiResponse, secret string) string {
	h := sha256.New()
	h.Write([]byte(timestamp))
	h.Write([]byte(userInput))
	h.Write([]byte(aiResponse))
	h.Write([]byte(secret))
	return hex.EncodeToString(h.Sum(nil))
}

// Matches reports whether rec.CodexHash commits to rec's own fields.
func Matches(rec *domain.LedgerRecord, secret string) bool {
	if rec == nil {
		return false
	}
	want := Hash(rec.Timestamp, rec.UserInput, rec.AIResponse, secret)
	return subtle.ConstantTimeCompare([]byte(want), []byte(rec.CodexHash)) == 1
}

// ValidHash reports whether s looks like a codex hash: 64 lowercase hex chars.
func ValidHash(s string) bool {
	if len(s) != sha256.Size*2 {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if !(c >= '0' && c <= '9' || c >= 'a' && c <= 'f') {
			return false
		}
	}
	return true
}
