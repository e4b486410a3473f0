package respcache

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"regassist-be/pkg/llm"
)

const keyPrefix = "qa:resp:"

// Fingerprint derives the deterministic cache key for a conversation.
// Role and normalized content of every message participate, so the same
// question asked with different history keys differently.
func Fingerprint(messages []llm.Message) string {
	h := sha256.New()
	for _, msg := range messages {
		h.Write([]byte(msg.Role))
		h.Write([]byte{0})
		h.Write([]byte(normalize(msg.Content)))
		h.Write([]byte{0})
	}
	return keyPrefix + hex.EncodeToString(h.Sum(nil))
}

// normalize lowercases and collapses runs of whitespace so cosmetic
// variations of the same question share a fingerprint.
func normalize(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}
