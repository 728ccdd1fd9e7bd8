package ir

import (
	"crypto/sha256"
	"encoding/hex"
)

// Domain prefixes for content-addressed digests.
// The version suffix allows the algorithm to change later.
const (
	DomainFingerprint = "dynsel/fingerprint/v1"
	DomainSnapshot    = "dynsel/snapshot/v1"
)

// Digest computes a SHA-256 hash with domain separation.
// Format: SHA256(domain + 0x00 + part[0] + 0x00 + part[1] ...)
// The null byte separators prevent boundary ambiguity between parts.
func Digest(domain string, parts ...[]byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	for _, p := range parts {
		h.Write([]byte{0x00})
		h.Write(p)
	}
	return hex.EncodeToString(h.Sum(nil))
}
