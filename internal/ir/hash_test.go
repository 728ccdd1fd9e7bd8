package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDigestDeterminism(t *testing.T) {
	d1 := Digest(DomainFingerprint, []byte("query"), []byte("options"))
	d2 := Digest(DomainFingerprint, []byte("query"), []byte("options"))

	assert.Equal(t, d1, d2, "Digest must be deterministic")
	assert.Len(t, d1, 64, "SHA-256 hex is 64 characters")
}

func TestDigestDomainSeparation(t *testing.T) {
	data := []byte("same data")

	assert.NotEqual(t,
		Digest(DomainFingerprint, data),
		Digest(DomainSnapshot, data),
		"different domains must produce different digests")
}

func TestDigestPartBoundaries(t *testing.T) {
	// Moving bytes across the part boundary must change the digest.
	a := Digest(DomainFingerprint, []byte("ab"), []byte("c"))
	b := Digest(DomainFingerprint, []byte("a"), []byte("bc"))

	assert.NotEqual(t, a, b)
}
