package cache

import (
	"fmt"

	"github.com/roach88/dynsel/internal/ir"
)

// Fingerprint addresses one cache entry.
type Fingerprint struct {
	// Outer is the printed input document.
	Outer string

	// Inner is canonical(call options) followed by canonical(registry
	// snapshot). Both are JSON objects, so the boundary is unambiguous.
	Inner string
}

// ComputeFingerprint builds the cache key for one Select call.
// A nil opts fingerprints the same as empty options.
func ComputeFingerprint(docText string, opts *ir.CallOptions, snapshot ir.Object) (Fingerprint, error) {
	optsJSON, err := ir.MarshalExact(opts.ToValue())
	if err != nil {
		return Fingerprint{}, fmt.Errorf("fingerprint call options: %w", err)
	}

	snapJSON, err := ir.MarshalExact(snapshot)
	if err != nil {
		return Fingerprint{}, fmt.Errorf("fingerprint registry snapshot: %w", err)
	}

	return Fingerprint{
		Outer: docText,
		Inner: string(optsJSON) + string(snapJSON),
	}, nil
}

// Digest returns a fixed-length hash of both keys, for logs and the CLI.
func (f Fingerprint) Digest() string {
	return ir.Digest(ir.DomainFingerprint, []byte(f.Outer), []byte(f.Inner))
}
