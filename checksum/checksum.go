// Package checksum implements payload integrity verification.
//
// Canonical v1 algorithm: FNV-1a 64-bit over the UTF-8 bytes of the
// pre-checksum text (every payload line before the checksum line,
// newline-joined, header included), reduced modulo the spec's
// checksum_modulo. The map-side encoder computes the same function, so the
// value is interoperable across implementations. It detects corruption and
// tampering; it is not a cryptographic signature.
package checksum

import (
	"hash/fnv"

	"github.com/N1teshift/replay-meta/spec"
	"github.com/N1teshift/replay-meta/types"
)

// Compute returns the checksum of the pre-checksum text under the given
// codec. The result is always in [0, codec.ChecksumModulo).
func Compute(text string, codec *spec.Codec) int64 {
	h := fnv.New64a()
	h.Write([]byte(text))
	return int64(h.Sum64() % uint64(codec.ChecksumModulo))
}

// Verify recomputes the checksum of text and compares it to the declared
// value. Mismatch returns CHECKSUM_MISMATCH carrying both values.
func Verify(text string, declared int64, codec *spec.Codec) error {
	computed := Compute(text, codec)
	if computed != declared {
		return types.NewError(types.CodeChecksumMismatch, "payload checksum mismatch").
			WithDetails(map[string]any{"expected": declared, "computed": computed})
	}
	return nil
}
