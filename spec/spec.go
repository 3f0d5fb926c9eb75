// Package spec defines the versioned codec specification that parameterizes
// a decode: the channel alphabet, its paired order identifiers, the encoder
// unit, and the checksum modulus.
//
// A Codec is loaded once per decode operation and is read-only afterwards,
// so it may be freely shared across concurrent decodes.
package spec

import (
	"unicode/utf8"

	"github.com/N1teshift/replay-meta/types"
)

// Codec is the versioned symbol table for one payload encoding.
//
// EncodeChars and SymbolOrderStrings are positionally paired:
// EncodeChars[i] is represented in the replay by SymbolOrderStrings[i].
type Codec struct {
	// Version is the spec format version, distinct from the payload schema
	// version carried in the payload header.
	Version int `yaml:"version" json:"version"`
	// EncoderUnitID identifies the in-replay unit whose commands carry the
	// hidden channel.
	EncoderUnitID string `yaml:"encoder_unit_id" json:"encoder_unit_id"`
	// EncodeChars is the channel alphabet, one single-rune string per entry.
	EncodeChars []string `yaml:"encode_chars" json:"encode_chars"`
	// SymbolOrderStrings are the command identifiers paired with EncodeChars.
	SymbolOrderStrings []string `yaml:"symbol_order_strings" json:"symbol_order_strings"`
	// ChecksumModulo is the positive modulus for the payload checksum.
	ChecksumModulo int64 `yaml:"checksum_modulo" json:"checksum_modulo"`
}

// Validate checks the structural invariants of the codec. It returns a
// SPEC_INVALID error naming the broken invariant, or nil.
func (c *Codec) Validate() error {
	if c.Version <= 0 {
		return types.NewError(types.CodeSpecInvalid, "spec version must be positive").
			WithDetails(map[string]any{"version": c.Version})
	}
	if c.EncoderUnitID == "" {
		return types.NewError(types.CodeSpecInvalid, "encoder_unit_id is required")
	}
	if c.ChecksumModulo <= 0 {
		return types.NewError(types.CodeSpecInvalid, "checksum_modulo must be positive").
			WithDetails(map[string]any{"checksum_modulo": c.ChecksumModulo})
	}
	if len(c.EncodeChars) == 0 {
		return types.NewError(types.CodeSpecInvalid, "encode_chars is empty")
	}
	if len(c.EncodeChars) != len(c.SymbolOrderStrings) {
		return types.NewError(types.CodeSpecInvalid, "encode_chars and symbol_order_strings length mismatch").
			WithDetails(map[string]any{
				"encode_chars":         len(c.EncodeChars),
				"symbol_order_strings": len(c.SymbolOrderStrings),
			})
	}

	seenChars := make(map[string]int, len(c.EncodeChars))
	for i, ch := range c.EncodeChars {
		if utf8.RuneCountInString(ch) != 1 {
			return types.NewErrorf(types.CodeSpecInvalid, "encode_chars[%d] is not a single character", i).
				WithDetails(map[string]any{"index": i, "value": ch})
		}
		if prev, dup := seenChars[ch]; dup {
			return types.NewErrorf(types.CodeSpecInvalid, "duplicate character %q in encode_chars", ch).
				WithDetails(map[string]any{"index": i, "previous_index": prev})
		}
		seenChars[ch] = i
	}

	seenOrders := make(map[string]int, len(c.SymbolOrderStrings))
	for i, id := range c.SymbolOrderStrings {
		if id == "" {
			return types.NewErrorf(types.CodeSpecInvalid, "symbol_order_strings[%d] is empty", i).
				WithDetails(map[string]any{"index": i})
		}
		if prev, dup := seenOrders[id]; dup {
			return types.NewErrorf(types.CodeSpecInvalid, "duplicate order id %q in symbol_order_strings", id).
				WithDetails(map[string]any{"index": i, "previous_index": prev})
		}
		seenOrders[id] = i
	}

	return nil
}

// SymbolTable returns the order-id to character lookup. Build it once per
// decode; the codec is immutable so the table can be reused across calls.
func (c *Codec) SymbolTable() map[string]string {
	table := make(map[string]string, len(c.SymbolOrderStrings))
	for i, id := range c.SymbolOrderStrings {
		table[id] = c.EncodeChars[i]
	}
	return table
}

// OrderTable returns the character to order-id lookup, the encode direction.
// Used by tests and by tooling that generates reference payloads.
func (c *Codec) OrderTable() map[string]string {
	table := make(map[string]string, len(c.EncodeChars))
	for i, ch := range c.EncodeChars {
		table[ch] = c.SymbolOrderStrings[i]
	}
	return table
}
