package decode

import (
	"github.com/N1teshift/replay-meta/log"
	"github.com/N1teshift/replay-meta/payload"
	"github.com/N1teshift/replay-meta/replay"
	"github.com/N1teshift/replay-meta/spec"
	"github.com/N1teshift/replay-meta/types"
)

// Options configure one decode invocation.
type Options struct {
	// Codec is an already-resolved codec spec. Takes precedence over
	// CodecPath.
	Codec *spec.Codec
	// CodecPath loads the codec from a YAML file. Empty falls back to the
	// embedded default.
	CodecPath string
	// Reader substitutes the replay container reader. Nil uses the real
	// .w3g reader.
	Reader replay.StreamReader
	// SkipChecksum bypasses payload integrity verification. Recovery and
	// debugging tooling only.
	SkipChecksum bool
	// Logger receives diagnostics. Nil discards them.
	Logger *log.Logger
}

// OrdersResult is the product of decoding a raw order-id sequence.
type OrdersResult struct {
	Payload  string
	Metadata *types.MatchMetadata
	Codec    *spec.Codec
}

// ReplayResult is the product of decoding a replay file. It embeds the
// serializable record and carries the resolved codec, so callers can audit
// which spec produced the decode.
type ReplayResult struct {
	*types.DecodeResult
	Codec *spec.Codec
}

// Orders decodes a raw order-id sequence into match metadata. Used for
// deterministic testing and offline redecoding of captured order streams.
func Orders(orderIDs []string, opts Options) (*OrdersResult, error) {
	codec, err := spec.Resolve(opts.Codec, opts.CodecPath)
	if err != nil {
		return nil, err
	}

	text, err := DecodeSymbols(orderIDs, codec)
	if err != nil {
		return nil, err
	}

	metadata, err := payload.Parse(text, codec, payload.Options{SkipChecksum: opts.SkipChecksum})
	if err != nil {
		return nil, err
	}

	return &OrdersResult{Payload: text, Metadata: metadata, Codec: codec}, nil
}

// Replay decodes the hidden metadata channel of a replay file end to end:
// container read, metadata order extraction, symbol decode, checksum gate,
// structural parse. The returned result includes the intermediate order-id
// subsequence and payload string for debuggability.
func Replay(path string, opts Options) (*ReplayResult, error) {
	codec, err := spec.Resolve(opts.Codec, opts.CodecPath)
	if err != nil {
		return nil, err
	}

	reader := opts.Reader
	if reader == nil {
		reader = replay.NewContainerReader()
	}

	events, err := reader.ReadOrders(path)
	if err != nil {
		return nil, err
	}

	orders := ExtractOrders(events, codec, opts.Logger)

	text, err := DecodeSymbols(orders, codec)
	if err != nil {
		return nil, err
	}

	metadata, err := payload.Parse(text, codec, payload.Options{SkipChecksum: opts.SkipChecksum})
	if err != nil {
		return nil, err
	}

	return &ReplayResult{
		DecodeResult: &types.DecodeResult{
			Metadata:    metadata,
			Payload:     text,
			Orders:      orders,
			SpecVersion: codec.Version,
		},
		Codec: codec,
	}, nil
}
