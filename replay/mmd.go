package replay

import (
	"strconv"
	"strings"

	"github.com/N1teshift/replay-meta/types"
)

// w3mmd key prefixes. Standard protocol traffic ("init", "DefVarP", "VarP",
// "FlagP", "Event") is collected but not interpreted; map-specific data
// rides on "custom" keys.
const (
	mmdCustomPrefix = "custom "

	metaVersionKey    = "meta.version"
	metaSchemaKey     = "meta.schema"
	metaChunkCountKey = "meta.count"
	metaChunkPrefix   = "meta.chunk."
)

// MMDMetadata is the reassembled metadata payload carried over the w3mmd
// channel.
type MMDMetadata struct {
	// Version is the emitting map's version string.
	Version string
	// Schema is the payload schema the map declared.
	Schema string
	// Chunks are the raw payload chunks in index order.
	Chunks []string
	// Payload is the reassembled metadata document.
	Payload string
}

// MMDResult holds the w3mmd stream of one replay.
type MMDResult struct {
	// AllMessages is every MMD.Dat sync command in stream order.
	AllMessages []MMDMessage
	// CustomData maps custom keys to their latest value.
	CustomData map[string]string
	// Meta is the reassembled metadata, nil when the replay carries none.
	Meta *MMDMetadata
}

// ReadMMD extracts the w3mmd-channel metadata from a replay file.
//
// The payload travels as custom key/value pairs: meta.version, meta.schema,
// meta.count, and meta.chunk.<i> entries that concatenate (in index order)
// into the escaped payload text.
func ReadMMD(path string) (*MMDResult, error) {
	c, err := parseContainer(path)
	if err != nil {
		return nil, err
	}

	result := &MMDResult{
		AllMessages: c.mmd,
		CustomData:  make(map[string]string),
	}

	chunks := make(map[int]string)
	for _, msg := range c.mmd {
		rest, ok := strings.CutPrefix(msg.Key, mmdCustomPrefix)
		if !ok {
			continue
		}
		key, value, found := strings.Cut(rest, " ")
		if !found {
			value = ""
		}
		result.CustomData[key] = value

		if idxStr, isChunk := strings.CutPrefix(key, metaChunkPrefix); isChunk {
			idx, perr := strconv.Atoi(idxStr)
			if perr != nil {
				return nil, types.NewErrorf(types.CodeIOError, "bad metadata chunk key %q", key).
					WithDetails(map[string]any{"path": path}).WithCause(perr)
			}
			chunks[idx] = value
		}
	}

	countStr, ok := result.CustomData[metaChunkCountKey]
	if !ok {
		return result, nil
	}
	count, perr := strconv.Atoi(countStr)
	if perr != nil || count < 0 {
		return nil, types.NewErrorf(types.CodeIOError, "bad metadata chunk count %q", countStr).
			WithDetails(map[string]any{"path": path})
	}

	meta := &MMDMetadata{
		Version: result.CustomData[metaVersionKey],
		Schema:  result.CustomData[metaSchemaKey],
	}
	var b strings.Builder
	for i := 0; i < count; i++ {
		chunk, present := chunks[i]
		if !present {
			return nil, types.NewError(types.CodeIOError, "metadata chunk missing").
				WithDetails(map[string]any{"path": path, "missing_chunk": i, "chunk_count": count})
		}
		meta.Chunks = append(meta.Chunks, chunk)
		b.WriteString(chunk)
	}
	meta.Payload = unescapeChunk(b.String())

	result.Meta = meta
	return result, nil
}
