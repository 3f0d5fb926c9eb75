package replay

import (
	"sort"
	"strconv"
	"strings"

	"github.com/N1teshift/replay-meta/types"
)

// chatMetaPrefix marks chat messages that carry metadata payload chunks.
// Format: ITTMETA:<seq>:<chunk>, chunk escaped per escapeChunk.
const chatMetaPrefix = "ITTMETA:"

// ChatResult holds the chat stream of one replay and the reassembled
// metadata payload, if any.
type ChatResult struct {
	// AllMessages is every chat line in stream order.
	AllMessages []ChatMessage
	// MetadataMessages is the subset carrying payload chunks.
	MetadataMessages []ChatMessage
	// Payload is the reassembled metadata document, empty when the replay
	// carries no chat-channel metadata.
	Payload string
}

// ReadChat extracts the chat-channel metadata from a replay file.
//
// Chat lines cannot contain newlines, so the encoder splits the payload
// into sequence-numbered chunks with newlines and backslashes escaped;
// reassembly reverses both.
func ReadChat(path string) (*ChatResult, error) {
	c, err := parseContainer(path)
	if err != nil {
		return nil, err
	}

	result := &ChatResult{AllMessages: c.chats}

	type chunk struct {
		seq  int
		text string
	}
	var chunks []chunk
	for _, msg := range c.chats {
		rest, ok := strings.CutPrefix(msg.Text, chatMetaPrefix)
		if !ok {
			continue
		}
		result.MetadataMessages = append(result.MetadataMessages, msg)

		seqStr, text, found := strings.Cut(rest, ":")
		if !found {
			return nil, types.NewErrorf(types.CodeIOError, "malformed metadata chat chunk: %s", msg.Text).
				WithDetails(map[string]any{"path": path})
		}
		seq, perr := strconv.Atoi(seqStr)
		if perr != nil {
			return nil, types.NewErrorf(types.CodeIOError, "bad metadata chunk sequence %q", seqStr).
				WithDetails(map[string]any{"path": path}).WithCause(perr)
		}
		chunks = append(chunks, chunk{seq: seq, text: text})
	}

	if len(chunks) == 0 {
		return result, nil
	}

	sort.SliceStable(chunks, func(i, j int) bool { return chunks[i].seq < chunks[j].seq })
	var b strings.Builder
	for i, ch := range chunks {
		if ch.seq != i {
			return nil, types.NewError(types.CodeIOError, "metadata chat chunk sequence gap").
				WithDetails(map[string]any{"path": path, "expected": i, "actual": ch.seq})
		}
		b.WriteString(ch.text)
	}

	result.Payload = unescapeChunk(b.String())
	return result, nil
}

// unescapeChunk reverses the transport escaping: \n for newline, \\ for
// backslash.
func unescapeChunk(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) {
			switch s[i+1] {
			case 'n':
				b.WriteByte('\n')
				i++
				continue
			case '\\':
				b.WriteByte('\\')
				i++
				continue
			}
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

// escapeChunk applies the transport escaping. Kept alongside unescapeChunk
// so tests and payload-generation tooling share one definition.
func escapeChunk(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	return strings.ReplaceAll(s, "\n", "\\n")
}
