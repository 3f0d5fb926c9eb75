// Package sink implements the batch-result record stream: length-prefixed
// msgpack frames, one decode record per frame.
//
// The surrounding ingestion pipeline tails these files, so the framing is a
// stable contract: a 4-byte big-endian payload length followed by the
// msgpack-encoded record, capped at MaxFrameSize.
package sink

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/N1teshift/replay-meta/types"
)

// Frame size constants.
const (
	// MaxFrameSize is the maximum frame size (16 MiB), including the
	// length prefix.
	MaxFrameSize = 16 * 1024 * 1024
	// MaxPayloadSize is the maximum payload size.
	MaxPayloadSize = MaxFrameSize - LengthPrefixSize
	// LengthPrefixSize is the size of the length prefix in bytes.
	LengthPrefixSize = 4
)

// RecordError carries a classified decode failure inside a record.
type RecordError struct {
	Code    string         `msgpack:"code" json:"code"`
	Msg     string         `msgpack:"msg" json:"msg"`
	Details map[string]any `msgpack:"details,omitempty" json:"details,omitempty"`
}

// Record is one batch decode outcome. Exactly one of Error and Result is
// set.
type Record struct {
	// ContractVersion is the record format version (lockstep with the
	// project version).
	ContractVersion string `msgpack:"contract_version" json:"contract_version"`
	// Input is the replay location as given (local path or s3 URI).
	Input string `msgpack:"input" json:"input"`
	// DecodedAt is an RFC3339 timestamp of the decode attempt.
	DecodedAt string `msgpack:"decoded_at" json:"decoded_at"`

	Error  *RecordError        `msgpack:"error,omitempty" json:"error,omitempty"`
	Result *types.DecodeResult `msgpack:"result,omitempty" json:"result,omitempty"`
}

// NewErrorRecord builds a failure record from a classified decode error.
// Unclassified errors map to code IO_ERROR.
func NewErrorRecord(input, decodedAt string, err error) Record {
	rec := Record{
		ContractVersion: types.Version,
		Input:           input,
		DecodedAt:       decodedAt,
	}
	var de *types.DecodeError
	if errors.As(err, &de) {
		rec.Error = &RecordError{Code: string(de.Code), Msg: de.Msg, Details: de.Details}
	} else {
		rec.Error = &RecordError{Code: string(types.CodeIOError), Msg: err.Error()}
	}
	return rec
}

// FrameWriter writes length-prefixed msgpack records to a stream.
// Not safe for concurrent use; callers serialize writes.
type FrameWriter struct {
	w io.Writer
}

// NewFrameWriter creates a frame writer over w.
func NewFrameWriter(w io.Writer) *FrameWriter {
	return &FrameWriter{w: w}
}

// Write encodes and frames one record.
func (fw *FrameWriter) Write(rec Record) error {
	payload, err := msgpack.Marshal(&rec)
	if err != nil {
		return fmt.Errorf("encode sink record: %w", err)
	}
	if len(payload) > MaxPayloadSize {
		return fmt.Errorf("sink record payload %d exceeds maximum %d", len(payload), MaxPayloadSize)
	}

	var lengthBuf [LengthPrefixSize]byte
	binary.BigEndian.PutUint32(lengthBuf[:], uint32(len(payload)))
	if _, err := fw.w.Write(lengthBuf[:]); err != nil {
		return fmt.Errorf("write frame prefix: %w", err)
	}
	if _, err := fw.w.Write(payload); err != nil {
		return fmt.Errorf("write frame payload: %w", err)
	}
	return nil
}

// FrameReader reads length-prefixed msgpack records from a stream.
type FrameReader struct {
	r io.Reader
}

// NewFrameReader creates a frame reader over r.
func NewFrameReader(r io.Reader) *FrameReader {
	return &FrameReader{r: r}
}

// Read returns the next record.
//
// Errors:
//   - io.EOF: stream ended cleanly between frames
//   - otherwise: truncated or oversized frame, or a msgpack decode failure
func (fr *FrameReader) Read() (*Record, error) {
	var lengthBuf [LengthPrefixSize]byte
	if _, err := io.ReadFull(fr.r, lengthBuf[:]); err != nil {
		if err == io.EOF {
			return nil, io.EOF
		}
		return nil, fmt.Errorf("read frame prefix: %w", err)
	}

	payloadSize := binary.BigEndian.Uint32(lengthBuf[:])
	if payloadSize > MaxPayloadSize {
		return nil, fmt.Errorf("frame payload %d exceeds maximum %d", payloadSize, MaxPayloadSize)
	}

	payload := make([]byte, payloadSize)
	if _, err := io.ReadFull(fr.r, payload); err != nil {
		return nil, fmt.Errorf("read frame payload: %w", err)
	}

	var rec Record
	if err := msgpack.Unmarshal(payload, &rec); err != nil {
		return nil, fmt.Errorf("decode sink record: %w", err)
	}
	return &rec, nil
}
