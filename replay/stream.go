package replay

import (
	"encoding/binary"
	"errors"
)

// errTruncated signals that a record or action ran past the end of the
// decompressed stream. Always wrapped into an IO_ERROR by the caller.
var errTruncated = errors.New("truncated record stream")

// recordReader is a cursor over the decompressed record stream.
// All multi-byte values are little-endian.
type recordReader struct {
	data []byte
	pos  int
}

func (r *recordReader) done() bool {
	return r.pos >= len(r.data)
}

func (r *recordReader) byte() (byte, error) {
	if r.pos >= len(r.data) {
		return 0, errTruncated
	}
	b := r.data[r.pos]
	r.pos++
	return b, nil
}

func (r *recordReader) uint16() (uint16, error) {
	if r.pos+2 > len(r.data) {
		return 0, errTruncated
	}
	v := binary.LittleEndian.Uint16(r.data[r.pos:])
	r.pos += 2
	return v, nil
}

func (r *recordReader) uint32() (uint32, error) {
	if r.pos+4 > len(r.data) {
		return 0, errTruncated
	}
	v := binary.LittleEndian.Uint32(r.data[r.pos:])
	r.pos += 4
	return v, nil
}

func (r *recordReader) skip(n int) error {
	if r.pos+n > len(r.data) {
		return errTruncated
	}
	r.pos += n
	return nil
}

// cstring reads a null-terminated string.
func (r *recordReader) cstring() (string, error) {
	start := r.pos
	for r.pos < len(r.data) {
		if r.data[r.pos] == 0 {
			s := string(r.data[start:r.pos])
			r.pos++
			return s, nil
		}
		r.pos++
	}
	return "", errTruncated
}

// skipStartupRecords advances past the game-setup prelude that precedes the
// replay data: host record, game name, encoded settings, the player list,
// and the game start record.
func (r *recordReader) skipStartupRecords() error {
	if err := r.skip(4); err != nil { // unknown
		return err
	}
	if err := r.skip(1); err != nil { // host record id
		return err
	}
	if err := r.skipPlayerRecord(); err != nil {
		return err
	}
	if _, err := r.cstring(); err != nil { // game name
		return err
	}
	if err := r.skip(1); err != nil { // null separator
		return err
	}
	if _, err := r.cstring(); err != nil { // encoded settings string
		return err
	}
	if err := r.skip(12); err != nil { // player count, game type, language
		return err
	}

	// Additional player records.
	for !r.done() && r.data[r.pos] == 0x16 {
		if err := r.skip(1); err != nil {
			return err
		}
		if err := r.skipPlayerRecord(); err != nil {
			return err
		}
		if err := r.skip(4); err != nil {
			return err
		}
	}

	// Game start record: id, payload length, payload.
	id, err := r.byte()
	if err != nil {
		return err
	}
	if id != 0x19 {
		return errTruncated
	}
	length, err := r.uint16()
	if err != nil {
		return err
	}
	return r.skip(int(length))
}

// skipPlayerRecord advances past one player record (without its record id).
func (r *recordReader) skipPlayerRecord() error {
	if err := r.skip(1); err != nil { // player id
		return err
	}
	if _, err := r.cstring(); err != nil { // player name
		return err
	}
	extra, err := r.byte() // size of the platform-specific blob
	if err != nil {
		return err
	}
	return r.skip(int(extra))
}
