package replay

import (
	"bytes"
	"compress/zlib"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/N1teshift/replay-meta/types"
)

// containerMagic is the 28-byte signature every .w3g file starts with.
var containerMagic = []byte("Warcraft III recorded game\x1A\x00")

// ChatMessage is one in-game chat line recorded in the container.
type ChatMessage struct {
	PlayerID    int
	TimestampMS int64
	Text        string
}

// MMDMessage is one game-cache sync command (the w3mmd transport).
type MMDMessage struct {
	PlayerID    int
	TimestampMS int64
	MissionKey  string
	Key         string
	Value       uint32
}

// container holds the streams extracted from one replay file.
type container struct {
	orders []types.OrderEvent
	chats  []ChatMessage
	mmd    []MMDMessage
}

// mmdCacheName is the game cache the w3mmd protocol synchronizes through.
const mmdCacheName = "MMD.Dat"

// parseContainer reads, inflates, and walks a .w3g container.
func parseContainer(path string) (*container, error) {
	data, err := readContainerFile(path)
	if err != nil {
		return nil, err
	}

	stream, err := inflateBlocks(data, path)
	if err != nil {
		return nil, err
	}

	c := &container{}
	if err := c.walkRecords(stream, path); err != nil {
		return nil, err
	}
	return c, nil
}

// inflateBlocks validates the fixed header and concatenates the zlib block
// payloads into one decompressed record stream.
func inflateBlocks(data []byte, path string) ([]byte, error) {
	if len(data) < 0x44 || !bytes.Equal(data[:len(containerMagic)], containerMagic) {
		return nil, corrupt(path, "missing container signature")
	}

	headerSize := binary.LittleEndian.Uint32(data[0x1C:])
	headerVersion := binary.LittleEndian.Uint32(data[0x24:])
	decompressedSize := binary.LittleEndian.Uint32(data[0x28:])
	blockCount := binary.LittleEndian.Uint32(data[0x2C:])

	if headerVersion != 1 {
		return nil, corruptf(path, "unsupported container header version %d", headerVersion)
	}
	if int(headerSize) > len(data) {
		return nil, corrupt(path, "header size exceeds file size")
	}

	stream := make([]byte, 0, decompressedSize)
	offset := int(headerSize)
	for block := uint32(0); block < blockCount; block++ {
		// Block header: compressed size, uncompressed size, checksum.
		if offset+8 > len(data) {
			return nil, corruptf(path, "truncated block header at block %d", block)
		}
		compressedSize := int(binary.LittleEndian.Uint16(data[offset:]))
		offset += 8

		if offset+compressedSize > len(data) {
			return nil, corruptf(path, "truncated block data at block %d", block)
		}
		zr, err := zlib.NewReader(bytes.NewReader(data[offset : offset+compressedSize]))
		if err != nil {
			return nil, corruptf(path, "bad zlib stream at block %d", block)
		}
		inflated, err := io.ReadAll(zr)
		zr.Close()
		if err != nil {
			return nil, corruptf(path, "inflate failed at block %d", block)
		}
		stream = append(stream, inflated...)
		offset += compressedSize
	}

	return stream, nil
}

// walkRecords scans the decompressed record stream, populating the order,
// chat, and mmd streams. A wrong skip here desynchronizes everything that
// follows, so unknown record ids are treated as corruption.
func (c *container) walkRecords(stream []byte, path string) error {
	r := &recordReader{data: stream}

	if err := r.skipStartupRecords(); err != nil {
		return corrupt(path, err.Error())
	}

	// Current subgroup unit type per player, from select-subgroup actions.
	// Order events are attributed to this unit.
	subgroup := make(map[int]string)
	var clockMS int64

	for !r.done() {
		recordID, err := r.byte()
		if err != nil {
			return corrupt(path, "truncated record stream")
		}

		switch recordID {
		case 0x00: // trailing zero padding
			continue

		case 0x17: // player left
			if err := r.skip(13); err != nil {
				return corrupt(path, "truncated leave record")
			}

		case 0x1A, 0x1B, 0x1C: // session markers
			if err := r.skip(4); err != nil {
				return corrupt(path, "truncated session record")
			}

		case 0x1E, 0x1F: // time slot
			if err := c.readTimeSlot(r, &clockMS, subgroup); err != nil {
				return corrupt(path, err.Error())
			}

		case 0x20: // chat message
			if err := c.readChat(r, clockMS); err != nil {
				return corrupt(path, err.Error())
			}

		case 0x22: // random seed / checksum record
			n, err := r.byte()
			if err != nil {
				return corrupt(path, "truncated checksum record")
			}
			if err := r.skip(int(n)); err != nil {
				return corrupt(path, "truncated checksum record")
			}

		case 0x23: // unknown fixed-size record
			if err := r.skip(10); err != nil {
				return corrupt(path, "truncated record 0x23")
			}

		case 0x2F: // forced countdown
			if err := r.skip(8); err != nil {
				return corrupt(path, "truncated countdown record")
			}

		default:
			return corruptf(path, "unknown record id 0x%02X at offset %d", recordID, r.pos-1)
		}
	}

	return nil
}

// readTimeSlot advances the replay clock and parses the per-player command
// blocks inside one time slot.
func (c *container) readTimeSlot(r *recordReader, clockMS *int64, subgroup map[int]string) error {
	length, err := r.uint16()
	if err != nil {
		return err
	}
	increment, err := r.uint16()
	if err != nil {
		return err
	}
	*clockMS += int64(increment)

	remaining := int(length) - 2
	if remaining < 0 {
		return errTruncated
	}
	end := r.pos + remaining
	if end > len(r.data) {
		return errTruncated
	}

	for r.pos < end {
		playerID, err := r.byte()
		if err != nil {
			return err
		}
		actionLen, err := r.uint16()
		if err != nil {
			return err
		}
		actionEnd := r.pos + int(actionLen)
		if actionEnd > end {
			return errTruncated
		}
		c.readActions(r, actionEnd, int(playerID), *clockMS, subgroup)
		r.pos = actionEnd
	}

	return nil
}

// readActions walks one player's action block. Unknown action ids abort the
// block (not the replay): the remainder cannot be framed reliably, and the
// metadata channel never depends on exotic actions.
func (c *container) readActions(r *recordReader, end, playerID int, clockMS int64, subgroup map[int]string) {
	for r.pos < end {
		actionID, err := r.byte()
		if err != nil {
			return
		}

		switch actionID {
		case 0x01, 0x02, 0x61, 0x66, 0x67: // pause, resume, esc, hero submenus
			// no payload

		case 0x03: // set game speed
			if r.skip(1) != nil {
				return
			}

		case 0x10: // unit order, no target
			c.emitOrder(r, playerID, clockMS, subgroup, 8)

		case 0x11: // unit order, point target
			c.emitOrder(r, playerID, clockMS, subgroup, 16)

		case 0x12: // unit order, object target
			c.emitOrder(r, playerID, clockMS, subgroup, 24)

		case 0x13: // give/drop item
			c.emitOrder(r, playerID, clockMS, subgroup, 32)

		case 0x14: // double order
			if r.skip(42) != nil {
				return
			}

		case 0x16, 0x17: // change selection, assign group
			if r.skip(1) != nil {
				return
			}
			count, err := r.uint16()
			if err != nil {
				return
			}
			if r.skip(int(count)*8) != nil {
				return
			}

		case 0x18: // select group hotkey
			if r.skip(2) != nil {
				return
			}

		case 0x19: // select subgroup: carries the unit type rawcode
			itemID, err := r.uint32()
			if err != nil {
				return
			}
			if r.skip(8) != nil {
				return
			}
			subgroup[playerID] = rawcode(itemID)

		case 0x1A: // pre-subselection
			// no payload

		case 0x1B, 0x1C: // unknown, select ground item
			if r.skip(9) != nil {
				return
			}

		case 0x1D: // cancel hero revival
			if r.skip(8) != nil {
				return
			}

		case 0x1E: // remove unit from building queue
			if r.skip(5) != nil {
				return
			}

		case 0x50: // change ally options
			if r.skip(5) != nil {
				return
			}

		case 0x51: // transfer resources
			if r.skip(9) != nil {
				return
			}

		case 0x60: // map-triggered chat command
			if r.skip(8) != nil {
				return
			}
			if _, err := r.cstring(); err != nil {
				return
			}

		case 0x62: // scenario trigger
			if r.skip(12) != nil {
				return
			}

		case 0x6B: // sync stored integer (w3mmd transport)
			cache, err := r.cstring()
			if err != nil {
				return
			}
			missionKey, err := r.cstring()
			if err != nil {
				return
			}
			key, err := r.cstring()
			if err != nil {
				return
			}
			value, err := r.uint32()
			if err != nil {
				return
			}
			if cache == mmdCacheName {
				c.mmd = append(c.mmd, MMDMessage{
					PlayerID:    playerID,
					TimestampMS: clockMS,
					MissionKey:  missionKey,
					Key:         key,
					Value:       value,
				})
			}

		case 0x75: // arrow key
			if r.skip(1) != nil {
				return
			}

		default:
			r.pos = end
			return
		}
	}
}

// emitOrder reads an order action: ability flags, the order rawcode, then
// trailing bytes whose size depends on the targeting mode.
func (c *container) emitOrder(r *recordReader, playerID int, clockMS int64, subgroup map[int]string, trailing int) {
	if r.skip(2) != nil { // ability flags
		return
	}
	itemID, err := r.uint32()
	if err != nil {
		return
	}
	if r.skip(trailing) != nil {
		return
	}
	c.orders = append(c.orders, types.OrderEvent{
		OrderID:     rawcode(itemID),
		PlayerID:    playerID,
		TimestampMS: clockMS,
		UnitID:      subgroup[playerID],
	})
}

// readChat parses one chat record.
func (c *container) readChat(r *recordReader, clockMS int64) error {
	playerID, err := r.byte()
	if err != nil {
		return err
	}
	if _, err := r.uint16(); err != nil { // byte count, not trusted
		return err
	}
	flags, err := r.byte()
	if err != nil {
		return err
	}
	if flags == 0x20 {
		if err := r.skip(4); err != nil { // chat mode
			return err
		}
	}
	text, err := r.cstring()
	if err != nil {
		return err
	}
	c.chats = append(c.chats, ChatMessage{
		PlayerID:    int(playerID),
		TimestampMS: clockMS,
		Text:        text,
	})
	return nil
}

// rawcode renders a 4-byte identifier in stream byte order. The codec spec's
// symbol_order_strings and encoder_unit_id are defined against this exact
// rendering, so the byte order here must never change. Non-printable ids
// (built-in numeric orders) render as hex.
func rawcode(id uint32) string {
	b := []byte{
		byte(id), byte(id >> 8), byte(id >> 16), byte(id >> 24),
	}
	for _, c := range b {
		if c < 0x20 || c > 0x7E {
			return hexcode(id)
		}
	}
	return string(b)
}

const hexDigits = "0123456789ABCDEF"

func hexcode(id uint32) string {
	out := []byte("0x00000000")
	for i := 0; i < 8; i++ {
		out[9-i] = hexDigits[id&0xF]
		id >>= 4
	}
	return string(out)
}

func corrupt(path, msg string) *types.DecodeError {
	return types.NewErrorf(types.CodeIOError, "corrupt replay container: %s", msg).
		WithDetails(map[string]any{"path": path})
}

func corruptf(path, format string, args ...any) *types.DecodeError {
	return corrupt(path, fmt.Sprintf(format, args...))
}
