// Package decode composes the metadata decode pipeline: order extraction,
// symbol decoding, checksum validation, and structural parsing.
//
// The pipeline is sequential per invocation and holds no shared mutable
// state, so decoding many replays concurrently is safe; a validated Codec
// may be shared across concurrent decodes.
package decode

import (
	"sort"

	"github.com/N1teshift/replay-meta/log"
	"github.com/N1teshift/replay-meta/spec"
	"github.com/N1teshift/replay-meta/types"
)

// ExtractOrders filters the raw command-event sequence down to the
// subsequence that spells the payload: only events issued to the codec's
// encoder unit participate, ordered timestamp-ascending with original
// stream position breaking ties (the engine records commands in issue
// order per tick).
//
// An empty result is not an error; payload absence is rejected downstream.
func ExtractOrders(events []types.OrderEvent, codec *spec.Codec, logger *log.Logger) []string {
	if logger == nil {
		logger = log.Nop()
	}

	type indexed struct {
		event types.OrderEvent
		pos   int
	}
	selected := make([]indexed, 0, len(events))
	for i, ev := range events {
		if ev.UnitID == codec.EncoderUnitID {
			selected = append(selected, indexed{event: ev, pos: i})
		}
	}

	sort.SliceStable(selected, func(i, j int) bool {
		if selected[i].event.TimestampMS != selected[j].event.TimestampMS {
			return selected[i].event.TimestampMS < selected[j].event.TimestampMS
		}
		return selected[i].pos < selected[j].pos
	})

	orders := make([]string, len(selected))
	for i, s := range selected {
		orders[i] = s.event.OrderID
	}

	if log.DebugEnabled() {
		preview, _ := DecodeSymbols(orders, codec)
		logger.Debug("extracted metadata orders", map[string]any{
			"event_count":    len(events),
			"order_count":    len(orders),
			"payload_length": len(preview),
			"payload":        preview,
		})
	}

	return orders
}
