package decode

import (
	"strings"

	"github.com/N1teshift/replay-meta/spec"
	"github.com/N1teshift/replay-meta/types"
)

// DecodeSymbols maps each order id back to its source character and
// concatenates the result. The first order id without a mapping fails with
// UNKNOWN_SYMBOL naming the id and its position, and no partial output is
// returned: silently dropping a symbol would desynchronize every field
// boundary that follows it.
func DecodeSymbols(orderIDs []string, codec *spec.Codec) (string, error) {
	table := codec.SymbolTable()

	var b strings.Builder
	b.Grow(len(orderIDs))
	for i, id := range orderIDs {
		ch, ok := table[id]
		if !ok {
			return "", types.NewErrorf(types.CodeUnknownSymbol, "order id %q has no symbol mapping", id).
				WithDetails(map[string]any{"order_id": id, "position": i})
		}
		b.WriteString(ch)
	}
	return b.String(), nil
}

// EncodeSymbols is the inverse mapping, character to order id. It exists for
// round-trip tests and for tooling that builds reference replays; the
// production path only decodes.
func EncodeSymbols(payload string, codec *spec.Codec) ([]string, error) {
	table := codec.OrderTable()

	orders := make([]string, 0, len(payload))
	for i, r := range payload {
		id, ok := table[string(r)]
		if !ok {
			return nil, types.NewErrorf(types.CodeUnknownSymbol, "character %q is not in the codec alphabet", string(r)).
				WithDetails(map[string]any{"char": string(r), "position": i})
		}
		orders = append(orders, id)
	}
	return orders, nil
}
