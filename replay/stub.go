package replay

import "github.com/N1teshift/replay-meta/types"

// StubReader is an in-memory StreamReader for deterministic tests and
// offline redecoding. It returns its configured events verbatim, or the
// configured error.
type StubReader struct {
	Events []types.OrderEvent
	Err    error
}

// NewStubReader creates a stub reader yielding the given events.
func NewStubReader(events []types.OrderEvent) *StubReader {
	return &StubReader{Events: events}
}

// ReadOrders returns the configured events regardless of path.
func (r *StubReader) ReadOrders(string) ([]types.OrderEvent, error) {
	if r.Err != nil {
		return nil, r.Err
	}
	return r.Events, nil
}

// Verify StubReader implements StreamReader.
var _ StreamReader = (*StubReader)(nil)
