// Package replay reads recorded game containers (.w3g) and exposes the
// command, chat, and game-cache streams the metadata channels ride on.
//
// The decode pipeline depends only on the StreamReader capability, so tests
// and offline tooling substitute an in-memory stub for the real container
// reader.
package replay

import (
	"os"

	"github.com/N1teshift/replay-meta/types"
)

// StreamReader yields the ordered sequence of recorded command events from
// a replay file. Implementations must preserve the original stream order.
type StreamReader interface {
	ReadOrders(path string) ([]types.OrderEvent, error)
}

// ContainerReader is the production StreamReader backed by the .w3g
// container parser.
type ContainerReader struct{}

// NewContainerReader creates the default replay-file reader.
func NewContainerReader() *ContainerReader {
	return &ContainerReader{}
}

// ReadOrders parses the replay container at path and returns its recorded
// command events in stream order.
//
// A missing file returns STREAM_NOT_FOUND; an unreadable or structurally
// corrupt container returns IO_ERROR with contextual detail.
func (r *ContainerReader) ReadOrders(path string) ([]types.OrderEvent, error) {
	c, err := parseContainer(path)
	if err != nil {
		return nil, err
	}
	return c.orders, nil
}

// Verify ContainerReader implements StreamReader.
var _ StreamReader = (*ContainerReader)(nil)

func readContainerFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, types.NewErrorf(types.CodeStreamNotFound, "replay file not found: %s", path).WithCause(err)
		}
		return nil, types.NewErrorf(types.CodeIOError, "cannot read replay file %s", path).WithCause(err)
	}
	return data, nil
}
