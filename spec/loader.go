package spec

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/N1teshift/replay-meta/types"
)

// The default codec spec is embedded at build time so the binary is
// self-contained; it matches the map constants of the current map release.
//
//go:embed default_spec.yaml
var defaultSpecYAML []byte

// Load reads and validates a codec spec from a YAML file.
// Structural violations return SPEC_INVALID; unreadable files return IO_ERROR.
func Load(path string) (*Codec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, types.NewErrorf(types.CodeIOError, "spec file not found: %s", path).WithCause(err)
		}
		return nil, types.NewErrorf(types.CodeIOError, "cannot read spec file %s", path).WithCause(err)
	}
	return parse(data, path)
}

// Default returns the embedded default codec spec.
func Default() (*Codec, error) {
	return parse(defaultSpecYAML, "embedded default")
}

// Resolve produces the codec for a decode: an explicitly supplied codec wins,
// then a path, then the embedded default. The result is always validated.
func Resolve(codec *Codec, path string) (*Codec, error) {
	if codec != nil {
		if err := codec.Validate(); err != nil {
			return nil, err
		}
		return codec, nil
	}
	if path != "" {
		return Load(path)
	}
	return Default()
}

func parse(data []byte, source string) (*Codec, error) {
	var codec Codec
	if err := yaml.Unmarshal(data, &codec); err != nil {
		return nil, types.NewError(types.CodeSpecInvalid, fmt.Sprintf("invalid YAML in %s", source)).WithCause(err)
	}
	if err := codec.Validate(); err != nil {
		return nil, err
	}
	return &codec, nil
}
