package cmd

import (
	"github.com/urfave/cli/v2"

	"github.com/N1teshift/replay-meta/fetch"
	"github.com/N1teshift/replay-meta/types"
)

// Exit codes by failure classification. Stable contract for scripts that
// wrap the CLI.
var exitCodeByError = map[types.Code]int{
	types.CodeStreamNotFound:   2,
	types.CodeChecksumMismatch: 3,
	types.CodeUnknownSymbol:    4,
	types.CodeSpecInvalid:      5,
	types.CodeIOError:          6,
	types.CodePayloadInvalid:   7,
}

// exitError wraps a decode failure into a cli exit error carrying the
// classified exit code.
func exitError(err error) error {
	if err == nil {
		return nil
	}
	code, ok := exitCodeByError[types.CodeOf(err)]
	if !ok {
		code = 1
	}
	return cli.Exit(err.Error(), code)
}

// inputArg resolves the replay input from -i/--input or the first
// positional argument.
func inputArg(c *cli.Context) (string, error) {
	input := c.String("input")
	if input == "" {
		input = c.Args().First()
	}
	if input == "" {
		return "", cli.Exit("missing input replay path", 1)
	}
	return input, nil
}

// fetchOptions builds object-storage retrieval options from the CLI flags.
func fetchOptions(c *cli.Context) fetch.Options {
	return fetch.Options{
		Region:       c.String("s3-region"),
		Endpoint:     c.String("s3-endpoint"),
		UsePathStyle: c.Bool("s3-path-style"),
	}
}
