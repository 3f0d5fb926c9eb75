// Package main provides the replay-meta CLI entrypoint.
//
// Usage:
//
//	replay-meta <command> <replay> [options]
//
// Exit codes by failure classification:
//   - 0: success
//   - 1: unclassified error
//   - 2: replay or metadata stream not found
//   - 3: checksum mismatch
//   - 4: unknown symbol in the order stream
//   - 5: invalid codec spec
//   - 6: I/O error or corrupt container
//   - 7: invalid payload
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/N1teshift/replay-meta/cli/cmd"
	"github.com/N1teshift/replay-meta/types"
)

// commit is set via ldflags at build time.
var commit = "unknown"

func main() {
	app := &cli.App{
		Name:           "replay-meta",
		Usage:          "Decode hidden match metadata from recorded game replays",
		Version:        fmt.Sprintf("%s (commit: %s)", types.Version, commit),
		ExitErrHandler: exitErrHandler,
		Commands: []*cli.Command{
			cmd.DecodeCommand(),
			cmd.ChatCommand(),
			cmd.MMDCommand(),
			cmd.BatchCommand(),
			cmd.VersionCommand(commit),
		},
	}

	if err := app.Run(os.Args); err != nil {
		// ExitErrHandler already handled cli.ExitCoder errors; this branch
		// covers unexpected errors that weren't wrapped.
		os.Exit(1)
	}
}

// exitErrHandler preserves classified exit codes from cli.Exit().
func exitErrHandler(_ *cli.Context, err error) {
	if err == nil {
		return
	}

	var exitCoder cli.ExitCoder
	if errors.As(err, &exitCoder) {
		code := exitCoder.ExitCode()
		msg := exitCoder.Error()

		// cli.Exit("", N).Error() returns "exit status N"; skip those.
		if msg != "" && msg != fmt.Sprintf("exit status %d", code) {
			fmt.Fprintln(os.Stderr, msg)
		}
		os.Exit(code)
	}

	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}
