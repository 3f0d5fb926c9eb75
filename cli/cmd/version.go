package cmd

import (
	"github.com/urfave/cli/v2"

	"github.com/N1teshift/replay-meta/cli/render"
	"github.com/N1teshift/replay-meta/types"
)

// VersionResponse is the response for the version command.
type VersionResponse struct {
	Version string `json:"version"`
	Commit  string `json:"commit"`
}

// VersionCommand returns the version command. It reports the canonical
// project version and never touches a replay.
func VersionCommand(commit string) *cli.Command {
	return &cli.Command{
		Name:  "version",
		Usage: "Show version information",
		Flags: []cli.Flag{FormatFlag, JSONFlag, PrettyFlag},
		Action: func(c *cli.Context) error {
			r, err := render.New(c)
			if err != nil {
				return cli.Exit(err.Error(), 1)
			}
			return r.Render(VersionResponse{
				Version: types.Version,
				Commit:  commit,
			})
		},
	}
}
