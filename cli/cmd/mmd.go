package cmd

import (
	"github.com/urfave/cli/v2"

	"github.com/N1teshift/replay-meta/fetch"
	"github.com/N1teshift/replay-meta/log"
	"github.com/N1teshift/replay-meta/payload"
	"github.com/N1teshift/replay-meta/replay"
	"github.com/N1teshift/replay-meta/spec"
	"github.com/N1teshift/replay-meta/types"
)

// MMDCommand returns the mmd command: metadata decoding over the w3mmd
// channel. Recommended over the order channel when both are present, since
// the transport is not sensitive to command-stream quirks.
func MMDCommand() *cli.Command {
	return &cli.Command{
		Name:      "mmd",
		Usage:     "Decode match metadata from a replay's w3mmd channel",
		ArgsUsage: "<replay>",
		Flags:     DecodeFlags(),
		Action:    mmdAction,
	}
}

func mmdAction(c *cli.Context) error {
	input, err := inputArg(c)
	if err != nil {
		return err
	}

	logger := log.New()

	path, cleanup, err := fetch.Resolve(c.Context, input, fetchOptions(c))
	if err != nil {
		return exitError(err)
	}
	defer cleanup()

	mmdResult, err := replay.ReadMMD(path)
	if err != nil {
		return exitError(err)
	}

	logger.Info("w3mmd data read", map[string]any{
		"messages":    len(mmdResult.AllMessages),
		"custom_keys": len(mmdResult.CustomData),
	})

	if mmdResult.Meta == nil || mmdResult.Meta.Payload == "" {
		keys := make([]string, 0, len(mmdResult.CustomData))
		for k := range mmdResult.CustomData {
			keys = append(keys, k)
		}
		return exitError(types.NewError(types.CodeStreamNotFound, "no metadata found in w3mmd data").
			WithDetails(map[string]any{
				"total_messages":   len(mmdResult.AllMessages),
				"custom_data_keys": keys,
			}))
	}

	logger.Info("w3mmd metadata reassembled", map[string]any{
		"map_version":    mmdResult.Meta.Version,
		"schema":         mmdResult.Meta.Schema,
		"chunks":         len(mmdResult.Meta.Chunks),
		"payload_length": len(mmdResult.Meta.Payload),
	})

	codec, err := spec.Resolve(nil, c.String("spec"))
	if err != nil {
		return exitError(err)
	}

	// The w3mmd transport escapes the payload, which shifts the checksum
	// input; validation is skipped for this channel.
	metadata, err := payload.Parse(mmdResult.Meta.Payload, codec, payload.Options{SkipChecksum: true})
	if err != nil {
		return exitError(err)
	}

	return renderDecoded(c, &types.DecodeResult{
		Metadata:    metadata,
		Payload:     mmdResult.Meta.Payload,
		SpecVersion: codec.Version,
	}, "w3mmd")
}
