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

// ChatCommand returns the chat command: metadata decoding over the
// chat-message channel.
func ChatCommand() *cli.Command {
	return &cli.Command{
		Name:      "chat",
		Usage:     "Decode match metadata from a replay's chat channel",
		ArgsUsage: "<replay>",
		Flags:     DecodeFlags(),
		Action:    chatAction,
	}
}

func chatAction(c *cli.Context) error {
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

	chatResult, err := replay.ReadChat(path)
	if err != nil {
		return exitError(err)
	}

	logger.Info("chat messages read", map[string]any{
		"total":    len(chatResult.AllMessages),
		"metadata": len(chatResult.MetadataMessages),
	})

	if chatResult.Payload == "" {
		return exitError(types.NewError(types.CodeStreamNotFound, "no metadata found in chat messages").
			WithDetails(map[string]any{"total_messages": len(chatResult.AllMessages)}))
	}

	codec, err := spec.Resolve(nil, c.String("spec"))
	if err != nil {
		return exitError(err)
	}

	metadata, err := payload.Parse(chatResult.Payload, codec, payload.Options{
		SkipChecksum: c.Bool("skip-checksum"),
	})
	if err != nil {
		return exitError(err)
	}

	return renderDecoded(c, &types.DecodeResult{
		Metadata:    metadata,
		Payload:     chatResult.Payload,
		SpecVersion: codec.Version,
	}, "chat")
}
