package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/N1teshift/replay-meta/cli/render"
	"github.com/N1teshift/replay-meta/decode"
	"github.com/N1teshift/replay-meta/fetch"
	"github.com/N1teshift/replay-meta/log"
	"github.com/N1teshift/replay-meta/sink"
	"github.com/N1teshift/replay-meta/types"
)

// BatchResponse is the batch command's summary output.
type BatchResponse struct {
	Total     int    `json:"total" yaml:"total"`
	Succeeded int    `json:"succeeded" yaml:"succeeded"`
	Failed    int    `json:"failed" yaml:"failed"`
	Out       string `json:"out" yaml:"out"`
}

// BatchCommand returns the batch command: decode many replays concurrently
// and stream the results to a framed msgpack sink file.
func BatchCommand() *cli.Command {
	return &cli.Command{
		Name:      "batch",
		Usage:     "Decode a set of replays into a framed msgpack result file",
		ArgsUsage: "<replay>...",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "out",
				Aliases:  []string{"o"},
				Usage:    "Output sink file",
				Required: true,
			},
			&cli.StringFlag{
				Name:  "dir",
				Usage: "Decode every .w3g file in this directory",
			},
			&cli.IntFlag{
				Name:  "concurrency",
				Usage: "Concurrent decodes",
				Value: 4,
			},
			SpecFlag,
			FormatFlag,
			JSONFlag,
			PrettyFlag,
			SkipChecksumFlag,
			S3RegionFlag,
			S3EndpointFlag,
			S3PathStyleFlag,
		},
		Action: batchAction,
	}
}

func batchAction(c *cli.Context) error {
	inputs := c.Args().Slice()
	if dir := c.String("dir"); dir != "" {
		entries, err := os.ReadDir(dir)
		if err != nil {
			return exitError(types.NewErrorf(types.CodeIOError, "cannot read directory %s", dir).WithCause(err))
		}
		for _, entry := range entries {
			if !entry.IsDir() && strings.EqualFold(filepath.Ext(entry.Name()), ".w3g") {
				inputs = append(inputs, filepath.Join(dir, entry.Name()))
			}
		}
	}
	if len(inputs) == 0 {
		return cli.Exit("no replays to decode", 1)
	}

	out, err := os.Create(c.String("out"))
	if err != nil {
		return exitError(types.NewErrorf(types.CodeIOError, "cannot create sink file %s", c.String("out")).WithCause(err))
	}
	defer out.Close()

	logger := log.New()
	writer := sink.NewFrameWriter(out)
	opts := decode.Options{
		CodecPath:    c.String("spec"),
		SkipChecksum: c.Bool("skip-checksum"),
		Logger:       logger,
	}
	fetchOpts := fetchOptions(c)

	concurrency := c.Int("concurrency")
	if concurrency < 1 {
		concurrency = 1
	}

	// Each decode is independent and the pipeline holds no shared mutable
	// state; only the sink writer needs serializing.
	var (
		writeMu   sync.Mutex
		counterMu sync.Mutex
		succeeded int
		failed    int
		writeErr  error
	)

	work := make(chan string)
	var wg sync.WaitGroup
	for i := 0; i < concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for input := range work {
				rec := decodeOne(c, input, opts, fetchOpts)

				counterMu.Lock()
				if rec.Error == nil {
					succeeded++
				} else {
					failed++
					logger.Warn("replay decode failed", map[string]any{
						"input": input,
						"code":  rec.Error.Code,
						"error": rec.Error.Msg,
					})
				}
				counterMu.Unlock()

				writeMu.Lock()
				if writeErr == nil {
					writeErr = writer.Write(rec)
				}
				writeMu.Unlock()
			}
		}()
	}
	for _, input := range inputs {
		work <- input
	}
	close(work)
	wg.Wait()

	if writeErr != nil {
		return exitError(types.NewError(types.CodeIOError, "sink write failed").WithCause(writeErr))
	}

	resp := BatchResponse{
		Total:     len(inputs),
		Succeeded: succeeded,
		Failed:    failed,
		Out:       c.String("out"),
	}

	if c.Bool("json") || c.Bool("pretty") || c.String("format") != "" {
		r, rerr := render.New(c)
		if rerr != nil {
			return cli.Exit(rerr.Error(), 1)
		}
		if err := r.Render(resp); err != nil {
			return cli.Exit(err.Error(), 1)
		}
	} else {
		fmt.Printf("Decoded %d/%d replays into %s (%d failed)\n", succeeded, resp.Total, resp.Out, failed)
	}

	if failed > 0 {
		return cli.Exit("", 1)
	}
	return nil
}

// decodeOne decodes a single input into a sink record, classifying any
// failure instead of aborting the batch.
func decodeOne(c *cli.Context, input string, opts decode.Options, fetchOpts fetch.Options) sink.Record {
	decodedAt := time.Now().UTC().Format(time.RFC3339)

	path, cleanup, err := fetch.Resolve(c.Context, input, fetchOpts)
	if err != nil {
		return sink.NewErrorRecord(input, decodedAt, err)
	}
	defer cleanup()

	result, err := decode.Replay(path, opts)
	if err != nil {
		return sink.NewErrorRecord(input, decodedAt, err)
	}

	return sink.Record{
		ContractVersion: types.Version,
		Input:           input,
		DecodedAt:       decodedAt,
		Result:          result.DecodeResult,
	}
}
