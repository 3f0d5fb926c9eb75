// Package cmd provides CLI commands for the replay-meta binary.
package cmd

import "github.com/urfave/cli/v2"

// Shared flags for decode-style commands.
var (
	// InputFlag names the replay file to decode (.w3g path or s3:// URI).
	InputFlag = &cli.StringFlag{
		Name:    "input",
		Aliases: []string{"i"},
		Usage:   "Replay file to decode (.w3g path or s3:// URI)",
	}

	// SpecFlag names an optional codec spec file.
	SpecFlag = &cli.StringFlag{
		Name:  "spec",
		Usage: "Path to a YAML codec spec (defaults to the embedded spec)",
	}

	// FormatFlag selects output format: json, table, yaml.
	FormatFlag = &cli.StringFlag{
		Name:    "format",
		Aliases: []string{"f"},
		Usage:   "Output format: json, table, yaml",
	}

	// JSONFlag forces JSON output.
	JSONFlag = &cli.BoolFlag{
		Name:  "json",
		Usage: "Output JSON",
	}

	// PrettyFlag pretty-prints JSON (implies --json).
	PrettyFlag = &cli.BoolFlag{
		Name:  "pretty",
		Usage: "Pretty-print JSON (implies --json)",
	}

	// RawFlag includes the raw payload text in the output.
	RawFlag = &cli.BoolFlag{
		Name:  "raw",
		Usage: "Include the raw payload in the output",
	}

	// SkipChecksumFlag bypasses payload integrity verification.
	SkipChecksumFlag = &cli.BoolFlag{
		Name:  "skip-checksum",
		Usage: "Skip payload checksum validation (recovery tooling only)",
	}

	// TUIFlag enables the Bubble Tea match inspector.
	TUIFlag = &cli.BoolFlag{
		Name:  "tui",
		Usage: "Inspect the decoded match in an interactive TUI",
	}

	// S3RegionFlag overrides the AWS region for s3:// inputs.
	S3RegionFlag = &cli.StringFlag{
		Name:  "s3-region",
		Usage: "AWS region for s3:// inputs",
	}

	// S3EndpointFlag points s3:// inputs at an S3-compatible provider.
	S3EndpointFlag = &cli.StringFlag{
		Name:  "s3-endpoint",
		Usage: "Custom S3 endpoint URL (R2, MinIO, ...)",
	}

	// S3PathStyleFlag forces path-style S3 addressing.
	S3PathStyleFlag = &cli.BoolFlag{
		Name:  "s3-path-style",
		Usage: "Use path-style S3 addressing",
	}
)

// DecodeFlags returns the shared flags for the single-replay decode
// commands.
func DecodeFlags() []cli.Flag {
	return []cli.Flag{
		InputFlag,
		SpecFlag,
		FormatFlag,
		JSONFlag,
		PrettyFlag,
		RawFlag,
		SkipChecksumFlag,
		S3RegionFlag,
		S3EndpointFlag,
		S3PathStyleFlag,
	}
}
