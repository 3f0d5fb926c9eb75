package payload

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"testing"

	"github.com/N1teshift/replay-meta/checksum"
	"github.com/N1teshift/replay-meta/spec"
	"github.com/N1teshift/replay-meta/types"
)

func testCodec() *spec.Codec {
	return &spec.Codec{
		Version:            1,
		EncoderUnitID:      "h0MB",
		EncodeChars:        []string{"a"},
		SymbolOrderStrings: []string{"ord000"},
		ChecksumModulo:     1000000007,
	}
}

// seal appends a matching checksum line and the END terminator to a payload
// body, the way the map-side encoder emits it.
func seal(codec *spec.Codec, lines ...string) string {
	body := strings.Join(lines, "\n")
	sum := checksum.Compute(body, codec)
	return body + fmt.Sprintf("\nchecksum:%d\nEND", sum)
}

func v2Lines(statTail string) []string {
	return []string{
		"v2",
		"matchId:abc123",
		"mapName:Island Troll Tribes",
		"mapVersion:3.2",
		"duration:1845.5",
		"startTime:1700000000",
		"endTime:1700001845",
		"playerCount:2",
		"player:0|Alice|troll|1|win" + statTail,
		"player:1|Bob|troll|2|loss",
	}
}

func TestParse_V2WithStats(t *testing.T) {
	codec := testCodec()
	// 5 identity fields + 11 stats = 16 fields: full stat block.
	text := seal(codec, v2Lines("|100|50|25|300|12|1|2|3|4|5|6")...)

	meta, err := Parse(text, codec, Options{})
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if meta.SchemaVersion != 2 {
		t.Errorf("schema version = %d, want 2", meta.SchemaVersion)
	}
	if meta.MatchID != "abc123" {
		t.Errorf("match id = %q, want abc123", meta.MatchID)
	}
	if meta.MapName != "Island Troll Tribes" {
		t.Errorf("map name = %q", meta.MapName)
	}
	if meta.DurationSeconds != 1845.5 {
		t.Errorf("duration = %v, want 1845.5", meta.DurationSeconds)
	}
	if meta.PlayerCount != 2 || len(meta.Players) != 2 {
		t.Fatalf("player count = %d, players = %d, want 2/2", meta.PlayerCount, len(meta.Players))
	}

	alice := meta.Players[0]
	if alice.Name != "Alice" || alice.Team != 1 || alice.Result != "win" {
		t.Errorf("player 0 = %+v", alice)
	}
	if alice.Stats == nil {
		t.Fatal("player 0 has full stat block but Stats is nil")
	}
	if alice.Stats.DamageTroll != 100 || alice.Stats.GoldAcquired != 300 {
		t.Errorf("stats = %+v", alice.Stats)
	}
	if alice.Stats.Kills.Panther != 6 {
		t.Errorf("panther kills = %d, want 6", alice.Stats.Kills.Panther)
	}

	// Bob's line has identity fields only, so no stat block attaches.
	if meta.Players[1].Stats != nil {
		t.Errorf("player 1 Stats = %+v, want nil", meta.Players[1].Stats)
	}
}

func TestParse_V3ClassField(t *testing.T) {
	codec := testCodec()
	lines := []string{
		"v3",
		"matchId:m1",
		"mapName:ITT",
		"mapVersion:4.0",
		"duration:600",
		"startTime:100",
		"endTime:700",
		"playerCount:1",
		// slot|name|race|class|team|result plus 11 stats = 17 fields.
		"player:3|Carol|troll|hunter|2|win|10|20|30|40|50|1|0|0|0|0|0",
	}
	meta, err := Parse(seal(codec, lines...), codec, Options{})
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	carol := meta.Players[0]
	if carol.SlotIndex != 3 || carol.Name != "Carol" || carol.Team != 2 || carol.Result != "win" {
		t.Errorf("player = %+v", carol)
	}
	if carol.Stats == nil {
		t.Fatal("v3 line with 17 fields should have stats")
	}
	if carol.Stats.DamageTroll != 10 || carol.Stats.MeatEaten != 50 {
		t.Errorf("stats = %+v", carol.Stats)
	}
}

func TestParsePlayerLine_SchemaParity(t *testing.T) {
	// The same attributes through the v2 layout (no class field) and the v3
	// layout (class inserted before team) must decode identically; the class
	// value is reserved and discarded.
	stats := "|10|20|30|40|50|1|2|3|4|5|6"
	v2, err := parsePlayerLine("player:3|Carol|troll|2|win"+stats, 2)
	if err != nil {
		t.Fatalf("v2 line: %v", err)
	}
	v3, err := parsePlayerLine("player:3|Carol|troll|hunter|2|win"+stats, 3)
	if err != nil {
		t.Fatalf("v3 line: %v", err)
	}

	if !reflect.DeepEqual(v2, v3) {
		t.Errorf("schema layouts diverge:\n v2 %+v\n v3 %+v", v2, v3)
	}
	if v2.Stats == nil || v2.Stats.Kills.Panther != 6 {
		t.Errorf("stats = %+v", v2.Stats)
	}
}

func TestParse_MissingEnd(t *testing.T) {
	codec := testCodec()
	text := seal(codec, v2Lines("")...)
	text = strings.TrimSuffix(text, "\nEND")

	_, err := Parse(text, codec, Options{})
	if !types.IsCode(err, types.CodePayloadInvalid) {
		t.Fatalf("error code = %q, want PAYLOAD_INVALID", types.CodeOf(err))
	}
	if !strings.Contains(err.Error(), "END") {
		t.Errorf("error should name the missing terminator: %v", err)
	}
}

func TestParse_ChecksumMismatch(t *testing.T) {
	codec := testCodec()
	lines := v2Lines("")
	body := strings.Join(lines, "\n")
	declared := checksum.Compute(body, codec)
	// Alter a payload line after sealing so the declared value no longer
	// matches the content.
	tampered := strings.Replace(body, "Alice", "Mallory", 1) +
		fmt.Sprintf("\nchecksum:%d\nEND", declared)

	_, err := Parse(tampered, codec, Options{})
	if !types.IsCode(err, types.CodeChecksumMismatch) {
		t.Fatalf("error code = %q, want CHECKSUM_MISMATCH", types.CodeOf(err))
	}

	var derr *types.DecodeError
	if !errors.As(err, &derr) {
		t.Fatalf("error is not a DecodeError: %v", err)
	}
	if derr.Details["expected"] != declared {
		t.Errorf("expected detail = %v, want %d", derr.Details["expected"], declared)
	}
	if _, ok := derr.Details["computed"]; !ok {
		t.Error("mismatch details missing computed value")
	}
}

func TestParse_SkipChecksum(t *testing.T) {
	codec := testCodec()
	body := strings.Join(v2Lines(""), "\n")
	text := body + "\nchecksum:12345\nEND"

	meta, err := Parse(text, codec, Options{SkipChecksum: true})
	if err != nil {
		t.Fatalf("Parse with SkipChecksum failed: %v", err)
	}
	if meta.Checksum != 12345 {
		t.Errorf("checksum = %d, want declared 12345", meta.Checksum)
	}
}

func TestParse_PlayerCountMismatch(t *testing.T) {
	codec := testCodec()
	lines := v2Lines("")
	lines[7] = "playerCount:4"

	_, err := Parse(seal(codec, lines...), codec, Options{})
	if !types.IsCode(err, types.CodePayloadInvalid) {
		t.Fatalf("error code = %q, want PAYLOAD_INVALID", types.CodeOf(err))
	}

	var derr *types.DecodeError
	if !errors.As(err, &derr) {
		t.Fatalf("error is not a DecodeError: %v", err)
	}
	if derr.Details["expected"] != 4 || derr.Details["actual"] != 2 {
		t.Errorf("details = %v, want expected=4 actual=2", derr.Details)
	}
}

func TestParse_MissingRequiredField(t *testing.T) {
	codec := testCodec()
	for _, field := range []string{"mapName", "mapVersion", "matchId", "duration", "startTime", "endTime", "playerCount"} {
		t.Run(field, func(t *testing.T) {
			var lines []string
			for _, line := range v2Lines("") {
				if strings.HasPrefix(line, field+":") {
					continue
				}
				lines = append(lines, line)
			}
			_, err := Parse(seal(codec, lines...), codec, Options{})
			if !types.IsCode(err, types.CodePayloadInvalid) {
				t.Fatalf("error code = %q, want PAYLOAD_INVALID", types.CodeOf(err))
			}
			if !strings.Contains(err.Error(), field) {
				t.Errorf("error should name field %s: %v", field, err)
			}
		})
	}
}

func TestParse_InvalidHeader(t *testing.T) {
	codec := testCodec()
	for _, header := range []string{"", "2", "vX", "version:2"} {
		t.Run(fmt.Sprintf("header %q", header), func(t *testing.T) {
			lines := v2Lines("")
			lines[0] = header
			_, err := Parse(seal(codec, lines...), codec, Options{})
			if !types.IsCode(err, types.CodePayloadInvalid) {
				t.Fatalf("error code = %q, want PAYLOAD_INVALID", types.CodeOf(err))
			}
		})
	}
}

func TestParse_MissingChecksumLine(t *testing.T) {
	codec := testCodec()
	text := strings.Join(v2Lines(""), "\n") + "\nEND"
	_, err := Parse(text, codec, Options{})
	if !types.IsCode(err, types.CodePayloadInvalid) {
		t.Fatalf("error code = %q, want PAYLOAD_INVALID", types.CodeOf(err))
	}
	if !strings.Contains(err.Error(), "checksum") {
		t.Errorf("error should mention the checksum line: %v", err)
	}
}

func TestParse_InvalidChecksumValue(t *testing.T) {
	codec := testCodec()
	text := strings.Join(v2Lines(""), "\n") + "\nchecksum:notanumber\nEND"
	_, err := Parse(text, codec, Options{})
	if !types.IsCode(err, types.CodePayloadInvalid) {
		t.Fatalf("error code = %q, want PAYLOAD_INVALID", types.CodeOf(err))
	}
}

func TestParse_ExtrasPreserved(t *testing.T) {
	codec := testCodec()
	lines := append(v2Lines(""),
		"gameMode:elimination",
		"host:battle.net",
	)
	meta, err := Parse(seal(codec, lines...), codec, Options{})
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if meta.Extras["gameMode"] != "elimination" {
		t.Errorf("extras = %v", meta.Extras)
	}
	if meta.Extras["host"] != "battle.net" {
		t.Errorf("extras = %v", meta.Extras)
	}
	if _, ok := meta.Extras["mapName"]; ok {
		t.Error("required fields must not leak into extras")
	}
}

func TestParse_ColonsInValues(t *testing.T) {
	codec := testCodec()
	lines := v2Lines("")
	lines = append(lines, "note:time is 12:30:45")
	meta, err := Parse(seal(codec, lines...), codec, Options{})
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if meta.Extras["note"] != "time is 12:30:45" {
		t.Errorf("note = %q, want colons preserved", meta.Extras["note"])
	}
}

func TestParse_InvalidPlayerLine(t *testing.T) {
	codec := testCodec()
	lines := v2Lines("")
	lines[9] = "player:1|Bob"

	_, err := Parse(seal(codec, lines...), codec, Options{})
	if !types.IsCode(err, types.CodePayloadInvalid) {
		t.Fatalf("error code = %q, want PAYLOAD_INVALID", types.CodeOf(err))
	}
}

func TestParse_V3PlayerLineMissingClassField(t *testing.T) {
	// A v2-shaped line (5 fields, no class) under a v3 header is short one
	// field for the v3 layout and must be rejected, not blow up on the
	// shifted result index.
	codec := testCodec()
	lines := []string{
		"v3",
		"matchId:m1",
		"mapName:ITT",
		"mapVersion:4.0",
		"duration:600",
		"startTime:100",
		"endTime:700",
		"playerCount:1",
		"player:3|Carol|troll|2|win",
	}

	_, err := Parse(seal(codec, lines...), codec, Options{})
	if !types.IsCode(err, types.CodePayloadInvalid) {
		t.Fatalf("error code = %q, want PAYLOAD_INVALID", types.CodeOf(err))
	}

	var derr *types.DecodeError
	if !errors.As(err, &derr) {
		t.Fatalf("error is not a DecodeError: %v", err)
	}
	if derr.Details["fields"] != 5 {
		t.Errorf("fields detail = %v, want 5", derr.Details["fields"])
	}
}

func TestParse_StatFieldDefaultsToZero(t *testing.T) {
	codec := testCodec()
	lines := v2Lines("|100|bad|25|300|12|1|2|3|4|5|6")
	meta, err := Parse(seal(codec, lines...), codec, Options{})
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	stats := meta.Players[0].Stats
	if stats == nil {
		t.Fatal("stats missing")
	}
	if stats.SelfHealing != 0 {
		t.Errorf("unparseable stat = %d, want 0", stats.SelfHealing)
	}
	if stats.DamageTroll != 100 || stats.AllyHealing != 25 {
		t.Errorf("neighbouring stats affected: %+v", stats)
	}
}

func TestParse_CRLFNormalized(t *testing.T) {
	codec := testCodec()
	text := seal(codec, v2Lines("")...)
	crlf := strings.ReplaceAll(text, "\n", "\r\n")

	meta, err := Parse(crlf, codec, Options{})
	if err != nil {
		t.Fatalf("Parse failed on CRLF input: %v", err)
	}
	if meta.MatchID != "abc123" {
		t.Errorf("match id = %q", meta.MatchID)
	}
}

func TestParse_DuplicateChecksumLastWins(t *testing.T) {
	codec := testCodec()
	body := strings.Join(v2Lines(""), "\n")
	good := checksum.Compute(body, codec)
	text := body + fmt.Sprintf("\nchecksum:999\nchecksum:%d\nEND", good)

	meta, err := Parse(text, codec, Options{})
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if meta.Checksum != good {
		t.Errorf("checksum = %d, want last declared %d", meta.Checksum, good)
	}
}

func TestParse_BlankLinesIgnored(t *testing.T) {
	codec := testCodec()
	lines := v2Lines("")
	withBlank := append([]string{lines[0], ""}, lines[1:]...)
	meta, err := Parse(seal(codec, withBlank...), codec, Options{})
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if meta.PlayerCount != 2 {
		t.Errorf("player count = %d", meta.PlayerCount)
	}
}

func TestParse_InvalidNumericField(t *testing.T) {
	codec := testCodec()
	lines := v2Lines("")
	lines[4] = "duration:soon"
	_, err := Parse(seal(codec, lines...), codec, Options{})
	if !types.IsCode(err, types.CodePayloadInvalid) {
		t.Fatalf("error code = %q, want PAYLOAD_INVALID", types.CodeOf(err))
	}
	if !strings.Contains(err.Error(), "duration") {
		t.Errorf("error should name the field: %v", err)
	}
}
