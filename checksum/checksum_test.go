package checksum

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/N1teshift/replay-meta/spec"
	"github.com/N1teshift/replay-meta/types"
)

func testCodec(modulo int64) *spec.Codec {
	return &spec.Codec{
		Version:            1,
		EncoderUnitID:      "h0MB",
		EncodeChars:        []string{"a"},
		SymbolOrderStrings: []string{"ord000"},
		ChecksumModulo:     modulo,
	}
}

func TestCompute_Deterministic(t *testing.T) {
	codec := testCodec(1000000007)
	text := "v2\nmapName:Island Troll Tribes\nplayer:0|Alice|troll|1|win"

	first := Compute(text, codec)
	for i := 0; i < 10; i++ {
		if got := Compute(text, codec); got != first {
			t.Fatalf("Compute not deterministic: run %d got %d, want %d", i, got, first)
		}
	}
}

func TestCompute_Range(t *testing.T) {
	for _, modulo := range []int64{2, 7, 1000003, 1000000007} {
		codec := testCodec(modulo)
		for i := 0; i < 200; i++ {
			got := Compute(fmt.Sprintf("payload-%d", i), codec)
			if got < 0 || got >= modulo {
				t.Fatalf("Compute(%d) = %d out of [0, %d)", i, got, modulo)
			}
		}
	}
}

func TestCompute_EmptyText(t *testing.T) {
	codec := testCodec(1000000007)
	got := Compute("", codec)
	if got < 0 || got >= codec.ChecksumModulo {
		t.Fatalf("Compute(\"\") = %d out of range", got)
	}
}

// A single-character change should almost always move the checksum. FNV-1a
// mixes every input byte, so over a sizable sample of mutations the collision
// rate against a modulus near 1e9 must stay negligible.
func TestCompute_SingleCharSensitivity(t *testing.T) {
	codec := testCodec(1000000007)
	base := "v2\nmatchId:abc123\nmapName:m\nmapVersion:1.0\nduration:900\nstartTime:1\nendTime:901\nplayerCount:2\nplayer:0|Alice|troll|1|win\nplayer:1|Bob|troll|2|loss"
	want := Compute(base, codec)

	total, collisions := 0, 0
	for i := 0; i < len(base); i++ {
		for _, repl := range []byte{'x', '0', '~'} {
			if base[i] == repl {
				continue
			}
			mutated := base[:i] + string(repl) + base[i+1:]
			total++
			if Compute(mutated, codec) == want {
				collisions++
			}
		}
	}
	if total == 0 {
		t.Fatal("no mutations generated")
	}
	if ratio := float64(collisions) / float64(total); ratio > 0.01 {
		t.Errorf("collision ratio %.4f over %d mutations, want <= 0.01", ratio, total)
	}
}

func TestVerify(t *testing.T) {
	codec := testCodec(1000000007)
	text := "v2\nmatchId:abc"
	declared := Compute(text, codec)

	if err := Verify(text, declared, codec); err != nil {
		t.Fatalf("Verify failed on matching checksum: %v", err)
	}
}

func TestVerify_Mismatch(t *testing.T) {
	codec := testCodec(1000000007)
	text := "v2\nmatchId:abc"
	declared := Compute(text, codec) + 1

	err := Verify(text, declared, codec)
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
	if derr.Details["computed"] != declared-1 {
		t.Errorf("computed detail = %v, want %d", derr.Details["computed"], declared-1)
	}
}

func TestCompute_ModuloIndependence(t *testing.T) {
	// The same text under different moduli reduces the same 64-bit hash, so
	// small moduli still land in range.
	text := strings.Repeat("player:0|Alice|troll|1|win\n", 50)
	for _, modulo := range []int64{3, 97, 65521} {
		got := Compute(text, testCodec(modulo))
		if got < 0 || got >= modulo {
			t.Errorf("modulo %d: value %d out of range", modulo, got)
		}
	}
}
