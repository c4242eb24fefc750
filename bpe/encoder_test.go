package bpe

import (
	"context"
	"testing"
)

// buildHiEncoder constructs a vocabulary/merge list by hand: the 256
// byte entries, one special "<|endoftext|>" at ID 256, and a single
// learned merge "h"+"i" -> "hi" at ID 257 — enough to exercise
// encode/decode without running a full training pass.
func buildHiEncoder(t *testing.T) *Encoder {
	t.Helper()
	specials := []string{"<|endoftext|>"}
	vocab := NewVocabulary(specials)
	h, _ := vocab.ID([]byte("h"))
	i, _ := vocab.ID([]byte("i"))
	vocab.AddMerge(h, i)
	merges := []MergeRule{{A: []byte("h"), B: []byte("i")}}
	return NewEncoder(vocab, merges, specials)
}

func TestEncodeMergesKnownPair(t *testing.T) {
	enc := buildHiEncoder(t)
	got := enc.Encode("hi")
	want := []ID{257}
	if len(got) != 1 || got[0] != want[0] {
		t.Fatalf("Encode(%q) = %v, want %v", "hi", got, want)
	}
}

func TestEncodeSplitsOnTrailingSpecial(t *testing.T) {
	enc := buildHiEncoder(t)
	got := enc.Encode("hi<|endoftext|>")
	want := []ID{257, 256}
	if len(got) != len(want) {
		t.Fatalf("Encode(%q) = %v, want %v", "hi<|endoftext|>", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Encode(%q) = %v, want %v", "hi<|endoftext|>", got, want)
		}
	}
}

func TestDecodeSpecialToken(t *testing.T) {
	enc := buildHiEncoder(t)
	got := enc.Decode([]ID{256})
	if got != "<|endoftext|>" {
		t.Fatalf("Decode([256]) = %q, want %q", got, "<|endoftext|>")
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	path := writeTempCorpus(t, "the quick brown fox jumps over the lazy dog")
	trainer := NewTrainer(TrainConfig{VocabSize: 280})
	vocab, merges, err := trainer.Train(context.Background(), path)
	if err != nil {
		t.Fatalf("Train: %v", err)
	}

	enc := NewEncoder(vocab, merges, nil)
	text := "the quick brown fox jumps over the lazy dog"
	ids := enc.Encode(text)
	if got := enc.Decode(ids); got != text {
		t.Fatalf("round trip mismatch: got %q, want %q", got, text)
	}
}

func TestEncodeUnknownBytesFallBackToSingleIDs(t *testing.T) {
	enc := buildHiEncoder(t)
	got := enc.Encode("z")
	if len(got) != 1 || got[0] != ID('z') {
		t.Fatalf("Encode(%q) = %v, want [%d]", "z", got, ID('z'))
	}
}

func TestDecodeUnknownIDIsSkippedNotFatal(t *testing.T) {
	enc := buildHiEncoder(t)
	// ID 99999 is not in the vocabulary; Decode must skip it rather
	// than panic or error.
	got := enc.Decode([]ID{ID('h'), 99999, ID('i')})
	if got != "hi" {
		t.Fatalf("Decode with unknown id = %q, want %q", got, "hi")
	}
}
