package bpe

import (
	"context"
	"os"
	"strings"
	"testing"
)

func writeTempCorpus(t *testing.T, text string) string {
	t.Helper()
	f, err := os.CreateTemp(t.TempDir(), "corpus-*.txt")
	if err != nil {
		t.Fatalf("create temp corpus: %v", err)
	}
	defer f.Close()
	if _, err := f.WriteString(text); err != nil {
		t.Fatalf("write temp corpus: %v", err)
	}
	return f.Name()
}

// TestTrainClassicExample reproduces the textbook "aaabdaaabac" BPE
// walk-through. The corpus has no whitespace or punctuation, so the
// GPT-2 pre-tokenizer yields exactly one fragment (the whole string)
// and the merge sequence reduces to the familiar byte-pair trace:
// merge (a,a), then merge (aa,a) (its byte string "aa" beats the
// competing tied pair "a"+"b" under the lexicographically-greatest
// tie-break), then merge (aaa,b).
func TestTrainClassicExample(t *testing.T) {
	path := writeTempCorpus(t, "aaabdaaabac")
	trainer := NewTrainer(TrainConfig{VocabSize: 259, DesiredNumChunks: 1})

	vocab, merges, err := trainer.Train(context.Background(), path)
	if err != nil {
		t.Fatalf("Train: %v", err)
	}

	if vocab.Len() != 259 {
		t.Fatalf("vocab.Len() = %d, want 259", vocab.Len())
	}

	want := []MergeRule{
		{A: []byte("a"), B: []byte("a")},
		{A: []byte("aa"), B: []byte("a")},
		{A: []byte("aaa"), B: []byte("b")},
	}
	if len(merges) != len(want) {
		t.Fatalf("got %d merges, want %d: %+v", len(merges), len(want), merges)
	}
	for i := range want {
		if string(merges[i].A) != string(want[i].A) || string(merges[i].B) != string(want[i].B) {
			t.Errorf("merge %d = (%q,%q), want (%q,%q)", i, merges[i].A, merges[i].B, want[i].A, want[i].B)
		}
	}
}

func TestTrainVocabTooSmall(t *testing.T) {
	path := writeTempCorpus(t, "hello world")
	trainer := NewTrainer(TrainConfig{VocabSize: 200})
	_, _, err := trainer.Train(context.Background(), path)
	if err != ErrVocabTooSmall {
		t.Fatalf("Train = %v, want ErrVocabTooSmall", err)
	}
}

func TestTrainVocabSizeEqualToBaseIsZeroMerges(t *testing.T) {
	path := writeTempCorpus(t, "hello world")
	trainer := NewTrainer(TrainConfig{VocabSize: 256, Specials: nil})
	vocab, merges, err := trainer.Train(context.Background(), path)
	if err != nil {
		t.Fatalf("Train: %v", err)
	}
	if len(merges) != 0 {
		t.Fatalf("got %d merges, want 0", len(merges))
	}
	if vocab.Len() != 256 {
		t.Fatalf("vocab.Len() = %d, want 256", vocab.Len())
	}
}

func TestTrainReducesTokenCountForRepeatedSubstring(t *testing.T) {
	corpus := strings.Repeat("low lower widest newest ", 20)
	path := writeTempCorpus(t, corpus)
	trainer := NewTrainer(TrainConfig{VocabSize: 256 + 20, Specials: []string{"<|endoftext|>"}})

	vocab, merges, err := trainer.Train(context.Background(), path)
	if err != nil {
		t.Fatalf("Train: %v", err)
	}
	if len(merges) == 0 {
		t.Fatalf("expected at least one merge to be learned")
	}

	enc := NewEncoder(vocab, merges, []string{"<|endoftext|>"})
	// " newest" (leading space) is the fragment form that actually
	// recurs in the corpus; that's what the learned merges target.
	before := len([]byte(" newest"))
	after := len(enc.Encode(" newest"))
	if after >= before {
		t.Errorf("Encode(%q) produced %d ids, want fewer than %d raw bytes", " newest", after, before)
	}
}

func TestTrainSpecialsNeverParticipateInMerges(t *testing.T) {
	corpus := strings.Repeat("<|endoftext|><|endoftext|><|endoftext|> ", 5)
	path := writeTempCorpus(t, corpus)
	trainer := NewTrainer(TrainConfig{VocabSize: 260, Specials: []string{"<|endoftext|>"}})

	vocab, merges, err := trainer.Train(context.Background(), path)
	if err != nil {
		t.Fatalf("Train: %v", err)
	}
	specialID, ok := vocab.ID([]byte("<|endoftext|>"))
	if !ok || specialID != 256 {
		t.Fatalf("special token ID = (%d,%v), want (256,true)", specialID, ok)
	}
	for _, m := range merges {
		if string(m.A) == "<|endoftext|>" || string(m.B) == "<|endoftext|>" {
			t.Errorf("merge %+v involves the special token", m)
		}
	}
}

func TestTrainIsIndependentOfWorkerCount(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 200; i++ {
		b.WriteString("the quick brown fox jumps over the lazy dog\n")
		b.WriteString("pack my box with five dozen liquor jugs\n")
	}
	text := b.String()

	run := func(chunks int) (*Vocabulary, []MergeRule) {
		path := writeTempCorpus(t, text)
		trainer := NewTrainer(TrainConfig{
			VocabSize:        300,
			DesiredNumChunks: chunks,
			SplitToken:       []byte("\n"),
		})
		vocab, merges, err := trainer.Train(context.Background(), path)
		if err != nil {
			t.Fatalf("Train(chunks=%d): %v", chunks, err)
		}
		return vocab, merges
	}

	vocab1, merges1 := run(1)
	vocab8, merges8 := run(8)

	if vocab1.Len() != vocab8.Len() {
		t.Fatalf("vocab size differs by worker count: %d vs %d", vocab1.Len(), vocab8.Len())
	}
	if len(merges1) != len(merges8) {
		t.Fatalf("merge count differs by worker count: %d vs %d", len(merges1), len(merges8))
	}
	for i := range merges1 {
		if string(merges1[i].A) != string(merges8[i].A) || string(merges1[i].B) != string(merges8[i].B) {
			t.Fatalf("merge %d differs: chunks=1 got (%q,%q), chunks=8 got (%q,%q)",
				i, merges1[i].A, merges1[i].B, merges8[i].A, merges8[i].B)
		}
	}
	for id := 0; id < vocab1.Len(); id++ {
		if string(vocab1.Bytes(ID(id))) != string(vocab8.Bytes(ID(id))) {
			t.Fatalf("vocab entry %d differs by worker count", id)
		}
	}
}
