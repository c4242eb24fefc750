package bpe

import (
	"context"

	"go.uber.org/zap"
)

// TrainConfig configures one training run.
type TrainConfig struct {
	// VocabSize is the target vocabulary size, including the 256
	// byte entries and the special tokens.
	VocabSize int
	// Specials are the special tokens, in the order they should
	// occupy IDs starting at 256. They never participate in merges.
	Specials []string
	// SplitToken aligns parallel pre-tokenization worker boundaries;
	// it has no semantic effect on the trained output. Defaults to
	// "\n" when empty.
	SplitToken []byte
	// DesiredNumChunks hints how many parallel pre-tokenization
	// workers to use. The file may yield fewer chunks than requested.
	DesiredNumChunks int
	// Logger receives structured progress events. A nil Logger
	// disables logging.
	Logger Logger
}

// Trainer runs the BPE merge loop described by the package: it owns
// WordCounts, PairCounts, PairIndex, PairHeap and Vocabulary for the
// duration of training; none of these are exposed mid-run.
type Trainer struct {
	cfg TrainConfig
	log Logger
}

// NewTrainer constructs a Trainer for cfg.
func NewTrainer(cfg TrainConfig) *Trainer {
	log := cfg.Logger
	if log == nil {
		log = nopLogger{}
	}
	if len(cfg.SplitToken) == 0 {
		cfg.SplitToken = []byte("\n")
	}
	return &Trainer{cfg: cfg, log: log}
}

// Train pre-tokenizes corpusPath in parallel, builds the corpus
// index, then repeatedly pops the globally most frequent pair off the
// heap and merges it until VocabSize is reached or no pairs remain.
// Early termination (fewer merges than requested) is a normal
// outcome, not an error.
func (t *Trainer) Train(ctx context.Context, corpusPath string) (*Vocabulary, []MergeRule, error) {
	vocab := NewVocabulary(t.cfg.Specials)
	numMerges := t.cfg.VocabSize - vocab.Len()
	if numMerges < 0 {
		return nil, nil, ErrVocabTooSmall
	}

	driver := NewParallelPreTokDriver(t.cfg.Specials, t.cfg.SplitToken, t.log)
	fragCounts, err := driver.Run(ctx, corpusPath, t.cfg.DesiredNumChunks)
	if err != nil {
		return nil, nil, err
	}

	wordCounts := make(map[string]int, len(fragCounts))
	for frag, n := range fragCounts {
		wordCounts[wordKeyFromBytes(frag)] += n
	}

	ci := NewCorpusIndex(wordCounts)
	h := NewPairHeap()
	for pk, count := range ci.pairCounts {
		if count > 0 {
			h.Push(pk, count, vocab)
		}
	}
	engine := NewMergeEngine(ci, h)

	merges := make([]MergeRule, 0, numMerges)
	for i := 0; i < numMerges; i++ {
		pair, freq, err := h.PopValid(ci.pairCounts)
		if err != nil {
			t.log.Info("training stopped early: no pairs remaining", zap.Int("merges_done", i))
			break
		}

		newID := vocab.AddMerge(pair[0], pair[1])
		merges = append(merges, MergeRule{
			A: append([]byte(nil), vocab.Bytes(pair[0])...),
			B: append([]byte(nil), vocab.Bytes(pair[1])...),
		})

		engine.Step(pair, newID, vocab)

		t.log.Debug("merge",
			zap.Int("step", i),
			zap.Int("new_id", int(newID)),
			zap.Int("freq", freq),
			zap.Int("vocab_size", vocab.Len()),
		)
	}

	return vocab, merges, nil
}
