package bpe

import "testing"

func buildIndex(t *testing.T, fragCounts map[string]int) *CorpusIndex {
	t.Helper()
	wordCounts := make(map[string]int, len(fragCounts))
	for frag, n := range fragCounts {
		wordCounts[wordKeyFromBytes(frag)] += n
	}
	return NewCorpusIndex(wordCounts)
}

func TestNewCorpusIndexCountsPairs(t *testing.T) {
	ci := buildIndex(t, map[string]int{"aaa": 2})
	// "aaa" contributes pairs (a,a),(a,a) per occurrence, frequency 2 each word.
	a := ID('a')
	if got := ci.pairCounts[PairKey{a, a}]; got != 4 {
		t.Fatalf("pairCounts[a,a] = %d, want 4 (2 adjacent pairs * freq 2)", got)
	}
	if ci.VocabCount() != 1 {
		t.Fatalf("VocabCount() = %d, want 1", ci.VocabCount())
	}
}

func TestMergeEngineStepRewritesWordsAndPairs(t *testing.T) {
	vocab := NewVocabulary(nil)
	ci := buildIndex(t, map[string]int{"aaab": 1})
	h := NewPairHeap()
	for pk, count := range ci.pairCounts {
		h.Push(pk, count, vocab)
	}
	engine := NewMergeEngine(ci, h)

	a := ID('a')
	newID := vocab.AddMerge(a, a)
	engine.Step(PairKey{a, a}, newID, vocab)

	// "aaab" -> merge first "aa" -> [newID, a, b] (non-overlapping scan).
	var gotIDs []ID
	for _, w := range ci.words {
		gotIDs = w.ids
	}
	want := []ID{newID, a, ID('b')}
	if len(gotIDs) != len(want) {
		t.Fatalf("rewritten word = %v, want %v", gotIDs, want)
	}
	for i := range want {
		if gotIDs[i] != want[i] {
			t.Fatalf("rewritten word = %v, want %v", gotIDs, want)
		}
	}

	// The old (a,a) pair must be gone; the new pairs (newID,a) and (a,b) must be present.
	if _, stale := ci.pairCounts[PairKey{a, a}]; stale {
		t.Errorf("pairCounts still has stale (a,a) entry")
	}
	if got := ci.pairCounts[PairKey{newID, a}]; got != 1 {
		t.Errorf("pairCounts[newID,a] = %d, want 1", got)
	}
	if got := ci.pairCounts[PairKey{a, ID('b')}]; got != 1 {
		t.Errorf("pairCounts[a,b] = %d, want 1", got)
	}
}

func TestMergeEngineStepLeavesUnaffectedWordsUntouched(t *testing.T) {
	// Two words, only one of which contains the merged pair: the
	// affected word is rewritten with its frequency carried over, and
	// the other word keeps its key and frequency.
	vocab := NewVocabulary(nil)
	ci := buildIndex(t, map[string]int{"ac": 3, "abc": 2})
	h := NewPairHeap()
	for pk, count := range ci.pairCounts {
		h.Push(pk, count, vocab)
	}
	engine := NewMergeEngine(ci, h)

	a, b := ID('a'), ID('b')
	newID := vocab.AddMerge(a, b)
	// Merging (a,b) only affects "abc" (freq 2) -> [newID, c]; "ac" (freq 3) is untouched.
	engine.Step(PairKey{a, b}, newID, vocab)

	acKey := wordKeyFromBytes("ac")
	if entry, ok := ci.words[acKey]; !ok || entry.freq != 3 {
		t.Fatalf("words[ac] = %+v, ok=%v, want freq 3 untouched", entry, ok)
	}
	mergedKey := wordKey([]ID{newID, ID('c')})
	if entry, ok := ci.words[mergedKey]; !ok || entry.freq != 2 {
		t.Fatalf("words[newID,c] = %+v, ok=%v, want freq 2", entry, ok)
	}
}

func TestApplyMergeOnceNonOverlapping(t *testing.T) {
	// Classic non-overlap case: "aaaa" under merge (a,a) must produce
	// two merged symbols, not three overlapping ones.
	a := ID('a')
	merged := ID(999)
	got := applyMergeOnce([]ID{a, a, a, a}, a, a, merged)
	want := []ID{merged, merged}
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Fatalf("applyMergeOnce = %v, want %v", got, want)
	}
}
