package bpe

// CorpusIndex is the mutable state the merge loop rewrites: the
// word-frequency map, the pair-frequency map, and the pair->words
// inverted index. A Word entry is present in pairIndex[(a,b)] iff
// (a,b) occurs adjacently in that word and the word is still in
// words.
type CorpusIndex struct {
	words      map[string]*wordEntry
	pairCounts map[PairKey]int
	pairIndex  map[PairKey]map[string]struct{}
}

// NewCorpusIndex builds PairCounts and PairIndex from wordCounts in
// one pass, per spec: for every word W with frequency f, every
// adjacent pair (a,b) in W gets PairCounts[(a,b)] += f and W inserted
// into PairIndex[(a,b)].
func NewCorpusIndex(wordCounts map[string]int) *CorpusIndex {
	ci := &CorpusIndex{
		words:      make(map[string]*wordEntry, len(wordCounts)),
		pairCounts: make(map[PairKey]int),
		pairIndex:  make(map[PairKey]map[string]struct{}),
	}
	for key, freq := range wordCounts {
		ids := decodeWordKey(key)
		ci.words[key] = &wordEntry{ids: ids, freq: freq}
		eachPair(ids, func(x, y ID) {
			pk := PairKey{x, y}
			ci.pairCounts[pk] += freq
			ci.insertIntoPairIndex(pk, key)
		})
	}
	return ci
}

func (ci *CorpusIndex) insertIntoPairIndex(pk PairKey, key string) {
	set, ok := ci.pairIndex[pk]
	if !ok {
		set = make(map[string]struct{})
		ci.pairIndex[pk] = set
	}
	set[key] = struct{}{}
}

func (ci *CorpusIndex) removeFromPairIndex(pk PairKey, key string) {
	set, ok := ci.pairIndex[pk]
	if !ok {
		return
	}
	delete(set, key)
	if len(set) == 0 {
		delete(ci.pairIndex, pk)
	}
}

// decrementPair lowers PairCounts[pk] by n; an entry that drops to
// zero or below is logically absent and is deleted from the map.
func (ci *CorpusIndex) decrementPair(pk PairKey, n int) {
	ci.pairCounts[pk] -= n
	if ci.pairCounts[pk] <= 0 {
		delete(ci.pairCounts, pk)
	}
}

// VocabCount returns the number of distinct Words currently tracked.
func (ci *CorpusIndex) VocabCount() int { return len(ci.words) }
