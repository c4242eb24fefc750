package bpe

import (
	"bytes"
	"container/heap"
)

// heapItem is one lazy entry in the PairHeap: the pair it proposes to
// merge, the frequency it had when pushed, and the byte strings of
// its two vocabulary entries (captured at push time for the
// tie-break — vocabulary entries never change once minted, so this
// snapshot stays valid for the entry's lifetime).
type heapItem struct {
	pair      PairKey
	freq      int
	bytesA    []byte
	bytesB    []byte
	heapIndex int
}

// PairHeap is a max-heap over pair frequency, keyed by
// (freq descending, then lexicographically greatest (bytesA, bytesB)
// wins ties). Stale entries (whose stored freq no longer matches the
// live PairCounts) are permitted and filtered lazily on pop; the heap
// is never deduplicated on push.
type PairHeap struct {
	items pairHeapSlice
}

// NewPairHeap returns an empty heap ready for use with heap.Init
// semantics already satisfied (an empty slice is trivially a valid
// heap).
func NewPairHeap() *PairHeap {
	return &PairHeap{items: make(pairHeapSlice, 0)}
}

// Push inserts a fresh proposal for pair at the given frequency. The
// byte strings are looked up from vocab at push time.
func (h *PairHeap) Push(pair PairKey, freq int, vocab *Vocabulary) {
	item := &heapItem{
		pair:   pair,
		freq:   freq,
		bytesA: vocab.Bytes(pair[0]),
		bytesB: vocab.Bytes(pair[1]),
	}
	heap.Push(&h.items, item)
}

// Len reports the number of entries currently in the heap, including
// stale ones not yet discarded.
func (h *PairHeap) Len() int { return h.items.Len() }

// PopValid repeatedly pops the top of the heap, discarding entries
// whose stored frequency disagrees with pairCounts (or whose pair has
// a count <= 0, meaning logically absent), until an agreeing entry is
// found. Returns ErrNoPairsRemaining once the heap is exhausted.
func (h *PairHeap) PopValid(pairCounts map[PairKey]int) (PairKey, int, error) {
	for h.items.Len() > 0 {
		item := heap.Pop(&h.items).(*heapItem)
		live := pairCounts[item.pair]
		if live <= 0 || live != item.freq {
			continue
		}
		return item.pair, live, nil
	}
	return PairKey{}, 0, ErrNoPairsRemaining
}

// pairHeapSlice implements container/heap.Interface. Less is defined
// so that heap.Pop's usual "smallest first" min-heap behavior yields
// our desired ordering instead: highest frequency first, and among
// ties, the lexicographically GREATEST (bytesA, bytesB) pair wins.
type pairHeapSlice []*heapItem

func (s pairHeapSlice) Len() int { return len(s) }

func (s pairHeapSlice) Less(i, j int) bool {
	a, b := s[i], s[j]
	if a.freq != b.freq {
		return a.freq > b.freq
	}
	if c := bytes.Compare(a.bytesA, b.bytesA); c != 0 {
		return c > 0
	}
	return bytes.Compare(a.bytesB, b.bytesB) > 0
}

func (s pairHeapSlice) Swap(i, j int) {
	s[i], s[j] = s[j], s[i]
	s[i].heapIndex = i
	s[j].heapIndex = j
}

func (s *pairHeapSlice) Push(x any) {
	item := x.(*heapItem)
	item.heapIndex = len(*s)
	*s = append(*s, item)
}

func (s *pairHeapSlice) Pop() any {
	old := *s
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	item.heapIndex = -1
	*s = old[:n-1]
	return item
}
