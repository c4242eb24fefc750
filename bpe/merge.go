package bpe

// MergeEngine executes merge steps against a CorpusIndex, pushing
// dirtied pairs back onto a PairHeap so the trainer can propose the
// next merge.
type MergeEngine struct {
	ci   *CorpusIndex
	heap *PairHeap
}

// NewMergeEngine binds a MergeEngine to the index and heap it will
// mutate for the lifetime of training.
func NewMergeEngine(ci *CorpusIndex, heap *PairHeap) *MergeEngine {
	return &MergeEngine{ci: ci, heap: heap}
}

// Step executes one merge: every Word currently containing
// targetPair is rewritten by replacing non-overlapping occurrences of
// targetPair with newID, and PairCounts/PairIndex are updated to
// match. Dirtied pairs with a positive count are pushed back onto the
// heap as fresh proposals.
func (m *MergeEngine) Step(targetPair PairKey, newID ID, vocab *Vocabulary) {
	affectedSet, ok := m.ci.pairIndex[targetPair]
	if !ok {
		return
	}
	affected := make([]string, 0, len(affectedSet))
	for key := range affectedSet {
		affected = append(affected, key)
	}

	dirtied := make(map[PairKey]struct{})

	for _, key := range affected {
		entry, ok := m.ci.words[key]
		if !ok || entry.freq <= 0 {
			continue
		}
		freq := entry.freq

		delete(m.ci.words, key)
		eachPair(entry.ids, func(x, y ID) {
			pk := PairKey{x, y}
			m.ci.decrementPair(pk, freq)
			m.ci.removeFromPairIndex(pk, key)
			dirtied[pk] = struct{}{}
		})

		newIDs := applyMergeOnce(entry.ids, targetPair[0], targetPair[1], newID)
		newKey := wordKey(newIDs)

		if existing, ok := m.ci.words[newKey]; ok {
			existing.freq += freq
		} else {
			m.ci.words[newKey] = &wordEntry{ids: newIDs, freq: freq}
		}

		if len(newIDs) >= 2 {
			eachPair(newIDs, func(x, y ID) {
				pk := PairKey{x, y}
				m.ci.pairCounts[pk] += freq
				m.ci.insertIntoPairIndex(pk, newKey)
				dirtied[pk] = struct{}{}
			})
		}
	}

	for pk := range dirtied {
		if count := m.ci.pairCounts[pk]; count > 0 {
			m.heap.Push(pk, count, vocab)
		}
	}
}

// applyMergeOnce performs a single left-to-right, non-overlapping scan
// of ids, replacing every occurrence of (first, second) with merged.
// After a match consumes positions i and i+1, scanning resumes at
// i+2 — a match just placed never participates in a further match.
func applyMergeOnce(ids []ID, first, second, merged ID) []ID {
	out := make([]ID, 0, len(ids))
	i := 0
	for i < len(ids) {
		if i+1 < len(ids) && ids[i] == first && ids[i+1] == second {
			out = append(out, merged)
			i += 2
		} else {
			out = append(out, ids[i])
			i++
		}
	}
	return out
}
