package bpe

// ID is a vocabulary entry index. IDs [0, 256) denote single bytes,
// IDs [256, 256+len(specials)) denote special tokens in supplied order,
// and subsequent IDs are minted by merges in training order.
type ID uint32

// PairKey identifies an ordered, adjacent pair of symbol IDs.
type PairKey [2]ID

// MergeRule records, in learned order, which two vocabulary entries'
// byte strings were joined to produce a new entry.
type MergeRule struct {
	A []byte
	B []byte
}
