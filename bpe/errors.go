package bpe

import "github.com/pkg/errors"

// Sentinel errors for the trainer and artifact loaders, per the error
// taxonomy: InputIO surfaces through wrapped stdlib errors, these four
// are raised directly by this package.
var (
	// ErrVocabTooSmall is returned when the requested vocabulary size
	// is strictly below 256 + the number of special tokens.
	ErrVocabTooSmall = errors.New("bpe: requested vocab size is too small")

	// ErrNoPairsRemaining is raised internally by PairHeap.PopValid
	// when every entry is stale or the heap is empty. The trainer
	// catches this and treats it as normal early termination.
	ErrNoPairsRemaining = errors.New("bpe: no pairs remaining to merge")

	// ErrMalformedArtifact is returned by the vocab/merges/special-token
	// loaders when the on-disk format is violated.
	ErrMalformedArtifact = errors.New("bpe: malformed artifact")

	// ErrInputEncoding is returned when a byte range of the training
	// corpus is not valid UTF-8.
	ErrInputEncoding = errors.New("bpe: input is not valid UTF-8")
)
