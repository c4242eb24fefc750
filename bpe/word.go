package bpe

import "encoding/binary"

// wordEntry is one immutable Word (a non-empty sequence of symbol
// IDs) paired with its current frequency in the corpus.
type wordEntry struct {
	ids  []ID
	freq int
}

// wordKey encodes a Word's ID sequence into a string suitable for use
// as a map key, mixing each ID's bytes the way the design notes call
// for (four bytes per ID, little-endian) rather than hashing the
// slice's identity. Two Words with equal ID sequences always produce
// equal keys, and vice versa.
func wordKey(ids []ID) string {
	buf := make([]byte, len(ids)*4)
	for i, id := range ids {
		binary.LittleEndian.PutUint32(buf[i*4:], uint32(id))
	}
	return string(buf)
}

// wordKeyFromBytes builds the wordKey for a fresh fragment straight
// out of pre-tokenization, where every byte is its own initial symbol
// ID (IDs 0..255 are single bytes by construction).
func wordKeyFromBytes(s string) string {
	ids := make([]ID, len(s))
	for i := 0; i < len(s); i++ {
		ids[i] = ID(s[i])
	}
	return wordKey(ids)
}

// decodeWordKey is the inverse of wordKey.
func decodeWordKey(key string) []ID {
	buf := []byte(key)
	ids := make([]ID, len(buf)/4)
	for i := range ids {
		ids[i] = ID(binary.LittleEndian.Uint32(buf[i*4:]))
	}
	return ids
}

// eachPair calls fn for every adjacent pair (x, y) in ids. Words of
// length < 2 contribute nothing.
func eachPair(ids []ID, fn func(x, y ID)) {
	for i := 0; i+1 < len(ids); i++ {
		fn(ids[i], ids[i+1])
	}
}
