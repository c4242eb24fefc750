package bpe

// Vocabulary is a bijective mapping from symbol ID to a non-empty
// byte string. It is created with 256 single-byte entries plus one
// entry per special token, then grows by one entry per merge.
// Append-only during training, frozen afterward.
type Vocabulary struct {
	entries   [][]byte
	bytesToID map[string]ID
}

// NewVocabulary builds the initial vocabulary: 256 single-byte
// entries (IDs 0..255) followed by one entry per special token, in
// the order supplied.
func NewVocabulary(specials []string) *Vocabulary {
	v := &Vocabulary{
		entries:   make([][]byte, 0, 256+len(specials)),
		bytesToID: make(map[string]ID, 256+len(specials)),
	}
	for i := 0; i < 256; i++ {
		v.append([]byte{byte(i)})
	}
	for _, s := range specials {
		v.append([]byte(s))
	}
	return v
}

func (v *Vocabulary) append(b []byte) ID {
	id := ID(len(v.entries))
	v.entries = append(v.entries, b)
	v.bytesToID[string(b)] = id
	return id
}

// AddMerge mints a new ID whose bytes are the concatenation of the
// two given entries, returning the new ID.
func (v *Vocabulary) AddMerge(a, b ID) ID {
	merged := make([]byte, 0, len(v.entries[a])+len(v.entries[b]))
	merged = append(merged, v.entries[a]...)
	merged = append(merged, v.entries[b]...)
	return v.append(merged)
}

// Bytes returns the byte string for id, or nil if id is out of range.
func (v *Vocabulary) Bytes(id ID) []byte {
	if int(id) < 0 || int(id) >= len(v.entries) {
		return nil
	}
	return v.entries[id]
}

// ID returns the symbol ID whose bytes equal b, if present.
func (v *Vocabulary) ID(b []byte) (ID, bool) {
	id, ok := v.bytesToID[string(b)]
	return id, ok
}

// Len returns the number of entries currently in the vocabulary.
func (v *Vocabulary) Len() int { return len(v.entries) }

// Each calls fn for every (ID, bytes) entry in ID order.
func (v *Vocabulary) Each(fn func(id ID, b []byte)) {
	for id, b := range v.entries {
		fn(ID(id), b)
	}
}
