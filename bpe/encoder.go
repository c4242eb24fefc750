package bpe

import (
	"strings"
	"unicode/utf8"
)

// Encoder applies a trained vocabulary and merge list to arbitrary
// text, and inverts the mapping to decode ID sequences back to text.
// It shares the package PreTokenizer and Vocabulary with the trainer.
type Encoder struct {
	vocab       *Vocabulary
	idMerges    []idMergeRule
	specialToID map[string]ID
	specials    []string
}

type idMergeRule struct {
	a, b, c ID
}

// NewEncoder builds the auxiliary structures needed for encode/decode
// from a trained Vocabulary, the Merges learned in order, and the
// special tokens (in the same order used at training time).
func NewEncoder(vocab *Vocabulary, merges []MergeRule, specials []string) *Encoder {
	e := &Encoder{
		vocab:       vocab,
		idMerges:    make([]idMergeRule, 0, len(merges)),
		specialToID: make(map[string]ID, len(specials)),
		specials:    specials,
	}
	for _, m := range merges {
		a, aok := vocab.ID(m.A)
		b, bok := vocab.ID(m.B)
		c, cok := vocab.ID(append(append([]byte(nil), m.A...), m.B...))
		if aok && bok && cok {
			e.idMerges = append(e.idMerges, idMergeRule{a: a, b: b, c: c})
		}
	}
	for _, s := range specials {
		if id, ok := vocab.ID([]byte(s)); ok {
			e.specialToID[s] = id
		}
	}
	return e
}

// Encode splits text on specials, emits the corresponding ID for each
// special occurrence, and for every other segment pre-tokenizes with
// the GPT-2 regex and applies each learned merge rule once, in
// learned order, over the whole fragment — matching the trainer's
// semantics rather than a greedy priority-queue encoding.
func (e *Encoder) Encode(text string) []ID {
	var out []ID
	for _, seg := range SplitOnSpecials(text, e.specials, true) {
		if seg.IsSpecial {
			if id, ok := e.specialToID[seg.Text]; ok {
				out = append(out, id)
			}
			continue
		}
		for _, frag := range splitGPT2(seg.Text) {
			out = append(out, e.encodeFragment(frag)...)
		}
	}
	return out
}

func (e *Encoder) encodeFragment(frag string) []ID {
	ids := make([]ID, len(frag))
	for i := 0; i < len(frag); i++ {
		ids[i] = ID(frag[i])
	}
	for _, rule := range e.idMerges {
		ids = applyMergeOnce(ids, rule.a, rule.b, rule.c)
	}
	return ids
}

// Decode concatenates the vocabulary bytes for every id, then decodes
// the resulting bytes as UTF-8, substituting U+FFFD for invalid
// sequences. Decoding never fails: an unknown id is simply skipped.
func (e *Encoder) Decode(ids []ID) string {
	var buf []byte
	for _, id := range ids {
		if b := e.vocab.Bytes(id); b != nil {
			buf = append(buf, b...)
		}
	}
	var sb strings.Builder
	sb.Grow(len(buf))
	for i := 0; i < len(buf); {
		r, size := utf8.DecodeRune(buf[i:])
		sb.WriteRune(r)
		i += size
	}
	return sb.String()
}
