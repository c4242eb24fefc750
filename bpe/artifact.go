package bpe

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/pkg/errors"
)

const mergesHeader = "#version: 0.2"

// latin1Encode renders bytes as a string by mapping each byte
// directly to the codepoint of the same value (U+0000..U+00FF). This
// is a total, round-trippable textual form for arbitrary byte
// strings: re-decoding with latin1Decode recovers the original bytes
// exactly.
func latin1Encode(b []byte) string {
	rs := make([]rune, len(b))
	for i, c := range b {
		rs[i] = rune(c)
	}
	return string(rs)
}

// latin1Decode is the inverse of latin1Encode. It returns
// ErrMalformedArtifact if any rune in s falls outside U+0000..U+00FF.
func latin1Decode(s string) ([]byte, error) {
	b := make([]byte, 0, len(s))
	for _, r := range s {
		if r > 0xFF {
			return nil, errors.Wrapf(ErrMalformedArtifact, "rune %U out of latin-1 range", r)
		}
		b = append(b, byte(r))
	}
	return b, nil
}

// SaveVocab writes vocab.json: a JSON object mapping each entry's
// Latin-1-encoded bytes to its integer ID.
func SaveVocab(w io.Writer, v *Vocabulary) error {
	m := make(map[string]ID, v.Len())
	v.Each(func(id ID, b []byte) {
		m[latin1Encode(b)] = id
	})
	enc := json.NewEncoder(w)
	if err := enc.Encode(m); err != nil {
		return errors.Wrap(err, "bpe: encode vocab.json")
	}
	return nil
}

// LoadVocab reads vocab.json back into a Vocabulary. The resulting
// vocabulary's entries are laid out by ascending ID; IDs must form a
// dense range starting at 0 or LoadVocab fails with
// ErrMalformedArtifact.
func LoadVocab(r io.Reader) (*Vocabulary, error) {
	var m map[string]ID
	if err := json.NewDecoder(r).Decode(&m); err != nil {
		return nil, errors.Wrap(err, "bpe: decode vocab.json")
	}

	entries := make([][]byte, len(m))
	seen := make([]bool, len(m))
	for key, id := range m {
		if int(id) < 0 || int(id) >= len(m) {
			return nil, errors.Wrapf(ErrMalformedArtifact, "vocab id %d out of dense range [0,%d)", id, len(m))
		}
		b, err := latin1Decode(key)
		if err != nil {
			return nil, err
		}
		entries[id] = b
		seen[id] = true
	}
	for _, ok := range seen {
		if !ok {
			return nil, errors.Wrap(ErrMalformedArtifact, "vocab.json ids are not a dense range")
		}
	}

	v := &Vocabulary{
		entries:   entries,
		bytesToID: make(map[string]ID, len(entries)),
	}
	for id, b := range entries {
		v.bytesToID[string(b)] = ID(id)
	}
	return v, nil
}

// SaveMerges writes merges.txt: a "#version: 0.2" header line
// followed by one "<bytes_a_latin1> <bytes_b_latin1>" line per merge,
// in learned order.
func SaveMerges(w io.Writer, merges []MergeRule) error {
	bw := bufio.NewWriter(w)
	if _, err := fmt.Fprintln(bw, mergesHeader); err != nil {
		return errors.Wrap(err, "bpe: write merges.txt header")
	}
	for _, m := range merges {
		if _, err := fmt.Fprintf(bw, "%s %s\n", latin1Encode(m.A), latin1Encode(m.B)); err != nil {
			return errors.Wrap(err, "bpe: write merges.txt line")
		}
	}
	return bw.Flush()
}

// LoadMerges reads merges.txt, rejecting the file if the header does
// not match or any line fails to parse into exactly two
// space-separated tokens.
func LoadMerges(r io.Reader) ([]MergeRule, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	if !sc.Scan() {
		return nil, errors.Wrap(ErrMalformedArtifact, "merges.txt is empty")
	}
	if sc.Text() != mergesHeader {
		return nil, errors.Wrapf(ErrMalformedArtifact, "merges.txt header is %q, want %q", sc.Text(), mergesHeader)
	}

	var merges []MergeRule
	for sc.Scan() {
		line := sc.Text()
		if line == "" {
			continue
		}
		parts := strings.Split(line, " ")
		if len(parts) != 2 {
			return nil, errors.Wrapf(ErrMalformedArtifact, "merges.txt line %q does not split into exactly two tokens", line)
		}
		a, err := latin1Decode(parts[0])
		if err != nil {
			return nil, err
		}
		b, err := latin1Decode(parts[1])
		if err != nil {
			return nil, err
		}
		merges = append(merges, MergeRule{A: a, B: b})
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Wrap(err, "bpe: read merges.txt")
	}
	return merges, nil
}

// SaveSpecialTokens writes one special token per line, in the order
// supplied.
func SaveSpecialTokens(w io.Writer, specials []string) error {
	bw := bufio.NewWriter(w)
	for _, s := range specials {
		if _, err := fmt.Fprintln(bw, s); err != nil {
			return errors.Wrap(err, "bpe: write special_tokens.txt")
		}
	}
	return bw.Flush()
}

// LoadSpecialTokens reads special_tokens.txt back into an ordered
// slice.
func LoadSpecialTokens(r io.Reader) ([]string, error) {
	var specials []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		if line := sc.Text(); line != "" {
			specials = append(specials, line)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Wrap(err, "bpe: read special_tokens.txt")
	}
	return specials, nil
}
