package bpe

import (
	"sort"

	"github.com/dlclark/regexp2"
)

// gpt2Pattern is the GPT-2 pre-tokenization regex: contractions,
// then optional-leading-space runs of letters / digits / other
// symbols, then whitespace. The trailing `\s+(?!\S)` alternative
// needs a negative lookahead, which is why this package uses
// dlclark/regexp2 (a backtracking engine) rather than the stdlib
// RE2-based regexp package.
const gpt2Pattern = `'(?:s|d|m|t|ll|ve|re)| ?\p{L}+| ?\p{N}+| ?[^\s\p{L}\p{N}]+|\s+(?!\S)|\s+`

var gpt2Regexp = compileMust(gpt2Pattern)

func compileMust(pattern string) *regexp2.Regexp {
	re, err := regexp2.Compile(pattern, regexp2.None)
	if err != nil {
		panic("bpe: invalid built-in regex: " + err.Error())
	}
	return re
}

// Segment is one piece of text produced by SplitOnSpecials: either a
// verbatim special-token match, or ordinary text to be pre-tokenized
// further.
type Segment struct {
	Text      string
	IsSpecial bool
}

// SplitOnSpecials splits text on literal occurrences of specials. When
// two specials are prefixes of one another the longer one wins, which
// is why matching walks specials sorted by descending length at each
// candidate position (equivalent to building a regex alternation from
// longest to shortest, but matched directly against the byte string
// so positions stay in byte offsets rather than the rune offsets a
// regex engine would report). When keepSpecials is true, matched
// special occurrences appear as their own Segments; otherwise they
// are dropped entirely.
func SplitOnSpecials(text string, specials []string, keepSpecials bool) []Segment {
	if len(specials) == 0 {
		return []Segment{{Text: text}}
	}

	sorted := make([]string, len(specials))
	copy(sorted, specials)
	sort.Slice(sorted, func(i, j int) bool { return len(sorted[i]) > len(sorted[j]) })

	var segments []Segment
	pos, start := 0, 0
	for pos < len(text) {
		matched := ""
		for _, s := range sorted {
			if s == "" {
				continue
			}
			if len(text)-pos >= len(s) && text[pos:pos+len(s)] == s {
				matched = s
				break
			}
		}
		if matched == "" {
			pos++
			continue
		}
		if pos > start {
			segments = append(segments, Segment{Text: text[start:pos]})
		}
		if keepSpecials {
			segments = append(segments, Segment{Text: matched, IsSpecial: true})
		}
		pos += len(matched)
		start = pos
	}
	if start < len(text) {
		segments = append(segments, Segment{Text: text[start:]})
	}
	return segments
}

// PreTokenize splits text on specials (discarding them) and then
// applies the GPT-2 regex to every non-special segment, returning a
// multiset of (fragment bytes, count) suitable for building
// WordCounts.
func PreTokenize(text string, specials []string) map[string]int {
	counts := make(map[string]int)
	for _, seg := range SplitOnSpecials(text, specials, false) {
		for _, frag := range splitGPT2(seg.Text) {
			counts[frag]++
		}
	}
	return counts
}

// splitGPT2 applies the GPT-2 regex to s and returns each match's
// bytes as a string. The concatenation of all returned fragments
// equals s.
func splitGPT2(s string) []string {
	if s == "" {
		return nil
	}
	var frags []string
	m, _ := gpt2Regexp.FindStringMatch(s)
	for m != nil {
		frags = append(frags, m.String())
		m, _ = gpt2Regexp.FindNextMatch(m)
	}
	return frags
}
