// Package norm canonicalises noisy Nepali voice transcriptions for fuzzy
// comparison.
//
// Whisper-style STT output for Nepali is phonetically unstable: retroflex and
// dental consonants swap freely, aspirated stops lose their aspiration, and
// sibilant variants collapse into each other depending on the speaker's
// dialect. [Normalize] folds all of these confusion classes onto one
// representative glyph so that two spellings of the same spoken word compare
// equal. The same folding is applied to catalog names and to incoming tokens,
// keeping comparisons symmetric.
//
// Normalize is a pure function and is idempotent:
//
//	Normalize(Normalize(x)) == Normalize(x)
//
// Digit translation is bidirectional: [ToASCIIDigits] folds Devanagari digits
// into ASCII for parsing, [ToNativeDigits] converts back for user-facing
// responses.
package norm

import "strings"

// foldPairs is the ordered literal substitution table. Pairs are applied in
// order with [strings.ReplaceAll]; the whole table is re-applied until the
// text stops changing, so chained rules (e.g. ठ → ट → त) and degenerate
// inputs (e.g. "shh") always reach a fixed point.
var foldPairs = [...][2]string{
	// Separators: hyphenated and underscored compounds compare as phrases.
	{"-", " "},
	{"_", " "},

	// Devanagari aspirated stops → unaspirated counterparts.
	{"ख", "क"},
	{"घ", "ग"},
	{"छ", "च"},
	{"झ", "ज"},
	{"ठ", "ट"},
	{"ढ", "ड"},
	{"थ", "त"},
	{"ध", "द"},
	{"फ", "प"},
	{"भ", "ब"},

	// Retroflex → dental (applies after the aspirate rules above, so
	// ठ and ढ cascade down to त and द).
	{"ट", "त"},
	{"ड", "द"},
	{"ण", "न"},

	// Sibilant variants → dental sibilant.
	{"श", "स"},
	{"ष", "स"},

	// b/v confusion.
	{"व", "ब"},

	// Long vowel signs → short, diphthongs → simple counterparts.
	{"ी", "ि"},
	{"ू", "ु"},
	{"ै", "े"},
	{"ौ", "ो"},
	{"ँ", "ं"},

	// Romanized transcription variants: aspirate digraphs and doubled
	// vowels, the usual Latin-script renderings of the classes above.
	{"chh", "ch"},
	{"kh", "k"},
	{"gh", "g"},
	{"jh", "j"},
	{"th", "t"},
	{"dh", "d"},
	{"ph", "p"},
	{"bh", "b"},
	{"sh", "s"},
	{"oo", "u"},
	{"ee", "i"},
}

// Normalize lowercases and trims text, translates Devanagari digits to ASCII,
// applies the grapheme folding table to a fixed point, and collapses runs of
// whitespace to single spaces.
func Normalize(text string) string {
	s := strings.ToLower(strings.TrimSpace(text))
	s = ToASCIIDigits(s)
	s = fold(s)
	return strings.Join(strings.Fields(s), " ")
}

// fold applies foldPairs repeatedly until the text no longer changes. A
// changing pass either shortens the text or advances a glyph along the
// acyclic substitution chains, so the loop terminates; aspirate runs like
// "khhhh" need one pass per trailing "h".
func fold(s string) string {
	for {
		prev := s
		for _, p := range foldPairs {
			s = strings.ReplaceAll(s, p[0], p[1])
		}
		if s == prev {
			return s
		}
	}
}

// devanagariDigits maps numeric value → Devanagari digit rune.
var devanagariDigits = [...]rune{'०', '१', '२', '३', '४', '५', '६', '७', '८', '९'}

// ToASCIIDigits replaces every Devanagari digit in s with its ASCII
// counterpart. Non-digit runes pass through unchanged.
func ToASCIIDigits(s string) string {
	return strings.Map(func(r rune) rune {
		for i, d := range devanagariDigits {
			if r == d {
				return rune('0' + i)
			}
		}
		return r
	}, s)
}

// ToNativeDigits is the inverse of [ToASCIIDigits]: ASCII digits become
// Devanagari digits. Used when formatting quantities for responses.
func ToNativeDigits(s string) string {
	return strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return devanagariDigits[r-'0']
		}
		return r
	}, s)
}
