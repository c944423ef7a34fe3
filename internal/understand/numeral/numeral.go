// Package numeral recovers a quantity and a unit from a normalized inventory
// utterance.
//
// Shopkeepers mix three numeral systems in one sentence: ASCII digits
// ("5 kg"), Devanagari digits ("५ किलो"), and spoken number words including
// colloquial fractions ("dedh kilo" = 1.5 kg, "aadha" = half). The extractor
// tries word numerals first (longest key wins, token boundaries enforced),
// then falls back to a digit literal, then defaults to 1.0 — quantity
// extraction never fails.
//
// Unit detection is independent of quantity detection and neither consumes
// tokens from the text: the item resolver excludes numeral and unit words
// through its own ignore-list.
package numeral

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/kiranavoice/kirana/internal/understand/norm"
)

// DefaultUnit is reported when no unit keyword is found.
const DefaultUnit = "kg"

// numberWords maps spoken numerals (Nepali romanized, Devanagari, English)
// to their numeric value. Keys are normalized at construction time so that
// lookups against normalized text stay symmetric.
var numberWords = map[string]float64{
	// Units and teens.
	"ek": 1, "euta": 1, "एक": 1, "one": 1,
	"dui": 2, "duita": 2, "दुई": 2, "two": 2,
	"tin": 3, "tinta": 3, "तीन": 3, "three": 3,
	"char": 4, "चार": 4, "four": 4,
	"paach": 5, "pach": 5, "panch": 5, "पाँच": 5, "five": 5,
	"cha": 6, "छ": 6, "six": 6,
	"saat": 7, "सात": 7, "seven": 7,
	"aath": 8, "आठ": 8, "eight": 8,
	"nau": 9, "नौ": 9, "nine": 9,
	"das": 10, "दश": 10, "ten": 10,
	"pandhra": 15,
	"bis": 20, "bish": 20,
	"pachis": 25,
	"tis": 30,
	"chalis": 40,
	"pachas": 50,
	"say": 100, "saya": 100, "सय": 100,

	// Colloquial fractions and compounds.
	"aadha": 0.5, "adha": 0.5, "आधा": 0.5, "half": 0.5,
	"sawa": 1.25,
	"dedh": 1.5, "डेढ": 1.5, "one and a half": 1.5,
	"adhai": 2.5, "dhai": 2.5,
	"quarter": 0.25,
	"three quarters": 0.75,
	"paune ek": 0.75,
}

// unitWords maps spoken unit keywords to the canonical unit token. Declared
// as an ordered slice: containment matching means longer keywords must be
// tested before any keyword they contain (e.g. "kilo" before "kg"... and
// before "gram", which "kilogram" would otherwise hit).
var unitWords = []struct{ word, unit string }{
	{"kilo", "kg"},
	{"किलो", "kg"},
	{"kg", "kg"},
	{"केजी", "kg"},
	{"gram", "g"},
	{"pav", "250g"},
	{"litar", "ltr"},
	{"liter", "ltr"},
	{"litre", "ltr"},
	{"लिटर", "ltr"},
	{"ml", "ml"},
	{"packet", "pkt"},
	{"pyaket", "pkt"},
	{"प्याकेट", "pkt"},
	{"piece", "pcs"},
	{"pis", "pcs"},
	{"wata", "pcs"},
	{"ota", "pcs"},
	{"carton", "ctn"},
	{"kartun", "ctn"},
	{"bora", "sack"},
	{"bori", "sack"},
	{"बोरा", "sack"},
	{"cret", "crate"},
	{"kret", "crate"},
	{"crate", "crate"},
}

// digitPattern matches an integer-or-decimal literal after digit translation.
var digitPattern = regexp.MustCompile(`\d+(\.\d+)?`)

// wordEntry is a normalized number word with its value.
type wordEntry struct {
	word  string
	value float64
}

// Extractor finds quantities and units in normalized text. It is read-only
// after construction and safe for concurrent use.
type Extractor struct {
	words []wordEntry // sorted longest-first
	units []struct{ word, unit string }
}

// NewExtractor builds an [Extractor] with the built-in numeral and unit
// tables, normalized and sorted for longest-match-first lookup.
func NewExtractor() *Extractor {
	e := &Extractor{}

	// Walk the keys in sorted order: spellings that fold to the same
	// normalized form ("bish"/"bis") must pick the same surviving value on
	// every construction, not whichever map iteration yields first.
	keys := make([]string, 0, len(numberWords))
	for w := range numberWords {
		keys = append(keys, w)
	}
	sort.Strings(keys)

	seen := make(map[string]struct{}, len(numberWords))
	for _, w := range keys {
		nw := norm.Normalize(w)
		if _, dup := seen[nw]; dup {
			continue
		}
		seen[nw] = struct{}{}
		e.words = append(e.words, wordEntry{word: nw, value: numberWords[w]})
	}
	// Longest first so "pachis" is tried before "pach"; ties broken
	// lexicographically to keep iteration deterministic.
	sort.Slice(e.words, func(i, j int) bool {
		if len(e.words[i].word) != len(e.words[j].word) {
			return len(e.words[i].word) > len(e.words[j].word)
		}
		return e.words[i].word < e.words[j].word
	})

	for _, u := range unitWords {
		e.units = append(e.units, struct{ word, unit string }{norm.Normalize(u.word), u.unit})
	}
	return e
}

// Extract returns the quantity and unit found in the normalized text.
// See [Extractor.Quantity] and [Extractor.Unit] for the individual rules.
func (e *Extractor) Extract(text string) (quantity float64, unit string) {
	return e.Quantity(text), e.Unit(text)
}

// Quantity returns the first quantity found in text, in priority order:
// word numeral (longest key first, token boundaries respected), digit
// literal, then the default 1.0.
func (e *Extractor) Quantity(text string) float64 {
	for _, w := range e.words {
		if containsToken(text, w.word) {
			return w.value
		}
	}
	if m := digitPattern.FindString(norm.ToASCIIDigits(text)); m != "" {
		if v, err := strconv.ParseFloat(m, 64); err == nil {
			return v
		}
	}
	return 1.0
}

// Unit returns the canonical unit for the first unit keyword contained in
// text, or [DefaultUnit] when none matches.
func (e *Extractor) Unit(text string) string {
	for _, u := range e.units {
		if strings.Contains(text, u.word) {
			return u.unit
		}
	}
	return DefaultUnit
}

// Words returns every individual token appearing in the numeral and unit
// tables (normalized). The item resolver uses this as part of its
// ignore-list so leftover words can be treated as the item name.
func (e *Extractor) Words() []string {
	var out []string
	for _, w := range e.words {
		out = append(out, strings.Fields(w.word)...)
	}
	for _, u := range e.units {
		out = append(out, strings.Fields(u.word)...)
	}
	return out
}

// containsToken reports whether key occurs in text aligned on token
// boundaries: the runes immediately before and after the occurrence must not
// be letters or digits. This stops "tin" (3) from matching inside "martin".
func containsToken(text, key string) bool {
	if key == "" {
		return false
	}
	for start := 0; ; {
		idx := strings.Index(text[start:], key)
		if idx < 0 {
			return false
		}
		idx += start
		if boundaryBefore(text, idx) && boundaryAfter(text, idx+len(key)) {
			return true
		}
		start = idx + 1
	}
}

func boundaryBefore(text string, idx int) bool {
	if idx == 0 {
		return true
	}
	r, _ := utf8.DecodeLastRuneInString(text[:idx])
	return !unicode.IsLetter(r) && !unicode.IsDigit(r)
}

func boundaryAfter(text string, idx int) bool {
	if idx >= len(text) {
		return true
	}
	r, _ := utf8.DecodeRuneInString(text[idx:])
	return !unicode.IsLetter(r) && !unicode.IsDigit(r)
}
