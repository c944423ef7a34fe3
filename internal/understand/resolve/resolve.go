// Package resolve maps a noisy spoken item token onto a catalog entry.
//
// Resolution runs in strict stages, cheapest and most trustworthy first:
//
//  1. Override table — known systematic mis-transcriptions are rewritten to
//     the canonical spoken form before anything else.
//  2. Exact match — the normalized token equals a normalized canonical name
//     or alias.
//  3. Containment — a normalized canonical name occurs inside the token
//     (absorbs trailing case and possessive suffixes like "chamalko").
//  4. Similarity — a Levenshtein-based ratio against every name and alias;
//     the best score must exceed the similarity floor, otherwise the token
//     stays unresolved. Resolving to the wrong item is worse than asking
//     the shopkeeper to repeat themselves.
//
// Ties on similarity resolve to the entry that appears first in the
// snapshot, so resolution is reproducible for a given catalog and input.
// The resolver never creates or mutates catalog entries.
package resolve

import (
	"strings"
	"unicode"

	"github.com/antzucaro/matchr"

	"github.com/kiranavoice/kirana/internal/catalog"
	"github.com/kiranavoice/kirana/internal/understand/norm"
)

// defaultFloor is the minimum similarity ratio for a fuzzy match.
const defaultFloor = 0.6

// defaultOverrides maps frequent Whisper mis-hearings to the canonical
// spoken form. Keys and values are normalized at construction.
var defaultOverrides = map[string]string{
	// दाल (lentils) heard with the wrong initial stop.
	"ताल": "दाल", "टाल": "दाल", "थाल": "दाल", "दान": "दाल", "दाली": "दाल",

	// चामल (rice).
	"जमाल": "चामल", "सामल": "चामल", "छामल": "चामल", "कामल": "चामल",

	// चिनी (sugar).
	"चिनि": "चिनी", "छिनि": "चिनी", "सिनी": "चिनी", "चिन्दि": "चिनी",

	// तेल (oil).
	"टेल": "तेल", "टैल": "तेल", "पेल": "तेल", "तैल": "तेल",

	// नुन (salt).
	"नून": "नुन", "लुन": "नुन", "मुन": "नुन",
}

// defaultFillers are grammar particles and politeness words that can never
// be part of an item name.
var defaultFillers = []string{
	"ko", "ma", "le", "को", "मा", "ले",
	"cha", "chha", "छ",
	"please", "inventory",
	"how", "much", "left", "is", "the", "of", "a", "an",
	"kati", "कति",
}

// Option is a functional option for configuring a [Resolver].
type Option func(*Resolver)

// WithSimilarityFloor sets the minimum similarity ratio a fuzzy match must
// exceed. Default: 0.6.
func WithSimilarityFloor(f float64) Option {
	return func(r *Resolver) {
		r.floor = f
	}
}

// WithIgnoreWords adds words to the token-extraction ignore list. The
// assembler feeds the intent keywords and numeral/unit vocabulary in here
// so the leftover words form the item token.
func WithIgnoreWords(words ...string) Option {
	return func(r *Resolver) {
		for _, w := range words {
			for _, f := range strings.Fields(norm.Normalize(w)) {
				r.ignore[f] = struct{}{}
			}
		}
	}
}

// WithOverrides merges extra mis-transcription rewrites into the override
// table. Later entries win over the defaults on key collision.
func WithOverrides(overrides map[string]string) Option {
	return func(r *Resolver) {
		for k, v := range overrides {
			r.overrides[norm.Normalize(k)] = norm.Normalize(v)
		}
	}
}

// Resolver matches spoken item tokens against catalog snapshots. Read-only
// after construction; safe for concurrent use.
type Resolver struct {
	floor     float64
	overrides map[string]string
	ignore    map[string]struct{}
}

// New constructs a [Resolver] with the built-in override table, the filler
// ignore words, and a similarity floor of 0.6.
func New(opts ...Option) *Resolver {
	r := &Resolver{
		floor:     defaultFloor,
		overrides: make(map[string]string, len(defaultOverrides)),
		ignore:    make(map[string]struct{}, len(defaultFillers)),
	}
	for k, v := range defaultOverrides {
		r.overrides[norm.Normalize(k)] = norm.Normalize(v)
	}
	for _, w := range defaultFillers {
		r.ignore[norm.Normalize(w)] = struct{}{}
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// TokenFromText extracts the candidate item token from a normalized
// utterance by dropping digits and every ignore-listed word. The remaining
// words, joined in order, are the spoken item name. Returns "" when nothing
// remains.
func (r *Resolver) TokenFromText(normalized string) string {
	fields := strings.FieldsFunc(normalized, func(c rune) bool {
		return !unicode.IsLetter(c) && !unicode.IsDigit(c) && c != '.'
	})

	var kept []string
	for _, f := range fields {
		if containsDigit(f) {
			continue
		}
		if _, skip := r.ignore[f]; skip {
			continue
		}
		kept = append(kept, f)
	}
	return strings.Join(kept, " ")
}

// Resolve maps token to a catalog entry, or nil when the token is
// unresolvable. The returned score is the similarity of the accepted match
// (1.0 for exact/containment/override hits) or the best rejected score when
// no entry was accepted — useful for logging near-misses.
func (r *Resolver) Resolve(token string, snap catalog.Snapshot) (*catalog.Entry, float64) {
	tok := norm.Normalize(token)
	if tok == "" {
		return nil, 0
	}

	// Stage 1: override rewrites.
	if canonical, ok := r.overrides[tok]; ok {
		tok = canonical
	}

	// Stage 2: exact match on names and aliases.
	for i := range snap.Entries {
		e := &snap.Entries[i]
		if norm.Normalize(e.Name) == tok {
			return e, 1.0
		}
		for _, a := range e.Aliases {
			if norm.Normalize(a) == tok {
				return e, 1.0
			}
		}
	}

	// Stage 3: canonical name contained in the token.
	for i := range snap.Entries {
		e := &snap.Entries[i]
		if n := norm.Normalize(e.Name); n != "" && strings.Contains(tok, n) {
			return e, 1.0
		}
	}

	// Stage 4: similarity against every name and alias. Strictly-greater
	// comparison keeps the first-seen entry on ties.
	var best *catalog.Entry
	var bestScore float64
	for i := range snap.Entries {
		e := &snap.Entries[i]
		score := similarity(tok, norm.Normalize(e.Name))
		for _, a := range e.Aliases {
			if s := similarity(tok, norm.Normalize(a)); s > score {
				score = s
			}
		}
		if score > bestScore {
			best, bestScore = e, score
		}
	}
	if bestScore > r.floor {
		return best, bestScore
	}
	return nil, bestScore
}

// similarity is a normalized edit-distance ratio in [0, 1]:
// 1 - Levenshtein(a, b) / max(len(a), len(b)), computed on runes.
func similarity(a, b string) float64 {
	if a == "" || b == "" {
		return 0
	}
	la, lb := len([]rune(a)), len([]rune(b))
	max := la
	if lb > max {
		max = lb
	}
	d := matchr.Levenshtein(a, b)
	if d > max {
		d = max
	}
	return 1 - float64(d)/float64(max)
}

func containsDigit(s string) bool {
	for _, c := range s {
		if unicode.IsDigit(c) {
			return true
		}
	}
	return false
}
