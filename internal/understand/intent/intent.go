// Package intent decides what a spoken inventory utterance asks for: adding
// stock, deducting stock, or checking stock.
//
// Classification is a two-pass hybrid. A deterministic keyword pass runs
// first: each category's keyword set is tested by containment against the
// normalized text (containment, not token equality, because transcription
// errors routinely fuse words). The first category with a hit wins with
// confidence 1.0. Only when no rule fires does the statistical pass run: a
// pre-trained [Model] produces a probability distribution over the three
// intents, and the top class is accepted only above a confidence threshold.
// An inconclusive primary pass on the raw text is retried once on the
// normalized text at a slightly lower threshold — phonetic folding often
// rescues utterances the model has never seen spelled that way.
//
// A missing model is not an error: the classifier degrades to rule-only mode
// and reports it through [Classifier.Ready] so operators can see the degraded
// state without the behavior of the rule pass changing.
package intent

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/kiranavoice/kirana/internal/observe"
	"github.com/kiranavoice/kirana/internal/understand/norm"
)

// Label is the recognised inventory intent of an utterance.
type Label string

const (
	// LabelAdd is a stock addition ("thap", "rakh", ...).
	LabelAdd Label = "ADD"

	// LabelSale is a stock deduction ("bech", "ghatau", ...).
	LabelSale Label = "SALE"

	// LabelCheck is a stock inquiry ("kati", "baki", ...).
	LabelCheck Label = "CHECK"

	// LabelUnknown is the safe default when neither pass is confident.
	LabelUnknown Label = "UNKNOWN"
)

// IsValid reports whether l is a recognised label.
func (l Label) IsValid() bool {
	switch l {
	case LabelAdd, LabelSale, LabelCheck, LabelUnknown:
		return true
	}
	return false
}

// Prediction pairs a label with the model's probability for it.
type Prediction struct {
	Label Label
	Score float64
}

// Model is a pre-trained multi-class text classifier over the three non-
// UNKNOWN labels. Implementations must be read-only after construction and
// safe for concurrent use.
type Model interface {
	// Predict returns a probability distribution over {ADD, SALE, CHECK}.
	// Scores sum to 1. The order of the returned slice is unspecified.
	Predict(text string) ([]Prediction, error)
}

const (
	defaultThreshold          = 0.60
	defaultSecondaryThreshold = 0.55
	defaultCheckBoost         = 0.15
)

// Option is a functional option for configuring a [Classifier].
type Option func(*Classifier)

// WithModel attaches the statistical model. When nil (the default) the
// classifier runs in rule-only mode.
func WithModel(m Model) Option {
	return func(c *Classifier) {
		c.model = m
	}
}

// WithThreshold sets the minimum probability the model's top class must
// exceed on the primary (raw text) pass. Default: 0.60.
func WithThreshold(t float64) Option {
	return func(c *Classifier) {
		c.threshold = t
	}
}

// WithSecondaryThreshold sets the gate for the retry pass on normalized
// text. Default: 0.55.
func WithSecondaryThreshold(t float64) Option {
	return func(c *Classifier) {
		c.secondaryThreshold = t
	}
}

// WithCheckBoost sets the additive bias applied to the CHECK score when a
// status keyword is present, before arg-max selection. Default: 0.15.
func WithCheckBoost(b float64) Option {
	return func(c *Classifier) {
		c.checkBoost = b
	}
}

// WithKeywords replaces the built-in rule table. The category check order
// (ADD, SALE, CHECK) is fixed regardless of the table contents.
func WithKeywords(kc KeywordConfig) Option {
	return func(c *Classifier) {
		c.keywords = kc
	}
}

// WithMetrics attaches pipeline metrics; every model call records its
// inference latency. When nil (the default), nothing is recorded.
func WithMetrics(m *observe.Metrics) Option {
	return func(c *Classifier) {
		c.metrics = m
	}
}

// Classifier is the hybrid rule + statistical intent classifier. It holds no
// per-call state and is safe for concurrent use after construction.
type Classifier struct {
	model              Model
	threshold          float64
	secondaryThreshold float64
	checkBoost         float64
	keywords           KeywordConfig
	metrics            *observe.Metrics

	// Normalized keyword sets in fixed check order, built in New.
	ruleSets  [3]ruleSet
	statusSet []string
}

// ruleSet pairs a label with its normalized keywords.
type ruleSet struct {
	label Label
	words []string
}

// New constructs a [Classifier]. Without [WithModel] the classifier runs in
// rule-only mode ([Classifier.Ready] returns false).
func New(opts ...Option) *Classifier {
	c := &Classifier{
		threshold:          defaultThreshold,
		secondaryThreshold: defaultSecondaryThreshold,
		checkBoost:         defaultCheckBoost,
		keywords:           DefaultKeywords(),
	}
	for _, o := range opts {
		o(c)
	}

	c.ruleSets = [3]ruleSet{
		{label: LabelAdd, words: normalizeAll(c.keywords.Add)},
		{label: LabelSale, words: normalizeAll(c.keywords.Sale)},
		{label: LabelCheck, words: normalizeAll(c.keywords.Check)},
	}
	c.statusSet = normalizeAll(c.keywords.Status)
	return c
}

// Ready reports whether the statistical path is active. False means the
// classifier is degraded to rule-only mode. The flag exists for
// observability; callers must not branch on it beyond reporting.
func (c *Classifier) Ready() bool {
	return c.model != nil
}

// Keywords returns the rule table the classifier was built with.
func (c *Classifier) Keywords() KeywordConfig {
	return c.keywords
}

// Classify determines the intent of an utterance. original is the raw text
// as transcribed; normalized is the output of [norm.Normalize] for the same
// text. The returned confidence is 1.0 for rule hits, the model probability
// for accepted statistical predictions, and the best (rejected) probability
// for UNKNOWN so that near-misses remain visible in logs and metrics.
func (c *Classifier) Classify(ctx context.Context, original, normalized string) (Label, float64) {
	// Rule pass: first category with any keyword hit wins.
	for _, rs := range c.ruleSets {
		for _, w := range rs.words {
			if w != "" && contains(normalized, w) {
				return rs.label, 1.0
			}
		}
	}

	if c.model == nil {
		return LabelUnknown, 0
	}

	hasStatus := c.hasStatusWord(normalized)

	// Primary statistical pass on the raw text.
	label, score, err := c.predict(ctx, original, hasStatus)
	if err != nil {
		slog.Warn("intent: model prediction failed", "error", err)
		return LabelUnknown, 0
	}
	if score > c.threshold {
		return label, score
	}
	best := score

	// Secondary pass: folding sometimes recovers utterances the model only
	// knows in canonical spelling. A lower gate is safe here because the
	// rule pass has already declined the text.
	label, score, err = c.predict(ctx, normalized, hasStatus)
	if err != nil {
		slog.Warn("intent: model prediction failed", "error", err)
		return LabelUnknown, best
	}
	if score > c.secondaryThreshold {
		return label, score
	}
	if score > best {
		best = score
	}
	return LabelUnknown, best
}

// predict runs the model on text, applies the CHECK boost when a status word
// was seen, and returns the arg-max label and score. Inference latency is
// recorded whether or not the model errors.
func (c *Classifier) predict(ctx context.Context, text string, hasStatus bool) (Label, float64, error) {
	start := time.Now()
	preds, err := c.model.Predict(text)
	c.metrics.RecordModelDuration(ctx, time.Since(start).Seconds())
	if err != nil {
		return LabelUnknown, 0, err
	}

	var bestLabel Label = LabelUnknown
	var bestScore float64
	for _, p := range preds {
		score := p.Score
		if hasStatus && p.Label == LabelCheck {
			score += c.checkBoost
		}
		if score > bestScore {
			bestLabel, bestScore = p.Label, score
		}
	}
	if bestScore > 1 {
		bestScore = 1
	}
	return bestLabel, bestScore, nil
}

// hasStatusWord reports whether any status keyword occurs in the text.
func (c *Classifier) hasStatusWord(normalized string) bool {
	for _, w := range c.statusSet {
		if w != "" && contains(normalized, w) {
			return true
		}
	}
	return false
}

// contains is plain substring containment. Deliberate: STT output for fast
// speech fuses adjacent words, so token-exact matching would miss keywords.
func contains(text, keyword string) bool {
	return strings.Contains(text, keyword)
}

func normalizeAll(words []string) []string {
	out := make([]string, 0, len(words))
	for _, w := range words {
		out = append(out, norm.Normalize(w))
	}
	return out
}
