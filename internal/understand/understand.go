// Package understand turns one noisy spoken inventory utterance into a
// structured command.
//
// The pipeline is: normalize the text, then run three independent passes
// over it — quantity/unit extraction, intent classification, and item
// resolution — and merge the results into a single [ResolvedCommand]. The
// passes never consume tokens from each other's view of the text; the
// resolver excludes numeral, unit, and keyword tokens through its own
// ignore-list.
//
// An [Interpreter] is a pure function of its inputs plus the read-only
// tables and model loaded at construction. It performs no I/O, holds no
// state between calls, and is safe for concurrent use. The only error it
// returns is a malformed catalog snapshot, which indicates a caller bug;
// every language-variability problem is expressed in the result instead
// (UNKNOWN intent, nil item).
package understand

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/kiranavoice/kirana/internal/catalog"
	"github.com/kiranavoice/kirana/internal/observe"
	"github.com/kiranavoice/kirana/internal/understand/intent"
	"github.com/kiranavoice/kirana/internal/understand/norm"
	"github.com/kiranavoice/kirana/internal/understand/numeral"
	"github.com/kiranavoice/kirana/internal/understand/resolve"
)

// ResolvedCommand is the structured interpretation of one utterance. It is
// constructed once per call, returned, and discarded — the pipeline keeps
// nothing.
type ResolvedCommand struct {
	// Intent is the requested inventory action.
	Intent intent.Label `json:"intent"`

	// Item is the resolved catalog entry, or nil when the spoken item
	// matched nothing. Distinct from "item not in stock", which is the
	// inventory store's concern.
	Item *catalog.Entry `json:"item,omitempty"`

	// RawItemToken is the spoken item name as carved out of the utterance,
	// kept for "didn't understand X" responses and for audit.
	RawItemToken string `json:"raw_item_token"`

	// Quantity is the extracted amount; 1.0 when the utterance carried no
	// numeral.
	Quantity float64 `json:"quantity"`

	// Unit is the canonical unit token; "kg" when undetected.
	Unit string `json:"unit"`

	// Confidence is 1.0 for keyword-rule intent hits, the model
	// probability for statistical hits, and the best rejected probability
	// when the intent stayed UNKNOWN.
	Confidence float64 `json:"confidence"`

	// NeedsClarification is set when the intent mutates stock (ADD/SALE)
	// but no item resolved. Mutating commands must never fall back to an
	// arbitrary item — that is how junk inventory entries get created.
	NeedsClarification bool `json:"needs_clarification"`
}

// Option is a functional option for configuring an [Interpreter].
type Option func(*Interpreter)

// WithClassifier replaces the default rule-only intent classifier. This is
// how the statistical model is attached:
//
//	understand.New(understand.WithClassifier(intent.New(intent.WithModel(m))))
func WithClassifier(c *intent.Classifier) Option {
	return func(i *Interpreter) {
		i.classifier = c
	}
}

// WithResolver replaces the default item resolver.
func WithResolver(r *resolve.Resolver) Option {
	return func(i *Interpreter) {
		i.resolver = r
	}
}

// WithResolverOptions builds the default resolver with extra options (on
// top of the ignore-list wiring New performs).
func WithResolverOptions(opts ...resolve.Option) Option {
	return func(i *Interpreter) {
		i.resolverOpts = opts
	}
}

// WithMetrics attaches pipeline metrics. When nil (the default), nothing is
// recorded.
func WithMetrics(m *observe.Metrics) Option {
	return func(i *Interpreter) {
		i.metrics = m
	}
}

// Interpreter runs the full understanding pipeline. Construct with [New];
// safe for concurrent use.
type Interpreter struct {
	classifier *intent.Classifier
	extractor  *numeral.Extractor
	resolver   *resolve.Resolver
	metrics    *observe.Metrics

	resolverOpts []resolve.Option
}

// New constructs an [Interpreter]. Unless [WithResolver] is given, the
// resolver's ignore-list is wired from the classifier's keyword table and
// the numeral/unit vocabulary, so whatever words the other passes react to
// can never be mistaken for an item name.
func New(opts ...Option) *Interpreter {
	i := &Interpreter{
		extractor: numeral.NewExtractor(),
	}
	for _, o := range opts {
		o(i)
	}
	if i.classifier == nil {
		i.classifier = intent.New()
	}
	if i.resolver == nil {
		kw := i.classifier.Keywords()
		var ignore []string
		ignore = append(ignore, kw.Add...)
		ignore = append(ignore, kw.Sale...)
		ignore = append(ignore, kw.Check...)
		ignore = append(ignore, kw.Status...)
		ignore = append(ignore, i.extractor.Words()...)

		ropts := append([]resolve.Option{resolve.WithIgnoreWords(ignore...)}, i.resolverOpts...)
		i.resolver = resolve.New(ropts...)
	}
	return i
}

// Ready reports whether the statistical intent path is active. False means
// rule-only (degraded) mode.
func (i *Interpreter) Ready() bool {
	return i.classifier.Ready()
}

// Interpret runs the pipeline over text against the given catalog snapshot.
//
// It returns an error only for a malformed snapshot. A CHECK command with no
// resolved item is still valid (an unqualified status query); ADD and SALE
// commands with no resolved item come back with NeedsClarification set.
func (i *Interpreter) Interpret(ctx context.Context, text string, snap catalog.Snapshot) (*ResolvedCommand, error) {
	if err := snap.Validate(); err != nil {
		return nil, fmt.Errorf("understand: catalog snapshot: %w", err)
	}

	start := time.Now()
	normalized := norm.Normalize(text)

	quantity, unit := i.extractor.Extract(normalized)
	label, confidence := i.classifier.Classify(ctx, text, normalized)

	token := i.resolver.TokenFromText(normalized)
	entry, score := i.resolver.Resolve(token, snap)

	cmd := &ResolvedCommand{
		Intent:       label,
		Item:         entry,
		RawItemToken: token,
		Quantity:     quantity,
		Unit:         unit,
		Confidence:   confidence,
	}
	if entry == nil && (label == intent.LabelAdd || label == intent.LabelSale) {
		cmd.NeedsClarification = true
	}

	i.metrics.RecordCommand(ctx, string(label), entry != nil)
	if token != "" {
		i.metrics.RecordResolution(ctx, score, entry != nil)
	}
	i.metrics.RecordInterpretDuration(ctx, time.Since(start).Seconds())

	slog.Debug("utterance interpreted",
		"intent", label,
		"confidence", confidence,
		"item_token", token,
		"resolved", entry != nil,
		"quantity", quantity,
		"unit", unit,
	)
	return cmd, nil
}
