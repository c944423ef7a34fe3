// Package linear implements [intent.Model] with a bag-of-words linear
// softmax classifier loaded from a JSON artifact.
//
// The artifact is produced offline by the training tooling (out of scope
// here) and checked into the deployment alongside the binary. It carries the
// vocabulary, one weight row per label, per-label biases, and the
// label-index mapping. Inference is a dot product plus softmax — cheap
// enough to run inline on every utterance without a worker pool.
//
// A Model is read-only after [Load] and safe for concurrent use.
package linear

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"strings"

	"github.com/kiranavoice/kirana/internal/understand/intent"
)

// Artifact is the on-disk JSON layout of a trained model.
type Artifact struct {
	// Labels maps class index to label name, e.g. ["ADD", "SALE", "CHECK"].
	Labels []string `json:"labels"`

	// Vocab maps token → feature index.
	Vocab map[string]int `json:"vocab"`

	// Weights holds one row per label; each row has one weight per feature.
	Weights [][]float64 `json:"weights"`

	// Bias holds one bias term per label.
	Bias []float64 `json:"bias"`
}

// Model evaluates a trained [Artifact].
type Model struct {
	labels  []intent.Label
	vocab   map[string]int
	weights [][]float64
	bias    []float64
}

// Compile-time assertion that Model satisfies the intent.Model interface.
var _ intent.Model = (*Model)(nil)

// Load reads and validates the artifact at path. A missing or malformed
// artifact is returned as an error for the caller to log — the intent
// classifier then runs rule-only.
func Load(path string) (*Model, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("linear: read artifact %q: %w", path, err)
	}
	var a Artifact
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("linear: parse artifact %q: %w", path, err)
	}
	m, err := New(a)
	if err != nil {
		return nil, fmt.Errorf("linear: artifact %q: %w", path, err)
	}
	return m, nil
}

// New validates a and returns a ready [Model].
func New(a Artifact) (*Model, error) {
	if len(a.Labels) == 0 {
		return nil, fmt.Errorf("no labels")
	}
	if len(a.Weights) != len(a.Labels) {
		return nil, fmt.Errorf("weights rows %d != labels %d", len(a.Weights), len(a.Labels))
	}
	if len(a.Bias) != len(a.Labels) {
		return nil, fmt.Errorf("bias terms %d != labels %d", len(a.Bias), len(a.Labels))
	}

	m := &Model{
		vocab:   a.Vocab,
		weights: a.Weights,
		bias:    a.Bias,
	}
	for i, name := range a.Labels {
		l := intent.Label(name)
		if !l.IsValid() || l == intent.LabelUnknown {
			return nil, fmt.Errorf("label %d: %q is not a classifiable intent", i, name)
		}
		m.labels = append(m.labels, l)
	}
	for i, row := range a.Weights {
		if len(row) != len(a.Vocab) {
			return nil, fmt.Errorf("weight row %d: %d weights for %d vocab entries", i, len(row), len(a.Vocab))
		}
	}
	return m, nil
}

// Labels returns the model's classes in index order.
func (m *Model) Labels() []intent.Label {
	out := make([]intent.Label, len(m.labels))
	copy(out, m.labels)
	return out
}

// Predict implements [intent.Model]. Out-of-vocabulary tokens contribute
// nothing; an utterance with no known tokens degenerates to the softmax of
// the biases, which a sane artifact keeps well below any confidence gate.
func (m *Model) Predict(text string) ([]intent.Prediction, error) {
	counts := make(map[int]float64)
	for _, tok := range tokenize(text) {
		if idx, ok := m.vocab[tok]; ok {
			counts[idx]++
		}
	}

	logits := make([]float64, len(m.labels))
	for i := range m.labels {
		logits[i] = m.bias[i]
		for idx, n := range counts {
			logits[i] += m.weights[i][idx] * n
		}
	}

	probs := softmax(logits)
	preds := make([]intent.Prediction, len(m.labels))
	for i, l := range m.labels {
		preds[i] = intent.Prediction{Label: l, Score: probs[i]}
	}
	return preds, nil
}

// tokenize lowercases and splits on anything that is not a letter or digit.
func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !isWordRune(r)
	})
}

func isWordRune(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
		return true
	}
	// Devanagari block.
	return r >= 0x0900 && r <= 0x097F
}

// softmax converts logits to a probability distribution, shifting by the
// maximum logit for numerical stability.
func softmax(logits []float64) []float64 {
	max := math.Inf(-1)
	for _, l := range logits {
		if l > max {
			max = l
		}
	}
	var sum float64
	out := make([]float64, len(logits))
	for i, l := range logits {
		out[i] = math.Exp(l - max)
		sum += out[i]
	}
	for i := range out {
		out[i] /= sum
	}
	return out
}
