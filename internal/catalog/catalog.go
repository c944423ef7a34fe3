// Package catalog models the read-only item reference data the
// understanding pipeline resolves spoken names against.
//
// A [Snapshot] is an ordered list of entries — canonical display name plus
// the alias spellings the shop's transcriptions are known to produce. The
// inventory store owns the data; this package only carries it per
// invocation. Snapshots are never mutated by the pipeline, and iteration
// order is significant: similarity ties resolve to the earlier entry.
package catalog

import (
	"errors"
	"fmt"

	"github.com/kiranavoice/kirana/internal/understand/norm"
)

// ErrDuplicateName indicates two entries share a canonical name after
// normalization. This is a caller bug, not a language-variability issue.
var ErrDuplicateName = errors.New("catalog: duplicate canonical name")

// ErrDuplicateAlias indicates one alias maps to two different entries.
var ErrDuplicateAlias = errors.New("catalog: alias maps to multiple entries")

// Entry is one catalog item: a canonical display name and its known
// alternate spellings.
type Entry struct {
	// Name is the canonical display name ("चामल", "rice").
	Name string `yaml:"name" json:"name"`

	// Aliases are known mis-transcriptions and alternate spellings that
	// should resolve to this entry.
	Aliases []string `yaml:"aliases,omitempty" json:"aliases,omitempty"`

	// Unit is the stocking unit the shop uses for this item, if known.
	Unit string `yaml:"unit,omitempty" json:"unit,omitempty"`
}

// Snapshot is an ordered, read-only view of the catalog supplied per
// pipeline invocation.
type Snapshot struct {
	Entries []Entry `yaml:"items" json:"items"`
}

// Validate checks the snapshot's preconditions: canonical names must be
// unique after normalization, and no alias may map to more than one entry.
// An alias equal to its own entry's canonical name is tolerated.
func (s Snapshot) Validate() error {
	names := make(map[string]string, len(s.Entries))
	aliases := make(map[string]string, len(s.Entries))

	for _, e := range s.Entries {
		n := norm.Normalize(e.Name)
		if n == "" {
			return fmt.Errorf("catalog: entry %q: empty name after normalization", e.Name)
		}
		if prev, ok := names[n]; ok {
			return fmt.Errorf("%w: %q and %q", ErrDuplicateName, prev, e.Name)
		}
		names[n] = e.Name

		for _, a := range e.Aliases {
			an := norm.Normalize(a)
			if an == "" || an == n {
				continue
			}
			if owner, ok := aliases[an]; ok && owner != e.Name {
				return fmt.Errorf("%w: alias %q claimed by %q and %q", ErrDuplicateAlias, a, owner, e.Name)
			}
			aliases[an] = e.Name
		}
	}
	return nil
}

// Names returns the canonical names in snapshot order.
func (s Snapshot) Names() []string {
	out := make([]string, 0, len(s.Entries))
	for _, e := range s.Entries {
		out = append(out, e.Name)
	}
	return out
}
