package catalog_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/kiranavoice/kirana/internal/catalog"
)

func TestValidate(t *testing.T) {
	t.Parallel()

	snap := catalog.Snapshot{Entries: []catalog.Entry{
		{Name: "चामल", Aliases: []string{"chamal", "rice"}, Unit: "kg"},
		{Name: "नुन", Aliases: []string{"nun", "noon", "salt"}, Unit: "kg"},
	}}
	if err := snap.Validate(); err != nil {
		t.Fatalf("Validate on sane snapshot: %v", err)
	}
}

func TestValidate_DuplicateNameAfterNormalization(t *testing.T) {
	t.Parallel()

	// "चिनी" and "चिनि" differ only in vowel length and fold to the same
	// normalized form.
	snap := catalog.Snapshot{Entries: []catalog.Entry{
		{Name: "चिनी"},
		{Name: "चिनि"},
	}}
	err := snap.Validate()
	if !errors.Is(err, catalog.ErrDuplicateName) {
		t.Fatalf("Validate = %v, want ErrDuplicateName", err)
	}
}

func TestValidate_AliasClaimedTwice(t *testing.T) {
	t.Parallel()

	snap := catalog.Snapshot{Entries: []catalog.Entry{
		{Name: "चामल", Aliases: []string{"mansuli"}},
		{Name: "पिठो", Aliases: []string{"mansuli"}},
	}}
	err := snap.Validate()
	if !errors.Is(err, catalog.ErrDuplicateAlias) {
		t.Fatalf("Validate = %v, want ErrDuplicateAlias", err)
	}
}

func TestValidate_AliasEqualToOwnNameTolerated(t *testing.T) {
	t.Parallel()

	snap := catalog.Snapshot{Entries: []catalog.Entry{
		{Name: "rice", Aliases: []string{"rice", "chamal"}},
	}}
	if err := snap.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestValidate_EmptyName(t *testing.T) {
	t.Parallel()

	snap := catalog.Snapshot{Entries: []catalog.Entry{{Name: "  -  "}}}
	if err := snap.Validate(); err == nil {
		t.Fatal("Validate accepted an entry with an empty normalized name")
	}
}

func TestLoadFromReader(t *testing.T) {
	t.Parallel()

	src := `
items:
  - name: "चामल"
    aliases: ["chamal", "rice"]
    unit: "kg"
  - name: "तेल"
    aliases: ["tel", "oil"]
    unit: "ltr"
`
	snap, err := catalog.LoadFromReader(strings.NewReader(src))
	if err != nil {
		t.Fatalf("LoadFromReader: %v", err)
	}
	if len(snap.Entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(snap.Entries))
	}
	if snap.Entries[1].Unit != "ltr" {
		t.Errorf("Entries[1].Unit = %q, want %q", snap.Entries[1].Unit, "ltr")
	}
	names := snap.Names()
	if names[0] != "चामल" || names[1] != "तेल" {
		t.Errorf("Names() = %v, order must follow the file", names)
	}
}

func TestLoadFromReader_UnknownFieldRejected(t *testing.T) {
	t.Parallel()

	src := `
items:
  - name: "चामल"
    price: 120
`
	if _, err := catalog.LoadFromReader(strings.NewReader(src)); err == nil {
		t.Fatal("LoadFromReader accepted an unknown field")
	}
}

func TestLoadFromReader_InvalidSnapshotRejected(t *testing.T) {
	t.Parallel()

	src := `
items:
  - name: "rice"
  - name: "rice"
`
	_, err := catalog.LoadFromReader(strings.NewReader(src))
	if !errors.Is(err, catalog.ErrDuplicateName) {
		t.Fatalf("LoadFromReader = %v, want ErrDuplicateName", err)
	}
}
