package catalog

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadFile reads a YAML catalog file and returns a validated [Snapshot].
//
// Expected layout:
//
//	items:
//	  - name: "चामल"
//	    aliases: ["chamal", "mansuli", "basmati"]
//	    unit: "kg"
//	  - name: "नुन"
//	    aliases: ["nun", "noon", "aayo"]
func LoadFile(path string) (Snapshot, error) {
	f, err := os.Open(path)
	if err != nil {
		return Snapshot{}, fmt.Errorf("catalog: open %q: %w", path, err)
	}
	defer f.Close()

	snap, err := LoadFromReader(f)
	if err != nil {
		return Snapshot{}, fmt.Errorf("catalog: load %q: %w", path, err)
	}
	return snap, nil
}

// LoadFromReader decodes a YAML snapshot from r and validates it. Useful in
// tests where catalogs are built from string literals.
func LoadFromReader(r io.Reader) (Snapshot, error) {
	var snap Snapshot
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&snap); err != nil {
		return Snapshot{}, fmt.Errorf("catalog: decode yaml: %w", err)
	}
	if err := snap.Validate(); err != nil {
		return Snapshot{}, err
	}
	return snap, nil
}
