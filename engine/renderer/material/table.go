package material

import (
	"errors"
	"fmt"
)

// ErrMaterialOutOfRange is returned by Table.Validate when an instance references a
// material index at or beyond the table length.
var ErrMaterialOutOfRange = errors.New("material: material id out of range")

// Table is the read-only material table bound as a storage buffer and indexed by
// the per-instance material id. A Table is immutable once built.
type Table struct {
	entries []GPUMaterial
}

// NewTable creates a Table holding a copy of the given entries.
//
// Parameters:
//   - entries: the table rows, indexed by material id
//
// Returns:
//   - *Table: the new table
func NewTable(entries ...GPUMaterial) *Table {
	return &Table{entries: append([]GPUMaterial(nil), entries...)}
}

// TableFromMaterials creates a Table from the GPU rows of the given materials, in order.
//
// Parameters:
//   - mats: the materials
//
// Returns:
//   - *Table: the new table
func TableFromMaterials(mats ...Material) *Table {
	entries := make([]GPUMaterial, len(mats))
	for i, m := range mats {
		entries[i] = m.GPU()
	}
	return &Table{entries: entries}
}

// Len returns the number of entries.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.entries)
}

// Lookup returns the entry at id. There is no clamping or wraparound: an id at or
// beyond Len panics like any out-of-range slice access. Callers guard with Validate.
//
// Parameters:
//   - id: the material index
//
// Returns:
//   - GPUMaterial: the table row
func (t *Table) Lookup(id uint32) GPUMaterial {
	return t.entries[id]
}

// Validate checks that every id indexes an existing entry.
//
// Parameters:
//   - ids: the material indices referenced by a draw
//
// Returns:
//   - error: ErrMaterialOutOfRange wrapped with the first offending id, or nil
func (t *Table) Validate(ids ...uint32) error {
	n := t.Len()
	for _, id := range ids {
		if int(id) >= n {
			return fmt.Errorf("%w: id %d, table length %d", ErrMaterialOutOfRange, id, n)
		}
	}
	return nil
}

// Marshal packs the table into its storage buffer bytes, 48 bytes per entry.
// An empty table yields one implicit entry so the binding never has zero size.
//
// Returns:
//   - []byte: the storage buffer contents
func (t *Table) Marshal() []byte {
	if t.Len() == 0 {
		implicit := Implicit()
		return implicit.Marshal()
	}
	buf := make([]byte, 0, 48*len(t.entries))
	for i := range t.entries {
		buf = append(buf, t.entries[i].Marshal()...)
	}
	return buf
}
