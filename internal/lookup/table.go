// Package lookup holds the reference tables the PO records are joined against.
//
// A Table is built once from a list of key/value entries and never changes
// afterwards. Entries with an empty key or value are dropped while building,
// and a key listed more than once keeps its last value, so a miss is always
// an explicit (zero, false) from Lookup rather than an empty value.
package lookup

// Entry is one key/value pair read from a reference sheet.
type Entry[V any] struct {
	Key   string
	Value V

	// Valid is false when the sheet cell was empty or unparsable.
	Valid bool
}

// Table is an immutable key to value mapping.
type Table[V any] struct {
	name    string
	entries map[string]V
	dropped int
}

// NewTable builds a table from entries. Invalid entries and entries with an
// empty key are dropped; for duplicate keys the last valid entry wins.
func NewTable[V any](name string, entries []Entry[V]) *Table[V] {
	t := &Table[V]{
		name:    name,
		entries: make(map[string]V, len(entries)),
	}

	for _, e := range entries {
		if e.Key == "" || !e.Valid {
			t.dropped++
			continue
		}
		t.entries[e.Key] = e.Value
	}

	return t
}

// Lookup returns the value for key and whether the key is present.
// A nil table has no keys.
func (t *Table[V]) Lookup(key string) (V, bool) {
	if t == nil {
		var zero V
		return zero, false
	}
	v, ok := t.entries[key]
	return v, ok
}

// Len returns the number of distinct keys.
func (t *Table[V]) Len() int {
	return len(t.entries)
}

// Dropped returns the number of sheet rows that were not indexed.
func (t *Table[V]) Dropped() int {
	return t.dropped
}

// Name identifies the table in logs.
func (t *Table[V]) Name() string {
	return t.name
}
