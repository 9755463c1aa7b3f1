// Package level maps decibel values to the console's normalized fader and send
// levels using a lookup table keyed by whole decibels.
package level

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"strconv"
)

const (
	// Unity is the normalized level of the 0 dB fader position.
	Unity = 0.76
	// Silence is the normalized level of the -inf dB fader position.
	Silence = 0.0
)

// ErrMappingNotFound is returned when a rounded decibel value has no entry in
// the table. A missing entry is never replaced by a default level.
var ErrMappingNotFound = errors.New("level: no mapping for dB value")

// Table maps whole decibels to normalized levels. A Table is read-only once
// built and safe for concurrent use.
type Table struct {
	entries map[int]float64
	skipped []string
}

// NewTable builds a table from a copy of entries.
func NewTable(entries map[int]float64) *Table {
	t := &Table{entries: make(map[int]float64, len(entries))}
	for k, v := range entries {
		t.entries[k] = v
	}
	return t
}

// Load reads a mapping file. A missing file yields an empty table, on which
// every lookup fails.
func Load(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return NewTable(nil), nil
		}
		return nil, err
	}
	defer f.Close()

	t, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}

// Parse reads a JSON object whose keys are decimal integers ("-12", "0", "6")
// and whose values are normalized levels. Keys that are not canonical integers
// are left out of the table and listed by Skipped.
func Parse(r io.Reader) (*Table, error) {
	var raw map[string]float64
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode mapping: %w", err)
	}

	t := &Table{entries: make(map[int]float64, len(raw))}
	for k, v := range raw {
		n, err := strconv.Atoi(k)
		if err != nil || strconv.Itoa(n) != k {
			t.skipped = append(t.skipped, k)
			continue
		}
		t.entries[n] = v
	}
	sort.Strings(t.skipped)
	return t, nil
}

// Round converts a decibel value to its table key. Halves go to the even
// neighbour: 0.5 -> 0, 1.5 -> 2, -2.5 -> -2.
func Round(db float64) int {
	return int(math.RoundToEven(db))
}

// Map returns the normalized level for db after rounding it with Round.
func (t *Table) Map(db float64) (float64, error) {
	if math.IsNaN(db) || math.IsInf(db, 0) {
		return 0, fmt.Errorf("%w: %v dB", ErrMappingNotFound, db)
	}
	key := Round(db)
	v, ok := t.entries[key]
	if !ok {
		return 0, fmt.Errorf("%w: %v dB (key %d)", ErrMappingNotFound, db, key)
	}
	return v, nil
}

// Len returns the number of entries.
func (t *Table) Len() int { return len(t.entries) }

// Keys returns the table keys in ascending order.
func (t *Table) Keys() []int {
	keys := make([]int, 0, len(t.entries))
	for k := range t.entries {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}

// Skipped returns the keys Parse could not read as whole decibels.
func (t *Table) Skipped() []string {
	return append([]string(nil), t.skipped...)
}
