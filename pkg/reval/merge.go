package reval

import (
	"fmt"
	"sort"
	"sync"
)

// Merged is a cell whose value is a keyed record mirroring a set of source
// cells and literal values 1:1. Cell entries are observed and mirrored
// live; literal entries live in a local table. Writes dispatch per changed
// key: to the corresponding cell's Set when the entry is a cell, to the
// local table when it is a literal.
type Merged struct {
	*Derived[map[string]any]

	keys  []string
	cells map[string]AnyReadable

	mu       sync.Mutex
	literals map[string]any
	lastOut  map[string]any
}

// Merge builds a record cell from sources. Entries implementing the
// readable cell capability are wired as dependencies; anything else is
// stored as a literal. The record's key set never changes after
// construction.
func Merge(sources map[string]any) *Merged {
	m := &Merged{
		cells:    make(map[string]AnyReadable),
		literals: make(map[string]any),
		keys:     make([]string, 0, len(sources)),
	}
	for k := range sources {
		m.keys = append(m.keys, k)
	}
	sort.Strings(m.keys)

	for _, k := range m.keys {
		if cell, ok := sources[k].(AnyReadable); ok {
			m.cells[k] = cell
		} else {
			m.literals[k] = sources[k]
		}
	}

	m.Derived = newDerived(m.computeValue, m.applyWrite)
	for _, k := range m.keys {
		if cell, ok := m.cells[k]; ok {
			dependOn(m.Derived, cell)
		}
	}
	return m
}

// Keys returns the record's keys in sorted order.
func (m *Merged) Keys() []string {
	out := make([]string, len(m.keys))
	copy(out, m.keys)
	return out
}

func (m *Merged) computeValue() map[string]any {
	out := make(map[string]any, len(m.keys))
	for _, k := range m.keys {
		if cell, ok := m.cells[k]; ok {
			out[k] = cell.GetAny()
		}
	}

	m.mu.Lock()
	for k, v := range m.literals {
		out[k] = v
	}
	// Reuse the previous record when nothing changed, so the commit's
	// identity check suppresses a redundant notification.
	if m.lastOut != nil && len(out) == len(m.lastOut) {
		same := true
		for k, v := range out {
			if !anyEquals(v, m.lastOut[k]) {
				same = false
				break
			}
		}
		if same {
			prev := m.lastOut
			m.mu.Unlock()
			return prev
		}
	}
	m.lastOut = out
	m.mu.Unlock()
	return out
}

// applyWrite dispatches a (possibly partial) record write key by key.
// Unknown keys fail with ErrTypeMismatch; a key mapping to a read-only
// cell fails with ErrReadOnly. Dispatch order is sorted by key for
// determinism.
func (m *Merged) applyWrite(v, _ map[string]any) error {
	keys := make([]string, 0, len(v))
	for k := range v {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		nv := v[k]
		if cell, ok := m.cells[k]; ok {
			if anyEquals(nv, cell.GetAny()) {
				continue
			}
			w, ok := cell.(AnyWritable)
			if !ok {
				return fmt.Errorf("reval: merged key %q is read-only: %w", k, ErrReadOnly)
			}
			if err := w.SetAny(nv); err != nil {
				return err
			}
			continue
		}

		m.mu.Lock()
		_, isLiteral := m.literals[k]
		if isLiteral {
			m.literals[k] = nv
		}
		m.mu.Unlock()
		if !isLiteral {
			return fmt.Errorf("reval: merged record has no key %q: %w", k, ErrTypeMismatch)
		}
	}
	return nil
}
