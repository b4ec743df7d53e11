package reval

import "sort"

// Record wraps a string-keyed record cell with copy-on-write object
// mutators.
type Record struct {
	*Cell[map[string]any]
}

// NewRecord creates a record cell. A nil initial value becomes an empty
// map.
func NewRecord(initial map[string]any) Record {
	if initial == nil {
		initial = map[string]any{}
	}
	return Record{New(initial)}
}

// Assign merges partial into the record, copy-on-write, in a single Set.
// Keys whose values are unchanged under the equality rule do not force a
// notification when nothing else changed.
func (r Record) Assign(partial map[string]any) {
	_ = r.Update(func(cur map[string]any) map[string]any {
		changed := false
		for k, v := range partial {
			if old, ok := cur[k]; !ok || !anyEquals(v, old) {
				changed = true
				break
			}
		}
		if !changed {
			return cur
		}
		out := copyMap(cur)
		if out == nil {
			out = make(map[string]any, len(partial))
		}
		for k, v := range partial {
			out[k] = v
		}
		return out
	})
}

// SetKey sets one key, copy-on-write.
func (r Record) SetKey(key string, v any) {
	r.Assign(map[string]any{key: v})
}

// GetKey returns the value for key. The second result is false when the
// key is absent.
func (r Record) GetKey(key string) (any, bool) {
	v, ok := r.Get()[key]
	return v, ok
}

// RemoveKey deletes a key, copy-on-write. Absent keys are a no-op.
func (r Record) RemoveKey(key string) {
	_ = r.Update(func(cur map[string]any) map[string]any {
		if _, ok := cur[key]; !ok {
			return cur
		}
		out := make(map[string]any, len(cur))
		for k, v := range cur {
			if k != key {
				out[k] = v
			}
		}
		return out
	})
}

// Keys returns the record's keys in sorted order.
func (r Record) Keys() []string {
	m := r.Get()
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Prop projects one key of the record.
func (r Record) Prop(key string) *Derived[any] {
	return Prop[string, any](r.Cell, key)
}

// PropAt projects the key a cell currently points at.
func (r Record) PropAt(key Readable[string]) *Derived[any] {
	return PropAt[string, any](r.Cell, key)
}
