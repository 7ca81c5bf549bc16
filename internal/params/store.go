// Package params implements the layered parameter store used to fill
// scheduler headers and task command lines.
//
// A Store is one layer (cluster defaults, job overrides or task overrides).
// Layers are combined with Overlay; the later layer shadows the earlier one
// key by key and nothing is ever removed. A key set to nil shadows lower
// layers and reads as absent.
package params

import (
	"fmt"
	"strconv"
)

// Store is an ordered key/value layer.
type Store struct {
	keys   []string
	values map[string]any
}

// New returns an empty store.
func New() *Store {
	return &Store{values: make(map[string]any)}
}

// FromMap builds a store from m. Go maps are unordered, so keys are
// inserted in the order given by order; keys of m missing from order are
// appended in no particular order.
func FromMap(m map[string]any, order ...string) *Store {
	s := New()
	for _, k := range order {
		if v, ok := m[k]; ok {
			s.Set(k, v)
		}
	}
	for k, v := range m {
		if !s.Has(k) {
			s.Set(k, v)
		}
	}
	return s
}

// Set assigns key in this layer and returns the store for chaining.
// Only the code building a layer should call Set.
func (s *Store) Set(key string, value any) *Store {
	if _, ok := s.values[key]; !ok {
		s.keys = append(s.keys, key)
	}
	s.values[key] = value
	return s
}

// Has reports whether this layer declares key, even with a nil value.
func (s *Store) Has(key string) bool {
	if s == nil {
		return false
	}
	_, ok := s.values[key]
	return ok
}

// Get returns the value for key. Nil values read as absent.
func (s *Store) Get(key string) (any, bool) {
	if s == nil {
		return nil, false
	}
	v, ok := s.values[key]
	if !ok || v == nil {
		return nil, false
	}
	return v, true
}

// String returns the formatted value for key.
func (s *Store) String(key string) (string, bool) {
	v, ok := s.Get(key)
	if !ok {
		return "", false
	}
	return FormatValue(v), true
}

// Keys returns the keys of the layer in insertion order.
func (s *Store) Keys() []string {
	if s == nil {
		return nil
	}
	out := make([]string, len(s.keys))
	copy(out, s.keys)
	return out
}

// Len returns the number of keys declared in the layer.
func (s *Store) Len() int {
	if s == nil {
		return 0
	}
	return len(s.keys)
}

// Clone returns an independent copy of the layer.
func (s *Store) Clone() *Store {
	out := New()
	if s == nil {
		return out
	}
	for _, k := range s.keys {
		out.Set(k, s.values[k])
	}
	return out
}

// Overlay returns a new store where layer shadows s. Neither input is modified.
// Key order is first appearance: keys of s first, then new keys of layer.
func (s *Store) Overlay(layer *Store) *Store {
	out := s.Clone()
	if layer == nil {
		return out
	}
	for _, k := range layer.keys {
		out.Set(k, layer.values[k])
	}
	return out
}

// Require fails with a MissingParameterError naming every absent key.
func (s *Store) Require(keys ...string) error {
	var missing []string
	for _, k := range keys {
		if _, ok := s.Get(k); !ok {
			missing = append(missing, k)
		}
	}
	if len(missing) > 0 {
		return NewMissingParameterError("", missing...)
	}
	return nil
}

// Strings returns every present key formatted for text substitution.
func (s *Store) Strings() map[string]string {
	out := make(map[string]string, s.Len())
	if s == nil {
		return out
	}
	for _, k := range s.keys {
		if v, ok := s.Get(k); ok {
			out[k] = FormatValue(v)
		}
	}
	return out
}

// Map returns the present values keyed by name (nil values are skipped).
func (s *Store) Map() map[string]any {
	out := make(map[string]any, s.Len())
	if s == nil {
		return out
	}
	for _, k := range s.keys {
		if v, ok := s.Get(k); ok {
			out[k] = v
		}
	}
	return out
}

// FormatValue renders a parameter value the way it appears in a script.
func FormatValue(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case uint64:
		return strconv.FormatUint(t, 10)
	case float64:
		return strconv.FormatFloat(t, 'g', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	case Duration:
		return t.String()
	case *Duration:
		return t.String()
	case fmt.Stringer:
		return t.String()
	default:
		return fmt.Sprint(t)
	}
}
