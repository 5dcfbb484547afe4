package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// IDMap is an id-keyed map that remembers insertion order.
// It encodes as a JSON object whose keys follow that order, so ranked
// results keep their ranking on the wire. The zero value is ready to use.
type IDMap[T any] struct {
	keys   []int64
	values map[int64]T
}

// NewIDMap returns an empty map with room for n entries
func NewIDMap[T any](n int) IDMap[T] {
	return IDMap[T]{
		keys:   make([]int64, 0, n),
		values: make(map[int64]T, n),
	}
}

// Set stores v under id; an existing id keeps its position
func (m *IDMap[T]) Set(id int64, v T) {
	if m.values == nil {
		m.values = make(map[int64]T)
	}
	if _, ok := m.values[id]; !ok {
		m.keys = append(m.keys, id)
	}
	m.values[id] = v
}

// Get returns the value stored under id
func (m IDMap[T]) Get(id int64) (T, bool) {
	v, ok := m.values[id]
	return v, ok
}

// Len returns the number of entries
func (m IDMap[T]) Len() int { return len(m.keys) }

// Keys returns the ids in insertion order
func (m IDMap[T]) Keys() []int64 {
	out := make([]int64, len(m.keys))
	copy(out, m.keys)
	return out
}

// Values returns the values in insertion order
func (m IDMap[T]) Values() []T {
	out := make([]T, 0, len(m.keys))
	for _, k := range m.keys {
		out = append(out, m.values[k])
	}
	return out
}

// MarshalJSON implements json.Marshaler
func (m IDMap[T]) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range m.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteByte('"')
		buf.WriteString(strconv.FormatInt(k, 10))
		buf.WriteString(`":`)
		b, err := json.Marshal(m.values[k])
		if err != nil {
			return nil, fmt.Errorf("marshal entry %d: %w", k, err)
		}
		buf.Write(b)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON implements json.Unmarshaler, keeping the document's key order
func (m *IDMap[T]) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		*m = IDMap[T]{}
		return nil
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("id map: expected object, got %v", tok)
	}

	out := NewIDMap[T](0)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, _ := tok.(string)
		id, err := strconv.ParseInt(key, 10, 64)
		if err != nil {
			return fmt.Errorf("id map: invalid key %q", key)
		}
		var v T
		if err := dec.Decode(&v); err != nil {
			return fmt.Errorf("id map: entry %d: %w", id, err)
		}
		out.Set(id, v)
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	*m = out
	return nil
}
