// ABOUTME: Related record wrapper for embedded joins
// ABOUTME: Makes "joined row present" and "no joined row" explicit branches
package models

import "encoding/json"

// Related carries a record embedded by a join. The zero value means the join
// produced no row.
type Related[T any] struct {
	value T
	ok    bool
}

// Embed wraps a joined record.
func Embed[T any](v T) Related[T] {
	return Related[T]{value: v, ok: true}
}

// Get returns the embedded record and whether one is present.
func (r Related[T]) Get() (T, bool) {
	return r.value, r.ok
}

// Present reports whether a record is embedded.
func (r Related[T]) Present() bool {
	return r.ok
}

func (r Related[T]) MarshalJSON() ([]byte, error) {
	if !r.ok {
		return []byte("null"), nil
	}
	return json.Marshal(r.value)
}

func (r *Related[T]) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*r = Related[T]{}
		return nil
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*r = Embed(v)
	return nil
}
