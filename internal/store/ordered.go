package store

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// StringIndex is a string-to-string mapping that remembers insertion order.
// It backs the decree index (date -> path) and the window cache
// (date -> window text), and serializes as a JSON object in that order.
type StringIndex struct {
	keys   []string
	values map[string]string
}

// NewStringIndex creates an empty index
func NewStringIndex() *StringIndex {
	return &StringIndex{values: make(map[string]string)}
}

// Set inserts or replaces key. A replaced key keeps its position.
func (x *StringIndex) Set(key, value string) {
	if _, ok := x.values[key]; !ok {
		x.keys = append(x.keys, key)
	}
	x.values[key] = value
}

// Get returns the value stored under key
func (x *StringIndex) Get(key string) (string, bool) {
	v, ok := x.values[key]
	return v, ok
}

// Has reports whether key is present
func (x *StringIndex) Has(key string) bool {
	_, ok := x.values[key]
	return ok
}

// KeyOf returns the first key, in insertion order, holding value
func (x *StringIndex) KeyOf(value string) (string, bool) {
	for _, k := range x.keys {
		if x.values[k] == value {
			return k, true
		}
	}
	return "", false
}

// Keys returns the keys in insertion order
func (x *StringIndex) Keys() []string {
	out := make([]string, len(x.keys))
	copy(out, x.keys)
	return out
}

// Len returns the number of keys
func (x *StringIndex) Len() int {
	return len(x.keys)
}

// MarshalJSON writes the index as an object in insertion order
func (x *StringIndex) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range x.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := writeKey(&buf, k); err != nil {
			return nil, err
		}
		if err := writeValue(&buf, x.values[k]); err != nil {
			return nil, err
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads an object of strings, keeping the file order
func (x *StringIndex) UnmarshalJSON(data []byte) error {
	fresh := NewStringIndex()
	err := decodeObject(data, func(key string, raw json.RawMessage) error {
		var value string
		if err := json.Unmarshal(raw, &value); err != nil {
			return fmt.Errorf("value of %q is not a string", key)
		}
		fresh.Set(key, value)
		return nil
	})
	if err != nil {
		return err
	}
	*x = *fresh
	return nil
}

// decodeObject walks the members of a JSON object in document order
func decodeObject(data []byte, member func(key string, raw json.RawMessage) error) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("expected JSON object")
	}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("expected object key")
		}
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return fmt.Errorf("value of %q: %w", key, err)
		}
		if err := member(key, raw); err != nil {
			return err
		}
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	return nil
}

func writeKey(buf *bytes.Buffer, key string) error {
	if err := writeValue(buf, key); err != nil {
		return err
	}
	buf.WriteByte(':')
	return nil
}

// writeValue encodes v without HTML escaping so accented names and
// apostrophes stay readable in the files.
func writeValue(buf *bytes.Buffer, v any) error {
	var tmp bytes.Buffer
	enc := json.NewEncoder(&tmp)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return err
	}
	buf.Write(bytes.TrimRight(tmp.Bytes(), "\n"))
	return nil
}
