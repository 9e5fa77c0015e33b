package mapping

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// Pair is one entry of a flat mapping object.
type Pair struct {
	Source string `json:"source" yaml:"source"`
	Target string `json:"target" yaml:"target"`
}

// FlatMapping is the persisted and exchanged shape of a rule set: a JSON
// object of dotted source path to dotted target path. Unlike a Go map it
// keeps the object's key order, which is the rule order.
type FlatMapping []Pair

// FlatFromMap builds a FlatMapping from ordered keys and a lookup map. Keys
// missing from m are skipped.
func FlatFromMap(keys []string, m map[string]string) FlatMapping {
	out := make(FlatMapping, 0, len(keys))
	for _, k := range keys {
		if v, ok := m[k]; ok {
			out = append(out, Pair{Source: k, Target: v})
		}
	}
	return out
}

// Get returns the target mapped from source.
func (f FlatMapping) Get(source string) (string, bool) {
	for _, p := range f {
		if p.Source == source {
			return p.Target, true
		}
	}
	return "", false
}

// Keys returns the source keys in order.
func (f FlatMapping) Keys() []string {
	keys := make([]string, len(f))
	for i, p := range f {
		keys[i] = p.Source
	}
	return keys
}

// Map returns the mapping as an unordered Go map.
func (f FlatMapping) Map() map[string]string {
	m := make(map[string]string, len(f))
	for _, p := range f {
		m[p.Source] = p.Target
	}
	return m
}

// Equal reports whether both mappings hold the same pairs in the same order.
func (f FlatMapping) Equal(other FlatMapping) bool {
	if len(f) != len(other) {
		return false
	}
	for i := range f {
		if f[i] != other[i] {
			return false
		}
	}
	return true
}

// MarshalJSON encodes the mapping as a JSON object in pair order.
func (f FlatMapping) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)

	out := bytes.NewBufferString("{")
	for i, p := range f {
		if i > 0 {
			out.WriteByte(',')
		}
		for j, s := range [2]string{p.Source, p.Target} {
			buf.Reset()
			if err := enc.Encode(s); err != nil {
				return nil, err
			}
			out.Write(bytes.TrimRight(buf.Bytes(), "\n"))
			if j == 0 {
				out.WriteByte(':')
			}
		}
	}
	out.WriteByte('}')
	return out.Bytes(), nil
}

// UnmarshalJSON decodes a JSON object keeping its key order. Non-string
// values, duplicate keys and non-object documents are rejected with a
// *MalformedInputError naming the key.
func (f *FlatMapping) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return &MalformedInputError{Reason: "invalid JSON: " + err.Error(), Err: err}
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return &MalformedInputError{Reason: fmt.Sprintf("expected a JSON object, got %s", describeToken(tok))}
	}

	out := FlatMapping{}
	seen := make(map[string]struct{})
	for dec.More() {
		tok, err = dec.Token()
		if err != nil {
			return &MalformedInputError{Reason: "invalid JSON: " + err.Error(), Err: err}
		}
		key, ok := tok.(string)
		if !ok {
			return &MalformedInputError{Reason: "object key is not a string"}
		}
		if _, dup := seen[key]; dup {
			return &MalformedInputError{Key: key, Reason: "key appears more than once"}
		}
		seen[key] = struct{}{}

		tok, err = dec.Token()
		if err != nil {
			return &MalformedInputError{Key: key, Reason: "invalid JSON: " + err.Error(), Err: err}
		}
		val, ok := tok.(string)
		if !ok {
			return &MalformedInputError{Key: key, Reason: "value must be a string, got " + describeToken(tok)}
		}
		out = append(out, Pair{Source: key, Target: val})
	}

	// closing brace
	if _, err := dec.Token(); err != nil {
		return &MalformedInputError{Reason: "invalid JSON: " + err.Error(), Err: err}
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return &MalformedInputError{Reason: "unexpected data after the mapping object"}
	}

	*f = out
	return nil
}

func describeToken(tok json.Token) string {
	switch v := tok.(type) {
	case json.Delim:
		if v == '{' || v == '}' {
			return "an object"
		}
		return "an array"
	case string:
		return "a string"
	case json.Number, float64:
		return "a number"
	case bool:
		return "a boolean"
	case nil:
		return "null"
	default:
		return fmt.Sprintf("%T", tok)
	}
}
