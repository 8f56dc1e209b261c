// Package canonical produces a deterministic byte serialization of JSON
// documents: object keys sorted lexicographically at every depth, compact
// separators, UTF-8 output. Logically equal documents always serialize to
// identical bytes, which is the property every signature and anchor digest
// in this module is built on.
package canonical

import (
	"bytes"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"sort"
)

// Transform rewrites a JSON document into its canonical form.
func Transform(raw []byte) ([]byte, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("failed to canonicalize: input is empty")
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var doc interface{}
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to canonicalize: invalid JSON: %w", err)
	}
	if dec.More() {
		return nil, fmt.Errorf("failed to canonicalize: trailing data after JSON document")
	}

	var buf bytes.Buffer
	if err := writeValue(&buf, doc); err != nil {
		return nil, fmt.Errorf("failed to canonicalize: %w", err)
	}

	return buf.Bytes(), nil
}

// Marshal serializes a Go value and rewrites it into canonical form.
func Marshal(v interface{}) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal value: %w", err)
	}

	return Transform(data)
}

// Digest computes the SHA-256 digest of the input data.
func Digest(data []byte) [32]byte {
	return sha256.Sum256(data)
}

func writeValue(buf *bytes.Buffer, v interface{}) error {
	switch t := v.(type) {
	case nil:
		buf.WriteString("null")
	case bool:
		if t {
			buf.WriteString("true")
		} else {
			buf.WriteString("false")
		}
	case json.Number:
		buf.WriteString(t.String())
	case string:
		return writeString(buf, t)
	case []interface{}:
		buf.WriteByte('[')
		for i, item := range t {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeValue(buf, item); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	case map[string]interface{}:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		buf.WriteByte('{')
		for i, k := range keys {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeString(buf, k); err != nil {
				return err
			}
			buf.WriteByte(':')
			if err := writeValue(buf, t[k]); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
	default:
		return fmt.Errorf("unsupported JSON value of type %T", v)
	}

	return nil
}

// writeString encodes a string without the HTML escaping json.Marshal
// applies to <, > and &, so canonical bytes match other implementations.
func writeString(buf *bytes.Buffer, s string) error {
	var scratch bytes.Buffer
	enc := json.NewEncoder(&scratch)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return fmt.Errorf("failed to encode string: %w", err)
	}

	buf.Write(bytes.TrimRight(scratch.Bytes(), "\n"))

	return nil
}
