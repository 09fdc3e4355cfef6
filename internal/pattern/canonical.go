package pattern

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"unicode/utf8"
)

// Document keys for the structural form of each node kind.
const (
	KeyLiteral       = "lit"
	KeyLiteralHex    = "hex"
	KeyAlternation   = "alt"
	KeyConcatenation = "cat"
	KeyRepetition    = "star"
)

// MarshalCanonical produces the canonical JSON encoding of a pattern.
// This is the ONLY serialization used for fingerprints and for patterns
// persisted by the store.
//
// Every node is a single-key object:
//
//	{"lit":"abc"}  {"alt":[...]}  {"cat":[...]}  {"star":{...}}
//
// Literals that are not valid UTF-8 are encoded as {"hex":"..."} so that
// distinct byte strings never share an encoding. HTML characters are not
// escaped and no whitespace is emitted.
func MarshalCanonical(n Node) ([]byte, error) {
	var buf bytes.Buffer
	if err := marshalCanonical(&buf, n); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func marshalCanonical(buf *bytes.Buffer, n Node) error {
	switch x := n.(type) {
	case Literal:
		if !utf8.ValidString(x.Text) {
			buf.WriteString(`{"hex":"`)
			buf.WriteString(hex.EncodeToString([]byte(x.Text)))
			buf.WriteString(`"}`)
			return nil
		}
		buf.WriteString(`{"lit":`)
		s, err := marshalCanonicalString(x.Text)
		if err != nil {
			return fmt.Errorf("literal: %w", err)
		}
		buf.Write(s)
		buf.WriteByte('}')
		return nil

	case Alternation:
		buf.WriteString(`{"alt":`)
		if err := marshalCanonicalList(buf, x.Branches); err != nil {
			return fmt.Errorf("alt%w", err)
		}
		buf.WriteByte('}')
		return nil

	case Concatenation:
		buf.WriteString(`{"cat":`)
		if err := marshalCanonicalList(buf, x.Parts); err != nil {
			return fmt.Errorf("cat%w", err)
		}
		buf.WriteByte('}')
		return nil

	case Repetition:
		buf.WriteString(`{"star":`)
		if err := marshalCanonical(buf, x.Inner); err != nil {
			return fmt.Errorf("star: %w", err)
		}
		buf.WriteByte('}')
		return nil

	default:
		return fmt.Errorf("unsupported pattern node: %T", n)
	}
}

func marshalCanonicalList(buf *bytes.Buffer, nodes []Node) error {
	buf.WriteByte('[')
	for i, n := range nodes {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := marshalCanonical(buf, n); err != nil {
			return fmt.Errorf("[%d]: %w", i, err)
		}
	}
	buf.WriteByte(']')
	return nil
}

// marshalCanonicalString encodes s as a JSON string without HTML escaping.
func marshalCanonicalString(s string) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return nil, err
	}
	// json.Encoder adds trailing newline, remove it
	return bytes.TrimSuffix(buf.Bytes(), []byte{'\n'}), nil
}

// MustMarshalCanonical is like MarshalCanonical but panics on error.
// Use only in tests or when the pattern is known to be well-formed.
func MustMarshalCanonical(n Node) []byte {
	data, err := MarshalCanonical(n)
	if err != nil {
		panic(err)
	}
	return data
}
