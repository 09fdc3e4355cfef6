package pattern

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"gopkg.in/yaml.v3"
)

// DecodeError reports a malformed structural document.
type DecodeError struct {
	// Path locates the offending node, e.g. "$.cat[1].star".
	Path string

	// Message is a human-readable description.
	Message string
}

// Error implements the error interface.
func (e *DecodeError) Error() string {
	return fmt.Sprintf("pattern %s: %s", e.Path, e.Message)
}

// Decode converts a generically decoded document (from JSON, YAML or CUE)
// into a pattern.
//
// Accepted forms:
//   - a bare string: literal
//   - {lit: "text"}: literal
//   - {hex: "6162"}: literal given as hex bytes
//   - {alt: [node, ...]}: alternation, in priority order
//   - {cat: [node, ...]}: concatenation
//   - {star: node}: repetition
//
// Each map must have exactly one key.
func Decode(v any) (Node, error) {
	return decodeAt("$", v)
}

func decodeAt(path string, v any) (Node, error) {
	switch val := v.(type) {
	case string:
		return Lit(val), nil
	case map[string]any:
		return decodeObject(path, val)
	case map[any]any:
		obj := make(map[string]any, len(val))
		for k, elem := range val {
			key, ok := k.(string)
			if !ok {
				return nil, &DecodeError{Path: path, Message: fmt.Sprintf("non-string key %v", k)}
			}
			obj[key] = elem
		}
		return decodeObject(path, obj)
	case nil:
		return nil, &DecodeError{Path: path, Message: "null is not a pattern"}
	default:
		return nil, &DecodeError{Path: path, Message: fmt.Sprintf("unsupported value of type %T", v)}
	}
}

func decodeObject(path string, obj map[string]any) (Node, error) {
	if len(obj) != 1 {
		keys := make([]string, 0, len(obj))
		for k := range obj {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		return nil, &DecodeError{
			Path:    path,
			Message: fmt.Sprintf("node must have exactly one key, got [%s]", strings.Join(keys, ", ")),
		}
	}

	for key, val := range obj {
		sub := path + "." + key
		switch key {
		case KeyLiteral:
			s, ok := val.(string)
			if !ok {
				return nil, &DecodeError{Path: sub, Message: fmt.Sprintf("literal must be a string, got %T", val)}
			}
			return Lit(s), nil

		case KeyLiteralHex:
			s, ok := val.(string)
			if !ok {
				return nil, &DecodeError{Path: sub, Message: fmt.Sprintf("hex literal must be a string, got %T", val)}
			}
			raw, err := hex.DecodeString(s)
			if err != nil {
				return nil, &DecodeError{Path: sub, Message: fmt.Sprintf("invalid hex: %v", err)}
			}
			return Lit(string(raw)), nil

		case KeyAlternation:
			nodes, err := decodeList(sub, val)
			if err != nil {
				return nil, err
			}
			return Alternation{Branches: nodes}, nil

		case KeyConcatenation:
			nodes, err := decodeList(sub, val)
			if err != nil {
				return nil, err
			}
			return Concatenation{Parts: nodes}, nil

		case KeyRepetition:
			inner, err := decodeAt(sub, val)
			if err != nil {
				return nil, err
			}
			return Star(inner), nil

		default:
			return nil, &DecodeError{Path: path, Message: fmt.Sprintf("unknown node kind %q", key)}
		}
	}
	panic("unreachable")
}

func decodeList(path string, v any) ([]Node, error) {
	if v == nil {
		return nil, nil
	}
	list, ok := v.([]any)
	if !ok {
		return nil, &DecodeError{Path: path, Message: fmt.Sprintf("expected a list, got %T", v)}
	}
	if len(list) == 0 {
		return nil, nil
	}
	nodes := make([]Node, len(list))
	for i, elem := range list {
		n, err := decodeAt(fmt.Sprintf("%s[%d]", path, i), elem)
		if err != nil {
			return nil, err
		}
		nodes[i] = n
	}
	return nodes, nil
}

// Encode converts a pattern into its generic structural form, the inverse
// of Decode. Literals are always written in the {lit: ...} form (or
// {hex: ...} when not valid UTF-8).
func Encode(n Node) any {
	switch x := n.(type) {
	case Literal:
		if !utf8.ValidString(x.Text) {
			return map[string]any{KeyLiteralHex: hex.EncodeToString([]byte(x.Text))}
		}
		return map[string]any{KeyLiteral: x.Text}
	case Alternation:
		return map[string]any{KeyAlternation: encodeList(x.Branches)}
	case Concatenation:
		return map[string]any{KeyConcatenation: encodeList(x.Parts)}
	case Repetition:
		return map[string]any{KeyRepetition: Encode(x.Inner)}
	default:
		return nil
	}
}

func encodeList(nodes []Node) []any {
	out := make([]any, len(nodes))
	for i, n := range nodes {
		out[i] = Encode(n)
	}
	return out
}

// Document wraps a pattern so it can be embedded in YAML or JSON files.
type Document struct {
	Node Node
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Document) UnmarshalYAML(value *yaml.Node) error {
	var raw any
	if err := value.Decode(&raw); err != nil {
		return err
	}
	n, err := Decode(raw)
	if err != nil {
		return err
	}
	d.Node = n
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (d Document) MarshalYAML() (any, error) {
	if d.Node == nil {
		return nil, fmt.Errorf("pattern document is empty")
	}
	return Encode(d.Node), nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (d *Document) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	n, err := Decode(raw)
	if err != nil {
		return err
	}
	d.Node = n
	return nil
}

// MarshalJSON implements json.Marshaler using the canonical encoding.
func (d Document) MarshalJSON() ([]byte, error) {
	if d.Node == nil {
		return nil, fmt.Errorf("pattern document is empty")
	}
	return MarshalCanonical(d.Node)
}

// UnmarshalCanonical decodes the output of MarshalCanonical.
func UnmarshalCanonical(data []byte) (Node, error) {
	var d Document
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, err
	}
	return d.Node, nil
}
