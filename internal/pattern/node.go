package pattern

import (
	"strings"
)

// Node is a sealed interface over the pattern node kinds.
// Only Literal, Alternation, Concatenation and Repetition implement it.
type Node interface {
	patternNode() // Sealed - only these types implement it
	String() string
}

// Literal matches an exact run of bytes.
type Literal struct {
	Text string
}

func (Literal) patternNode() {}

// Alternation matches the first branch that leads to an overall match.
// Branch order is backtrack priority: earlier branches are tried first.
type Alternation struct {
	Branches []Node
}

func (Alternation) patternNode() {}

// Concatenation matches its parts contiguously, in order.
type Concatenation struct {
	Parts []Node
}

func (Concatenation) patternNode() {}

// Repetition matches zero or more repetitions of Inner, greedily.
type Repetition struct {
	Inner Node
}

func (Repetition) patternNode() {}

// Lit creates a Literal node.
func Lit(text string) Literal {
	return Literal{Text: text}
}

// Alt creates an Alternation from branches in priority order.
// The slice is copied so callers cannot mutate the node afterwards.
func Alt(branches ...Node) Alternation {
	return Alternation{Branches: cloneNodes(branches)}
}

// Concat creates a Concatenation from parts in order.
// The slice is copied so callers cannot mutate the node afterwards.
func Concat(parts ...Node) Concatenation {
	return Concatenation{Parts: cloneNodes(parts)}
}

// Star creates a Repetition of inner.
func Star(inner Node) Repetition {
	return Repetition{Inner: inner}
}

func cloneNodes(nodes []Node) []Node {
	if len(nodes) == 0 {
		return nil
	}
	out := make([]Node, len(nodes))
	copy(out, nodes)
	return out
}

// Nullable reports whether n can match the empty string.
//
//   - Literal: only the empty literal
//   - Alternation: any branch nullable (empty alternation: false)
//   - Concatenation: every part nullable (empty concatenation: true)
//   - Repetition: always
func Nullable(n Node) bool {
	switch x := n.(type) {
	case Literal:
		return x.Text == ""
	case Alternation:
		for _, b := range x.Branches {
			if Nullable(b) {
				return true
			}
		}
		return false
	case Concatenation:
		for _, p := range x.Parts {
			if !Nullable(p) {
				return false
			}
		}
		return true
	case Repetition:
		return true
	default:
		return false
	}
}

// Size returns the number of nodes in the tree rooted at n.
func Size(n Node) int {
	switch x := n.(type) {
	case Alternation:
		total := 1
		for _, b := range x.Branches {
			total += Size(b)
		}
		return total
	case Concatenation:
		total := 1
		for _, p := range x.Parts {
			total += Size(p)
		}
		return total
	case Repetition:
		return 1 + Size(x.Inner)
	default:
		return 1
	}
}

// Literals returns the texts of every literal in n, in tree order.
func Literals(n Node) []string {
	var out []string
	Walk(n, func(node Node) {
		if lit, ok := node.(Literal); ok {
			out = append(out, lit.Text)
		}
	})
	return out
}

// Walk calls fn for n and every descendant, parents first.
func Walk(n Node, fn func(Node)) {
	fn(n)
	switch x := n.(type) {
	case Alternation:
		for _, b := range x.Branches {
			Walk(b, fn)
		}
	case Concatenation:
		for _, p := range x.Parts {
			Walk(p, fn)
		}
	case Repetition:
		Walk(x.Inner, fn)
	}
}

// String renders the literal in regex-like notation for display.
func (l Literal) String() string {
	if l.Text == "" {
		return "()"
	}
	return escapeLiteral(l.Text)
}

// String renders the alternation as (a|b|c). The empty alternation is ∅.
func (a Alternation) String() string {
	if len(a.Branches) == 0 {
		return "∅"
	}
	parts := make([]string, len(a.Branches))
	for i, b := range a.Branches {
		parts[i] = b.String()
	}
	return "(" + strings.Join(parts, "|") + ")"
}

// String renders the concatenation by juxtaposition. The empty concatenation is ().
func (c Concatenation) String() string {
	if len(c.Parts) == 0 {
		return "()"
	}
	var sb strings.Builder
	for _, p := range c.Parts {
		sb.WriteString(p.String())
	}
	return sb.String()
}

// String renders the repetition with a postfix star.
func (r Repetition) String() string {
	inner := r.Inner.String()
	if needsGroup(r.Inner) {
		inner = "(" + inner + ")"
	}
	return inner + "*"
}

// needsGroup reports whether a star operand must be parenthesized.
func needsGroup(n Node) bool {
	switch x := n.(type) {
	case Literal:
		return len([]rune(x.Text)) > 1
	case Concatenation:
		return len(x.Parts) > 0
	case Repetition:
		return true
	default:
		return false
	}
}

const metaChars = `\|()*∅`

func escapeLiteral(s string) string {
	if !strings.ContainsAny(s, metaChars) {
		return s
	}
	var sb strings.Builder
	for _, r := range s {
		if strings.ContainsRune(metaChars, r) {
			sb.WriteByte('\\')
		}
		sb.WriteRune(r)
	}
	return sb.String()
}
