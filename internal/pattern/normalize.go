package pattern

import (
	"golang.org/x/text/unicode/norm"
)

// Normalize returns a copy of n with every literal rewritten into the given
// Unicode normalization form. Matching stays exact byte equality; callers
// that want canonically-equivalent text to match normalize the subject with
// the same form.
func Normalize(n Node, form norm.Form) Node {
	switch x := n.(type) {
	case Literal:
		return Lit(form.String(x.Text))
	case Alternation:
		return Alternation{Branches: normalizeList(x.Branches, form)}
	case Concatenation:
		return Concatenation{Parts: normalizeList(x.Parts, form)}
	case Repetition:
		return Star(Normalize(x.Inner, form))
	default:
		return n
	}
}

func normalizeList(nodes []Node, form norm.Form) []Node {
	if len(nodes) == 0 {
		return nil
	}
	out := make([]Node, len(nodes))
	for i, n := range nodes {
		out[i] = Normalize(n, form)
	}
	return out
}
