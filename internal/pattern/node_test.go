package pattern

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNodeSealed(t *testing.T) {
	// Verify all types implement Node (compile-time check via assignment)
	var _ Node = Literal{}
	var _ Node = Alternation{}
	var _ Node = Concatenation{}
	var _ Node = Repetition{Inner: Lit("a")}
}

func TestConstructorsCopyInput(t *testing.T) {
	parts := []Node{Lit("a"), Lit("b")}
	cat := Concat(parts...)
	alt := Alt(parts...)

	parts[0] = Lit("z")

	assert.Equal(t, Lit("a"), cat.Parts[0], "concat must not alias caller slice")
	assert.Equal(t, Lit("a"), alt.Branches[0], "alt must not alias caller slice")
}

func TestConstructorsEmpty(t *testing.T) {
	assert.Empty(t, Alt().Branches)
	assert.Empty(t, Concat().Parts)
}

func TestNullable(t *testing.T) {
	tests := []struct {
		name string
		node Node
		want bool
	}{
		{"empty literal", Lit(""), true},
		{"literal", Lit("a"), false},
		{"empty alternation", Alt(), false},
		{"alternation without empty branch", Alt(Lit("a"), Lit("b")), false},
		{"alternation with empty branch", Alt(Lit("a"), Lit("")), true},
		{"empty concatenation", Concat(), true},
		{"concatenation of nullables", Concat(Star(Lit("a")), Lit("")), true},
		{"concatenation with literal", Concat(Star(Lit("a")), Lit("b")), false},
		{"repetition", Star(Lit("a")), true},
		{"repetition of empty alternation", Star(Alt()), true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Nullable(tc.node))
		})
	}
}

func TestSizeAndLiterals(t *testing.T) {
	n := Concat(Lit("a"), Star(Alt(Lit("b"), Lit("c"))))

	assert.Equal(t, 6, Size(n))
	assert.Equal(t, []string{"a", "b", "c"}, Literals(n))
}

func TestWalkOrder(t *testing.T) {
	n := Alt(Concat(Lit("x")), Star(Lit("y")))

	var kinds []string
	Walk(n, func(node Node) {
		switch node.(type) {
		case Literal:
			kinds = append(kinds, "lit")
		case Alternation:
			kinds = append(kinds, "alt")
		case Concatenation:
			kinds = append(kinds, "cat")
		case Repetition:
			kinds = append(kinds, "star")
		}
	})

	require.Len(t, kinds, 5)
	assert.Equal(t, []string{"alt", "cat", "lit", "star", "lit"}, kinds)
}

func TestString(t *testing.T) {
	tests := []struct {
		node Node
		want string
	}{
		{Lit("abc"), "abc"},
		{Lit(""), "()"},
		{Lit("a|b"), `a\|b`},
		{Alt(Lit("a"), Lit("b")), "(a|b)"},
		{Alt(), "∅"},
		{Concat(), "()"},
		{Star(Lit("a")), "a*"},
		{Star(Lit("ab")), "(ab)*"},
		{Star(Star(Lit("a"))), "(a*)*"},
		{Concat(Lit("a"), Star(Alt(Lit("b"), Lit("c")))), "a(b|c)*"},
	}

	for _, tc := range tests {
		t.Run(tc.want, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.node.String())
		})
	}
}
