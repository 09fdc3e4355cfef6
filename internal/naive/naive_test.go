package naive

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/roach88/minrx/internal/pattern"
)

var (
	lit    = pattern.Lit
	alt    = pattern.Alt
	concat = pattern.Concat
	star   = pattern.Star
)

func TestMatchPrefix(t *testing.T) {
	tests := []struct {
		name     string
		node     pattern.Node
		subject  string
		wantRest string
		wantOK   bool
	}{
		{"literal prefix", lit("ab"), "abc", "c", true},
		{"literal mismatch", lit("ab"), "ac", "", false},
		{"literal longer than subject", lit("abc"), "ab", "", false},
		{"empty literal", lit(""), "xyz", "xyz", true},
		{"alt first success wins", alt(lit("a"), lit("ab")), "abc", "bc", true},
		{"alt falls through", alt(lit("x"), lit("ab")), "abc", "c", true},
		{"empty alt", alt(), "x", "", false},
		{"concat threads suffix", concat(lit("a"), lit("b")), "abc", "c", true},
		{"concat part fails", concat(lit("a"), lit("x")), "abc", "", false},
		{"empty concat", concat(), "x", "x", true},
		{"star greedy", star(lit("a")), "aab", "b", true},
		{"star zero times", star(lit("a")), "b", "b", true},
		{"star of empty literal stops", star(lit("")), "x", "x", true},
		{"star of star stops", star(star(lit("a"))), "aab", "b", true},
		{"star never gives back", concat(star(lit("a")), lit("a")), "aa", "", false},
		{"alt never revisited", concat(alt(lit("a"), lit("ab")), lit("c")), "abc", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rest, ok := MatchPrefix(tt.node, tt.subject)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantRest, rest)
		})
	}
}

func TestMatchPossessive(t *testing.T) {
	assert.True(t, MatchPossessive(star(alt(lit("a"), lit("b"))), "abba"))
	assert.False(t, MatchPossessive(lit("ab"), "abc"))
	assert.False(t, MatchPossessive(concat(star(lit("a")), lit("a")), "aa"))
}

func TestPrefixes_Order(t *testing.T) {
	tests := []struct {
		name    string
		node    pattern.Node
		subject string
		want    []string
	}{
		{"star prefers more", star(lit("a")), "aaa", []string{"", "a", "aa", "aaa"}},
		{"alt in branch order", alt(lit("a"), lit("ab"), lit("")), "abc", []string{"bc", "c", "abc"}},
		{"repeated remainders", concat(star(alt(lit("a"), lit("aa"))), lit("")), "aa", []string{"", "a", "", "aa"}},
		{"no match", lit("x"), "abc", nil},
		{"empty alt", alt(), "abc", nil},
		{"star of empty literal", star(lit("")), "ab", []string{"ab"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got []string
			complete := Prefixes(tt.node, tt.subject, func(rest string) bool {
				got = append(got, rest)
				return true
			})
			assert.True(t, complete)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPrefixes_StopsEarly(t *testing.T) {
	var got []string
	complete := Prefixes(star(lit("a")), "aaa", func(rest string) bool {
		got = append(got, rest)
		return len(got) < 2
	})

	assert.False(t, complete)
	assert.Equal(t, []string{"", "a"}, got)
}

func TestMatch(t *testing.T) {
	abc := star(alt(lit("a"), lit("b"), lit("c")))
	nested := star(concat(abc, abc))

	tests := []struct {
		name    string
		node    pattern.Node
		subject string
		want    bool
	}{
		{"literal", lit("test"), "test", true},
		{"literal trailing", lit("test"), "testx", false},
		{"empty alt", alt(), "", false},
		{"empty concat", concat(), "", true},
		{"star backtracks", concat(star(lit("a")), lit("a")), "aa", true},
		{"star needs one", concat(star(lit("a")), lit("a")), "", false},
		{"alt backtracks", concat(alt(lit("a"), lit("ab")), lit("c")), "abc", true},
		{"nested", nested, "aaaabbbb", true},
		{"nested empty", nested, "", true},
		{"nested foreign", nested, "abd", false},
		{"star of nullable", star(alt(lit(""), lit("ab"))), "abab", true},
		{"star of star", star(star(lit("a"))), "aaa", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Match(tt.node, tt.subject))
		})
	}
}

func TestMatch_AgreesWithPossessiveWhenUnambiguous(t *testing.T) {
	// With a single literal per alternation and no star followed by text
	// its body can start with, committing never loses a match.
	node := concat(lit("<"), star(alt(lit("a"), lit("b"))), lit(">"))

	for _, s := range []string{"<>", "<ab>", "<abba>", "<abc>", "<a", "ab>"} {
		assert.Equal(t, MatchPossessive(node, s), Match(node, s), s)
	}
}

func TestNilNodePanics(t *testing.T) {
	assert.Panics(t, func() { MatchPrefix(nil, "") })
	assert.Panics(t, func() { Prefixes(nil, "", func(string) bool { return true }) })
}

func BenchmarkMatch(b *testing.B) {
	n := lit("test")
	for b.Loop() {
		if !Match(n, "test") {
			b.Fatal("no match")
		}
	}
}
