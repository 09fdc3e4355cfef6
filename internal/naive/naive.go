package naive

import (
	"fmt"
	"strings"

	"github.com/roach88/minrx/internal/pattern"
)

// MatchPrefix possessively matches n against a prefix of subject and
// returns the unconsumed remainder. The boolean is false when n does not
// match at the start of subject.
//
// An iteration of a repetition that consumes nothing ends the loop, so
// MatchPrefix terminates on every pattern.
func MatchPrefix(n pattern.Node, subject string) (string, bool) {
	switch x := n.(type) {
	case pattern.Literal:
		if strings.HasPrefix(subject, x.Text) {
			return subject[len(x.Text):], true
		}
		return "", false

	case pattern.Alternation:
		for _, b := range x.Branches {
			if rest, ok := MatchPrefix(b, subject); ok {
				return rest, true
			}
		}
		return "", false

	case pattern.Concatenation:
		rest := subject
		for _, part := range x.Parts {
			next, ok := MatchPrefix(part, rest)
			if !ok {
				return "", false
			}
			rest = next
		}
		return rest, true

	case pattern.Repetition:
		rest := subject
		for {
			next, ok := MatchPrefix(x.Inner, rest)
			if !ok || len(next) == len(rest) {
				return rest, true
			}
			rest = next
		}

	default:
		panic(fmt.Sprintf("naive: unsupported pattern node %T", n))
	}
}

// MatchPossessive reports whether the possessive reading of n consumes the
// whole of subject.
func MatchPossessive(n pattern.Node, subject string) bool {
	rest, ok := MatchPrefix(n, subject)
	return ok && rest == ""
}

// Prefixes calls yield with the remainder of subject after each way n can
// match a prefix of it, in the order the VM would explore them: earlier
// alternation branches first, one more repetition before stopping. The
// same remainder may be yielded more than once. Enumeration stops early
// when yield returns false; Prefixes reports whether it ran to completion.
//
// Repetition iterations that consume nothing are skipped. They cannot
// change which strings match and skipping them keeps enumeration finite.
func Prefixes(n pattern.Node, subject string, yield func(rest string) bool) bool {
	switch x := n.(type) {
	case pattern.Literal:
		if strings.HasPrefix(subject, x.Text) {
			return yield(subject[len(x.Text):])
		}
		return true

	case pattern.Alternation:
		for _, b := range x.Branches {
			if !Prefixes(b, subject, yield) {
				return false
			}
		}
		return true

	case pattern.Concatenation:
		return sequence(x.Parts, subject, yield)

	case pattern.Repetition:
		return repeat(x.Inner, subject, yield)

	default:
		panic(fmt.Sprintf("naive: unsupported pattern node %T", n))
	}
}

func sequence(parts []pattern.Node, subject string, yield func(string) bool) bool {
	if len(parts) == 0 {
		return yield(subject)
	}
	return Prefixes(parts[0], subject, func(rest string) bool {
		return sequence(parts[1:], rest, yield)
	})
}

func repeat(inner pattern.Node, subject string, yield func(string) bool) bool {
	more := Prefixes(inner, subject, func(rest string) bool {
		if len(rest) == len(subject) {
			return true
		}
		return repeat(inner, rest, yield)
	})
	if !more {
		return false
	}
	return yield(subject)
}

// Match reports whether n matches the whole of subject, backtracking
// through every alternative. It agrees with the compiled program on every
// input.
func Match(n pattern.Node, subject string) bool {
	matched := false
	Prefixes(n, subject, func(rest string) bool {
		if rest == "" {
			matched = true
			return false
		}
		return true
	})
	return matched
}
