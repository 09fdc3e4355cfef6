package compiler

import (
	"github.com/roach88/minrx/internal/bytecode"
	"github.com/roach88/minrx/internal/pattern"
)

// compileNonEmpty emits code accepting exactly the non-empty strings that n
// accepts. Every path through the result consumes at least one byte.
//
//	ne(Lit "")          = Fail
//	ne(Alt b1..bn)      = Alt ne(b1)..ne(bn)
//	ne(Cat p1..pn)      = Alt over i of Cat(ne(pi), p(i+1)..pn)
//	ne(Star x)          = Plus ne(x)
//
// Non-nullable nodes are already non-empty and compile unchanged. For a
// nullable concatenation every part is nullable, so every part may be the
// first one to consume.
func compileNonEmpty(n pattern.Node) []bytecode.Instruction {
	if !pattern.Nullable(n) {
		return compileNode(n)
	}

	switch x := n.(type) {
	case pattern.Literal:
		return []bytecode.Instruction{bytecode.Fail()}

	case pattern.Alternation:
		bodies := make([][]bytecode.Instruction, len(x.Branches))
		for i, b := range x.Branches {
			bodies[i] = compileNonEmpty(b)
		}
		return emitAlternation(bodies)

	case pattern.Concatenation:
		if len(x.Parts) == 0 {
			return []bytecode.Instruction{bytecode.Fail()}
		}
		bodies := make([][]bytecode.Instruction, len(x.Parts))
		for i, part := range x.Parts {
			body := compileNonEmpty(part)
			for _, rest := range x.Parts[i+1:] {
				body = append(body, compileNode(rest)...)
			}
			bodies[i] = body
		}
		if len(bodies) == 1 {
			return bodies[0]
		}
		return emitAlternation(bodies)

	case pattern.Repetition:
		if pattern.Nullable(x.Inner) {
			return emitPlus(compileNonEmpty(x.Inner))
		}
		return emitPlus(compileNode(x.Inner))

	default:
		return compileNode(n)
	}
}
