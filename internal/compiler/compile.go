package compiler

import (
	"fmt"

	"github.com/roach88/minrx/internal/bytecode"
	"github.com/roach88/minrx/internal/pattern"
)

// Compile lowers a pattern into an immutable program.
//
// Compile panics if the tree contains a nil node; every other pattern,
// including empty alternations and concatenations, compiles.
func Compile(n pattern.Node) *bytecode.Program {
	return bytecode.New(compileNode(n))
}

func compileNode(n pattern.Node) []bytecode.Instruction {
	switch x := n.(type) {
	case pattern.Literal:
		return []bytecode.Instruction{bytecode.Consume(x.Text)}

	case pattern.Concatenation:
		var code []bytecode.Instruction
		for _, part := range x.Parts {
			code = append(code, compileNode(part)...)
		}
		return code

	case pattern.Repetition:
		if pattern.Nullable(x.Inner) {
			return emitStar(compileNonEmpty(x.Inner))
		}
		return emitStar(compileNode(x.Inner))

	case pattern.Alternation:
		bodies := make([][]bytecode.Instruction, len(x.Branches))
		for i, b := range x.Branches {
			bodies[i] = compileNode(b)
		}
		return emitAlternation(bodies)

	default:
		panic(fmt.Sprintf("compiler: unsupported pattern node %T", n))
	}
}

// emitStar emits a greedy zero-or-more loop around body:
//
//	Fork  +len(body)+2   exit, pushed
//	body                 fall-through: one more repetition
//	Jump  -(len(body)+1) back to the Fork
func emitStar(body []bytecode.Instruction) []bytecode.Instruction {
	code := make([]bytecode.Instruction, 0, len(body)+2)
	code = append(code, bytecode.Fork(len(body)+2))
	code = append(code, body...)
	code = append(code, bytecode.Jump(-(len(body) + 1)))
	return code
}

// emitPlus emits a greedy one-or-more loop around body:
//
//	body
//	Fork  +2             exit, pushed
//	Jump  -(len(body)+1) fall-through: back to body
func emitPlus(body []bytecode.Instruction) []bytecode.Instruction {
	code := make([]bytecode.Instruction, 0, len(body)+2)
	code = append(code, body...)
	code = append(code, bytecode.Fork(2))
	code = append(code, bytecode.Jump(-(len(body) + 1)))
	return code
}

// emitAlternation emits an ordered choice between bodies. Each branch is
// guarded by a Fork to the next branch's Fork (or to the trailing Fail) and
// ends with a Jump past the Fail. With no bodies the result is a lone Fail.
func emitAlternation(bodies [][]bytecode.Instruction) []bytecode.Instruction {
	total := 1
	for _, body := range bodies {
		total += len(body) + 2
	}

	code := make([]bytecode.Instruction, 0, total)
	for _, body := range bodies {
		code = append(code, bytecode.Fork(len(body)+2))
		code = append(code, body...)
		code = append(code, bytecode.Jump(total-len(code)))
	}
	code = append(code, bytecode.Fail())
	return code
}
