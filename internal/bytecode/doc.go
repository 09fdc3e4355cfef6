// Package bytecode defines the compiled form of a minrx pattern.
//
// A Program is a flat, immutable sequence of four instructions:
//
//	Consume <text>   require the subject at the cursor to start with text
//	Fork    <off>    push (pc+off, cursor) for backtracking, continue at pc+1
//	Jump    <off>    continue at pc+off
//	Fail             kill the current execution state
//
// Branch offsets are relative to the branching instruction's own index, so
// sub-programs compiled in isolation can be spliced by plain append. A
// branch may target any index in [0, Len()]; Len() itself is the accepting
// position.
//
// Programs can be serialized with Marshal/Unmarshal (CBOR). Unmarshal runs
// Validate, so branch targets of decoded programs are always in range.
package bytecode
