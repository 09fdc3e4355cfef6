// Package compiler lowers pattern trees into bytecode programs.
//
// Compile is a pure, total function: every pattern has an encoding, and the
// same pattern always yields an identical program. Recursion depth depends
// only on pattern depth, never on subject length.
//
// Encodings (offsets are relative to the branching instruction):
//
//	Literal t           Consume t
//	Concatenation ps    code(p1) code(p2) ... (no glue)
//	Repetition x        Fork exit; code(x); Jump back-to-Fork
//	Alternation bs      Fork next; code(b1); Jump end
//	                    Fork next; code(b2); Jump end
//	                    ...
//	                    Fail
//
// The preferred path is always the fall-through (pc+1) and the fallback is
// the pushed alternative: earlier branches beat later ones, and one more
// repetition beats stopping.
//
// A repetition whose body can match the empty string would let the VM loop
// forever without consuming input. Such bodies are compiled from their
// non-empty restriction instead (see lower.go); x* and (x minus ε)* accept
// the same strings, so verdicts are unchanged and every loop in a compiled
// program consumes at least one byte per iteration.
package compiler
