// Package vm executes compiled programs against subject strings.
//
// The machine is a backtracking interpreter with an explicit LIFO stack of
// threads. A thread is a (pc, cursor) pair. Fork pushes the branch target
// as a fallback and continues at pc+1; the most recently pushed fallback is
// resumed first when a thread dies. A run accepts as soon as any thread
// reaches pc == len(program) with cursor == len(subject). Stack depth is
// bounded by heap memory, never by the Go call stack.
//
// The cursor is a byte offset into the subject and Consume compares bytes
// exactly. Programs produced by the compiler always terminate; hand-built
// programs may not, and callers running them should set WithMaxSteps.
package vm
