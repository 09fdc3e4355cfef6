// Package pattern provides the abstract syntax of minrx patterns.
//
// A pattern is an immutable tree over four node kinds: Literal, Alternation,
// Concatenation and Repetition. This package holds the node types, their
// constructors and the pure functions over them (nullability, canonical
// encoding, fingerprints, structural decoding, normalization). It imports
// nothing internal; the compiler, the VM and the reference matcher all build
// on it.
//
// Degenerate nodes are legal:
//   - An empty Concatenation matches only the empty remainder.
//   - An empty Alternation never matches.
//
// There is no textual regex syntax. Patterns are built with Lit, Alt, Concat
// and Star, or decoded from the structural document form (see Decode).
package pattern
