// Package naive interprets patterns directly, without compiling them.
//
// It offers two readings of a pattern:
//
//   - MatchPrefix is possessive. Each construct commits to its first
//     successful choice and a later failure never reopens it. Alternation
//     takes the first branch that matches; repetition iterates for as long
//     as the inner pattern matches and consumes.
//   - Prefixes and Match backtrack. Prefixes enumerates every way a
//     pattern can consume a prefix of the subject, in VM priority order,
//     and Match reports whether one of them consumes everything. Match
//     accepts exactly the strings the compiled program accepts and is the
//     oracle for differential testing of the VM.
//
// The two readings disagree whenever a committed choice starves a later
// part of the pattern: a*a rejects "aa" possessively but accepts it with
// backtracking.
package naive
