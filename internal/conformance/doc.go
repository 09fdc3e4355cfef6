// Package conformance checks the compiled VM against the naive oracle.
//
// A Generator produces random patterns and subjects from a seed, a Checker
// runs each pair through compiler+VM and through naive.Match and compares
// the verdicts. Disagreements are handed to a Recorder (normally the
// SQLite store) so they can be replayed against later builds.
//
// The same seed and configuration always produce the same sequence of
// cases, so a reported run can be reproduced exactly.
package conformance
