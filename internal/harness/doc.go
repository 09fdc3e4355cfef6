// Package harness runs YAML match scenarios against the compiler, the VM
// and the naive oracle.
//
// A scenario names a pattern and a list of subjects with their expected
// verdicts:
//
//	name: nested
//	description: star of two stars over a three-letter alternation
//	pattern:
//	  star:
//	    cat:
//	      - star: {alt: [a, b, c]}
//	      - star: {alt: [a, b, c]}
//	cases:
//	  - {subject: aaaabbbb, expect: true}
//	  - {subject: abd, expect: false}
//	assertions:
//	  - {type: program_length, count: 43}
//
// Every case must produce the expected verdict on both the VM and the
// oracle. RunWithGolden additionally snapshots the program listing and the
// per-case verdicts and step counts, so changes to code generation or to
// scheduling order show up as golden diffs.
package harness
